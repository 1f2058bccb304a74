package services

import (
	"errors"
	"log"
	"path/filepath"

	"kickoff-api/middleware"
	"kickoff-api/models"
	"kickoff-api/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserService covers registration, login and profile updates.
type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a user and logs them straight in with a fresh token.
func (s *UserService) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "username, email and password are required"})
	}

	var count int64
	if err := s.DB.Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to check username"})
	}
	if count > 0 {
		return c.Status(409).JSON(fiber.Map{"error": "username already exists"})
	}
	if err := s.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to check email"})
	}
	if count > 0 {
		return c.Status(409).JSON(fiber.Map{"error": "email already exists"})
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to register user"})
	}
	user := models.User{Username: req.Username, Email: req.Email, Password: hash}
	if err := s.DB.Create(&user).Error; err != nil {
		// Races on the unique indexes end up here.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(409).JSON(fiber.Map{"error": "username or email already exists"})
		}
		log.Printf("❌ [USER] register %q failed: %v", req.Username, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to register user"})
	}

	token, err := utils.SignToken(user.ID, user.Username)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to issue token"})
	}
	return c.Status(201).JSON(fiber.Map{"message": "user registered successfully", "token": token})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login verifies credentials and returns a token. Bad username and bad
// password answer identically.
func (s *UserService) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "username and password are required"})
	}

	var user models.User
	err := s.DB.Where("username = ?", req.Username).First(&user).Error
	if err != nil || !utils.CheckPassword(user.Password, req.Password) {
		return c.Status(401).JSON(fiber.Map{"error": "invalid username or password"})
	}

	token, err := utils.SignToken(user.ID, user.Username)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to issue token"})
	}
	return c.JSON(fiber.Map{"message": "login successful", "token": token})
}

// GetUser returns a public profile by username.
func (s *UserService) GetUser(c *fiber.Ctx) error {
	var user models.User
	err := s.DB.Where("username = ?", c.Params("username")).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "user not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch user"})
	}
	return c.JSON(user)
}

// requireSelf loads the :userId param and checks it is the caller.
func (s *UserService) requireSelf(c *fiber.Ctx) (*models.User, int, string) {
	userID, err := parseID(c.Params("userId"))
	if err != nil {
		return nil, 400, "invalid user id"
	}
	if middleware.UserID(c) != userID {
		return nil, 403, "you can only modify your own account"
	}
	var user models.User
	err = s.DB.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 404, "user not found"
	}
	if err != nil {
		return nil, 500, "failed to fetch user"
	}
	return &user, 0, ""
}

type updateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UpdateUser changes the caller's display fields.
func (s *UserService) UpdateUser(c *fiber.Ctx) error {
	user, status, msg := s.requireSelf(c)
	if user == nil {
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Username == "" || req.Email == "" {
		return c.Status(400).JSON(fiber.Map{"error": "username and email are required"})
	}

	updates := map[string]interface{}{"username": req.Username, "email": req.Email}
	if err := s.DB.Model(user).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(409).JSON(fiber.Map{"error": "username or email already taken"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to update user"})
	}
	return c.JSON(user)
}

type updatePasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// UpdatePassword rehashes and stores a new password for the caller.
func (s *UserService) UpdatePassword(c *fiber.Ctx) error {
	user, status, msg := s.requireSelf(c)
	if user == nil {
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	var req updatePasswordRequest
	if err := c.BodyParser(&req); err != nil || req.NewPassword == "" {
		return c.Status(400).JSON(fiber.Map{"error": "newPassword is required"})
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update password"})
	}
	if err := s.DB.Model(user).Update("password", hash).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update password"})
	}
	return c.JSON(fiber.Map{"message": "password updated"})
}

// UploadAvatar stores a profile picture in R2 and saves its URL.
func (s *UserService) UploadAvatar(c *fiber.Ctx) error {
	user, status, msg := s.requireSelf(c)
	if user == nil {
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil || fileHeader.Size == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "avatar file is required"})
	}
	ext := filepath.Ext(fileHeader.Filename)
	if ext == "" {
		ext = ".jpg"
	}
	key := "avatars/" + uuid.NewString() + ext
	url, err := utils.UploadFileToR2(fileHeader, key)
	if err != nil {
		log.Printf("❌ [USER] avatar upload for %d failed: %v", user.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to upload avatar"})
	}

	if err := s.DB.Model(user).Update("avatar_url", url).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to save avatar"})
	}
	return c.JSON(fiber.Map{"avatarUrl": url})
}
