package testhelpers

import (
	"fmt"
	"testing"

	"kickoff-api/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupTestDB creates an isolated in-memory SQLite database with the full
// schema migrated. TranslateError is on so unique violations surface as
// gorm.ErrDuplicatedKey, same as the postgres driver in production.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		panic(fmt.Sprintf("failed to open test database: %v", err))
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Match{},
		&models.Play{},
		&models.InviteLink{},
	); err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}
	return db
}

// CreateUser inserts a user with a throwaway password hash.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "$2a$10$notarealhashnotarealhashnotarealhashno",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

// CreateMatch inserts a match owned by creator and joins the creator.
func CreateMatch(t *testing.T, db *gorm.DB, creator *models.User, isPublic bool) *models.Match {
	t.Helper()
	match := &models.Match{
		Location:  "city park",
		Slug:      "city-park",
		CreatorID: creator.ID,
		IsPublic:  isPublic,
	}
	if err := db.Create(match).Error; err != nil {
		t.Fatalf("failed to create match: %v", err)
	}
	play := &models.Play{UserID: creator.ID, MatchID: match.ID}
	if err := db.Create(play).Error; err != nil {
		t.Fatalf("failed to join creator: %v", err)
	}
	return match
}
