package handlers

import (
	"kickoff-api/middleware"
	"kickoff-api/services"

	"github.com/gofiber/fiber/v2"
)

// SetupUserRoutes registers account endpoints. Register and login are the
// only unauthenticated routes in the API.
func SetupUserRoutes(app *fiber.App, userService *services.UserService) {
	users := app.Group("/users")

	users.Post("/register", userService.Register)
	users.Post("/login", userService.Login)

	secured := users.Group("/", middleware.AuthMiddleware())
	secured.Get("/:username", userService.GetUser)
	secured.Put("/:userId", userService.UpdateUser)
	secured.Put("/:userId/password", userService.UpdatePassword)
	secured.Post("/:userId/avatar", userService.UploadAvatar)
}
