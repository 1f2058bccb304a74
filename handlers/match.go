package handlers

import (
	"kickoff-api/middleware"
	"kickoff-api/services"

	"github.com/gofiber/fiber/v2"
)

// SetupMatchRoutes registers every match endpoint. All of them need a
// logged-in caller; visibility beyond that is the policy's job.
func SetupMatchRoutes(app *fiber.App, matchService *services.MatchService) {
	matches := app.Group("/matches", middleware.AuthMiddleware())

	matches.Get("/", matchService.GetPublicMatches)
	matches.Post("/create", matchService.CreateMatch)
	matches.Post("/delete", matchService.DeleteMatch)
	matches.Post("/update", matchService.UpdateMatch)
	matches.Get("/user/:userId", matchService.GetMatchesByUser)
	matches.Get("/stats/:userId", matchService.GetCareerStats)

	// Roster
	matches.Post("/players/add", matchService.AddPlayer)
	matches.Post("/players/bulk-add", matchService.BulkAddPlayers)
	matches.Post("/players/goals", matchService.UpdatePlayerGoals)
	matches.Get("/:matchId/players", matchService.GetMatchPlayers)

	// Invites & joining
	matches.Get("/invite/:code", matchService.ResolveInvite)
	matches.Get("/:matchId/invite", matchService.CreateInvite)
	matches.Post("/join/:matchId", matchService.JoinMatch)

	// Keep last so it doesn't shadow the named routes above
	matches.Get("/:matchId", matchService.GetMatch)
}
