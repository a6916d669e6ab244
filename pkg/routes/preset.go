package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hybridboard/gametable-backend/app/controllers"
)

// PresetRoutes are registered after the jwt middleware; every handler
// needs an authenticated user.
func PresetRoutes(a *fiber.App) {
	route := a.Group("/preset")
	route.Post("/create", controllers.CreatePreset)
	route.Get("/all", controllers.GetPresets)
	route.Get("/get", controllers.GetPreset)
}
