package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hybridboard/gametable-backend/app/controllers"
)

func GameRoutes(a *fiber.App) {
	route := a.Group("/game")
	route.Post("/create", controllers.CreateGame)
	route.Get("/verify", controllers.VerifyGame)
	route.Get("/all", controllers.GetAllAvailGames)
	route.Get("/find", controllers.FindAvailGame)
}
