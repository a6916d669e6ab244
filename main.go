package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/sirupsen/logrus"

	"github.com/hybridboard/gametable-backend/app/controllers"
	"github.com/hybridboard/gametable-backend/pkg/routes"
	"github.com/hybridboard/gametable-backend/platform/config"
	"github.com/hybridboard/gametable-backend/platform/logging"
	socket "github.com/hybridboard/gametable-backend/platform/sockets"
)

func main() {
	logging.Init()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("configuration")
	}

	app := fiber.New()

	app.Use(cors.New())
	routes.AuthRoutes(app)
	routes.GameRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
	}))

	app.Get("/user/cur", controllers.Cur)
	routes.PresetRoutes(app)

	go socket.CreateSocketIOServer()

	if err := app.Listen(cfg.HTTPAddr); err != nil {
		logrus.WithError(err).Fatal("http server stopped")
	}
}
