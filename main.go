package main

import (
	"log"

	"somnus_tickets/config"
	"somnus_tickets/database"
	"somnus_tickets/helper"
	"somnus_tickets/router"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	app := fiber.New(fiber.Config{
		BodyLimit: 25 * 1024 * 1024,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.ConfigDefault("CORS_ORIGIN", "http://localhost:5173"),
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept",
		AllowCredentials: true,
		ExposeHeaders:    "Set-Cookie",
		MaxAge:           600,
	}))

	database.ConnectDB()

	helper.StartSaleSweeper()
	defer helper.StopSaleSweeper()
	helper.StartEventScheduler()
	defer helper.StopEventScheduler()

	cld := helper.InitCloudinary()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("cld", cld)
		return c.Next()
	})

	router.SetupRoutes(app)

	log.Fatal(app.Listen(":" + config.ConfigDefault("PORT", "8002")))
}
