package main

import (
	"unsend_service/internal/deletion/router"

	"github.com/gofiber/fiber/v2"
)

// 此程式用於 swag init
// swag init -g main.go --output ./docs
func main() {
	app := fiber.New()

	router.RegisterRoutes(app, nil, nil)
}
