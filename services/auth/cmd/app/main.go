package main

import (
	"os"

	"storynest/pkg/config"
	app "storynest/services/auth/internal/app"

	_ "storynest/services/auth/docs" // Swagger docs
)

// @title           StoryNest Auth API
// @version         1.0
// @description     Accounts, sessions and profiles for the StoryNest learning platform

// @contact.name   StoryNest Team
// @contact.email  dev@storynest.local

// @host      localhost:8001
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey APIKey
// @in header
// @name apikey

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	if os.Getenv("SERVER_PORT") == "" {
		cfg.ServerPort = "8001"
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		panic(err)
	}

	if err := application.Run(); err != nil {
		panic(err)
	}

	application.Wait()

	if err := application.Shutdown(); err != nil {
		panic(err)
	}
}
