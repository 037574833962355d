package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/aussiebroadwan/lessondesk/internal/devapi/app"
)

func main() {
	// A .env next to the binary is optional.
	_ = godotenv.Load()

	cfg := app.LoadConfig()

	application, err := app.New(cfg, nil)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
