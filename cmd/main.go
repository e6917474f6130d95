package main

import (
	"github.com/joho/godotenv"

	"github.com/famhubid/famhub/internal/logger"
	"github.com/famhubid/famhub/internal/server"
)

func main() {
	logger.Init()

	if err := godotenv.Load(".env"); err != nil {
		logger.Warn("no .env file found, using environment variables")
	}

	if err := server.Start(); err != nil {
		logger.Fatal("server failed to start", "error", err)
	}
}
