package main

import (
	"context"
	"os"

	"github.com/yigit/clubhub/internal/pkg/logger"
	"github.com/yigit/clubhub/internal/server"
)

// @title ClubHub API
// @version 1.0
// @description API for the ClubHub university club platform
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	srv, err := server.NewServer(context.Background())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
