package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"paxclean/internal/config"
	"paxclean/internal/container"
	"paxclean/internal/logging"
	"paxclean/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	envErr := godotenv.Load()

	appConfig, err := config.Load()
	if err != nil {
		logging.New("info", logging.FormatText).WithError(err).Fatal("failed to load configuration")
	}

	logger := logging.New(appConfig.Logging.Level, appConfig.Logging.Format)
	if envErr != nil {
		logger.Debug("no .env file found, using system environment variables")
	}
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.Bootstrap(ctx, appConfig, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize application")
	}
	defer appContainer.Shutdown(context.Background())

	server := ui.NewServer(appContainer.Cleaning, appContainer.RunRepo, appConfig.Server, logger)
	if err := server.Start(ctx, ":"+appConfig.Server.Port); err != nil && err != http.ErrServerClosed {
		logger.WithError(err).Fatal("server stopped")
	}
}
