// Package main provides the entry point for the vidgrab Telegram bot.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/denisAlshanov/vidgrab/internal/api/handlers"
	"github.com/denisAlshanov/vidgrab/internal/api/router"
	"github.com/denisAlshanov/vidgrab/internal/config"
	"github.com/denisAlshanov/vidgrab/internal/services/downloader"
	"github.com/denisAlshanov/vidgrab/internal/services/orchestrator"
	"github.com/denisAlshanov/vidgrab/internal/services/telegram"
	"github.com/denisAlshanov/vidgrab/internal/services/youtube"
	"github.com/denisAlshanov/vidgrab/internal/utils"
)

// Request directories older than this were left behind by a crash.
const staleWorkDirAge = time.Hour

var (
	envFile  string
	logLevel string
)

func main() {
	root := &cobra.Command{
		Use:          "vidgrab",
		Short:        "Telegram bot that downloads videos from YouTube, TikTok and Instagram",
		SilenceUsage: true,
		RunE:         run,
	}

	root.Flags().StringVar(&envFile, "env-file", ".env", "path to a .env file")
	root.Flags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load(envFile)
	if err != nil {
		if errors.Is(err, config.ErrMissingToken) {
			return fmt.Errorf("%w: create a bot with @BotFather and export its token", err)
		}
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// LOG_LEVEL may have come from the env file, which loads after the logger
	if logLevel == "" {
		logLevel = os.Getenv("LOG_LEVEL")
	}
	if logLevel != "" {
		utils.SetLevel(logLevel)
	}
	logger := utils.GetLogger()
	logger.Info("Starting vidgrab bot")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Prepare scratch directory
	if err := utils.EnsureDir(cfg.Download.Dir); err != nil {
		return err
	}
	if removed, err := utils.SweepStaleWorkDirs(cfg.Download.Dir, staleWorkDirAge); err != nil {
		logger.Warnf("Failed to sweep download directory: %v", err)
	} else if removed > 0 {
		logger.Infof("Removed %d stale download directories", removed)
	}

	if cfg.Download.YTDLPAutoInstall {
		if err := downloader.EnsureInstalled(ctx); err != nil {
			return err
		}
	}

	// Initialize downloader service
	var prober youtube.SizeProber
	if cfg.YouTube.PreflightSizeCheck {
		prober = youtube.NewClient(cfg.YouTube.ProbeTimeout)
	}
	extractor := downloader.NewYTDLPExtractor(cfg.Download.YTDLPPath)
	downloaderService := downloader.NewDownloader(extractor, prober, &cfg.Download)

	// Initialize Telegram client
	botClient, err := telegram.NewBotClient(&cfg.Telegram)
	if err != nil {
		return fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	logger.Infof("Authorized as @%s", botClient.Username())

	requestOrchestrator := orchestrator.NewOrchestrator(botClient, downloaderService, &cfg.Download)

	// Initialize handlers
	commandHandler := handlers.NewCommandHandler(botClient)
	mediaHandler := handlers.NewMediaHandler(requestOrchestrator)
	errorHandler := handlers.NewErrorHandler(botClient)

	// Initialize router
	r := router.NewRouter(cfg, botClient, commandHandler, mediaHandler, errorHandler)
	dispatcher := telegram.NewDispatcher(r, cfg.Bot.MaxConcurrentRequests)

	logger.Info("Polling for updates")
	dispatcher.Serve(ctx, botClient.Updates())

	logger.Info("Shutting down bot...")
	botClient.StopUpdates()

	if err := dispatcher.Shutdown(cfg.Bot.ShutdownTimeout); err != nil {
		logger.Errorf("Failed to finish in-flight requests: %v", err)
	}

	logger.Info("Bot shutdown complete")
	return nil
}
