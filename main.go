package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-summary/config"
	"github.com/nijaru/yt-summary/db"
	"github.com/nijaru/yt-summary/handlers"
	"github.com/nijaru/yt-summary/logger"
	"github.com/nijaru/yt-summary/summary"
	"github.com/nijaru/yt-summary/transcription"
	"github.com/nijaru/yt-summary/video"
	"github.com/nijaru/yt-summary/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}

	log, logCloser, err := logger.New(logger.Config{
		Dir:    cfg.LogDir,
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize logger")
	}
	defer logCloser.Close()

	store, err := db.Open(cfg.DBPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Error("Failed to close database")
		}
	}()

	generator, err := summary.NewGeminiGenerator(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		log.WithError(err).Fatal("Failed to create Gemini client")
	}
	log.WithField("model", generator.Model()).Info("Gemini client ready")

	captions := transcription.NewYouTubeCaptions(&http.Client{Timeout: cfg.Timeouts.Transcript})
	whisper := transcription.NewWhisper(transcription.WhisperConfig{
		Binary:  cfg.Whisper.Binary,
		Model:   cfg.Whisper.Model,
		TempDir: cfg.TempDir,
	}, log)

	service := video.NewService(
		transcription.NewProvider(captions, whisper, log),
		summary.New(generator, log),
		store,
		video.Config{
			TranscriptTimeout: cfg.Timeouts.Transcript,
			TranscribeTimeout: cfg.Timeouts.Transcribe,
			SummarizeTimeout:  cfg.Timeouts.Summarize,
		},
		log,
	)

	page, err := web.NewPage(cfg.Upload.MaxSize)
	if err != nil {
		log.WithError(err).Fatal("Failed to load page template")
	}

	handler := handlers.New(service, page, store, handlers.Config{
		MaxUploadSize: cfg.Upload.MaxSize,
		TempDir:       cfg.TempDir,
	})
	server := handlers.NewServer(cfg, handler, log)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Could not start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := server.ShutdownContext()
	defer cancel()

	start := time.Now()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
		return
	}
	log.WithField("duration", time.Since(start)).Info("Server stopped")
}
