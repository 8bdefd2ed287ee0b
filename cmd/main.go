package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"meeting-transcription-service/internal/app"
	"meeting-transcription-service/internal/config"
	"meeting-transcription-service/internal/events"
	apihttp "meeting-transcription-service/internal/http"
	"meeting-transcription-service/internal/media"
	"meeting-transcription-service/internal/observability"
	"meeting-transcription-service/internal/service/stt/google"
	"meeting-transcription-service/internal/service/stt/lemonfox"
	"meeting-transcription-service/internal/service/touchup"
	"meeting-transcription-service/internal/service/transcription"
	"meeting-transcription-service/internal/storage"
)

const shutdownGrace = 15 * time.Second

func main() {
	// Local development convenience; absent .env is fine.
	_ = godotenv.Load()

	cfg := config.Load()
	application := app.New(cfg)
	if err := application.Start(); err != nil {
		log.Fatal().Err(err).Msg("application startup failed")
	}

	ctx := context.Background()

	store, err := storage.NewGCS(ctx, cfg.Storage.Bucket)
	if err != nil {
		log.Fatal().Err(err).Str("bucket", cfg.Storage.Bucket).Msg("failed to create storage client")
	}
	defer store.Close()

	batch, err := google.New(ctx, google.Config{
		ProjectID:     cfg.Recognition.ProjectID,
		Region:        cfg.Recognition.Region,
		Model:         cfg.Recognition.Model,
		LanguageCodes: cfg.Recognition.LanguageCodes,
		MinSpeakers:   cfg.Recognition.MinSpeakers,
		MaxSpeakers:   cfg.Recognition.MaxSpeakers,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create speech client")
	}
	defer batch.Close()

	sync := lemonfox.New(cfg.Lemonfox.APIKey, cfg.Lemonfox.Endpoint, cfg.Lemonfox.Language, cfg.Lemonfox.Timeout)

	var refiner touchup.Refiner
	if cfg.Touchup.APIKey != "" {
		endpoint := touchup.Endpoint(cfg.Recognition.Region, cfg.Recognition.ProjectID, cfg.Touchup.Model)
		refiner = touchup.New(cfg.Touchup.APIKey, endpoint, cfg.Touchup.Timeout)
	} else {
		log.Info().Msg("no touch-up API key configured, transcripts will be served raw")
	}

	publisher := events.New(&events.Config{
		Enabled:        cfg.Kafka.Enabled,
		Brokers:        cfg.Kafka.Brokers,
		TopicSubmitted: cfg.Kafka.TopicSubmitted,
		TopicCompleted: cfg.Kafka.TopicCompleted,
		Principal:      cfg.Kafka.Principal,
	})
	defer publisher.Close()

	pipeline := transcription.New(transcription.Deps{
		Store:      store,
		Batch:      batch,
		Sync:       sync,
		Refiner:    refiner,
		Normalizer: media.NewFFmpeg(cfg.Service.FFmpegPath),
		Publisher:  publisher,
	}, transcription.Config{
		StagingPrefix:   cfg.Storage.StagingPrefix,
		ResultsPrefix:   cfg.Storage.ResultsPrefix,
		ResultGraceWait: cfg.Recognition.ResultGraceWait,
		CallTimeout:     cfg.Recognition.CallTimeout,
		SyncTimeout:     cfg.Lemonfox.Timeout,
	})

	obsServer := observability.NewServer(":" + cfg.Observability.MetricsPort)
	obsServer.Start()

	handlers := apihttp.NewHandlers(pipeline, cfg.Service.MaxUploadBytes)
	apiServer := &http.Server{
		Addr:    ":" + cfg.Service.HTTPPort,
		Handler: apihttp.NewRouter(handlers),
	}

	go func() {
		log.Info().Str("port", cfg.Service.HTTPPort).Msg("API server listening")
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("API server failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("API server shutdown error")
	}
	if err := obsServer.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("observability server shutdown error")
	}
	application.Shutdown()
}
