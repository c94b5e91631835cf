package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"dossierflow/internal/artifactstore"
	"dossierflow/internal/booking"
	"dossierflow/internal/dossier"
	"dossierflow/internal/dossier/statestore"
	"dossierflow/internal/gateway/config"
	"dossierflow/internal/gateway/handler"
	"dossierflow/internal/gateway/server"
	"dossierflow/internal/itinerary"
	"dossierflow/internal/llm"
	"dossierflow/internal/run"
	"dossierflow/internal/step"
	"dossierflow/internal/trip"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()

	client := newLLMClient(ctx, cfg)
	defer client.Close()
	log.Printf("LLM client: %s", client.Name())

	store := statestore.NewFromEnv(cfg.StatePath)
	defer store.Close()

	artifacts := newArtifactStore(cfg)

	backend := dossier.NewBackend(client, store, artifacts)
	steps := step.NewStore()
	broker := run.NewBroker()
	coord := run.NewCoordinator(backend, steps, broker, run.Options{
		InputDir:   cfg.InputDir,
		OutputPath: cfg.OutputPath,
	})
	coord.RefreshStatuses(ctx)

	cacheDir := dossier.CacheDir(cfg.OutputPath)
	contexts := trip.NewContextStore(cacheDir)
	bookingSvc := booking.NewService(client, booking.ReadTextFile, booking.NewGenerator(0), cacheDir, filepath.Dir(cfg.OutputPath))
	itinerarySvc := itinerary.NewService(client, contexts, cacheDir)

	h := handler.New(coord, backend, bookingSvc, itinerarySvc, contexts, artifacts, cfg.InputDir, cfg.OutputPath)
	srv := server.New(cfg.Port, server.NewMux(h))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server: %v", err)
		}
	case sig := <-sigCh:
		log.Printf("received %s, shutting down", sig)
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}
}

// newLLMClient prefers Gemini and degrades to the offline fake so the
// UI flows stay usable without an API key.
func newLLMClient(ctx context.Context, cfg *config.Config) llm.Client {
	if cfg.Gemini.APIKey == "" {
		log.Printf("GEMINI_API_KEY not set; using the offline fake client")
		return llm.NewFakeClient()
	}
	client, err := llm.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		log.Printf("gemini client init failed (%v); using the offline fake client", err)
		return llm.NewFakeClient()
	}
	return client
}

func newArtifactStore(cfg *config.Config) artifactstore.Store {
	if !cfg.Artifact.Enabled || cfg.Artifact.Endpoint == "" {
		return artifactstore.NewMemoryStore()
	}
	s3, err := artifactstore.NewS3Store(artifactstore.S3Config{
		Endpoint:  cfg.Artifact.Endpoint,
		Region:    cfg.Artifact.Region,
		AccessKey: cfg.Artifact.AccessKey,
		SecretKey: cfg.Artifact.SecretKey,
		Bucket:    cfg.Artifact.Bucket,
		UseSSL:    cfg.Artifact.UseSSL,
	})
	if err != nil {
		log.Printf("artifact s3 store init failed (%v); using in-memory store", err)
		return artifactstore.NewMemoryStore()
	}
	return s3
}
