package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raushankrgupta/dekor-stager/api"
	"github.com/raushankrgupta/dekor-stager/compositor"
	"github.com/raushankrgupta/dekor-stager/config"
	"github.com/raushankrgupta/dekor-stager/gallery"
	"github.com/raushankrgupta/dekor-stager/generator"
	"github.com/raushankrgupta/dekor-stager/ingest"
	"github.com/raushankrgupta/dekor-stager/logger"
	"github.com/raushankrgupta/dekor-stager/rooms"
	"github.com/raushankrgupta/dekor-stager/scrapers"
	"github.com/raushankrgupta/dekor-stager/scrapers/base"
	"github.com/raushankrgupta/dekor-stager/staging"
	"github.com/raushankrgupta/dekor-stager/storage"
	"github.com/raushankrgupta/dekor-stager/utils"
	"github.com/raushankrgupta/dekor-stager/video"
)

func main() {
	config.LoadConfig()

	log, err := logger.New(config.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Blob storage
	var blobs storage.BlobStore
	assetRoot := ""
	switch config.StorageBackend {
	case "s3":
		s3Store, err := storage.NewS3BlobStore(ctx, storage.S3Options{
			Region:          config.AWSRegion,
			Bucket:          config.AWSBucketName,
			BaseEndpoint:    config.S3BaseEndpoint,
			AccessKeyID:     config.S3AccessKey,
			SecretAccessKey: config.S3SecretKey,
		})
		if err != nil {
			log.Fatal("Failed to initialize S3", "error", err)
		}
		blobs = s3Store
	default:
		assetRoot = config.AssetRoot
		blobs = storage.NewLocalBlobStore(assetRoot)
	}

	// Metadata records
	var records storage.RecordStore
	switch config.MetadataBackend {
	case "mongo":
		mongoStore, err := storage.ConnectMongo(ctx, config.MongoURI, config.MongoDatabase)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mongoStore.Close(closeCtx)
		}()
		records = mongoStore
	default:
		records = storage.NewFileRecordStore(config.AssetRoot)
	}

	store := storage.NewAssetStore(blobs, records, config.PublicBaseURL)
	httpClient := utils.NewHTTPClient(config.HTTPTimeout)

	editor, videos := remoteProviders(ctx, httpClient, log)

	scraperBase := base.NewBaseScraper(base.Options{
		Client:           httpClient,
		BrowserFallback:  config.BrowserFallback,
		ChromeDriverPath: config.ChromeDriverPath,
		Logger:           log,
	})

	h := &api.Handler{
		Ingest: ingest.NewResolver(store, scrapers.NewRegistry(scraperBase), httpClient, log),
		Rooms:  rooms.NewIntake(store, log),
		Staging: staging.NewOrchestrator(store, staging.Options{
			Editor:        editor,
			Fallback:      compositor.New(store, log),
			HTTPClient:    httpClient,
			RemoteTimeout: config.RemoteTimeout,
			Logger:        log,
		}),
		Gallery: gallery.New(store, log),
		Video:   video.NewService(store, videos, httpClient, config.RemoteTimeout, log),
		Log:     log,
	}

	server := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           api.NewRouter(h, assetRoot),
		ReadHeaderTimeout: 10 * time.Second,
		// staging requests may wait on the remote provider
		WriteTimeout: config.RemoteTimeout + time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		}
	}()

	log.Info("Server starting", "port", config.Port, "storage", config.StorageBackend, "metadata", config.MetadataBackend, "provider", config.GeneratorProvider)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("Server failed to start", "error", err)
	}
}

// remoteProviders builds the configured image editor and the video
// generator. Either may be nil, which routes staging to the local
// compositor and makes video generation unavailable.
func remoteProviders(ctx context.Context, client *http.Client, log *logger.Logger) (generator.ImageEditor, generator.VideoGenerator) {
	var fal *generator.FalClient
	if config.FalKey != "" {
		c, err := generator.NewFalClient(generator.FalOptions{
			Key:          config.FalKey,
			QueueURL:     config.FalQueueURL,
			RestURL:      config.FalRestURL,
			PollInterval: config.FalPollInterval,
			HTTPClient:   client,
			Logger:       log,
		})
		if err != nil {
			log.Warn("fal client unavailable", "error", err)
		} else {
			fal = c
		}
	}

	var videos generator.VideoGenerator
	if fal != nil {
		videos = fal
	} else {
		log.Warn("FAL_KEY not set, video generation disabled")
	}

	switch config.GeneratorProvider {
	case "gemini":
		if config.GeminiAPIKey == "" {
			log.Warn("GEMINI_API_KEY not set, staging will use the local compositor")
			return nil, videos
		}
		gemini, err := generator.NewGeminiClient(ctx, config.GeminiAPIKey, config.GeminiImageModel, log)
		if err != nil {
			log.Warn("gemini client unavailable, staging will use the local compositor", "error", err)
			return nil, videos
		}
		return gemini, videos
	default:
		if fal == nil {
			log.Warn("FAL_KEY not set, staging will use the local compositor")
			return nil, videos
		}
		return fal, videos
	}
}
