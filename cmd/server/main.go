package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"omiscribe/internal/api"
	"omiscribe/internal/batch"
	"omiscribe/internal/config"
	"omiscribe/internal/queue"
	"omiscribe/internal/stats"
	"omiscribe/internal/store"
	"omiscribe/internal/stt"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode (default to release mode)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Queue directory for incoming audio
	q, err := queue.New(cfg.AudioQueueDir)
	if err != nil {
		log.Fatalf("Failed to initialize audio queue: %v", err)
	}
	log.Printf("Audio queue directory: %s (%d items pending)", q.Root(), q.Depth())

	// Object store for transcripts
	objects, err := store.NewGCSStore(ctx, cfg.GCSBucket)
	if err != nil {
		log.Fatalf("Failed to initialize object store: %v", err)
	}
	defer objects.Close()

	transcripts := store.NewTranscriptStore(objects, cfg.Environment)

	// Transcription engine
	engine := stt.NewGroqEngine(cfg.GroqAPIKey, cfg.GroqAPIBase, cfg.GroqModel)
	log.Printf("Transcription engine initialized: %s (%s)", engine.Name(), engine.Model())

	// Periodic batch processor
	processor := batch.NewProcessor(q, engine, transcripts, cfg.MaxBatchSizeMB)
	scheduler, err := processor.Schedule(cfg.BatchDurationSeconds)
	if err != nil {
		log.Fatalf("Failed to start batch scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Stats aggregation
	aggregator := stats.NewAggregator(transcripts, q, stats.ConfigEcho{
		BatchDurationSeconds: cfg.BatchDurationSeconds,
		MaxAudioSizeMB:       cfg.MaxBatchSizeMB,
		Model:                cfg.GroqModel,
		CostPerHourUSD:       batch.CostPerHour,
	})

	r := gin.Default()

	// Add CORS middleware for mobile app
	r.Use(corsMiddleware())

	// Register routes
	api.NewHandler(q, transcripts, aggregator, cfg.BatchDurationSeconds).RegisterRoutes(r)

	log.Printf("Transcription service running on :%s (environment: %s)", cfg.Port, cfg.Environment)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// corsMiddleware adds CORS headers for mobile app
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
