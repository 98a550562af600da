package main

import (
	"context"
	"log"
	"net/http"

	"github.com/SonOfTheSea21/dialect-app/internal/config"
	"github.com/SonOfTheSea21/dialect-app/internal/handler"
	"github.com/SonOfTheSea21/dialect-app/internal/ledger"
	"github.com/SonOfTheSea21/dialect-app/internal/middleware"
	"github.com/SonOfTheSea21/dialect-app/internal/selector"
	"github.com/SonOfTheSea21/dialect-app/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("main(): failed to load config: ", err)
	}

	ctx := context.Background()

	var store storage.Adapter
	switch cfg.StoreBackend {
	case "sheets":
		sheetStore, err := storage.NewSheetStore(ctx, cfg.CredentialsFile, cfg.SpreadsheetID)
		if err != nil {
			log.Fatal("main(): failed to open sheets store: ", err)
		}
		store = sheetStore
	default:
		sqliteStore, err := storage.Open(cfg.SQLitePath)
		if err != nil {
			log.Fatal("main(): failed to open sqlite store: ", err)
		}
		defer sqliteStore.Close()
		store = sqliteStore
	}

	var blobs storage.BlobStore
	switch cfg.BlobBackend {
	case "drive":
		blobs, err = storage.NewDriveBlobStore(ctx, cfg.CredentialsFile, cfg.DriveFolderID)
		if err != nil {
			log.Fatal("main(): failed to open drive blob store: ", err)
		}
	default:
		blobs, err = storage.NewDirBlobStore(cfg.BlobRoot)
		if err != nil {
			log.Fatal("main(): failed to open blob directory: ", err)
		}
	}

	api := &handler.API{
		Store:    store,
		Blobs:    blobs,
		Selector: selector.New(store),
		Ledger:   ledger.New(store),
		Timezone: cfg.Timezone,
	}

	router := gin.Default()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "X-Admin-Key")
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/api/assignment", api.GetAssignment)
	router.POST("/api/submissions", middleware.SubmissionRateLimiter(), api.PostSubmission)
	router.GET("/api/users/:user/stats", api.GetUserStats)
	router.GET("/api/regions/:region/progress", api.GetRegionProgress)

	router.GET("/ws/record", api.HandleRecordSession)

	admin := router.Group("/admin").Use(middleware.AdminKeyMiddleware(cfg.AdminKey))
	{
		admin.POST("/sentences", api.SeedSentences)
	}

	log.Fatal(router.Run(cfg.ListenAddr))
}
