// cmd/statement/main.go
package main

import (
	"context"
	"log"

	gcs "cloud.google.com/go/storage"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"statement-service/internal/api/handlers"
	"statement-service/internal/api/middleware"
	"statement-service/internal/api/responses"
	"statement-service/internal/config"
	"statement-service/internal/core/session"
	"statement-service/internal/core/statement"
	"statement-service/internal/history"
	"statement-service/internal/storage"
)

func main() {
	responses.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("FATAL: invalid configuration: ", err)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("FATAL: could not connect to Postgres: ", err)
	}
	defer pool.Close()

	historyRepo := history.NewPostgresRepository(pool)
	if err := historyRepo.EnsureSchema(ctx); err != nil {
		log.Fatal("FATAL: could not prepare history schema: ", err)
	}

	gcsClient, err := gcs.NewClient(ctx)
	if err != nil {
		log.Fatal("FATAL: could not create storage client: ", err)
	}
	defer gcsClient.Close()

	statementService := statement.NewService()
	sessions := session.NewStore()
	docStore := storage.NewGCSStore(gcsClient, cfg.DocumentBucket)
	statementHandler := handlers.NewStatementHandler(statementService, sessions, docStore, historyRepo)

	router := gin.Default()

	apiV1 := router.Group("/api/v1", middleware.RequireAuth([]byte(cfg.JWTSecret)))
	{
		apiV1.POST("/statements/upload", statementHandler.HandleUpload)
		apiV1.POST("/statements/generate", statementHandler.HandleGenerate)
		apiV1.GET("/statements/history", statementHandler.HandleHistory)
		apiV1.PUT("/statement/config", statementHandler.HandleSetConfig)
		apiV1.PUT("/statement/logo", statementHandler.HandleSetLogo)
		apiV1.GET("/transactions", statementHandler.HandleListTransactions)
		apiV1.POST("/transactions/manual", statementHandler.HandleAddManual)
		apiV1.DELETE("/transactions/manual/:id", statementHandler.HandleDeleteManual)
		apiV1.DELETE("/transactions/file", statementHandler.HandleClearFile)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP", "service": "statement-service"})
	})

	log.Printf("🚀 Statement Service (Go) listening on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start the statement server: ", err)
	}
}
