// File: concierge/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"concierge/config"
	"concierge/cron"
	"concierge/database"
	catalogRepo "concierge/database/repository/catalog"
	ledgerRepo "concierge/database/repository/ledger"
	"concierge/handlers"
	"concierge/routes"
	"concierge/services/assistant"
	"concierge/services/intelligence"
	"concierge/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	utils.InitRedis()

	// Pick the storage backend: mongo for production deployments, the
	// seeded in-memory store for local development.
	var (
		catalog catalogRepo.CatalogRepository
		ledger  ledgerRepo.LedgerRepository
	)
	if config.AppConfig.StoreBackend == "mongo" {
		database.InitDB()
		catalog = catalogRepo.NewMongoCatalogRepo()
		ledger = ledgerRepo.NewMongoLedgerRepo()
		if seeder, ok := catalog.(catalogRepo.Seeder); ok {
			if err := seeder.EnsureSeed(context.Background(), catalogRepo.SeedItems(), catalogRepo.SeedSlots(time.Now(), 14)); err != nil {
				logger.Sugar().Fatalf("main: failed to seed catalog: %v", err)
			}
		}
	} else {
		catalog = catalogRepo.NewMemoryCatalogRepo(
			catalogRepo.SeedItems(),
			catalogRepo.SeedSlots(time.Now(), 14),
		)
		ledger = ledgerRepo.NewMemoryLedgerRepo()
	}

	// LLM collaborators: Gemini first, then any configured
	// OpenAI-compatible endpoint.
	var chain []intelligence.Collaborator
	if config.AppConfig.GeminiAPIKey != "" {
		chain = append(chain, intelligence.NewGeminiClient(
			config.AppConfig.GeminiAPIKey,
			config.AppConfig.GeminiModel,
		))
	}
	if config.AppConfig.FallbackLLMBase != "" {
		chain = append(chain, intelligence.NewOpenAIClient(
			config.AppConfig.FallbackLLMBase,
			config.AppConfig.FallbackLLMKey,
			config.AppConfig.FallbackLLMModel,
		))
	}
	if len(chain) == 0 {
		logger.Sugar().Fatal("main: no language model configured; set GEMINI_API_KEY or FALLBACK_LLM_BASE_URL")
	}
	llm := intelligence.NewFallbackCollaborator(chain...)

	sessionTTL := time.Duration(config.AppConfig.SessionTTLMinutes) * time.Minute
	ctxStore := intelligence.NewRedisContextStore(utils.GetContextCacheClient(), sessionTTL)
	expiry := cron.InitExpiryWorker(ctxStore)

	assistantSvc := &assistant.DefaultAssistantService{
		Catalog:    catalog,
		Ledger:     ledger,
		LLM:        llm,
		Contexts:   ctxStore,
		Expiry:     expiry,
		LLMTimeout: time.Duration(config.AppConfig.LLMTimeoutSeconds) * time.Second,
		SessionTTL: sessionTTL,
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	handlerBundle := &handlers.HandlerBundle{
		ChatHandler:           handlers.ChatHandler(assistantSvc),
		ChatWSHandler:         handlers.ChatWSHandler(assistantSvc),
		InventoryHandler:      handlers.InventoryHandler(assistantSvc),
		SessionHistoryHandler: handlers.SessionHistoryHandler(assistantSvc),
		SessionTotalHandler:   handlers.SessionTotalHandler(assistantSvc),
		CloseSessionHandler:   handlers.CloseSessionHandler(assistantSvc),
	}
	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor(utils.GetCacheClient(), utils.GetContextCacheClient(), database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
