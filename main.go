package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"datalens/adapters/llm"
	"datalens/adapters/memory"
	"datalens/adapters/postgres"
	"datalens/app"
	"datalens/internal/config"
	"datalens/internal/errors"
	"datalens/internal/migration"
	"datalens/internal/storage"
	"datalens/internal/translate"
	"datalens/ports"
	"datalens/ui"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

const tableCacheSize = 8

// initDatabase connects to PostgreSQL and applies the schema
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(context.Background(), db); err != nil {
		return nil, errors.Wrap(err, "database migration failed")
	}

	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := appConfig.CreateDirectories(); err != nil {
		log.Fatalf("Failed to create storage directories: %v", err)
	}

	gin.SetMode(appConfig.Server.GinMode)

	// Repositories: PostgreSQL when configured, in-memory otherwise
	var (
		db          *sqlx.DB
		datasetRepo ports.DatasetRepository
		historyRepo ports.QueryHistoryRepository
	)
	if appConfig.Database.URL != "" {
		db, err = initDatabase(appConfig)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		datasetRepo = postgres.NewDatasetRepository(db)
		historyRepo = postgres.NewHistoryRepository(db)
		log.Println("Using PostgreSQL repositories")
	} else {
		datasetRepo = memory.NewDatasetRepository()
		historyRepo = memory.NewHistoryRepository()
		log.Println("DATABASE_URL not set, using in-memory repositories")
	}

	fileStorage := storage.NewLocalFileStorage(appConfig.Storage.UploadDir)
	tableCache := app.NewTableCache(tableCacheSize)
	datasetService := app.NewDatasetService(datasetRepo, historyRepo, fileStorage, tableCache, appConfig)

	// Query translation: pattern tier always, LLM tier when a key is set
	var llmClient ports.LLMClient
	if appConfig.LLMEnabled() {
		llmClient, err = llm.NewClient(appConfig.AI)
		if err != nil {
			log.Fatalf("Failed to initialize LLM client: %v", err)
		}
		log.Printf("LLM query tier enabled (model: %s)", appConfig.AI.Model)
	} else {
		log.Println("OPENAI_API_KEY not set, only pattern-matched queries will be answered")
	}
	translator := translate.NewTranslator(llmClient)
	queryService := app.NewQueryService(datasetService, historyRepo, translator)

	apiServer := ui.NewServer(datasetService, queryService, appConfig)
	opsServer := ui.NewOpsServer(appConfig, db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return apiServer.Run(gctx) })
	g.Go(func() error { return opsServer.Run(gctx) })

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Shutdown complete")
}
