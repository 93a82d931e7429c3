package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/shanky2010/batch-visual-insights/adapters/postgres"
	"github.com/shanky2010/batch-visual-insights/internal/config"
	"github.com/shanky2010/batch-visual-insights/internal/dataset"
	"github.com/shanky2010/batch-visual-insights/ports"
	"github.com/shanky2010/batch-visual-insights/ui"
)

func main() {
	// .env is optional; exported variables win either way.
	if err := godotenv.Load(); err != nil {
		log.Printf("[Main] No .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Main] Failed to load configuration: %v", err)
	}

	var repository ports.FileRepository
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(cfg.Database.URL)
		if err != nil {
			log.Fatalf("[Main] Failed to connect to database: %v", err)
		}
		defer db.Close()
		repository = postgres.NewFileRepository(db)
		log.Printf("[Main] Using postgres file repository")
	} else {
		repository = dataset.NewMemoryRepository()
		log.Printf("[Main] DATABASE_URL not set, using in-memory file repository")
	}

	storage := dataset.NewLocalFileStorage(cfg.Storage.BasePath)
	service := dataset.NewService(repository, storage, cfg.Storage.MaxFileSize, cfg.Storage.MaxUploads)

	if cfg.Ops.Enabled {
		go func() {
			if err := ui.RunOpsServer(cfg.Ops.Port); err != nil {
				log.Printf("[Main] Ops server stopped: %v", err)
			}
		}()
	}

	server := ui.NewServer(service, cfg)
	if err := server.Run(); err != nil {
		log.Fatalf("[Main] Server stopped: %v", err)
	}
}
