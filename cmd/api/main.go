package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/ome/openmicroscopy-sub033/internal/adapters/checksum"
	"github.com/ome/openmicroscopy-sub033/internal/adapters/decoder"
	"github.com/ome/openmicroscopy-sub033/internal/adapters/eventbroker/nats"
	"github.com/ome/openmicroscopy-sub033/internal/adapters/handlers/http/chi"
	importv1 "github.com/ome/openmicroscopy-sub033/internal/adapters/handlers/http/chi/v1/importer"
	repov1 "github.com/ome/openmicroscopy-sub033/internal/adapters/handlers/http/chi/v1/repo"
	"github.com/ome/openmicroscopy-sub033/internal/adapters/metastore"
	"github.com/ome/openmicroscopy-sub033/internal/adapters/repository/postgres"
	"github.com/ome/openmicroscopy-sub033/internal/adapters/thumbnail"
	"github.com/ome/openmicroscopy-sub033/internal/config"
	"github.com/ome/openmicroscopy-sub033/internal/core/port"
	"github.com/ome/openmicroscopy-sub033/internal/core/service/importer"
	"github.com/ome/openmicroscopy-sub033/internal/core/service/repo"
)

func main() {

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := initDB(cfg.Database)
	if err != nil {
		logger.Error("failed to init database", "error", err)
		os.Exit(1)
	}
	defer func(db *sql.DB) {
		err := db.Close()
		if err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}(db)
	logger.Info("db connection established")

	repoID, err := repo.EnsureIdentity(cfg.Repository.Root)
	if err != nil {
		logger.Error("failed to establish repository identity", "error", err)
		os.Exit(1)
	}
	logger.Info("repository identity established", "root", cfg.Repository.Root, "repo", repoID)

	//repositories
	unitOfWork := postgres.NewUnitOfWork(db)
	checksums := checksum.NewProvider()

	repoService := repo.NewService(unitOfWork, checksums, cfg.Repository, repoID, cfg.Import, logger)

	//import pipeline
	formatDecoder := decoder.NewBuiltinDecoder()
	planner := repo.NewPlanner(repoService, formatDecoder, cfg.Import.Template, cfg.Import.DefaultTrimDepth)
	container := importer.NewContainer(logger)

	publisher, err := nats.NewNATSPublisher(ctx, cfg.NATS, logger)
	if err != nil {
		logger.Error("failed to init NATS publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()
	logger.Info("NATS publisher initialized")

	resolveSource := func(ctx context.Context, absPath string) (int64, error) {
		rel, err := filepath.Rel(cfg.Repository.Root, absPath)
		if err != nil {
			return 0, err
		}
		p, err := repoService.Check(filepath.ToSlash(rel))
		if err != nil {
			return 0, err
		}
		rec, err := unitOfWork.Records().FindRecord(ctx, repoID, p.ParentDir(), p.Name())
		if err != nil {
			return 0, err
		}
		return rec.ID, nil
	}
	stores := func(ctx context.Context) (port.MetadataStore, error) {
		return metastore.NewCatalogStore(unitOfWork, resolveSource, logger), nil
	}

	thumbs := thumbnail.NewGenerator(logger)

	importService := importer.NewService(
		repoService, planner, container, formatDecoder, checksums,
		unitOfWork, stores, thumbs, publisher, nil, logger,
	)

	//http
	repoHandler := repov1.NewRepoHandlerV1(repoService, cfg.Server.AdminToken, logger)
	importHandler := importv1.NewImportHandlerV1(importService, logger)

	router := chi.NewRouter(logger, repoHandler, importHandler, cfg.Env.Env)
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)
		servErr := server.ListenAndServe()
		if servErr != nil && !errors.Is(servErr, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", servErr)
			stop()
		}
	}()

	//wait for context cancel
	<-ctx.Done()
	logger.Info("gracefully shutting down app")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	} else {
		logger.Info("server gracefully shutdown complete")
	}

	if closed := importService.ShutdownAll(); closed > 0 {
		logger.Info("import processes terminated", "count", closed)
	}

	wg.Wait()
	logger.Info("app shutdown complete")
}

func initDB(cfg config.DatabaseConfig) (*sql.DB, error) {

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenCons)
	db.SetMaxIdleConns(cfg.MaxIdleCons)
	db.SetConnMaxLifetime(cfg.ConMaxLifeTime)

	return db, nil
}
