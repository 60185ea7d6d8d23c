package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/finbase/statement-sync/internal/api/handlers"
	"github.com/finbase/statement-sync/internal/api/middleware"
	"github.com/finbase/statement-sync/internal/config"
	"github.com/finbase/statement-sync/internal/drive"
	"github.com/finbase/statement-sync/internal/gcsource"
	infraBQ "github.com/finbase/statement-sync/internal/infra/bigquery"
	"github.com/finbase/statement-sync/internal/infra/sqlite"
	"github.com/finbase/statement-sync/internal/jobs"
	"github.com/finbase/statement-sync/internal/jobs/inmemory"
	"github.com/finbase/statement-sync/internal/logger"
	"github.com/finbase/statement-sync/internal/syncer"
)

func main() {
	var port = flag.String("port", "", "HTTP server port (overrides PORT env)")
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port != "" {
		cfg.Port = *port
	}

	ctx := context.Background()

	// Persistence backend: the sink, the dedup registry and the account
	// store are one object either way.
	var (
		sink     syncer.TransactionSink
		registry syncer.ProcessingLog
		accounts syncer.AccountStore
	)
	switch cfg.Store {
	case config.StoreBigQuery:
		store, err := infraBQ.NewStore(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery store")
		}
		defer store.Close()
		sink, registry, accounts = store, store, store
	default:
		db, err := sqlite.NewDatabase(cfg.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open local database")
		}
		sink, registry, accounts = db, db, db
	}

	// Statement source.
	var (
		source   syncer.FileSource
		searcher syncer.FolderSearcher
	)
	switch cfg.Source {
	case config.SourceGCS:
		src, err := gcsource.New(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create GCS source")
		}
		defer src.Close()
		source = src
	default:
		svc, err := drive.NewService(ctx, cfg.GoogleCredentialsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Drive service")
		}
		source, searcher = svc, svc
	}

	orch := syncer.New(source, sink, registry, accounts, log)

	// Background sync jobs.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job *jobs.SyncFolderJob) error {
		log.Info().Str("job_id", job.JobID).Str("account_id", job.AccountID).Msg("Running sync job")
		result, err := orch.SyncAccount(ctx, job.AccountID)
		if err != nil {
			return err
		}
		job.Result = result
		return nil
	}
	if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job worker")
	}

	driveHandler := handlers.NewDriveHandler(orch, searcher, jobQueue, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/drive/connect/", func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := pathSuffix(w, r, http.MethodPost, "/api/drive/connect/")
		if ok {
			driveHandler.Connect(w, r, accountID)
		}
	})

	mux.HandleFunc("/api/drive/folders/search", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		driveHandler.SearchFolders(w, r)
	})

	mux.HandleFunc("/api/drive/sync/", func(w http.ResponseWriter, r *http.Request) {
		rest, ok := pathSuffix(w, r, http.MethodPost, "/api/drive/sync/")
		if !ok {
			return
		}
		if accountID, async := strings.CutSuffix(rest, "/async"); async {
			driveHandler.SyncAsync(w, r, accountID)
			return
		}
		driveHandler.Sync(w, r, rest)
	})

	mux.HandleFunc("/api/drive/status/", func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := pathSuffix(w, r, http.MethodGet, "/api/drive/status/")
		if ok {
			driveHandler.Status(w, r, accountID)
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		jobsHandler.ListJobs(w, r)
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		jobID, ok := pathSuffix(w, r, http.MethodGet, "/api/jobs/")
		if ok {
			jobsHandler.GetJob(w, r, jobID)
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // synchronous syncs download and parse inline
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store).Str("source", cfg.Source).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cancelWorker()
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Job queue shutdown failed")
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
}

// pathSuffix enforces the method, strips the route prefix and rejects an
// empty remainder.
func pathSuffix(w http.ResponseWriter, r *http.Request, method, prefix string) (string, bool) {
	if r.Method != method {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return "", false
	}
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	if rest == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Account ID is required")
		return "", false
	}
	return rest, true
}
