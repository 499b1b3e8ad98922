package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juju/clock"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"service-automation/internal/automation/artifacts"
	"service-automation/internal/automation/audit"
	"service-automation/internal/automation/drafting"
	"service-automation/internal/automation/index"
	"service-automation/internal/automation/notify"
	"service-automation/internal/automation/pipeline"
	"service-automation/internal/automation/store"
	"service-automation/internal/automation/strategy"
	awsclients "service-automation/internal/common/aws"
	"service-automation/internal/common/camunda"
	"service-automation/internal/common/config"
	"service-automation/internal/common/database"
	"service-automation/internal/common/logger"
	"service-automation/internal/common/observability"

	gas "service-automation/internal/workers/automation/get-automation-status"
	sa "service-automation/internal/workers/automation/start-automation"
)

// retryWithBackoff retries operation, doubling the delay after each failure.
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"app":     cfg.App.Name,
		"version": cfg.App.Version,
	})

	zapLog.Info("Starting automation manager...", zap.String("environment", cfg.App.Environment))

	obs, err := observability.New(cfg.App.Name, cfg.Tracing.JaegerEndpoint)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	ctx := context.Background()
	clk := clock.WallClock

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pingOrClose(ctx, pg)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	if err := pg.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("schema setup failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Redis (optional job cache) ---
	var redis *database.RedisClient
	if cfg.Database.Redis.Address != "" {
		redis = database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Warn("redis unavailable, job cache disabled", zap.Error(err))
			_ = redis.Close()
			redis = nil
		} else {
			defer redis.Close()
			zapLog.Info("Redis connected successfully")
		}
	}

	// --- Elasticsearch (optional job index) ---
	var indexer index.Indexer = index.Nop{}
	if cfg.Database.Elasticsearch.Enabled() {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Warn("elasticsearch unavailable, job index disabled", zap.Error(err))
		} else {
			indexer = index.NewElasticIndexer(esClient.Client, cfg.Database.Elasticsearch.Index)
			zapLog.Info("Elasticsearch connected successfully")
		}
	}

	// --- AWS ---
	var aws *awsclients.Clients
	if cfg.Storage.Backend == "s3" || cfg.Audit.SNSTopic != "" || cfg.Notifications.Email.Enabled {
		aws, err = awsclients.NewClients(ctx, cfg.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws config failed", zap.Error(err))
		}
	}

	// --- Zeebe ---
	var zeebe *camunda.Client
	if cfg.Camunda.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClient(camunda.ConfigFrom(cfg.Camunda))
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")
	}

	// --- Pipeline ---
	var artifactStore artifacts.Store
	switch cfg.Storage.Backend {
	case "s3":
		artifactStore = artifacts.NewS3Store(aws.S3, cfg.Storage.Bucket)
	default:
		artifactStore = artifacts.NewLocalStore(cfg.Storage.BasePath)
	}

	engine, err := drafting.NewEngine(artifactStore, clk, log)
	if err != nil {
		zapLog.Fatal("drafting templates failed to load", zap.Error(err))
	}

	var jobs store.JobRepository = store.NewPostgresJobs(pg)
	if redis != nil {
		jobs = store.NewCachedJobs(jobs, redis.Client, config.GetDuration(cfg.Automation.LatestJobTTL), log)
	}

	auditors := audit.Multi{}
	if cfg.Audit.Postgres {
		auditors = append(auditors, audit.NewPostgresAuditor(pg, clk))
	}
	if cfg.Audit.SNSTopic != "" {
		auditors = append(auditors, audit.NewSNSPublisher(aws.SNS, cfg.Audit.SNSTopic, clk))
	}

	notifiers := notify.Multi{}
	if cfg.Notifications.Email.Enabled {
		notifiers = append(notifiers, notify.NewSESNotifier(aws.SES, cfg.Notifications.Email.FromEmail))
	}
	if zeebe != nil {
		notifiers = append(notifiers, notify.NewProcessNotifier(zeebe))
	}

	orch := pipeline.NewOrchestrator(pipeline.Dependencies{
		Applications:  store.NewPostgresApplications(pg),
		Jobs:          jobs,
		Registry:      strategy.NewDefaultRegistry(engine),
		Artifacts:     artifactStore,
		Auditor:       auditors,
		Notifier:      notifiers,
		Indexer:       indexer,
		Observability: obs,
		Clock:         clk,
	}, pipeline.Options{
		StageDelay:       config.GetDuration(cfg.Automation.StageDelay),
		Namespace:        cfg.Storage.Namespace,
		RegistrationFlow: cfg.Automation.RegistrationFlow,
	}, log)

	pool := pipeline.NewPool(context.Background(), cfg.Automation.PoolSize, cfg.Automation.QueueSize, log)
	service := pipeline.NewService(orch, pool, log)

	// --- Workers ---
	var workers *camunda.Workers
	if zeebe != nil {
		workers = camunda.NewWorkers(zeebe.Zeebe(), log)

		startCfg := config.GetWorkerConfig(cfg, sa.TaskType)
		workers.Start(sa.TaskType, startCfg, sa.NewHandler(sa.LoadConfig(startCfg), service, log).Handle)

		statusCfg := config.GetWorkerConfig(cfg, gas.TaskType)
		workers.Start(gas.TaskType, statusCfg, gas.NewHandler(gas.LoadConfig(statusCfg), service, log).Handle)
	}

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", nil)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := pg.Ping(checkCtx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "not ready", err)
			return
		}
		if zeebe != nil {
			if err := zeebe.HealthCheck(checkCtx); err != nil {
				writeStatus(w, http.StatusServiceUnavailable, "not ready", err)
				return
			}
		}
		writeStatus(w, http.StatusOK, "ready", nil)
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: cfg.Metrics.Address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if workers != nil {
		workers.Close()
	}
	if err := pool.Stop(shutdownCtx); err != nil {
		zapLog.Error("Automation jobs still running at shutdown", zap.Error(err))
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping Health/Metrics server", zap.Error(err))
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing telemetry", zap.Error(err))
	}

	zapLog.Info("Automation manager stopped gracefully")
}

// pingOrClose closes pg when it cannot reach the server, so a retry does
// not leak the previous pool.
func pingOrClose(ctx context.Context, pg *database.PostgresClient) error {
	if err := pg.Ping(ctx); err != nil {
		_ = pg.Close()
		return err
	}
	return nil
}

func writeStatus(w http.ResponseWriter, code int, status string, err error) {
	body := map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if err != nil {
		body["error"] = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
