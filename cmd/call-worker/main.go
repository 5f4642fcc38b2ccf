// cmd/call-worker/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"call-intake-workers/internal/analytics"
	"call-intake-workers/internal/common/aws"
	"call-intake-workers/internal/common/camunda"
	"call-intake-workers/internal/common/config"
	"call-intake-workers/internal/common/database"
	commonhttp "call-intake-workers/internal/common/http"
	"call-intake-workers/internal/common/logger"
	"call-intake-workers/internal/common/observability"
	"call-intake-workers/internal/common/phone"
	"call-intake-workers/internal/extraction"
	"call-intake-workers/internal/lock"
	"call-intake-workers/internal/models"
	"call-intake-workers/internal/notify"
	"call-intake-workers/internal/reconciler"
	"call-intake-workers/internal/store"

	pce "call-intake-workers/internal/workers/calls/process-call-event"
)

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

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting call worker...", zap.String("environment", cfg.App.Environment))

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	st, err := openStore(ctx, cfg, zapLog)
	if err != nil {
		zapLog.Fatal("store initialization failed", zap.Error(err))
	}
	defer st.Close()

	locker, redisClient, err := openLocker(ctx, cfg, log, zapLog)
	if err != nil {
		zapLog.Fatal("lock initialization failed", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	dispatcher, err := newDispatcher(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("notification setup failed", zap.Error(err))
	}

	rec := reconciler.New(
		reconciler.Config{
			CostPerMinute: cfg.Pricing.CostPerMinute,
			NotifyTimeout: config.GetDuration(cfg.Notifications.DispatchTimeout),
		},
		st,
		analytics.NewAggregator(st, log),
		dispatcher,
		locker,
		extraction.NewEngine(extraction.DefaultPatterns()),
		log,
	)
	handler := pce.NewHandler(pce.LoadConfig(cfg), rec, obs, log)

	var zeebe *camunda.Client
	var jobWorker *camunda.CamundaWorker
	if cfg.Camunda.Enabled && config.IsWorkerEnabled(cfg, pce.TaskType) {
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
				GatewayAddress:         cfg.Camunda.BrokerAddress,
				UsePlaintextConnection: true,
				ConnectionTimeout:      10 * time.Second,
				RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
			})
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")

		wcfg := config.GetWorkerConfig(cfg, pce.TaskType)
		jobWorker = camunda.NewWorker(zeebe.GetClient(), pce.TaskType, camunda.WorkerOptions{
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       config.GetDuration(wcfg.Timeout),
		}, handler, log)
		jobWorker.Start()
	} else {
		zapLog.Info("Zeebe transport disabled, serving webhook only")
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Server.WebhookPath, handler)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		rctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := st.Ping(rctx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
		if zeebe != nil {
			if err := zeebe.HealthCheck(rctx); err != nil {
				writeStatus(w, http.StatusServiceUnavailable, "broker unavailable")
				return
			}
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zapLog.Info("HTTP server listening",
			zap.String("addr", srv.Addr),
			zap.String("webhookPath", cfg.Server.WebhookPath),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	if jobWorker != nil {
		jobWorker.Stop(shutdownCtx)
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("Call worker stopped gracefully")
}

func openStore(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) (store.Store, error) {
	if cfg.Database.Driver == config.DriverMemory {
		mem := store.NewMemoryStore()
		for _, b := range cfg.Database.SeedBusinesses {
			mem.PutBusiness(models.Business{
				ID:                b.ID,
				Name:              b.Name,
				PhoneNumber:       phone.Normalize(b.PhoneNumber),
				OwnerPhone:        b.OwnerPhone,
				NotificationEmail: b.NotificationEmail,
				SlackWebhookURL:   b.SlackWebhookURL,
				IsActive:          true,
			})
		}
		zapLog.Info("Using in-memory store", zap.Int("seededBusinesses", len(cfg.Database.SeedBusinesses)))
		return mem, nil
	}

	var pg *database.PostgresClient
	err := retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(ctx, cfg.Database.Postgres, 5*time.Second)
		return err
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		return nil, err
	}
	zapLog.Info("PostgreSQL connected successfully")

	pgStore := store.NewPostgresStore(pg.DB)
	if cfg.Database.Postgres.AutoMigrate {
		if err := pgStore.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, err
		}
		zapLog.Info("Schema migrated")
	}
	return pgStore, nil
}

func openLocker(ctx context.Context, cfg *config.Config, log logger.Logger, zapLog *zap.Logger) (lock.Locker, *database.RedisClient, error) {
	if cfg.Lock.Backend != "redis" {
		zapLog.Info("Using in-process call lock")
		return lock.NewKeyedMutex(cfg.Lock.WaitDuration()), nil, nil
	}

	var rc *database.RedisClient
	err := retryWithBackoff(func() error {
		var err error
		rc, err = database.NewRedis(ctx, cfg.Database.Redis)
		return err
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		return nil, nil, err
	}
	zapLog.Info("Redis connected successfully")

	return lock.NewRedisLocker(rc.Client, lock.RedisConfig{
		TTL:  cfg.Lock.TTLDuration(),
		Wait: cfg.Lock.WaitDuration(),
	}, log), rc, nil
}

// newDispatcher only builds the senders for enabled channels so disabled ones stay nil.
func newDispatcher(ctx context.Context, cfg *config.Config, log logger.Logger) (*notify.Dispatcher, error) {
	n := cfg.Notifications
	var sms notify.SMSSender
	var email notify.EmailSender
	var slack notify.WebhookPoster

	if n.SMS.Enabled || n.Email.Enabled {
		awsCfg, err := aws.LoadConfig(ctx, n.AWS.Region)
		if err != nil {
			return nil, err
		}
		if n.SMS.Enabled {
			sms = aws.NewSNSClient(awsCfg, n.SMS.SenderID)
		}
		if n.Email.Enabled {
			email = aws.NewSESClient(awsCfg, n.Email.FromEmail)
		}
	}
	if n.Slack.Enabled {
		slack = commonhttp.NewClient(config.GetDuration(n.Slack.Timeout))
	}

	return notify.NewDispatcher(notify.Config{
		SMSEnabled:   n.SMS.Enabled,
		EmailEnabled: n.Email.Enabled,
		SlackEnabled: n.Slack.Enabled,
		Timeout:      config.GetDuration(n.DispatchTimeout),
	}, sms, email, slack, log), nil
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
