package appServer

import (
	"context"
	"crypto/tls"
	"database/sql"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/ds124wfegd/showcaller/config"
	repository "github.com/ds124wfegd/showcaller/internal/database/postgres"
	cache "github.com/ds124wfegd/showcaller/internal/database/redis"
	"github.com/ds124wfegd/showcaller/internal/duecheck"
	"github.com/ds124wfegd/showcaller/internal/entity"
	"github.com/ds124wfegd/showcaller/internal/notify"
	"github.com/ds124wfegd/showcaller/internal/permission"
	"github.com/ds124wfegd/showcaller/internal/service"
	"github.com/ds124wfegd/showcaller/internal/transport"
	"github.com/ds124wfegd/showcaller/internal/worker"

	"github.com/ds124wfegd/showcaller/pkg/kafka"
	"github.com/ds124wfegd/showcaller/pkg/postgres"
	"github.com/ds124wfegd/showcaller/pkg/rabbitMQ"
	"github.com/ds124wfegd/showcaller/pkg/redis"
	"github.com/ds124wfegd/showcaller/pkg/retry"
	"github.com/ds124wfegd/showcaller/pkg/telegram"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	startupTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
	retryBaseDelay  = 500 * time.Millisecond
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logLevel(cfg.Server.Env))

	startCtx, startCancel := context.WithTimeout(context.Background(), startupTimeout)
	defer startCancel()

	// Initialize database
	db, err := postgres.NewPostgresDB(startCtx, &cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(startCtx, db, entity.DefaultGroupNames); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories and the alert snapshot
	showRepo := repository.NewShowRepository(db)
	callRepo := repository.NewCallRepository(db)
	groupRepo := repository.NewGroupRepository(db)

	snapshots := service.NewSnapshotStore(showRepo, callRepo, groupRepo)
	if err := snapshots.Refresh(startCtx); err != nil {
		logrus.Errorf("Initial snapshot load failed, alerts wait for the next refresh: %v", err)
	}

	services := service.NewServices(showRepo, callRepo, groupRepo, snapshots)

	checks := map[string]transport.HealthFunc{
		"postgres": func() error { return pingDB(db) },
	}

	// Notified set, Redis-backed when persistence is on
	var notified duecheck.NotifiedSet = duecheck.NewMemoryNotifiedSet()
	if cfg.Notify.PersistNotified {
		redisClient, err := redis.NewRedisClient(startCtx, &cfg.Redis)
		if err != nil {
			logrus.Errorf("Redis unavailable, notified calls are kept in memory: %v", err)
		} else {
			defer redisClient.Close()

			set := cache.NewNotifiedSet(redisClient, cache.DefaultNotifiedKey, cfg.Notify.NotifiedTTL)
			if n, err := set.Warm(startCtx); err != nil {
				logrus.Warnf("Could not load notified calls: %v", err)
			} else {
				logrus.Infof("Loaded %d notified calls from Redis", n)
			}
			notified = set
			checks["redis"] = func() error {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				return redisClient.Ping(ctx).Err()
			}
		}
	}

	// Native channel and permission gate
	var bot *telegram.Bot
	if cfg.Telegram.Enabled {
		bot = telegram.NewBot(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	}
	gate := permission.NewGate(permission.FromProber(bot))
	if gate.IsPlatformNotificationCapable() {
		logrus.Info("Telegram channel configured, requesting permission")
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Notify.NativeTimeout)
			defer cancel()
			if _, err := gate.RequestPermission(ctx); err != nil {
				logrus.Warnf("Permission request failed, can be retried over HTTP: %v", err)
			}
		}()
	} else {
		logrus.Warn("No native channel, alerts fall back to in-app banners")
	}

	// Dispatcher
	banners := notify.NewBannerBoard(cfg.Notify.BannerTTL)
	defer banners.Close()

	opts := notify.Options{
		Gate:          gate,
		Banners:       banners,
		Audio:         newPlayer(cfg.Notify.Audio, os.Stderr),
		NativeTimeout: cfg.Notify.NativeTimeout,
		Retry:         retry.NewManager(cfg.Notify.NativeRetries, retryBaseDelay),
	}
	if bot != nil {
		opts.Native = bot
	}
	dispatcher := notify.NewDispatcher(opts)

	// Fired-call fan-out
	var brokers []notify.Broker
	for _, name := range parseBrokers(cfg.Notify.Broker) {
		switch name {
		case "rabbitmq":
			rabbit, err := rabbitMQ.NewRabbitMQ(rabbitMQ.RabbitMQConfig{
				URL:       cfg.Rabbit.AMQPURL(),
				QueueName: cfg.Rabbit.QueueName,
			})
			if err != nil {
				logrus.Errorf("Failed to initialize RabbitMQ: %v. Continuing without it...", err)
				continue
			}
			defer rabbit.Close()
			brokers = append(brokers, rabbit)
			checks["rabbitmq"] = rabbit.HealthCheck
		case "kafka":
			producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
			defer producer.Close()
			brokers = append(brokers, producer)
		default:
			logrus.Warnf("Unknown broker %q ignored", name)
		}
	}

	var publisher duecheck.Publisher
	if fanOut := notify.NewFanOut(brokers...); fanOut.Len() > 0 {
		publisher = fanOut
	}

	// Scheduler and workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	alerts := duecheck.New(duecheck.Options{
		Snapshots:  snapshots,
		Dispatcher: dispatcher,
		Notified:   notified,
		Publisher:  publisher,
		Interval:   cfg.Scheduler.AlertInterval,
		Tolerance:  cfg.Scheduler.Tolerance,
	})
	alerts.Start(ctx)
	logrus.Info("Call alert scheduler started")

	countdowns := worker.NewCountdownWorker(snapshots, notified, cfg.Scheduler.CountdownInterval)
	snapshotWorker := worker.NewSnapshotWorker(snapshots, cfg.Scheduler.SnapshotRefresh)

	var workers sync.WaitGroup
	workers.Add(2)
	go func() {
		defer workers.Done()
		countdowns.Start(ctx)
	}()
	go func() {
		defer workers.Done()
		snapshotWorker.Start(ctx)
	}()

	// Initialize handlers
	handlers := &transport.Handlers{
		Shows:  transport.NewShowHandler(services),
		Calls:  transport.NewCallHandler(services.Calls),
		Groups: transport.NewGroupHandler(services.Groups),
		Alerts: transport.NewAlertHandler(banners, countdowns, gate),
	}

	if cfg.Server.Env == "production" || cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		router := transport.InitRoutes(handlers, cfg.Server.Timeout, transport.Health{
			Checks: checks,
			Workers: map[string]transport.StatsFunc{
				"countdown": countdowns.GetStats,
				"snapshot":  snapshotWorker.GetStats,
			},
		})
		if err := srv.Run(cfg, router); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}

	cancel()
	alerts.Stop()
	workers.Wait()
	dispatcher.Wait()
}

func pingDB(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

func logLevel(env string) logrus.Level {
	if env == "development" {
		return logrus.DebugLevel
	}
	return logrus.InfoLevel
}

// parseBrokers reads "rabbitmq", "kafka", "rabbitmq,kafka" or "none".
func parseBrokers(value string) []string {
	var names []string
	for _, name := range strings.Split(value, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || name == "none" {
			continue
		}
		names = append(names, name)
	}
	return names
}

func newPlayer(mode string, out io.Writer) notify.Player {
	if strings.EqualFold(mode, "bell") {
		return notify.NewBellPlayer(out)
	}
	return notify.SilentPlayer{}
}
