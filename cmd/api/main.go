package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"outage-pulse/pkg/analytics"
	"outage-pulse/pkg/config"
	"outage-pulse/pkg/metrics"
	"outage-pulse/pkg/outage"
	"outage-pulse/pkg/repositories"
	"outage-pulse/pkg/types"
)

// Options contains command-line configuration options for the API server.
type Options struct {
	ConfigPath  string
	Port        string
	DatabaseDSN string
	CORSOrigin  string
}

// NewOptions parses command-line flags and returns a new Options instance.
func NewOptions() *Options {
	opts := &Options{}

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to config file")
	flag.StringVar(&opts.Port, "port", "8080", "Port to listen on")
	flag.StringVar(&opts.DatabaseDSN, "dsn", "", "PostgreSQL DSN connection string")
	flag.StringVar(&opts.CORSOrigin, "cors-origin", "*", "Allowed CORS origin (use '*' for all origins)")
	flag.Parse()

	return opts
}

// Validate checks that all required options are provided and valid.
func (o *Options) Validate() error {
	if o.ConfigPath == "" {
		return errors.New("config path is required (use --config flag)")
	}

	if _, err := os.Stat(o.ConfigPath); os.IsNotExist(err) {
		return errors.New("config file does not exist: " + o.ConfigPath)
	}

	if o.Port == "" {
		return errors.New("port cannot be empty")
	}

	if o.DatabaseDSN == "" {
		return errors.New("database DSN is required (use --dsn flag)")
	}

	return nil
}

func setupLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.InfoLevel)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return log
}

func loadAppConfig(path string) (*types.AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg types.AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	withDefaults := cfg.WithDefaults()
	return &withDefaults, nil
}

// connectDatabase connects to PostgreSQL, retrying with capped exponential
// backoff. The process must not crash while the store is still coming up.
func connectDatabase(log *logrus.Logger, dsn string) *gorm.DB {
	const maxBackoff = 30 * time.Second
	backoff := time.Second

	log.Info("Connecting to PostgreSQL database")
	for {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err == nil {
			return db
		}

		log.WithFields(logrus.Fields{
			"error":   err,
			"backoff": backoff,
		}).Warn("Failed to connect to database, retrying")

		time.Sleep(backoff)
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func main() {
	log := setupLogger()
	opts := NewOptions()

	if err := opts.Validate(); err != nil {
		log.WithField("error", err).Fatal("Invalid command-line options")
	}

	configManager, err := config.NewManager(opts.ConfigPath, loadAppConfig, log, config.DefaultDebounceDelay)
	if err != nil {
		log.WithFields(logrus.Fields{
			"config_path": opts.ConfigPath,
			"error":       err,
		}).Fatal("Failed to load config file")
	}
	defer configManager.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := configManager.Watch(ctx); err != nil {
		log.WithField("error", err).Fatal("Failed to watch config file")
	}

	db := connectDatabase(log, opts.DatabaseDSN)

	outageRepo := repositories.NewGORMOutageRepository(db)
	threadRepo := repositories.NewGORMSlackThreadRepository(db)

	var slackReporter *outage.SlackReporter
	if token := os.Getenv("SLACK_TOKEN"); token != "" {
		slackReporter = outage.NewSlackReporter(slack.New(token), threadRepo, configManager, log)
		log.Info("Slack reporting enabled")
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	manager := outage.NewManager(outageRepo, slackReporter, clockwork.NewRealClock(), collector, log)
	engine := analytics.NewEngine(outageRepo, log)

	server := NewServer(log, configManager, manager, engine, collector, registry, opts.CORSOrigin)

	addr := ":" + opts.Port
	go func() {
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.WithFields(logrus.Fields{
				"address": addr,
				"error":   err,
			}).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.WithField("error", err).Error("Graceful shutdown failed")
	}
}
