// BioCore - Bioprocess Device Management Backend
//
// This is the main entry point for the BioCore application. BioCore
// manages a fleet of lab devices (bioreactors, incubators, sensors)
// through a single polymorphic entity store, ingests telemetry over
// MQTT into an append-only reading log, and serves summary analytics
// over the stored history.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/fermwerk/biocore/migrations"

	"github.com/fermwerk/biocore/internal/analytics"
	"github.com/fermwerk/biocore/internal/entity"
	"github.com/fermwerk/biocore/internal/infrastructure/config"
	"github.com/fermwerk/biocore/internal/infrastructure/database"
	"github.com/fermwerk/biocore/internal/infrastructure/influxdb"
	"github.com/fermwerk/biocore/internal/infrastructure/logging"
	"github.com/fermwerk/biocore/internal/infrastructure/mqtt"
	"github.com/fermwerk/biocore/internal/ingest"
	"github.com/fermwerk/biocore/internal/reading"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting BioCore",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Entity store backs both the device registry and the referential
	// check at reading ingestion.
	entityRepo := entity.NewSQLiteRepository(db.DB)
	entityStore := entity.NewStore(entityRepo)
	entityStore.SetLogger(log)

	// Reading log with the validation policy from configuration.
	validator := reading.NewValidator(cfg.ReadingPolicy())
	readingRepo := reading.NewSQLiteRepository(db.DB)
	readingLog := reading.NewLog(readingRepo, validator, entityStore)
	readingLog.SetLogger(log)

	// Analytics engine over the reading log.
	engine := analytics.NewEngine(readingLog, analytics.Config{
		ExpectedHourlyReadings: cfg.Analytics.ExpectedHourlyReadings,
		StableSlopeThreshold:   cfg.Analytics.StableSlopeThreshold,
	})
	// Mark engine as used (will be exposed via the REST API in M2)
	_ = engine

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	} else {
		log.Info("MQTT disabled, telemetry ingestion off")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Start telemetry ingestion (requires MQTT)
	if mqttClient != nil {
		// Assign through the interface only when the client exists, so a
		// disabled mirror stays a nil interface inside the service.
		var mirror ingest.Mirror
		if influxClient != nil {
			mirror = influxClient
		}

		svc := ingest.New(readingLog, mqttClient, mirror, byte(cfg.MQTT.QoS))
		svc.SetLogger(log)
		if startErr := svc.Start(ctx); startErr != nil {
			return fmt.Errorf("starting ingest service: %w", startErr)
		}
		defer func() {
			log.Info("stopping ingest service")
			if stopErr := svc.Stop(); stopErr != nil {
				log.Error("error stopping ingest service", "error", stopErr)
			}
		}()
		log.Info("ingest service started", "topic", mqtt.Topics{}.AllTelemetryReadings())
	}

	// Start retention pruner (optional)
	if cfg.Retention.Enabled {
		go runRetention(ctx, cfg, readingLog, log)
		log.Info("retention pruner started",
			"max_age_days", cfg.Retention.MaxAgeDays,
			"interval_minutes", cfg.Retention.IntervalMinutes,
		)
	}

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. Ingest service
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("BioCore stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses BIOCORE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("BIOCORE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// runRetention periodically prunes readings older than the configured
// maximum age. Runs until the context is cancelled.
func runRetention(ctx context.Context, cfg *config.Config, readingLog *reading.Log, log *logging.Logger) {
	interval := cfg.RetentionInterval()
	maxAge := cfg.RetentionMaxAge()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-maxAge)
			deleted, err := readingLog.PruneBefore(ctx, cutoff)
			if err != nil {
				log.Error("retention prune failed", "error", err)
				continue
			}
			if deleted > 0 {
				log.Info("retention prune complete",
					"deleted", deleted,
					"cutoff", cutoff.Format(time.RFC3339),
				)
			}
		}
	}
}

// healthCheck verifies all infrastructure connections are healthy.
// mqttClient and influxClient may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
