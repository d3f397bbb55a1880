// techbridge polls the Tech Controllers eMODUL cloud and bridges zone and
// tile state onto MQTT, with an optional local status API and InfluxDB
// history recording.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/daroga0002/tech-controllers/internal/api"
	"github.com/daroga0002/tech-controllers/internal/assets"
	emodulbridge "github.com/daroga0002/tech-controllers/internal/bridges/emodul"
	"github.com/daroga0002/tech-controllers/internal/coordinator"
	"github.com/daroga0002/tech-controllers/internal/emodul"
	"github.com/daroga0002/tech-controllers/internal/history"
	"github.com/daroga0002/tech-controllers/internal/infrastructure/config"
	"github.com/daroga0002/tech-controllers/internal/infrastructure/database"
	"github.com/daroga0002/tech-controllers/internal/infrastructure/logging"
	"github.com/daroga0002/tech-controllers/internal/infrastructure/mqtt"
	"github.com/daroga0002/tech-controllers/internal/session"
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
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting techbridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open database
	db, err := database.Open(ctx, database.Config{
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

	sessions, err := session.NewStore(ctx, db.DB)
	if err != nil {
		return fmt.Errorf("initialising session store: %w", err)
	}

	// Establish the eMODUL session: reuse a stored one, or authenticate
	// fresh and persist it.
	client, err := connectEModul(ctx, cfg, sessions, log)
	if err != nil {
		return fmt.Errorf("connecting to eMODUL: %w", err)
	}

	// Discover modules from the account when none are configured
	modules := cfg.EModul.Modules
	if len(modules) == 0 {
		discovered, listErr := client.ListModules(ctx)
		if listErr != nil {
			return fmt.Errorf("discovering modules: %w", listErr)
		}
		for _, m := range discovered {
			modules = append(modules, config.ModuleConfig{UDID: m.UDID, Name: m.Name})
		}
		log.Info("discovered modules", "count", len(modules))
	}
	if len(modules) == 0 {
		return errors.New("no modules configured or discovered")
	}

	// Translation pack for tile names; a failure here only degrades names
	translations := assets.NewTranslationManager()
	if loadErr := translations.Load(ctx, cfg.EModul.Language, client); loadErr != nil {
		log.Warn("loading translations failed, using fallback names", "error", loadErr)
	}

	coordModules := make([]coordinator.Module, 0, len(modules))
	for _, m := range modules {
		coordModules = append(coordModules, coordinator.Module{UDID: m.UDID, Name: m.Name})
	}

	coord := coordinator.New(client, sessions, coordinator.Config{
		Modules:  coordModules,
		Interval: cfg.PollInterval(),
		Username: cfg.EModul.Username,
		Password: cfg.EModul.Password,
	}, log)

	// MQTT bridge (optional)
	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		bridge, bridgeErr := emodulbridge.New(emodulbridge.Options{
			MQTT:         mqttClient,
			Commands:     client,
			Translations: translations,
			QoS:          byte(cfg.MQTT.QoS),
			Logger:       log.With("component", "bridge"),
		})
		if bridgeErr != nil {
			return fmt.Errorf("creating bridge: %w", bridgeErr)
		}
		if startErr := bridge.Start(); startErr != nil {
			return fmt.Errorf("starting bridge: %w", startErr)
		}
		coord.AddListener(bridge)
	} else {
		log.Info("MQTT disabled")
	}

	// InfluxDB history (optional)
	if cfg.InfluxDB.Enabled {
		recorder, influxErr := history.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := recorder.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		recorder.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
		coord.AddListener(historyListener{recorder: recorder})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Status API (optional)
	if cfg.API.Enabled {
		server, apiErr := api.New(api.Deps{
			Config:  cfg.API,
			Logger:  log,
			Client:  client,
			Modules: modules,
			Version: version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := server.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := server.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	} else {
		log.Info("API disabled")
	}

	coord.Start(ctx)
	defer func() {
		log.Info("stopping coordinator")
		coord.Close()
	}()

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// connectEModul restores a stored session or authenticates fresh.
//
// A stored token is used without validation; if it has expired, the
// coordinator's first refresh triggers re-authentication.
func connectEModul(ctx context.Context, cfg *config.Config, sessions *session.Store, log *logging.Logger) (*emodul.Client, error) {
	clientCfg := emodul.Config{
		BaseURL: cfg.EModul.BaseURL,
		Timeout: cfg.RequestTimeout(),
	}

	stored, err := sessions.Load(ctx, cfg.EModul.Username)
	if err == nil {
		log.Info("restored stored session", "user_id", stored.UserID)
		client := emodul.NewWithSession(clientCfg, stored.UserID, stored.Token)
		client.SetLogger(log.With("component", "emodul"))
		return client, nil
	}
	if !errors.Is(err, session.ErrNoSession) {
		return nil, fmt.Errorf("loading stored session: %w", err)
	}

	client := emodul.New(clientCfg)
	client.SetLogger(log.With("component", "emodul"))

	if err := client.Authenticate(ctx, cfg.EModul.Username, cfg.EModul.Password); err != nil {
		return nil, err
	}
	log.Info("authenticated", "user_id", client.UserID())

	if err := sessions.Save(ctx, &session.Session{
		Username: cfg.EModul.Username,
		UserID:   client.UserID(),
		Token:    client.Token(),
	}); err != nil {
		log.Warn("persisting session failed", "error", err)
	}

	return client, nil
}

// historyListener adapts the history recorder to the coordinator's
// listener interface.
type historyListener struct {
	recorder *history.Recorder
}

func (h historyListener) OnModuleUpdate(_ context.Context, udid string, state emodul.ModuleState) {
	h.recorder.RecordModule(udid, state)
}

func (h historyListener) OnModuleError(context.Context, string, error) {}

// getConfigPath returns the configuration file path.
// Uses TECHBRIDGE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("TECHBRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
