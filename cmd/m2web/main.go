// m2web - Talk2M M2Web command-line client
//
// This is the main entry point for the m2web CLI. It drives the typed
// M2Web API client to list and inspect the account's eWON devices, keeps
// a local SQLite snapshot of the device inventory, and can export device
// status to InfluxDB.
//
// Verbs:
//   - list:   print the account's device listing (optionally filtered by pool)
//   - get:    print one device, looked up by name or numeric ID
//   - sync:   refresh the local inventory snapshot from the API
//   - export: write the current listing to InfluxDB as status points
//   - login-check: verify the configured credentials by opening a session
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/graylink/go-m2web/internal/infrastructure/config"
	"github.com/graylink/go-m2web/internal/infrastructure/logging"
	"github.com/graylink/go-m2web/internal/inventory"
	"github.com/graylink/go-m2web/internal/statusexport"
	"github.com/graylink/go-m2web/m2web"
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
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context, args []string) error {
	// Pick up Talk2M credentials from a local .env file when present.
	// A missing file is fine; env overrides still apply.
	_ = godotenv.Load()

	fs := flag.NewFlagSet("m2web", flag.ContinueOnError)
	configPath := fs.String("config", getConfigPath(), "path to the YAML configuration file")
	pool := fs.String("pool", "", "restrict listings to devices in this Talk2M pool")
	cached := fs.Bool("cached", false, "answer list/get from the local inventory snapshot")
	if err := fs.Parse(args); err != nil {
		return err
	}

	verb := fs.Arg(0)
	if verb == "" {
		verb = "list"
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logging.New(cfg.Logging, version)
	log.Debug("starting m2web",
		"version", version,
		"commit", commit,
		"build_date", date,
		"verb", verb,
	)

	switch verb {
	case "list":
		return runList(ctx, cfg, log, *pool, *cached)
	case "get":
		return runGet(ctx, cfg, log, fs.Arg(1), *cached)
	case "sync":
		return runSync(ctx, cfg, log, *pool)
	case "export":
		return runExport(ctx, cfg, log, *pool)
	case "login-check":
		return runLoginCheck(ctx, cfg, log)
	case "version":
		fmt.Printf("m2web %s (commit %s, built %s)\n", version, commit, date)
		return nil
	default:
		return fmt.Errorf("unknown verb %q (want list, get, sync, export, login-check or version)", verb)
	}
}

// getConfigPath returns the configuration file path.
// Uses M2WEB_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("M2WEB_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// newClient builds the API client from config. In stateful mode the caller
// must Login before the device operations and Logout when done.
func newClient(cfg *config.Config) *m2web.Client {
	return m2web.New(m2web.Config{
		BaseURL:      cfg.API.BaseURL,
		Account:      cfg.API.Account,
		Username:     cfg.API.Username,
		Password:     cfg.API.Password,
		DeveloperID:  cfg.API.DeveloperID,
		StatefulAuth: cfg.API.StatefulAuth,
	}, nil)
}

// withSession runs fn against a ready-to-use client, opening and closing a
// session around it when stateful auth is configured.
func withSession(ctx context.Context, cfg *config.Config, log *logging.Logger, fn func(*m2web.Client) error) error {
	client := newClient(cfg)

	if cfg.API.StatefulAuth {
		if _, err := client.Login(ctx); err != nil {
			return fmt.Errorf("opening session: %w", err)
		}
		log.Debug("session opened")
		defer func() {
			if logoutErr := client.Logout(ctx); logoutErr != nil {
				log.Warn("closing session failed", "error", logoutErr)
			}
		}()
	}

	return fn(client)
}

// runList prints the device listing as JSON, from the API or the local cache.
func runList(ctx context.Context, cfg *config.Config, log *logging.Logger, pool string, cached bool) error {
	if cached {
		devices, err := cachedDevices(ctx, cfg, log)
		if err != nil {
			return err
		}
		return printJSON(devices)
	}

	return withSession(ctx, cfg, log, func(client *m2web.Client) error {
		devices, err := client.Devices(ctx, pool)
		if err != nil {
			return fmt.Errorf("listing devices: %w", err)
		}
		log.Debug("devices fetched", "count", len(devices))
		return printJSON(devices)
	})
}

// runGet prints a single device. The key is tried as a numeric ID first,
// then as a device name.
func runGet(ctx context.Context, cfg *config.Config, log *logging.Logger, key string, cached bool) error {
	if key == "" {
		return errors.New("get: device name or ID required")
	}

	if cached {
		devices, err := cachedDevices(ctx, cfg, log)
		if err != nil {
			return err
		}
		for _, dev := range devices {
			if dev.Name == key || strconv.FormatUint(uint64(dev.ID), 10) == key {
				return printJSON(dev)
			}
		}
		return fmt.Errorf("get: device %q not in the local snapshot, run sync first", key)
	}

	return withSession(ctx, cfg, log, func(client *m2web.Client) error {
		var (
			dev m2web.Device
			err error
		)
		if id, parseErr := strconv.ParseUint(key, 10, 32); parseErr == nil {
			dev, err = client.DeviceByID(ctx, uint32(id))
		} else {
			dev, err = client.DeviceByName(ctx, key)
		}
		if err != nil {
			return fmt.Errorf("fetching device %q: %w", key, err)
		}
		return printJSON(dev)
	})
}

// runSync refreshes the local inventory snapshot from the API.
func runSync(ctx context.Context, cfg *config.Config, log *logging.Logger, pool string) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Error("closing inventory store", "error", closeErr)
		}
	}()

	return withSession(ctx, cfg, log, func(client *m2web.Client) error {
		devices, err := client.Devices(ctx, pool)
		if err != nil {
			// An account with no devices still produces a valid empty snapshot.
			var apiErr *m2web.Error
			if errors.As(err, &apiErr) && apiErr.Kind == m2web.KindNoContent {
				devices = nil
			} else {
				return fmt.Errorf("listing devices: %w", err)
			}
		}

		if err := store.Replace(ctx, devices); err != nil {
			return fmt.Errorf("storing snapshot: %w", err)
		}
		log.Info("inventory synced", "devices", len(devices), "path", cfg.Inventory.Path)
		return nil
	})
}

// runExport writes the current listing to InfluxDB as device status points.
func runExport(ctx context.Context, cfg *config.Config, log *logging.Logger, pool string) error {
	exporter, err := statusexport.Connect(cfg.Metrics)
	if err != nil {
		if errors.Is(err, statusexport.ErrDisabled) {
			return errors.New("export: metrics are disabled in config, enable metrics.enabled first")
		}
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	}
	defer func() {
		if closeErr := exporter.Close(); closeErr != nil {
			log.Error("closing InfluxDB connection", "error", closeErr)
		}
	}()
	exporter.SetOnError(func(err error) {
		log.Error("InfluxDB write error", "error", err)
	})

	return withSession(ctx, cfg, log, func(client *m2web.Client) error {
		devices, err := client.Devices(ctx, pool)
		if err != nil {
			return fmt.Errorf("listing devices: %w", err)
		}

		exporter.WriteListing(devices)
		exporter.Flush()
		log.Info("device status exported", "devices", len(devices), "bucket", cfg.Metrics.Bucket)
		return nil
	})
}

// runLoginCheck verifies the configured credentials by opening and closing
// a session.
func runLoginCheck(ctx context.Context, cfg *config.Config, log *logging.Logger) error {
	if !cfg.API.StatefulAuth {
		return errors.New("login-check: requires api.stateful_auth, stateless clients carry credentials on every request")
	}

	client := newClient(cfg)
	if _, err := client.Login(ctx); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	log.Debug("session opened")

	if err := client.Logout(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	fmt.Println("credentials OK")
	return nil
}

// cachedDevices answers a listing from the local inventory snapshot.
func cachedDevices(ctx context.Context, cfg *config.Config, log *logging.Logger) ([]m2web.Device, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Error("closing inventory store", "error", closeErr)
		}
	}()

	devices, err := store.Devices(ctx)
	if err != nil {
		if errors.Is(err, inventory.ErrEmpty) {
			return nil, errors.New("local snapshot is empty, run sync first")
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	synced, err := store.LastSync(ctx)
	if err == nil {
		log.Debug("serving cached listing", "devices", len(devices), "synced_at", synced)
	}
	return devices, nil
}

// openStore opens the local inventory database from config.
func openStore(cfg *config.Config) (*inventory.Store, error) {
	store, err := inventory.Open(inventory.Config{
		Path:        cfg.Inventory.Path,
		WALMode:     cfg.Inventory.WALMode,
		BusyTimeout: cfg.Inventory.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening inventory: %w", err)
	}
	return store, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
