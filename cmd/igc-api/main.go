// Package main provides the igc-api server for uploading and querying flights.
//
// Uploaded logs are parsed with the configured options and stored in SQLite.
//
// Usage:
//
//	igc-api [options]
//
// Options:
//
//	-config FILE        YAML configuration file
//	-db PATH            SQLite database (default: storage.sqlite_path, env: IGC_SQLITE_PATH)
//	-port N             HTTP port (default: 8081, env: IGC_API_PORT)
//	-auth               Enable API key authentication
//	-api-keys KEYS      Comma-separated list of valid API keys (env: IGC_API_KEYS)
//
// API Endpoints:
//
//	GET  /api/v1/health
//	GET  /api/v1/stats
//	GET  /api/v1/flights?pilot=&glider=&from=&to=&limit=&offset=&order=desc
//	POST /api/v1/flights                    body: IGC log (plain, gzip or zstd)
//	GET  /api/v1/flights/{id}
//	GET  /api/v1/flights/{id}/metadata
//	GET  /api/v1/flights/{id}/turnpoints?radius=M
//	GET  /api/v1/flights/{id}/geojson
//	GET  /api/v1/flights/{id}/kml
//
// Authentication:
//
//	When -auth is enabled, requests must include an API key via:
//	  - X-API-Key header
//	  - Authorization: Bearer <key> header
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"igc_parser/internal/api"
	"igc_parser/internal/config"
	"igc_parser/internal/logging"
	"igc_parser/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")

	// API server flags.
	port := flag.Int("port", envOrDefaultInt("IGC_API_PORT", 8081), "HTTP port for API server")
	authEnabled := flag.Bool("auth", false, "Enable API key authentication")
	apiKeys := flag.String("api-keys", os.Getenv("IGC_API_KEYS"), "Comma-separated list of valid API keys (when auth enabled)")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	log, closer, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	opts, err := cfg.ParseOptions(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid parse options: %v\n", err)
		os.Exit(1)
	}

	path := cfg.Storage.SQLitePath
	if *dbPath != "" {
		path = *dbPath
	}
	db, err := storage.OpenSQLite(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening SQLite: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()
	log.Info("flight store opened", slog.String("path", path))

	// Parse API keys.
	var keys []string
	if *apiKeys != "" {
		keys = strings.Split(*apiKeys, ",")
		for i := range keys {
			keys[i] = strings.TrimSpace(keys[i])
		}
	}

	server := api.NewFlightServer(db, api.Config{
		Port:        *port,
		AuthEnabled: *authEnabled,
		APIKeys:     keys,
		Parse:       opts,
		Logger:      log,
	})

	if err := server.Run(); err != nil {
		log.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
