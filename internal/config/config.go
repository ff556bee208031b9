package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds the environment-driven settings. Paths and the port
// come from CLI flags; everything here has a sensible default so the
// tool runs with no environment at all.
type Config struct {
	LogLevel  slog.Level
	LogFormat string // "text" or "json"
	LogFile   string // optional rotating log file, empty = stdout only

	DataFileName string // dataset JSON filename inside the output dir

	// Restart coordinator tuning.
	MonitorInterval time.Duration // sentinel poll interval
	ShutdownDelay   time.Duration // delay before tearing down the listener
}

// Load reads configuration from the environment, with a .env file in
// the working directory applied first when present. Environment
// variables already set take precedence over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		LogFormat:    getEnv("LOG_FORMAT", "text"),
		LogFile:      getEnv("LOG_FILE", ""),
		DataFileName: getEnv("DATA_FILE", "dataset_data.json"),
	}

	switch level := strings.ToLower(getEnv("LOG_LEVEL", "info")); level {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "info":
		cfg.LogLevel = slog.LevelInfo
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", level)
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	monitorSecs, err := getEnvInt("MONITOR_INTERVAL_SECONDS", 2)
	if err != nil {
		return nil, err
	}
	if monitorSecs <= 0 {
		return nil, fmt.Errorf("MONITOR_INTERVAL_SECONDS must be positive")
	}
	cfg.MonitorInterval = time.Duration(monitorSecs) * time.Second
	cfg.ShutdownDelay = time.Second

	return cfg, nil
}

// SetupLogging installs the process-wide slog default per the config.
// When LogFile is set, output also goes to a size-rotated file.
func (c *Config) SetupLogging() {
	var w io.Writer = os.Stdout
	if c.LogFile != "" {
		w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   c.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
		})
	}

	opts := &slog.HandlerOptions{Level: c.LogLevel}
	var handler slog.Handler
	if c.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
