package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hydrometrics/ehsn-measurements-etl/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// UTCOffset is the default station offset used when the station
	// directory is disabled or cannot resolve a station.
	UTCOffset time.Duration

	// Station directory configuration.
	StationAPIURL     string
	StationAPIToken   string
	StationAPIEnabled bool
	StationAPITimeout time.Duration
	StationCacheSize  int
}

const maxBatchSize = 1000

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	flushInterval, err := parseDurationEnv("BATCH_FLUSH_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}

	stationTimeout, err := parseDurationEnv("STATION_API_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	batchSize, err := parseBatchSize()
	if err != nil {
		return nil, err
	}

	offset, err := domain.ParseUTCOffset(envOrDefault("UTC_OFFSET", "-06:00"))
	if err != nil {
		return nil, fmt.Errorf("UTC_OFFSET: %w", err)
	}

	stationURL := os.Getenv("STATION_API_URL")
	stationEnabled := stationURL != ""
	if v := os.Getenv("STATION_API_ENABLED"); v != "" {
		stationEnabled = v == "true"
	}

	cfg := &Config{
		KafkaBrokers:       parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   envOrDefault("KAFKA_SOURCE_TOPIC", "raw-field-visits"),
		KafkaSinkTopic:     envOrDefault("KAFKA_SINK_TOPIC", "visit-measurements"),
		KafkaGroupID:       envOrDefault("KAFKA_GROUP_ID", "ehsn-measurements-etl"),
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
		UTCOffset:          offset,

		StationAPIURL:     stationURL,
		StationAPIToken:   os.Getenv("STATION_API_TOKEN"),
		StationAPIEnabled: stationEnabled,
		StationAPITimeout: stationTimeout,
		StationCacheSize:  parseStationCacheSize(),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.StationAPIEnabled && cfg.StationAPIURL == "" {
		return nil, errors.New("STATION_API_ENABLED is true but STATION_API_URL is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseBrokers splits a comma-separated broker list, dropping empty entries.
func parseBrokers(value string) []string {
	parts := strings.Split(value, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return d, nil
}

func parseBatchSize() (int, error) {
	s := os.Getenv("BATCH_SIZE")
	if s == "" {
		return 50, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxBatchSize {
		return 0, fmt.Errorf("invalid BATCH_SIZE %q, want 1-%d", s, maxBatchSize)
	}
	return n, nil
}

func parseStationCacheSize() int {
	if s := os.Getenv("STATION_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
