package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaDLQTopic    string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	// Output directory for the generated .WTH files.
	OutputDir string

	// Batch extraction and flush tuning.
	BatchSize          int
	FlushInterval      time.Duration
	MaxAccumulatedRows int

	// ColumnMapping translates collector value keys to canonical weather
	// variable codes at build time. Empty means keys are already canonical.
	ColumnMapping map[string]string

	// SimulationStart optionally truncates every station's records before
	// writing. Nil disables truncation.
	SimulationStart *time.Time
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	flushInterval, err := parseDuration("FLUSH_INTERVAL", "30s")
	if err != nil {
		return nil, err
	}
	batchSize, err := parseInt("BATCH_SIZE", 50)
	if err != nil {
		return nil, err
	}
	maxRows, err := parseInt("MAX_ACCUMULATED_ROWS", 20000)
	if err != nil {
		return nil, err
	}
	mapping, err := parseColumnMapping(os.Getenv("COLUMN_MAPPING"))
	if err != nil {
		return nil, err
	}
	simStart, err := parseSimulationStart(os.Getenv("SIM_START"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   envOrDefault("KAFKA_SOURCE_TOPIC", "raw-daily-observations"),
		KafkaDLQTopic:      envOrDefault("KAFKA_DLQ_TOPIC", "rejected-weather-datasets"),
		KafkaGroupID:       envOrDefault("KAFKA_GROUP_ID", "dssat-weather-etl"),
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		OutputDir:          envOrDefault("OUTPUT_DIR", "weather"),
		BatchSize:          batchSize,
		FlushInterval:      flushInterval,
		MaxAccumulatedRows: maxRows,
		ColumnMapping:      mapping,
		SimulationStart:    simStart,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("OUTPUT_DIR is required")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

// parseColumnMapping parses "src=DST,src2=DST2" pairs.
func parseColumnMapping(s string) (map[string]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	mapping := map[string]string{}
	for _, pair := range strings.Split(s, ",") {
		src, dst, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || src == "" || dst == "" {
			return nil, fmt.Errorf("invalid COLUMN_MAPPING entry %q", pair)
		}
		mapping[src] = dst
	}
	return mapping, nil
}

func parseSimulationStart(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, errors.New("invalid SIM_START, want YYYY-MM-DD")
	}
	return &t, nil
}
