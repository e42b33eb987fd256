package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Artifact formats.
const (
	FormatJS   = "js"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config holds all job settings, populated from environment variables.
type Config struct {
	// Upstream feeds.
	GeoJSONURL       string
	WorldBankBaseURL string
	EONETURL         string
	USGSFeedURL      string

	// World Bank indicator fetching.
	IndicatorTimeout  time.Duration
	IndicatorDelay    time.Duration
	IndicatorPageSize int

	// Timeout for the boundary and event feed requests.
	FetchTimeout time.Duration

	// How long scheduled mode reuses a downloaded boundary file. Zero
	// downloads it on every run.
	BoundaryCacheTTL time.Duration

	ArtifactPath   string
	ArtifactFormat string

	LogLevel  string
	LogFormat string

	// Scheduled mode. Zero RefreshInterval runs the job once.
	RefreshInterval time.Duration
	HTTPAddr        string
	ShutdownTimeout time.Duration
	MetricsTextfile string

	// Optional Kafka publication of country records.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	indicatorTimeout, err := parsePositiveDuration("INDICATOR_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := parsePositiveDuration("FETCH_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	indicatorDelay, err := parseNonNegativeDuration("INDICATOR_DELAY", "1s")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parseNonNegativeDuration("REFRESH_INTERVAL", "0s")
	if err != nil {
		return nil, err
	}
	boundaryCacheTTL, err := parseNonNegativeDuration("BOUNDARY_CACHE_TTL", "24h")
	if err != nil {
		return nil, err
	}
	pageSize, err := parsePageSize()
	if err != nil {
		return nil, err
	}

	artifactPath := sharedcfg.EnvOrDefault("ARTIFACT_PATH", "src/data/mockData.js")
	artifactFormat, err := ResolveFormat(os.Getenv("ARTIFACT_FORMAT"), artifactPath)
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		GeoJSONURL:       sharedcfg.EnvOrDefault("GEOJSON_URL", "https://raw.githubusercontent.com/vasturiano/react-globe.gl/master/example/datasets/ne_110m_admin_0_countries.geojson"),
		WorldBankBaseURL: sharedcfg.EnvOrDefault("WORLDBANK_BASE_URL", "https://api.worldbank.org/v2"),
		EONETURL:         sharedcfg.EnvOrDefault("EONET_URL", "https://eonet.gsfc.nasa.gov/api/v3/events?status=open&limit=20"),
		USGSFeedURL:      sharedcfg.EnvOrDefault("USGS_FEED_URL", "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/2.5_day.geojson"),

		IndicatorTimeout:  indicatorTimeout,
		IndicatorDelay:    indicatorDelay,
		IndicatorPageSize: pageSize,
		FetchTimeout:      fetchTimeout,
		BoundaryCacheTTL:  boundaryCacheTTL,

		ArtifactPath:   artifactPath,
		ArtifactFormat: artifactFormat,

		LogLevel:  sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),

		RefreshInterval: refreshInterval,
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		ShutdownTimeout: shutdownTimeout,
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),

		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "orbis-country-data"),
		KafkaEnabled: kafkaEnabled,
	}

	if cfg.GeoJSONURL == "" {
		return nil, errors.New("GEOJSON_URL is required")
	}
	if cfg.WorldBankBaseURL == "" {
		return nil, errors.New("WORLDBANK_BASE_URL is required")
	}
	if cfg.ArtifactPath == "" {
		return nil, errors.New("ARTIFACT_PATH is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when Kafka publishing is enabled")
	}

	return cfg, nil
}

// Scheduled reports whether the job should run periodically.
func (c *Config) Scheduled() bool {
	return c.RefreshInterval > 0
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseNonNegativeDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePageSize() (int, error) {
	s := sharedcfg.EnvOrDefault("INDICATOR_PAGE_SIZE", "20000")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 32500 {
		return 0, errors.New("INDICATOR_PAGE_SIZE must be between 1 and 32500")
	}
	return n, nil
}

// ResolveFormat returns the explicit format if set, otherwise infers it from
// the artifact file extension.
func ResolveFormat(explicit, path string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(explicit))
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			format = FormatJSON
		case ".yaml", ".yml":
			format = FormatYAML
		default:
			format = FormatJS
		}
	}
	switch format {
	case FormatJS, FormatJSON, FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("invalid ARTIFACT_FORMAT %q (want js, json or yaml)", explicit)
	}
}
