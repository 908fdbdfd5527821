package config

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// The three CSV sources.
	AQIPath      string `envconfig:"AQI_CSV_PATH" default:"data/aqi_with_lat_lon.csv"`
	HeatPath     string `envconfig:"HEAT_CSV_PATH" default:"data/heat_with_lat_lon.csv"`
	CombinedPath string `envconfig:"COMBINED_CSV_PATH" default:"data/combined_with_lat_lon_and_state.csv"`

	// External US state reference list, used to pad state bar charts.
	StatesRefEnabled  bool          `envconfig:"STATES_REF_ENABLED" default:"false"`
	StatesRefURL      string        `envconfig:"STATES_REF_URL" default:"https://raw.githubusercontent.com/jasonong/List-of-US-States/master/states.csv"`
	StatesRefTimeout  time.Duration `envconfig:"STATES_REF_TIMEOUT" default:"5s"`
	StatesRefCacheTTL time.Duration `envconfig:"STATES_REF_CACHE_TTL" default:"24h"`

	// Optional Kafka sink for cleaned county records.
	KafkaEnabled   bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	KafkaBrokers   []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaSinkTopic string   `envconfig:"KAFKA_SINK_TOPIC" default:"county-aqi-records"`
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if cfg.AQIPath == "" || cfg.HeatPath == "" || cfg.CombinedPath == "" {
		return nil, errors.New("AQI_CSV_PATH, HEAT_CSV_PATH, and COMBINED_CSV_PATH are required")
	}
	if cfg.StatesRefEnabled {
		if cfg.StatesRefURL == "" {
			return nil, errors.New("STATES_REF_ENABLED is true but STATES_REF_URL is not set")
		}
		if cfg.StatesRefTimeout <= 0 {
			return nil, errors.New("STATES_REF_TIMEOUT must be positive")
		}
		if cfg.StatesRefCacheTTL <= 0 {
			return nil, errors.New("STATES_REF_CACHE_TTL must be positive")
		}
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SINK_TOPIC is not set")
		}
	}

	return &cfg, nil
}
