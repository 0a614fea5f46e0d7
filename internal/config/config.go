package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const EnvPrefix = "DEP"

type Config struct {
	Env            string
	ShipTo         string `envconfig:"SHIPTO"`
	ResellerID     string `envconfig:"RESELLER_ID"`
	UATCert        string `envconfig:"UAT_CERT"`
	UATPrivateKey  string `envconfig:"UAT_PRIVATE_KEY"`
	ProdCert       string `envconfig:"PROD_CERT"`
	ProdPrivateKey string `envconfig:"PROD_PRIVATE_KEY"`
	TimeZone       string `envconfig:"TIME_ZONE"`
	LangCode       string `envconfig:"LANG_CODE"`
	LogLevel       string `envconfig:"LOG_LEVEL"`
	Timeout        time.Duration
	OTelEndpoint   string `envconfig:"OTEL_ENDPOINT"`
}

func DefaultConfig() Config {
	return Config{
		TimeZone: "420",
		LangCode: "en",
		LogLevel: "info",
		Timeout:  30 * time.Second,
	}
}

// Load reads DEP_* environment variables on top of DefaultConfig.
func Load() (Config, error) {
	cfg := DefaultConfig()
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("read environment configuration: %w", err)
	}

	if err := cfg.Parse(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (cfg *Config) Parse() error {
	if len(cfg.LogLevel) != 0 {
		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			return &ConfigurationError{Setting: "LOG_LEVEL", Message: "invalid log level", original: err}
		}
		cfg.LogLevel = level.String()
	}

	if cfg.Timeout < 0 {
		return &ConfigurationError{Setting: "TIMEOUT", Message: "must not be negative"}
	}

	return nil
}
