// internal/config/config.go
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL         = "http://localhost:5000/api"
	DefaultRequestTimeout = 30
)

type Config struct {
	APIURL                string `yaml:"api_url"`
	GoogleClientID        string `yaml:"google_client_id"`
	GoogleClientSecret    string `yaml:"google_client_secret"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
	Verbose               bool   `yaml:"verbose"`
}

// Load reads the yaml config at path, then applies .env/environment
// overrides and defaults. A missing config file is not an error; the
// client can run entirely from environment and defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	if v := os.Getenv("STUDYMATE_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("STUDYMATE_GOOGLE_CLIENT_ID"); v != "" {
		cfg.GoogleClientID = v
	}
	if v := os.Getenv("STUDYMATE_GOOGLE_CLIENT_SECRET"); v != "" {
		cfg.GoogleClientSecret = v
	}

	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		cfg.RequestTimeoutSeconds = DefaultRequestTimeout
	}

	return &cfg, nil
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
