package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

const (
	defaultRefreshTimeout = 30 * time.Second
	defaultConnectTimeout = 30 * time.Second
)

// Environ returns the settings from the environment.
func Environ() (*Config, error) {
	cfg := Config{}
	err := envconfig.Process("", &cfg)
	defaults(&cfg)

	return &cfg, err
}

func defaults(c *Config) {
	if c.RefreshTimeoutString == "" {
		c.RefreshTimeoutString = defaultRefreshTimeout.String()
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	if c.Github.APIURL == "" {
		c.Github.APIURL = "https://api.github.com/"
	}
	if c.Github.URL == "" {
		c.Github.URL = "https://github.com"
	}
	if c.AzureDevOps.URL == "" {
		c.AzureDevOps.URL = "https://dev.azure.com"
	}
}

// String returns the configuration in string format.
func (c *Config) String() string {
	out, _ := yaml.Marshal(c)
	return string(out)
}

type Config struct {
	Logging     Logging
	Github      Github
	AzureDevOps AzureDevOps

	// empty disables the metrics and debug endpoint
	MetricsAddr string `envconfig:"METRICS_ADDR"`

	// "0" turns the timeout off, so this can't be a time.Duration
	RefreshTimeoutString string        `envconfig:"REFRESH_TIMEOUT"`
	ConnectTimeout       time.Duration `envconfig:"CONNECT_TIMEOUT"`
}

// RefreshTimeout bounds a single REST call. Unparsable values fall back to the default.
func (c *Config) RefreshTimeout() time.Duration {
	if c.RefreshTimeoutString == "0" {
		return 0
	}
	d, err := time.ParseDuration(c.RefreshTimeoutString)
	if err != nil || d < 0 {
		return defaultRefreshTimeout
	}
	return d
}

// Logging provides the logging configuration.
type Logging struct {
	Debug bool   `envconfig:"DEBUG"`
	Trace bool   `envconfig:"TRACE"`
	File  string `envconfig:"LOG_FILE"`
}

type Github struct {
	APIURL string `envconfig:"GITHUB_API_URL"`
	URL    string `envconfig:"GITHUB_URL"`
}

type AzureDevOps struct {
	URL string `envconfig:"AZURE_DEVOPS_URL"`
}
