package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	c := &Config{}
	defaults(c)

	assert.Equal(t, 30*time.Second, c.RefreshTimeout())
	assert.Equal(t, 30*time.Second, c.ConnectTimeout)
	assert.Equal(t, "https://api.github.com/", c.Github.APIURL)
	assert.Equal(t, "https://github.com", c.Github.URL)
	assert.Equal(t, "https://dev.azure.com", c.AzureDevOps.URL)
	assert.Equal(t, "", c.MetricsAddr)
}

func TestRefreshTimeout(t *testing.T) {
	c := &Config{RefreshTimeoutString: "0"}
	defaults(c)
	assert.Equal(t, time.Duration(0), c.RefreshTimeout(), "0 should turn the timeout off")

	c = &Config{RefreshTimeoutString: "5s"}
	defaults(c)
	assert.Equal(t, 5*time.Second, c.RefreshTimeout())

	c = &Config{RefreshTimeoutString: "not a duration"}
	defaults(c)
	assert.Equal(t, 30*time.Second, c.RefreshTimeout())
}

func TestEnviron(t *testing.T) {
	os.Setenv("DEBUG", "true")
	os.Setenv("REFRESH_TIMEOUT", "10s")
	os.Setenv("AZURE_DEVOPS_URL", "https://devops.example.com")
	os.Setenv("METRICS_ADDR", ":9001")
	defer func() {
		os.Unsetenv("DEBUG")
		os.Unsetenv("REFRESH_TIMEOUT")
		os.Unsetenv("AZURE_DEVOPS_URL")
		os.Unsetenv("METRICS_ADDR")
	}()

	c, err := Environ()
	assert.Nil(t, err)
	assert.True(t, c.Logging.Debug)
	assert.Equal(t, 10*time.Second, c.RefreshTimeout())
	assert.Equal(t, "https://devops.example.com", c.AzureDevOps.URL)
	assert.Equal(t, ":9001", c.MetricsAddr)
	assert.Contains(t, c.String(), "metricsaddr: :9001")
}
