package config

import (
	"strings"
	"time"
)

const (
	apiURLVar      = "API_URL"
	httpTimeoutVar = "HTTP_TIMEOUT"

	defaultAPIURL      = "http://localhost:8000/api"
	defaultHTTPTimeout = 30 * time.Second
)

type API struct{}

var _ APIConfig = API{}

// GetAPIURL returns the backend base URL without a trailing slash.
func (API) GetAPIURL() string {
	return strings.TrimSuffix(GetEnv(apiURLVar, defaultAPIURL), "/")
}

// GetHTTPTimeout is the only deadline applied to login and register
// exchanges; the auth layer adds none of its own.
func (API) GetHTTPTimeout() time.Duration {
	d, err := time.ParseDuration(GetEnv(httpTimeoutVar, ""))
	if err != nil || d <= 0 {
		return defaultHTTPTimeout
	}
	return d
}
