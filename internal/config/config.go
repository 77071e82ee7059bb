package config

import "time"

type Config interface {
	EnvConfig
	APIConfig
	SessionConfig
	MockAPIConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type APIConfig interface {
	GetAPIURL() string
	GetHTTPTimeout() time.Duration
}

type SessionConfig interface {
	GetSessionBackend() SessionBackend
	GetSessionFile() string
	GetSessionDB() string
	GetRedisAddr() string
	GetRedisPrefix() string
}

type MockAPIConfig interface {
	GetMockAPIPort() string
	GetMockAPISecret() string
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	API
	Session
	MockAPI
}

func New() Config {
	return mainConfig{}
}
