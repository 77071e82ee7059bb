package config

import (
	"os"
	"path/filepath"
	"strings"
)

type SessionBackend string

const (
	SessionBackendMemory SessionBackend = "memory"
	SessionBackendFile   SessionBackend = "file"
	SessionBackendRedis  SessionBackend = "redis"
	SessionBackendSQLite SessionBackend = "sqlite"
)

const (
	sessionBackendVar = "SESSION_BACKEND"
	sessionFileVar    = "SESSION_FILE"
	sessionDBVar      = "SESSION_DB"
	redisAddrVar      = "REDIS_ADDR"
	redisPrefixVar    = "REDIS_PREFIX"
)

type Session struct{}

var _ SessionConfig = Session{}

// GetSessionBackend falls back to the file backend for unknown values.
func (Session) GetSessionBackend() SessionBackend {
	switch b := SessionBackend(strings.ToLower(GetEnv(sessionBackendVar, string(SessionBackendFile)))); b {
	case SessionBackendMemory, SessionBackendFile, SessionBackendRedis, SessionBackendSQLite:
		return b
	default:
		return SessionBackendFile
	}
}

func (Session) GetSessionFile() string {
	return GetEnv(sessionFileVar, filepath.Join(configDir(), "session.json"))
}

func (Session) GetSessionDB() string {
	return GetEnv(sessionDBVar, filepath.Join(configDir(), "session.db"))
}

func (Session) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "localhost:6379")
}

func (Session) GetRedisPrefix() string {
	return GetEnv(redisPrefixVar, "photomarket")
}

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "photomarket")
}
