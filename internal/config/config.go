package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the runtime settings for the session runner.
type Config struct {
	APIBaseURL      string
	FormID          string
	SnapshotBackend string // memory | redis | mongo
	RedisAddr       string
	MongoURI        string
	HTTPTimeout     time.Duration
	Debug           bool
}

// Load reads configuration from the environment with defaults.
func Load() *Config {
	return &Config{
		APIBaseURL:      getEnv("FORMFLOW_API_URL", "http://localhost:8080"),
		FormID:          getEnv("FORM_ID", ""),
		SnapshotBackend: getEnv("SNAPSHOT_BACKEND", "memory"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		HTTPTimeout:     getDuration("HTTP_TIMEOUT_SECONDS", 30*time.Second),
		Debug:           getEnv("DEBUG", "") != "",
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(val)
	if err != nil || secs <= 0 {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
