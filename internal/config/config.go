package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/bharath13925/street-view-videos-sub000/internal/logging"
)

type Config struct {
	HTTPPort string

	MongoURI  string
	MongoDB   string
	RedisAddr string
	RedisPass string

	// PythonService is the base URL of the route-video microservice.
	PythonService string
	PythonTimeout time.Duration

	FirebaseProjectID string

	CORSOrigins []string

	// VideoCheckTTL bounds how long a "video exists" answer from the
	// Python service is reused.
	VideoCheckTTL time.Duration

	// PipelineRateLimit is requests per minute per IP on pipeline endpoints.
	PipelineRateLimit int

	LogLevel  string
	LogFormat string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPPort:          getEnv("HTTP_PORT", "5000"),
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:           getEnv("MONGO_DB", "routevision"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:         getEnv("REDIS_PASSWORD", ""),
		PythonService:     strings.TrimRight(getEnv("PYTHON_SERVICE", "http://localhost:8000"), "/"),
		PythonTimeout:     getDuration("PYTHON_TIMEOUT", 300*time.Second),
		FirebaseProjectID: getEnv("FIREBASE_PROJECT_ID", ""),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		VideoCheckTTL:     getDuration("VIDEO_CHECK_TTL", 5*time.Minute),
		PipelineRateLimit: getInt("PIPELINE_RATE_LIMIT", 10),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "console"),
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		logging.Debug().Str("key", key).Str("default", def).Msg("[config] not set, using default")
		return def
	}
	return v
}

// getDuration accepts Go durations ("90s") or a bare number of seconds.
func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	logging.Warn().Str("key", key).Str("value", v).Msg("[config] invalid duration, using default")
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logging.Warn().Str("key", key).Str("value", v).Msg("[config] invalid integer, using default")
		return def
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
