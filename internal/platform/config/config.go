package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr            string
	SourceLatency   time.Duration
	LogLevel        string
	LogFormat       string
	RateLimitRPS    float64
	RateLimitBurst  int
	ShutdownTimeout time.Duration
}

const (
	defaultAddr            = ":3000"
	defaultSourceLatency   = 500 * time.Millisecond
	defaultShutdownTimeout = 10 * time.Second
	defaultRateLimitBurst  = 10
)

// FromEnv builds a Server config from environment variables so main stays lean.
// Unparseable values fall back to their defaults.
func FromEnv() Server {
	return fromLookup(os.Getenv)
}

func fromLookup(getenv func(string) string) Server {
	addr := getenv("FAULTLINE_ADDR")
	if addr == "" {
		addr = defaultAddr
	}
	logLevel := getenv("FAULTLINE_LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logFormat := getenv("FAULTLINE_LOG_FORMAT")
	if logFormat == "" {
		logFormat = "text"
	}

	return Server{
		Addr:            addr,
		SourceLatency:   durationOr(getenv("FAULTLINE_SOURCE_LATENCY"), defaultSourceLatency),
		LogLevel:        logLevel,
		LogFormat:       logFormat,
		RateLimitRPS:    floatOr(getenv("FAULTLINE_RATE_LIMIT_RPS"), 0),
		RateLimitBurst:  intOr(getenv("FAULTLINE_RATE_LIMIT_BURST"), defaultRateLimitBurst),
		ShutdownTimeout: durationOr(getenv("FAULTLINE_SHUTDOWN_TIMEOUT"), defaultShutdownTimeout),
	}
}

func durationOr(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

func floatOr(raw string, fallback float64) float64 {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		return fallback
	}
	return f
}

func intOr(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
