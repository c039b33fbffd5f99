package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"seatbooking/internal/domain"

	"github.com/rs/zerolog/log"
)

type Env struct {
	AppAddr string
	GinMode string

	DBUser         string
	DBPassword     string
	DBAddr         string
	DBName         string
	DBMaxOpenConns int

	// StatementTimeout bounds every storage call, lock waits included.
	StatementTimeout time.Duration
	ExpiryThreshold  time.Duration
	SweepInterval    time.Duration

	JWTSecret          string
	CORSAllowedOrigins []string

	KafkaBrokers      []string
	KafkaBookingTopic string
	RedisAddr         string

	LogLevel  string
	LogFormat string
}

func LoadEnv() Env {
	return Env{
		AppAddr: getString("APP_ADDR", ":8080"),
		GinMode: getString("GIN_MODE", ""),

		DBUser:         getString("DB_USER", "root"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBAddr:         getString("DB_ADDR", "127.0.0.1:3306"),
		DBName:         getString("DB_NAME", "seat_booking"),
		DBMaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 25),

		StatementTimeout: getDuration("STATEMENT_TIMEOUT", domain.DefaultStatementTimeout),
		ExpiryThreshold:  getDuration("BOOKING_EXPIRY_THRESHOLD", domain.DefaultExpiryThreshold),
		SweepInterval:    getDuration("EXPIRY_SWEEP_INTERVAL", domain.DefaultSweepInterval),

		JWTSecret:          getString("JWT_SECRET", ""),
		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS"),

		KafkaBrokers:      getList("KAFKA_BROKERS"),
		KafkaBookingTopic: getString("KAFKA_BOOKING_TOPIC", "booking-events"),
		RedisAddr:         getString("REDIS_ADDR", ""),

		LogLevel:  getString("LOG_LEVEL", "info"),
		LogFormat: getString("LOG_FORMAT", "json"),
	}
}

func getString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Warn().Str("key", key).Str("value", raw).Msg("invalid integer, using default")
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Warn().Str("key", key).Str("value", raw).Msg("invalid duration, using default")
		return def
	}
	return d
}

func getList(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
