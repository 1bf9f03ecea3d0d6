package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string

	DB DBConfig

	JWTSecret string
	JWTTTL    time.Duration

	RedisAddr     string
	RedisPassword string
	RedisChannel  string

	CORSOrigins []string

	Otel OtelConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN is the key/value connection string understood by pgx.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type OtelConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	Insecure    bool
	SampleRatio float64
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, using environment variables")
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		Port: GetEnv("PORT", "8080"),
		Env:  GetEnv("APP_ENV", "development"),
		DB: DBConfig{
			Host:     GetEnv("DB_HOST", "localhost"),
			Port:     GetEnv("DB_PORT", "5432"),
			User:     GetEnv("DB_USER", "postgres"),
			Password: GetEnv("DB_PASSWORD", ""),
			Name:     GetEnv("DB_NAME", "votables"),
			SSLMode:  GetEnv("DB_SSLMODE", "disable"),
		},
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTTTL:        time.Duration(GetInt("JWT_TTL_HOURS", 72)) * time.Hour,
		RedisAddr:     GetEnv("REDIS_ADDR", ""),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		RedisChannel:  GetEnv("REDIS_CHANNEL", "votables"),
		CORSOrigins:   splitList(GetEnv("CORS_ORIGINS", "*")),
		Otel: OtelConfig{
			Enabled:     GetBool("OTEL_ENABLED", false),
			ServiceName: GetEnv("OTEL_SERVICE_NAME", "votables"),
			Endpoint:    GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Insecure:    GetBool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: getRatio("OTEL_SAMPLER_RATIO", 0.1),
		},
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}
	if cfg.JWTTTL <= 0 {
		return Config{}, errors.New("JWT_TTL_HOURS must be positive")
	}
	return cfg, nil
}

func GetEnv(key string, fallback string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	return val
}

func GetInt(key string, fallback int) int {
	v := GetEnv(key, "")
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func GetBool(key string, fallback bool) bool {
	switch strings.ToLower(GetEnv(key, "")) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getRatio(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(GetEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return min(max(f, 0), 1)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
