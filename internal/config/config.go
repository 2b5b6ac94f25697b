package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Default owner credentials. Both can be overridden from the environment.
const (
	DefaultOwnerEmail    = "abdooubi@gmail.com"
	DefaultOwnerPassword = "abdo999"
)

// Config holds the application configuration.
type Config struct {
	ServerPort     int
	AppEnv         string
	LogLevel       string
	AllowedOrigins []string
	JWTSecret      string

	StoreBackend  string // "sqlite", "redis" or "memory"
	DatabasePath  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	Gemini GeminiConfig

	OwnerEmail    string
	OwnerPassword string

	RetentionCron string
	FeedbackLimit int
	MessageLimit  int
}

// GeminiConfig configures the generative-AI collaborator.
type GeminiConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	SpeechModel string
	Voice       string
	Timeout     time.Duration
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is read first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, err
	}
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, err
	}
	feedbackLimit, err := strconv.Atoi(getEnv("FEEDBACK_LIMIT", "500"))
	if err != nil {
		return nil, err
	}
	messageLimit, err := strconv.Atoi(getEnv("MESSAGE_LIMIT", "500"))
	if err != nil {
		return nil, err
	}
	timeout, err := time.ParseDuration(getEnv("GEMINI_TIMEOUT", "90s"))
	if err != nil {
		return nil, err
	}

	apiKey := getEnv("API_KEY", "")
	if apiKey == "" {
		apiKey = getEnv("GEMINI_API_KEY", "")
	}

	return &Config{
		ServerPort:     port,
		AppEnv:         getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		JWTSecret:      getEnv("JWT_SECRET", "change-me"),

		StoreBackend:  strings.ToLower(getEnv("STORE_BACKEND", "sqlite")),
		DatabasePath:  getEnv("DATABASE_PATH", "./talakhisi.db"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,
		RedisPrefix:   getEnv("REDIS_PREFIX", "talakhisi:"),

		Gemini: GeminiConfig{
			APIKey:      apiKey,
			BaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			Model:       getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),
			SpeechModel: getEnv("GEMINI_TTS_MODEL", "gemini-2.5-flash-preview-tts"),
			Voice:       getEnv("GEMINI_VOICE", "Kore"),
			Timeout:     timeout,
		},

		OwnerEmail:    getEnv("OWNER_EMAIL", DefaultOwnerEmail),
		OwnerPassword: getEnv("OWNER_PASSWORD", DefaultOwnerPassword),

		RetentionCron: getEnv("RETENTION_CRON", "0 3 * * *"),
		FeedbackLimit: feedbackLimit,
		MessageLimit:  messageLimit,
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
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
