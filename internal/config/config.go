package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Telegram TelegramConfig
	API      APIConfig
	OpenAI   OpenAIConfig
	Gemini   GeminiConfig
	SerpAPI  SerpAPIConfig
	Geoapify GeoapifyConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Vision   VisionConfig
	Logging  LoggingConfig
}

type TelegramConfig struct {
	Token     string
	DevChatID int64
}

type APIConfig struct {
	ListenAddr     string
	AllowedOrigins []string
}

type OpenAIConfig struct {
	APIKey          string
	VisionModel     string
	GenerationModel string
}

type GeminiConfig struct {
	APIKey         string
	Model          string
	EnableFallback bool
}

type SerpAPIConfig struct {
	APIKey string
}

type GeoapifyConfig struct {
	APIKey string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Enabled  bool
}

// DetailPolicy picks the vision detail level for a request.
type DetailPolicy string

const (
	DetailPolicyAuto DetailPolicy = "auto" // high when coordinates are known
	DetailPolicyLow  DetailPolicy = "low"
	DetailPolicyHigh DetailPolicy = "high"
)

type VisionConfig struct {
	DetailPolicy DetailPolicy
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Telegram: TelegramConfig{
			Token:     getEnv("TELEGRAM_TOKEN", ""),
			DevChatID: getEnvInt64("TELEGRAM_DEV_CHAT_ID", 0),
		},
		API: APIConfig{
			ListenAddr:     getEnv("API_LISTEN_ADDR", ":8000"),
			AllowedOrigins: parseCommaSeparated(getEnv("API_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001")),
		},
		OpenAI: OpenAIConfig{
			APIKey:          getEnv("OPENAI_API_KEY", ""),
			VisionModel:     getEnv("OPENAI_VISION_MODEL", "gpt-4o"),
			GenerationModel: getEnv("OPENAI_GENERATION_MODEL", "gpt-4o-mini"),
		},
		Gemini: GeminiConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			Model:          getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			EnableFallback: getEnvBool("GEMINI_ENABLE_FALLBACK", true),
		},
		SerpAPI: SerpAPIConfig{
			APIKey: getEnv("SERPAPI_API_KEY", ""),
		},
		Geoapify: GeoapifyConfig{
			APIKey: getEnv("GEOAPIFY_API_KEY", ""),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Enabled:  getEnvBool("REDIS_ENABLED", false),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "img2card"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "img2card"),
			Enabled:  getEnvBool("POSTGRES_ENABLED", false),
		},
		Vision: VisionConfig{
			DetailPolicy: DetailPolicy(getEnv("VISION_DETAIL_POLICY", string(DetailPolicyAuto))),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" && c.Gemini.APIKey == "" {
		return fmt.Errorf("at least one of OPENAI_API_KEY or GEMINI_API_KEY is required")
	}

	switch c.Vision.DetailPolicy {
	case DetailPolicyAuto, DetailPolicyLow, DetailPolicyHigh:
	default:
		return fmt.Errorf("invalid VISION_DETAIL_POLICY: %q", c.Vision.DetailPolicy)
	}

	return nil
}

// PlacesEnabled reports whether venue resolution can run at all. Without both
// provider keys the agent degrades to personal-card generation.
func (c *Config) PlacesEnabled() bool {
	return c.SerpAPI.APIKey != "" && c.Geoapify.APIKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func parseCommaSeparated(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
