package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
)

const (
	DefaultBaseURL        = "https://openai.api.proxyapi.ru/v1"
	DefaultModel          = "gpt-4o"
	DefaultMaxTokens      = 1000
	DefaultScraperTimeout = 30
	DefaultMaxRetries     = 3
)

type OpenAIConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	SystemPrompt string
	MaxTokens    int
}

type ServerConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
}

type ScraperConfig struct {
	TimeoutSeconds int
	MaxRetries     int
}

type Config struct {
	Server  ServerConfig
	OpenAI  OpenAIConfig
	Scraper ScraperConfig
}

var (
	once sync.Once
	cfg  *Config
)

// Load reads configuration from the environment (singleton). The OpenAI API
// key may be empty here; llm.NewClient is where a missing key is rejected,
// so callers that can degrade without an LLM still get a usable config.
func Load() *Config {
	once.Do(func() {
		cfg = &Config{
			Server: ServerConfig{
				Host:        getEnv("SERVER_HOST", "0.0.0.0"),
				Port:        getEnvInt("SERVER_PORT", 8000),
				CORSOrigins: splitOrigins(getEnv("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
			},
			OpenAI: OpenAIConfig{
				APIKey:       os.Getenv("OPENAI_API_KEY"),
				BaseURL:      getEnv("OPENAI_BASE_URL", DefaultBaseURL),
				Model:        getEnv("OPENAI_MODEL", DefaultModel),
				SystemPrompt: os.Getenv("OPENAI_SYSTEM_PROMPT"),
				MaxTokens:    getEnvInt("OPENAI_MAX_TOKENS", DefaultMaxTokens),
			},
			Scraper: ScraperConfig{
				TimeoutSeconds: getEnvInt("SCRAPER_TIMEOUT_SECONDS", DefaultScraperTimeout),
				MaxRetries:     getEnvInt("SCRAPER_MAX_RETRIES", DefaultMaxRetries),
			},
		}
	})
	return cfg
}

// GetConfig returns the loaded config (must call Load first)
func GetConfig() *Config {
	return cfg
}

// ResetForTest resets the singleton state (for testing only)
func ResetForTest() {
	once = sync.Once{}
	cfg = nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("[Config] WARNING: invalid %s=%q, using default %d", key, raw, fallback)
		return fallback
	}
	return n
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
