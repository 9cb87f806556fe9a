// Package config reads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Translator backends.
const (
	TranslatorDeepL  = "deepl"
	TranslatorOpenAI = "openai"
	TranslatorMock   = "mock"
)

// Config holds every setting the CLI needs.
type Config struct {
	Translator     string
	DeepLAPIKey    string
	DeepLAPIURL    string
	OpenAIAPIKey   string
	OpenAIModel    string
	GlossaryPath   string
	HistoryDir     string
	RedisURL       string
	ListenAddr     string
	ListenLanguage string
	LogLevel       string
	RequestTimeout time.Duration
	CacheSize      int
	MaxRetries     int
	RateLimitRPM   int
	Environment    string
}

// Load reads a .env file (if present) and then the environment.
// Variables already set in the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
	}

	cfg := &Config{
		Translator:     strings.ToLower(getEnv("TRANSLATOR", TranslatorDeepL)),
		DeepLAPIKey:    os.Getenv("DEEPL_API_KEY"),
		DeepLAPIURL:    os.Getenv("DEEPL_API_URL"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GlossaryPath:   getEnv("GLOSSARY_PATH", "glossary.json"),
		HistoryDir:     getEnv("HISTORY_DIR", ".glosslive"),
		RedisURL:       os.Getenv("REDIS_URL"),
		ListenAddr:     listenAddr(),
		ListenLanguage: strings.ToLower(getEnv("LISTEN_LANGUAGE", "ja")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		RequestTimeout: 30 * time.Second,
		CacheSize:      1000,
		Environment:    getEnv("APP_ENV", "development"),
	}

	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}

	for key, dst := range map[string]*int{
		"CACHE_SIZE":     &cfg.CacheSize,
		"MAX_RETRIES":    &cfg.MaxRetries,
		"RATE_LIMIT_RPM": &cfg.RateLimitRPM,
	} {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Translator {
	case TranslatorDeepL, TranslatorOpenAI, TranslatorMock:
	default:
		return fmt.Errorf("TRANSLATOR must be one of deepl, openai, mock; got %q", c.Translator)
	}
	switch c.ListenLanguage {
	case "ko", "ja":
	default:
		return fmt.Errorf("LISTEN_LANGUAGE must be ko or ja; got %q", c.ListenLanguage)
	}
	if c.RequestTimeout < 0 {
		return errors.New("REQUEST_TIMEOUT must not be negative")
	}
	if c.MaxRetries < 0 || c.RateLimitRPM < 0 || c.CacheSize < 0 {
		return errors.New("CACHE_SIZE, MAX_RETRIES and RATE_LIMIT_RPM must not be negative")
	}
	return nil
}

// APIKey returns the server-side key for the selected translator.
func (c *Config) APIKey() string {
	if c.Translator == TranslatorOpenAI {
		return c.OpenAIAPIKey
	}
	return c.DeepLAPIKey
}

func listenAddr() string {
	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		return addr
	}
	return ":" + getEnv("PORT", "3000")
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
