package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const configPathEnv = "NEWSAGG_CONFIG"

// UpstreamConfig describes how the proxy reaches the news provider
type UpstreamConfig struct {
	BaseURL      string        `yaml:"baseUrl"`
	APIKey       string        `yaml:"apiKey"`
	Language     string        `yaml:"language"`
	DefaultQuery string        `yaml:"defaultQuery"`
	Timeout      time.Duration `yaml:"timeout"`
}

// SecurityConfig represents security configuration
type SecurityConfig struct {
	EnableRateLimit       bool          `yaml:"enableRateLimit"`
	RateLimitPerSecond    float64       `yaml:"rateLimitPerSecond"`
	RateLimitBurst        int           `yaml:"rateLimitBurst"`
	LimiterIdleTTL        time.Duration `yaml:"limiterIdleTtl"`
	EnableCORS            bool          `yaml:"enableCors"`
	AllowedOrigins        []string      `yaml:"allowedOrigins"`
	EnableSecurityHeaders bool          `yaml:"enableSecurityHeaders"`
	MaxRequestSize        int64         `yaml:"maxRequestSize"`
	EnableRequestID       bool          `yaml:"enableRequestId"`
}

// ClientConfig holds settings for the terminal news client
type ClientConfig struct {
	APIBaseURL       string        `yaml:"apiBaseUrl"`
	RecommendBaseURL string        `yaml:"recommendBaseUrl"`
	HTTPTimeout      time.Duration `yaml:"httpTimeout"`
	FeedPageSize     int           `yaml:"feedPageSize"`
	RecommendWindow  int           `yaml:"recommendWindow"`
	RecommendStep    int           `yaml:"recommendStep"`
	DataDir          string        `yaml:"dataDir"`

	// Pagination is "cursor" for the proxy or "offset" for a NewsAPI
	// shaped backend with numbered pages
	Pagination string `yaml:"pagination"`
}

type Config struct {
	Port          int            `yaml:"port"`
	LogLevel      string         `yaml:"logLevel"`
	EnableSwagger bool           `yaml:"enableSwagger"`
	Upstream      UpstreamConfig `yaml:"upstream"`
	Security      SecurityConfig `yaml:"security"`
	Client        ClientConfig   `yaml:"client"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Port:          3000,
		LogLevel:      "info",
		EnableSwagger: true,
		Upstream: UpstreamConfig{
			BaseURL:      "https://newsdata.io/api/1",
			Language:     "en",
			DefaultQuery: "world",
		},
		Security: SecurityConfig{
			EnableRateLimit:       true,
			RateLimitPerSecond:    10.0,
			RateLimitBurst:        20,
			LimiterIdleTTL:        10 * time.Minute,
			EnableCORS:            true,
			AllowedOrigins:        []string{"*"},
			EnableSecurityHeaders: true,
			MaxRequestSize:        1 << 20, // 1MB
			EnableRequestID:       true,
		},
		Client: ClientConfig{
			APIBaseURL:       "http://localhost:3000",
			RecommendBaseURL: "http://127.0.0.1:5000",
			FeedPageSize:     9,
			RecommendWindow:  9,
			RecommendStep:    12,
			DataDir:          "./data",
			Pagination:       "cursor",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file named
// by NEWSAGG_CONFIG, and finally environment variables.
func Load() *Config {
	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		if err := loadFile(path, cfg); err != nil {
			log.Printf("Warning: ignoring config file %s: %v", path, err)
		}
	}

	applyEnv(cfg)
	return cfg
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnvAsInt("PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.EnableSwagger = getEnvAsBool("ENABLE_SWAGGER", cfg.EnableSwagger)

	// A missing key is not fatal: the adapter reports it per request.
	cfg.Upstream.APIKey = getEnv("API_KEY", cfg.Upstream.APIKey)
	cfg.Upstream.BaseURL = strings.TrimRight(getEnv("UPSTREAM_BASE_URL", cfg.Upstream.BaseURL), "/")
	cfg.Upstream.Language = getEnv("UPSTREAM_LANGUAGE", cfg.Upstream.Language)
	cfg.Upstream.DefaultQuery = getEnv("DEFAULT_QUERY", cfg.Upstream.DefaultQuery)
	cfg.Upstream.Timeout = getEnvAsDuration("UPSTREAM_TIMEOUT", cfg.Upstream.Timeout)

	cfg.Security = loadSecurityConfig(cfg.Security)

	cfg.Client.APIBaseURL = strings.TrimRight(getEnv("API_BASE_URL", cfg.Client.APIBaseURL), "/")
	cfg.Client.RecommendBaseURL = strings.TrimRight(getEnv("RECOMMEND_BASE_URL", cfg.Client.RecommendBaseURL), "/")
	cfg.Client.HTTPTimeout = getEnvAsDuration("CLIENT_HTTP_TIMEOUT", cfg.Client.HTTPTimeout)
	cfg.Client.FeedPageSize = getEnvAsInt("FEED_PAGE_SIZE", cfg.Client.FeedPageSize)
	cfg.Client.RecommendWindow = getEnvAsInt("RECOMMEND_WINDOW", cfg.Client.RecommendWindow)
	cfg.Client.RecommendStep = getEnvAsInt("RECOMMEND_STEP", cfg.Client.RecommendStep)
	cfg.Client.DataDir = getEnv("DATA_DIR", cfg.Client.DataDir)
	cfg.Client.Pagination = strings.ToLower(getEnv("PAGINATION_MODE", cfg.Client.Pagination))
}

func loadSecurityConfig(base SecurityConfig) SecurityConfig {
	return SecurityConfig{
		EnableRateLimit:       getEnvAsBool("ENABLE_RATE_LIMIT", base.EnableRateLimit),
		RateLimitPerSecond:    getEnvAsFloat("RATE_LIMIT_PER_SECOND", base.RateLimitPerSecond),
		RateLimitBurst:        getEnvAsInt("RATE_LIMIT_BURST", base.RateLimitBurst),
		LimiterIdleTTL:        getEnvAsDuration("RATE_LIMIT_IDLE_TTL", base.LimiterIdleTTL),
		EnableCORS:            getEnvAsBool("ENABLE_CORS", base.EnableCORS),
		AllowedOrigins:        getEnvAsStringSlice("ALLOWED_ORIGINS", base.AllowedOrigins),
		EnableSecurityHeaders: getEnvAsBool("ENABLE_SECURITY_HEADERS", base.EnableSecurityHeaders),
		MaxRequestSize:        getEnvAsInt64("MAX_REQUEST_SIZE", base.MaxRequestSize),
		EnableRequestID:       getEnvAsBool("ENABLE_REQUEST_ID", base.EnableRequestID),
	}
}

func getEnv(key string, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if floatVal, err := strconv.ParseFloat(val, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.ParseInt(val, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsStringSlice(key string, defaultVal []string) []string {
	if val := os.Getenv(key); val != "" {
		origins := strings.Split(val, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		return origins
	}
	return defaultVal
}
