package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration values
const (
	DefaultMaxUploadSize int64 = 10 * 1024 * 1024 // 10MB
	DefaultConfigPath          = "config.yaml"
)

// OpenAIConfig holds settings for the OpenAI-compatible backend
type OpenAIConfig struct {
	APIKey  string `yaml:"-"` // From Env
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// OllamaConfig holds settings for a local Ollama backend
type OllamaConfig struct {
	URL   string `yaml:"url"`
	Model string `yaml:"model"`
}

// GeminiConfig holds settings for the Gemini backend
type GeminiConfig struct {
	APIKey string `yaml:"-"` // From Env
	Model  string `yaml:"model"`
}

// LLMConfig selects and configures the model provider
type LLMConfig struct {
	Provider   string        `yaml:"provider"` // openai, ollama, gemini, mock
	Timeout    time.Duration `yaml:"timeout"`  // Per-request timeout (default: 60s)
	MaxRetries int           `yaml:"max_retries"`
	OpenAI     OpenAIConfig  `yaml:"openai"`
	Ollama     OllamaConfig  `yaml:"ollama"`
	Gemini     GeminiConfig  `yaml:"gemini"`
}

// PromptsConfig holds configuration for prompt loading
type PromptsConfig struct {
	Dir string `yaml:"dir"` // Root directory for prompt override files
}

// StorageConfig holds configuration for history persistence
type StorageConfig struct {
	Driver  string        `yaml:"driver"`  // sqlite
	DSN     string        `yaml:"dsn"`     // Connection string
	Timeout time.Duration `yaml:"timeout"` // Timeout for storage operations (default: 5s)
}

// Config holds the configuration for the resume review service
type Config struct {
	Log struct {
		Level    string `yaml:"level"`  // DEBUG, INFO, WARN, ERROR
		Format   string `yaml:"format"` // text, json
		Output   string `yaml:"output"` // stdout, stderr, /path/to/file
		Rotation struct {
			MaxSize    int  `yaml:"max_size"`    // Megabytes
			MaxBackups int  `yaml:"max_backups"` // Number of old files to keep
			MaxAge     int  `yaml:"max_age"`     // Days to keep
			Compress   bool `yaml:"compress"`
		} `yaml:"rotation"`
	} `yaml:"log"`

	Server struct {
		Port             int           `yaml:"port"`
		ConcurrencyLimit int64         `yaml:"concurrency_limit"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxUploadSize    int64         `yaml:"max_upload_size"`
		CORSOrigin       string        `yaml:"cors_origin"`
	} `yaml:"server"`

	LLM LLMConfig `yaml:"llm"`

	Prompts PromptsConfig `yaml:"prompts"`

	Storage StorageConfig `yaml:"storage"`
}

// GetLogLevel returns the slog.Level based on Log.Level string
func (c *Config) GetLogLevel() slog.Level {
	switch strings.ToUpper(c.Log.Level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ActiveModel returns the model name of the configured provider, as shown in
// the identity endpoint and recorded in history environment labels.
func (c *Config) ActiveModel() string {
	switch c.LLM.Provider {
	case ProviderOpenAI:
		return c.LLM.OpenAI.Model
	case ProviderOllama:
		return c.LLM.Ollama.Model
	case ProviderGemini:
		return c.LLM.Gemini.Model
	default:
		return ProviderMock
	}
}

// EnvironmentLabel returns the "provider·model" string stored with history entries.
func (c *Config) EnvironmentLabel() string {
	return c.LLM.Provider + "·" + c.ActiveModel()
}

// LoadConfig loads configuration from YAML file and supplements with environment variables
func LoadConfig() *Config {
	cfg := &Config{}

	// Set some defaults before loading
	cfg.Log.Level = "INFO"
	cfg.Log.Format = "text"
	cfg.Log.Output = "stdout"
	cfg.Server.Port = 8080
	cfg.Server.ConcurrencyLimit = 8
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 120 * time.Second
	cfg.Server.MaxUploadSize = DefaultMaxUploadSize
	cfg.Server.CORSOrigin = "*"
	cfg.LLM.Provider = ProviderMock
	cfg.LLM.Timeout = 60 * time.Second
	cfg.LLM.MaxRetries = 1
	cfg.LLM.OpenAI.Model = "gpt-4o-mini"
	cfg.LLM.OpenAI.BaseURL = "https://api.openai.com/v1"
	cfg.LLM.Ollama.URL = "http://localhost:11434"
	cfg.LLM.Ollama.Model = "llama3.2:3b"
	cfg.LLM.Gemini.Model = "gemini-2.0-flash"
	cfg.Prompts.Dir = "prompts"

	// Log Rotation defaults
	cfg.Log.Rotation.MaxSize = 100
	cfg.Log.Rotation.MaxBackups = 10
	cfg.Log.Rotation.MaxAge = 7
	cfg.Log.Rotation.Compress = true

	// Storage defaults
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.DSN = "data/reviewer.db"
	cfg.Storage.Timeout = 5 * time.Second

	// Try to load from YAML
	configPath := getEnv("CONFIG_PATH", DefaultConfigPath)
	data, err := os.ReadFile(configPath)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			slog.Error("unmarshal config failed", "error", err, "path", configPath)
			os.Exit(1)
		}
		slog.Info("config loaded", "path", configPath)
	} else {
		if !os.IsNotExist(err) {
			slog.Error("read config failed", "error", err, "path", configPath)
			os.Exit(1)
		}
		slog.Info("config not found, using defaults", "path", configPath)
	}

	// Always supplement/override with environment variables for secrets and critical items
	cfg.LLM.OpenAI.APIKey = getEnv("OPENAI_API_KEY", cfg.LLM.OpenAI.APIKey)
	cfg.LLM.Gemini.APIKey = getEnv("GEMINI_API_KEY", cfg.LLM.Gemini.APIKey)

	if envProvider := os.Getenv("PROVIDER"); envProvider != "" {
		cfg.LLM.Provider = strings.ToLower(envProvider)
	}
	if envModel := os.Getenv("OPENAI_MODEL"); envModel != "" {
		cfg.LLM.OpenAI.Model = envModel
	}
	if envURL := os.Getenv("OLLAMA_URL"); envURL != "" {
		cfg.LLM.Ollama.URL = envURL
	}
	if envModel := os.Getenv("OLLAMA_MODEL"); envModel != "" {
		cfg.LLM.Ollama.Model = envModel
	}
	if envModel := os.Getenv("GEMINI_MODEL"); envModel != "" {
		cfg.LLM.Gemini.Model = envModel
	}
	if envDSN := os.Getenv("STORAGE_DSN"); envDSN != "" {
		cfg.Storage.DSN = envDSN
	}

	if envPort := getEnvInt("PORT", 0); envPort != 0 {
		cfg.Server.Port = envPort
	}
	if envLogLevel := os.Getenv("LOG_LEVEL"); envLogLevel != "" {
		cfg.Log.Level = envLogLevel
	}
	if envLogFormat := os.Getenv("LOG_FORMAT"); envLogFormat != "" {
		cfg.Log.Format = envLogFormat
	}
	if envLogOutput := getEnv("LOG_OUTPUT", ""); envLogOutput != "" {
		cfg.Log.Output = envLogOutput
	}

	return cfg
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []string

	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.OpenAI.APIKey == "" {
			errs = append(errs, "OPENAI_API_KEY is required for provider openai")
		}
	case ProviderOllama:
		if c.LLM.Ollama.URL == "" {
			errs = append(errs, "ollama url is required for provider ollama")
		}
	case ProviderGemini:
		if c.LLM.Gemini.APIKey == "" {
			errs = append(errs, "GEMINI_API_KEY is required for provider gemini")
		}
	case ProviderMock:
		// No credentials needed
	default:
		errs = append(errs, fmt.Sprintf("unknown llm provider: %s", c.LLM.Provider))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid server port: %d", c.Server.Port))
	}

	if c.Server.ConcurrencyLimit < 1 {
		errs = append(errs, fmt.Sprintf("invalid concurrency limit: %d", c.Server.ConcurrencyLimit))
	}

	if c.Server.MaxUploadSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid max upload size: %d", c.Server.MaxUploadSize))
	}

	if c.Storage.DSN == "" {
		errs = append(errs, "storage dsn is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config invalid: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Helper functions for reading environment variables

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
