package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Extraction service providers.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// Config holds all application configuration
type Config struct {
	LLM        LLMConfig        `yaml:"llm"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LLMConfig selects and tunes the extraction service.
type LLMConfig struct {
	Provider        string        `yaml:"provider"`
	Model           string        `yaml:"model"`
	GeminiAPIKey    string        `yaml:"gemini_api_key"`
	OpenAIAPIKey    string        `yaml:"openai_api_key"`
	AnthropicAPIKey string        `yaml:"anthropic_api_key"`
	OllamaHost      string        `yaml:"ollama_host"`
	Temperature     float32       `yaml:"temperature"`
	TopP            float32       `yaml:"top_p"`
	TopK            int32         `yaml:"top_k"`
	Timeout         time.Duration `yaml:"timeout"`
}

// ExtractionConfig bounds archive expansion and per-document work.
type ExtractionConfig struct {
	MaxEntryBytes   int64         `yaml:"max_entry_bytes"`
	ExpandWorkers   int           `yaml:"expand_workers"`
	DocumentTimeout time.Duration `yaml:"document_timeout"` // 0 = no deadline
	MaxPDFPages     int           `yaml:"max_pdf_pages"`    // 0 = no limit
	OCREnabled      bool          `yaml:"ocr_enabled"`      // OCR PDFs without a text layer
	OCRLang         string        `yaml:"ocr_lang"`
}

// ServerConfig holds HTTP and job queue configuration
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	Workers        int           `yaml:"workers"`
	QueueSize      int           `yaml:"queue_size"`
	RunTimeout     time.Duration `yaml:"run_timeout"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
}

// StorageConfig holds S3 access for s3:// inputs and outputs.
type StorageConfig struct {
	AWSRegion    string `yaml:"aws_region"`
	AWSAccessKey string `yaml:"aws_access_key"`
	AWSSecretKey string `yaml:"aws_secret_key"`
	Bucket       string `yaml:"bucket"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// LoadConfig loads configuration from a .env file (if present) and environment variables
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		LLM: LLMConfig{
			Provider:        strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini)),
			Model:           getEnv("LLM_MODEL", ""),
			GeminiAPIKey:    getEnv("GEMINI_API_KEY", getEnv("API_KEY", "")),
			OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
			AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
			OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
			Temperature:     getEnvAsFloat32("LLM_TEMPERATURE", 0.1),
			TopP:            getEnvAsFloat32("LLM_TOP_P", 0.9),
			TopK:            getEnvAsInt32("LLM_TOP_K", 30),
			Timeout:         getEnvAsDuration("LLM_TIMEOUT", 90*time.Second),
		},
		Extraction: ExtractionConfig{
			MaxEntryBytes:   getEnvAsInt64("ARCHIVE_MAX_ENTRY_BYTES", 50<<20),
			ExpandWorkers:   getEnvAsInt("ARCHIVE_WORKERS", 4),
			DocumentTimeout: getEnvAsDuration("DOCUMENT_TIMEOUT", 0),
			MaxPDFPages:     getEnvAsInt("PDF_MAX_PAGES", 0),
			OCREnabled:      getEnvAsBool("OCR_ENABLED", false),
			OCRLang:         getEnv("OCR_LANG", "eng"),
		},
		Server: ServerConfig{
			Addr:           getEnv("HTTP_ADDR", ":8080"),
			AllowedOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173"}),
			Workers:        getEnvAsInt("QUEUE_WORKERS", 1),
			QueueSize:      getEnvAsInt("QUEUE_SIZE", 64),
			RunTimeout:     getEnvAsDuration("RUN_TIMEOUT", 30*time.Minute),
			MaxUploadBytes: getEnvAsInt64("MAX_UPLOAD_BYTES", 100<<20),
		},
		Storage: StorageConfig{
			AWSRegion:    getEnv("AWS_REGION", ""),
			AWSAccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
			AWSSecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Bucket:       getEnv("S3_BUCKET", ""),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}
}

// LoadConfigFile loads the environment configuration and overlays the YAML file at path.
// Keys absent from the file keep their environment value.
func LoadConfigFile(path string) (*Config, error) {
	cfg := LoadConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, NewAppError(CodeConfig, "invalid config file "+path, err)
	}
	cfg.LLM.Provider = strings.ToLower(cfg.LLM.Provider)
	return cfg, nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the loaded configuration.
// Missing service credentials are not a config error: runs started without them
// fail with ErrClientNotInitialized instead.
func (c *Config) Validate() error {
	v := NewValidator().
		Field("llm.provider", c.LLM.Provider, OneOf(ProviderGemini, ProviderOpenAI, ProviderAnthropic, ProviderOllama)).
		Field("llm.temperature", float64(c.LLM.Temperature), Between(0, 2)).
		Field("llm.top_p", float64(c.LLM.TopP), Between(0, 1)).
		Field("extraction.expand_workers", float64(c.Extraction.ExpandWorkers), Between(1, 256)).
		Field("server.addr", c.Server.Addr, Required)
	if v.HasErrors() {
		return NewAppError(CodeConfig, v.ErrorMessage(), ErrValidation)
	}
	return nil
}
