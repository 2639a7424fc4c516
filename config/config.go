// Package config loads service configuration and the agent/model registry.
// Values come from an optional YAML file with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the service configuration.
type Config struct {
	// Server
	Host string `yaml:"host"`
	Port string `yaml:"port"`

	// DataDir is where uploaded session folders live.
	DataDir string `yaml:"data_dir"`

	// MaxUploadFiles bounds how many files one upload request may carry.
	MaxUploadFiles int `yaml:"max_upload_files"`

	// OpenAI
	OpenAIKey     string `yaml:"openai_key"`
	OpenAIBaseURL string `yaml:"openai_base_url"`

	// EmbeddingModel is used when building session indices.
	EmbeddingModel string `yaml:"embedding_model"`

	// TopK is how many passages retrieval returns per query.
	TopK int `yaml:"top_k"`

	// GradeConcurrency bounds parallel relevance-grading calls.
	// 1 means sequential, matching the grading loop's source order.
	GradeConcurrency int `yaml:"grade_concurrency"`

	// Checkpoints
	CheckpointBackend string `yaml:"checkpoint_backend"` // memory, redis, sqlite, postgres
	RedisAddr         string `yaml:"redis_addr"`
	RedisPassword     string `yaml:"redis_password"`
	SqlitePath        string `yaml:"sqlite_path"`
	PostgresDSN       string `yaml:"postgres_dsn"`

	// Metadata store (optional)
	MongoURI        string `yaml:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database"`
	MongoCollection string `yaml:"mongo_collection"`

	// Registries (optional paths; embedded defaults are used when empty)
	PromptsPath string `yaml:"prompts_path"`
	ModelsPath  string `yaml:"models_path"`
}

// Default returns the configuration defaults before file and env overrides.
func Default() Config {
	return Config{
		Host:              "0.0.0.0",
		Port:              "8080",
		DataDir:           "data",
		MaxUploadFiles:    20,
		EmbeddingModel:    "text-embedding-3-small",
		TopK:              5,
		GradeConcurrency:  1,
		CheckpointBackend: "memory",
		MongoDatabase:     "ragpipe",
		MongoCollection:   "upload_metadata",
	}
}

// Load builds the configuration in precedence order:
// defaults, then the YAML file at path (if non-empty), then environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Host = getEnv("RAGPIPE_HOST", c.Host)
	c.Port = getEnv("RAGPIPE_PORT", c.Port)
	c.DataDir = getEnv("RAGPIPE_DATA_DIR", c.DataDir)
	c.OpenAIKey = getEnv("OPENAI_API_KEY", c.OpenAIKey)
	c.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", c.OpenAIBaseURL)
	c.EmbeddingModel = getEnv("RAGPIPE_EMBEDDING_MODEL", c.EmbeddingModel)
	c.CheckpointBackend = getEnv("RAGPIPE_CHECKPOINT_BACKEND", c.CheckpointBackend)
	c.RedisAddr = getEnv("RAGPIPE_REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("RAGPIPE_REDIS_PASSWORD", c.RedisPassword)
	c.SqlitePath = getEnv("RAGPIPE_SQLITE_PATH", c.SqlitePath)
	c.PostgresDSN = getEnv("RAGPIPE_POSTGRES_DSN", c.PostgresDSN)
	c.MongoURI = getEnv("MONGODB_URI", c.MongoURI)
	c.MongoDatabase = getEnv("RAGPIPE_MONGO_DATABASE", c.MongoDatabase)
	c.MongoCollection = getEnv("RAGPIPE_MONGO_COLLECTION", c.MongoCollection)
	c.PromptsPath = getEnv("RAGPIPE_PROMPTS_PATH", c.PromptsPath)
	c.ModelsPath = getEnv("RAGPIPE_MODELS_PATH", c.ModelsPath)

	c.TopK = getEnvInt("RAGPIPE_TOP_K", c.TopK)
	c.MaxUploadFiles = getEnvInt("RAGPIPE_MAX_UPLOAD_FILES", c.MaxUploadFiles)
	c.GradeConcurrency = getEnvInt("RAGPIPE_GRADE_CONCURRENCY", c.GradeConcurrency)
}

// Validate checks invariants that would otherwise fail at request time.
func (c Config) Validate() error {
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	}
	if c.MaxUploadFiles <= 0 {
		return fmt.Errorf("max_upload_files must be positive, got %d", c.MaxUploadFiles)
	}
	if c.GradeConcurrency <= 0 {
		return fmt.Errorf("grade_concurrency must be positive, got %d", c.GradeConcurrency)
	}
	switch c.CheckpointBackend {
	case "memory", "redis", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown checkpoint backend: %s", c.CheckpointBackend)
	}
	return nil
}

// Addr returns the host:port the HTTP server binds to.
func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
