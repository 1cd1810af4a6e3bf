package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all server and lifecycle tuning. Values are layered: built-in
// defaults, then an optional YAML file named by TRELLIS_CONFIG, then
// environment variables on top.
type Config struct {
	Port           int    `yaml:"port"`
	APIKey         string `yaml:"api_key"`
	DBPath         string `yaml:"db_path"`
	OllamaBaseURL  string `yaml:"ollama_base_url"`
	ChatModel      string `yaml:"chat_model"`
	EmbeddingModel string `yaml:"embedding_model"`
	EmbeddingDim   int    `yaml:"embedding_dim"`
	QdrantURL      string `yaml:"qdrant_url"`
	Collection     string `yaml:"collection"`
	LogLevel       string `yaml:"log_level"`
	// Lifecycle tuning
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	ReinforceStep       float64 `yaml:"reinforce_step"`
	PromotionCount      int     `yaml:"promotion_count"`
	StemConfidence      float64 `yaml:"stem_confidence"`
	LeafTTLHours        int     `yaml:"leaf_ttl_hours"`
	BranchStaleDays     int     `yaml:"branch_stale_days"`
	RootCooldownMinutes int     `yaml:"root_cooldown_minutes"`
	LeafTopK            int     `yaml:"leaf_top_k"`
}

func defaults() *Config {
	return &Config{
		Port:                8764,
		DBPath:              "/data/trellis.db",
		OllamaBaseURL:       "http://localhost:11434",
		ChatModel:           "qwen2.5:7b",
		EmbeddingModel:      "nomic-embed-text",
		EmbeddingDim:        768,
		QdrantURL:           "http://localhost:6333",
		Collection:          "trellis_memories",
		LogLevel:            "info",
		SimilarityThreshold: 0.25,
		ReinforceStep:       0.1,
		PromotionCount:      3,
		StemConfidence:      0.95,
		LeafTTLHours:        48,
		BranchStaleDays:     7,
		RootCooldownMinutes: 10,
		LeafTopK:            5,
	}
}

// Load builds the effective configuration.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("TRELLIS_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = envInt("PORT", c.Port)
	c.APIKey = envStr("API_KEY", c.APIKey)
	c.DBPath = envStr("TRELLIS_DB_PATH", c.DBPath)
	c.OllamaBaseURL = envStr("OLLAMA_BASE_URL", c.OllamaBaseURL)
	c.ChatModel = envStr("CHAT_MODEL", c.ChatModel)
	c.EmbeddingModel = envStr("EMBEDDING_MODEL", c.EmbeddingModel)
	c.EmbeddingDim = envInt("EMBEDDING_DIM", c.EmbeddingDim)
	c.QdrantURL = envStr("QDRANT_URL", c.QdrantURL)
	c.Collection = envStr("QDRANT_COLLECTION", c.Collection)
	c.LogLevel = envStr("LOG_LEVEL", c.LogLevel)
	c.SimilarityThreshold = envFloat("SIMILARITY_THRESHOLD", c.SimilarityThreshold)
	c.ReinforceStep = envFloat("REINFORCE_STEP", c.ReinforceStep)
	c.PromotionCount = envInt("PROMOTION_COUNT", c.PromotionCount)
	c.StemConfidence = envFloat("STEM_CONFIDENCE", c.StemConfidence)
	c.LeafTTLHours = envInt("LEAF_TTL_HOURS", c.LeafTTLHours)
	c.BranchStaleDays = envInt("BRANCH_STALE_DAYS", c.BranchStaleDays)
	c.RootCooldownMinutes = envInt("ROOT_COOLDOWN_MINUTES", c.RootCooldownMinutes)
	c.LeafTopK = envInt("LEAF_TOP_K", c.LeafTopK)
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("TRELLIS_DB_PATH must not be empty")
	}
	if c.OllamaBaseURL == "" {
		return fmt.Errorf("OLLAMA_BASE_URL must not be empty")
	}
	if c.EmbeddingDim < 1 {
		return fmt.Errorf("EMBEDDING_DIM must be positive, got %d", c.EmbeddingDim)
	}
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold >= 1 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be in (0, 1), got %f", c.SimilarityThreshold)
	}
	if c.StemConfidence <= 0 || c.StemConfidence > 1 {
		return fmt.Errorf("STEM_CONFIDENCE must be in (0, 1], got %f", c.StemConfidence)
	}
	if c.PromotionCount < 1 {
		return fmt.Errorf("PROMOTION_COUNT must be positive, got %d", c.PromotionCount)
	}
	if c.LeafTopK < 1 {
		return fmt.Errorf("LEAF_TOP_K must be positive, got %d", c.LeafTopK)
	}
	return nil
}

// SlogLevel maps the configured log level string to a slog.Level.
// Unknown values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
