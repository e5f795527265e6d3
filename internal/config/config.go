// Package config loads application configuration from command-line flags,
// environment variables, and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App        AppConfig
	Logger     LoggerConfig
	Storage    StorageConfig
	Similarity SimilarityConfig
	Embedding  EmbeddingConfig
	Agent      AgentConfig
	Notifier   NotifierConfig
	Server     ServerConfig
	Watcher    WatcherConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig holds on-disk locations.
type StorageConfig struct {
	// DataPath is the directory holding the SQLite database and the embedding cache.
	DataPath string
}

// DatabasePath returns the SQLite database file path.
func (s StorageConfig) DatabasePath() string {
	return filepath.Join(s.DataPath, "gamerec.db")
}

// CachePath returns the badger directory used for cached embeddings.
func (s StorageConfig) CachePath() string {
	return filepath.Join(s.DataPath, "cache", "embeddings")
}

// SimilarityConfig holds scoring weights and prompt settings.
type SimilarityConfig struct {
	TagWeight       float64
	TitleWeight     float64
	StorylineWeight float64
	SummaryWeight   float64
	// PromptLimit is the default number of candidates rendered into a prompt (0 = all).
	PromptLimit int
	// ScorePrecision is the number of decimals scores are rounded to in prompts.
	ScorePrecision int
	// Workers bounds parallel candidate scoring.
	Workers int
}

// EmbeddingConfig holds the embedding provider settings.
type EmbeddingConfig struct {
	BaseURL           string
	APIKey            string
	Model             string
	RequestsPerMinute int
	Timeout           time.Duration
}

// Enabled reports whether an embedding provider is configured.
func (e EmbeddingConfig) Enabled() bool {
	return e.BaseURL != "" && e.Model != ""
}

// AgentConfig holds the external judgment agent settings.
type AgentConfig struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// NotifierConfig holds webhook notification settings.
type NotifierConfig struct {
	WebhookURL string
	Username   string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// ImportsPerMinute limits import and recommendation requests per client (0 = unlimited).
	ImportsPerMinute float64
	ImportBurst      int
}

// WatcherConfig holds inbox watcher settings.
type WatcherConfig struct {
	// Dir is the inbox directory; empty disables the watcher in the server.
	Dir         string
	SettleDelay time.Duration
}

// Overrides carries values supplied on the command line. Empty fields fall
// through to the environment.
type Overrides struct {
	EnvFile     string
	Environment string
	LogLevel    string
	DataPath    string
	Port        string
	WatchDir    string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line overrides (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(o Overrides) (*Config, error) {
	envFile := o.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(o.Environment, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(o.LogLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			DataPath: getConfigValue(o.DataPath, "DATA_PATH", ""),
		},
		Embedding: EmbeddingConfig{
			BaseURL:           getConfigValue("", "EMBEDDING_BASE_URL", ""),
			APIKey:            getConfigValue("", "EMBEDDING_API_KEY", ""),
			Model:             getConfigValue("", "EMBEDDING_MODEL", ""),
			RequestsPerMinute: getIntConfigValue("", "EMBEDDING_REQUESTS_PER_MINUTE", 60),
		},
		Agent: AgentConfig{
			Command: getConfigValue("", "AGENT_COMMAND", ""),
			Args:    strings.Fields(getConfigValue("", "AGENT_ARGS", "")),
		},
		Notifier: NotifierConfig{
			WebhookURL: getConfigValue("", "WEBHOOK_URL", ""),
			Username:   getConfigValue("", "WEBHOOK_USERNAME", "gamerec"),
		},
		Server: ServerConfig{
			Port:        getConfigValue(o.Port, "SERVER_PORT", "8080"),
			ImportBurst: getIntConfigValue("", "SERVER_IMPORT_BURST", 10),
		},
		Watcher: WatcherConfig{
			Dir: getConfigValue(o.WatchDir, "WATCH_DIR", ""),
		},
	}

	var err error
	if cfg.Similarity, err = loadSimilarity(); err != nil {
		return nil, err
	}
	if cfg.Server.ImportsPerMinute, err = getFloatConfigValue("", "SERVER_IMPORTS_PER_MINUTE", 30); err != nil {
		return nil, err
	}

	durations := []struct {
		dst    *time.Duration
		envKey string
		def    string
	}{
		{&cfg.Embedding.Timeout, "EMBEDDING_TIMEOUT", "30s"},
		{&cfg.Agent.Timeout, "AGENT_TIMEOUT", "2m"},
		{&cfg.Server.ReadTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, "SERVER_WRITE_TIMEOUT", "60s"},
		{&cfg.Server.IdleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
		{&cfg.Watcher.SettleDelay, "WATCH_SETTLE_DELAY", "500ms"},
	}
	for _, d := range durations {
		raw := getConfigValue("", d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}
	if cfg.Watcher.Dir, err = expandPath(cfg.Watcher.Dir, ""); err != nil {
		return nil, fmt.Errorf("invalid watch dir: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func loadSimilarity() (SimilarityConfig, error) {
	s := SimilarityConfig{
		PromptLimit:    getIntConfigValue("", "PROMPT_LIMIT", 10),
		ScorePrecision: getIntConfigValue("", "SCORE_PRECISION", 3),
		Workers:        getIntConfigValue("", "RANK_WORKERS", 4),
	}
	weights := []struct {
		dst    *float64
		envKey string
		def    float64
	}{
		{&s.TagWeight, "WEIGHT_TAG", 0.4},
		{&s.TitleWeight, "WEIGHT_TITLE", 0.2},
		{&s.StorylineWeight, "WEIGHT_STORYLINE", 0.2},
		{&s.SummaryWeight, "WEIGHT_SUMMARY", 0.2},
	}
	for _, w := range weights {
		v, err := getFloatConfigValue("", w.envKey, w.def)
		if err != nil {
			return s, err
		}
		*w.dst = v
	}
	return s, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	s := c.Similarity
	for name, w := range map[string]float64{
		"tag":       s.TagWeight,
		"title":     s.TitleWeight,
		"storyline": s.StorylineWeight,
		"summary":   s.SummaryWeight,
	} {
		if w < 0 {
			return fmt.Errorf("weight %s must not be negative", name)
		}
	}
	if s.TagWeight+s.TitleWeight+s.StorylineWeight+s.SummaryWeight == 0 {
		return errors.New("at least one similarity weight must be positive")
	}
	if s.ScorePrecision < 1 || s.ScorePrecision > 9 {
		return fmt.Errorf("score precision %d out of range 1-9", s.ScorePrecision)
	}
	if s.PromptLimit < 0 {
		return errors.New("prompt limit must not be negative")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	expanded, err := expandPath(c.Storage.DataPath, filepath.Join(homeDir, ".gamerec"))
	if err != nil {
		return err
	}
	c.Storage.DataPath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float from flag, env var, or default.
// Unlike ints, a malformed weight is an error.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) (float64, error) {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue, nil
	}
	result, err := strconv.ParseFloat(strings.TrimSpace(strValue), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return result, nil
}
