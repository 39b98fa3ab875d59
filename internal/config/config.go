// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	Agent      AgentConfig      `mapstructure:"agent" yaml:"agent"`
	Classifier ClassifierConfig `mapstructure:"classifier" yaml:"classifier"`
	Memory     MemoryConfig     `mapstructure:"memory" yaml:"memory"`
	Executor   ExecutorConfig   `mapstructure:"executor" yaml:"executor"`
}

// LoggerConfig controls the global zap logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// AgentConfig bounds a single decision-loop session.
type AgentConfig struct {
	MaxIterations int           `mapstructure:"max_iterations" yaml:"max_iterations"`
	ActTimeout    time.Duration `mapstructure:"act_timeout" yaml:"act_timeout"`
	// MaxSessions caps how many sessions the service runs concurrently.
	MaxSessions int `mapstructure:"max_sessions" yaml:"max_sessions"`
}

// ClassifierConfig controls training and persistence of the intent model.
type ClassifierConfig struct {
	ModelPath    string  `mapstructure:"model_path" yaml:"model_path"`
	HiddenSize   int     `mapstructure:"hidden_size" yaml:"hidden_size"`
	Epochs       int     `mapstructure:"epochs" yaml:"epochs"`
	LearningRate float64 `mapstructure:"learning_rate" yaml:"learning_rate"`
	DatasetSize  int     `mapstructure:"dataset_size" yaml:"dataset_size"`
	Seed         int64   `mapstructure:"seed" yaml:"seed"`
	// Alternatives is how many runner-up categories Predict reports.
	Alternatives int `mapstructure:"alternatives" yaml:"alternatives"`
}

// MemoryConfig controls the experience memory store.
type MemoryConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
	// MaxRecall caps the number of experiences FindSimilar returns.
	MaxRecall int `mapstructure:"max_recall" yaml:"max_recall"`
}

// ExecutorConfig controls the bridge to the external execution collaborator.
type ExecutorConfig struct {
	// RateLimit is the sustained dispatch rate (plans per second) allowed
	// toward the collaborator. Burst permits short spikes above it.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
	Burst     int     `mapstructure:"burst" yaml:"burst"`
	// DryRun substitutes the simulated executor for the real collaborator.
	DryRun bool `mapstructure:"dry_run" yaml:"dry_run"`
}

// NewDefaultConfig creates a configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for every configuration parameter.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "autopentest")
	v.SetDefault("logger.log_file", "autopentest.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Agent --
	v.SetDefault("agent.max_iterations", 5)
	v.SetDefault("agent.act_timeout", "10m")
	v.SetDefault("agent.max_sessions", 4)

	// -- Classifier --
	v.SetDefault("classifier.model_path", "data/intent_model.json")
	v.SetDefault("classifier.hidden_size", 32)
	v.SetDefault("classifier.epochs", 50)
	v.SetDefault("classifier.learning_rate", 0.01)
	v.SetDefault("classifier.dataset_size", 2000)
	v.SetDefault("classifier.seed", 1337)
	v.SetDefault("classifier.alternatives", 3)

	// -- Memory --
	v.SetDefault("memory.path", "data/experience_memory.json")
	v.SetDefault("memory.max_recall", 10)

	// -- Executor --
	v.SetDefault("executor.rate_limit", 1.0)
	v.SetDefault("executor.burst", 2)
	v.SetDefault("executor.dry_run", false)
}

// Validate checks the configuration for values that would render the
// decision loop inoperable. It normalizes rather than rejects where a safe
// fallback exists, mirroring the loop's degrade-don't-crash policy.
func (c *Config) Validate() error {
	if c.Agent.MaxIterations <= 0 {
		return fmt.Errorf("agent.max_iterations must be positive, got %d", c.Agent.MaxIterations)
	}
	if c.Classifier.HiddenSize <= 0 {
		return fmt.Errorf("classifier.hidden_size must be positive, got %d", c.Classifier.HiddenSize)
	}
	if c.Classifier.LearningRate <= 0 {
		return fmt.Errorf("classifier.learning_rate must be positive, got %f", c.Classifier.LearningRate)
	}
	if c.Executor.RateLimit <= 0 {
		c.Executor.RateLimit = 1.0
	}
	if c.Executor.Burst <= 0 {
		c.Executor.Burst = 1
	}
	if c.Memory.MaxRecall <= 0 {
		c.Memory.MaxRecall = 10
	}
	return nil
}
