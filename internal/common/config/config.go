// internal/common/config/config.go
package config

// Config is the root configuration for the query service.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	GenAI      GenAIConfig      `mapstructure:"genai"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Recognizer RecognizerConfig `mapstructure:"recognizer"`
	Engine     EngineConfig     `mapstructure:"engine"`
	Session    SessionConfig    `mapstructure:"session"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // ms
}

type GenAIConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Timeout     int     `mapstructure:"timeout"` // ms
	MaxRetries  int     `mapstructure:"max_retries"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RecognizerConfig struct {
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
	CacheTTL            int     `mapstructure:"cache_ttl"` // seconds
}

type EngineConfig struct {
	MaxFlattenDepth int `mapstructure:"max_flatten_depth"`
}

type SessionConfig struct {
	IdleTTL       int `mapstructure:"idle_ttl"`       // seconds
	SweepInterval int `mapstructure:"sweep_interval"` // seconds
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
