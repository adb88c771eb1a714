package cmd

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

type Config struct {
	Input       string         `mapstructure:"input"`
	ExcludeFile string         `mapstructure:"exclude-file"`
	Concurrency int            `mapstructure:"concurrency"`
	Filters     FiltersConfig  `mapstructure:"filters"`
	Weights     WeightsConfig  `mapstructure:"weights"`
	AI          AIConfig       `mapstructure:"ai"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Redis       RedisConfig    `mapstructure:"redis"`
}

type FiltersConfig struct {
	Statuses         []string `mapstructure:"statuses"`
	Agencies         []string `mapstructure:"agencies"`
	MinimumRelevance float64  `mapstructure:"minimum-relevance"`
	SkipExpired      bool     `mapstructure:"skip-expired"`
}

type WeightsConfig struct {
	Relevance map[string]float64 `mapstructure:"relevance"`
	Risk      map[string]float64 `mapstructure:"risk"`
}

type AIConfig struct {
	Enabled  bool         `mapstructure:"enabled"`
	Provider string       `mapstructure:"provider"`
	Gemini   GeminiConfig `mapstructure:"gemini"`
	Cache    CacheConfig  `mapstructure:"cache"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file" env:"BIDSCOUT_GEMINI_API_KEY_FILE"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type ServerConfig struct {
	Listen       string        `mapstructure:"listen" env:"BIDSCOUT_LISTEN"`
	ReadTimeout  time.Duration `mapstructure:"read-timeout"`
	WriteTimeout time.Duration `mapstructure:"write-timeout"`
}

type DatabaseConfig struct {
	URL      string `mapstructure:"url" env:"BIDSCOUT_DATABASE_URL"`
	URLFile  string `mapstructure:"url-file"`
	MaxConns int    `mapstructure:"max-conns"`
}

type RedisConfig struct {
	URL string `mapstructure:"url" env:"BIDSCOUT_REDIS_URL"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("concurrency", 8)
	v.SetDefault("filters.skip-expired", true)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.gemini.max-retries", 3)
	v.SetDefault("ai.gemini.max-log-length", 2000)
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.read-timeout", 15*time.Second)
	v.SetDefault("server.write-timeout", 60*time.Second)
	v.SetDefault("database.max-conns", 10)
}

// getConfig decodes the viper state and applies environment overrides.
func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper(), env.Options{})
}

func decodeConfig(v *viper.Viper, opts env.Options) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := env.ParseWithOptions(&config, opts); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}
	return &config, nil
}
