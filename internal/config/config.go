package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DataDir         string       `mapstructure:"data_dir"`
	DebugAssertions bool         `mapstructure:"debug_assertions"`
	Log             LogConfig    `mapstructure:"log"`
	Store           StoreConfig  `mapstructure:"store"`
	Server          ServerConfig `mapstructure:"server"`
	Redis           RedisConfig  `mapstructure:"redis"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type StoreConfig struct {
	MaxSaveAttempts int `mapstructure:"max_save_attempts"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// RedisConfig enables change notifications when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// Load reads defaults, an optional .env file, BOOKMARKS_* environment variables
// and config.yaml from the data directory, in increasing priority.
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	// .env is optional
	_ = godotenv.Load()

	defaultDataDir := filepath.Join(homeDir, ".bookmarks")

	v := viper.New()
	v.SetDefault("data_dir", defaultDataDir)
	v.SetDefault("debug_assertions", false)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.pretty", true)
	v.SetDefault("store.max_save_attempts", 4)
	v.SetDefault("server.addr", "127.0.0.1:8377")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "bookmarks:changes")

	// Environment variable overrides
	v.SetEnvPrefix("BOOKMARKS")
	v.AutomaticEnv()
	v.BindEnv("data_dir", "BOOKMARKS_DATA_DIR")
	v.BindEnv("debug_assertions", "BOOKMARKS_DEBUG_ASSERTIONS")
	v.BindEnv("log.level", "BOOKMARKS_LOG_LEVEL")
	v.BindEnv("server.addr", "BOOKMARKS_SERVER_ADDR")
	v.BindEnv("redis.addr", "BOOKMARKS_REDIS_ADDR")
	v.BindEnv("redis.password", "BOOKMARKS_REDIS_PASSWORD")

	// Config file lives in the data dir, which may itself come from the environment.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(v.GetString("data_dir"))

	// Read config file if exists (ignore error if not found)
	_ = v.ReadInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Store.MaxSaveAttempts < 1 {
		cfg.Store.MaxSaveAttempts = 1
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DBPath is the location of the bookmarks database.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "Bookmarks.sqlite")
}
