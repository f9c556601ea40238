package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Table   TableConfig   `mapstructure:"table"`
	History HistoryConfig `mapstructure:"history"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	FrontendURL  string        `mapstructure:"frontend_url"` // allowed CORS origin
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type TableConfig struct {
	StartingBalance int `mapstructure:"starting_balance"`
	MaxWager        int `mapstructure:"max_wager"` // 0 means no limit
}

type HistoryConfig struct {
	Limit int `mapstructure:"limit"`
}

// Load reads configuration from file and environment variables. Environment
// variables override file values and use the CASINO_ prefix with underscores
// for nesting, e.g. CASINO_SERVER_PORT or CASINO_TABLE_STARTING_BALANCE.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.frontend_url", "http://localhost:5173")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("table.starting_balance", 250)
	v.SetDefault("table.max_wager", 0)
	v.SetDefault("history.limit", 20)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("CASINO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Table.StartingBalance < 0 {
		return nil, fmt.Errorf("table.starting_balance must not be negative, got %d", cfg.Table.StartingBalance)
	}
	if cfg.History.Limit <= 0 {
		cfg.History.Limit = 20
	}

	return &cfg, nil
}
