// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	House    HouseConfig    `mapstructure:"house"`
	Sessions SessionsConfig `mapstructure:"sessions"`
	Claims   ClaimsConfig   `mapstructure:"claims"`
	Games    GamesConfig    `mapstructure:"games"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// HouseConfig holds bet bounds and the house fee.
type HouseConfig struct {
	FeePct     float64 `mapstructure:"fee_pct"`
	MinBet     int64   `mapstructure:"min_bet"`
	MaxBet     int64   `mapstructure:"max_bet"`
	DefaultBet int64   `mapstructure:"default_bet"`
}

// SessionsConfig holds the interactive session manager settings.
type SessionsConfig struct {
	Capacity      int           `mapstructure:"capacity"`
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// ClaimsConfig holds periodic reward configuration.
type ClaimsConfig struct {
	DailyReward    int64         `mapstructure:"daily_reward"`
	DailyCooldown  time.Duration `mapstructure:"daily_cooldown"`
	WeeklyReward   int64         `mapstructure:"weekly_reward"`
	WeeklyCooldown time.Duration `mapstructure:"weekly_cooldown"`
	FishCooldown   time.Duration `mapstructure:"fish_cooldown"`
}

// GamesConfig holds game-specific configuration.
type GamesConfig struct {
	Mines     MinesConfig     `mapstructure:"mines"`
	TicTacToe TicTacToeConfig `mapstructure:"tictactoe"`
}

// MinesConfig holds mines game configuration.
type MinesConfig struct {
	DefaultMines int `mapstructure:"default_mines"`
	MaxMines     int `mapstructure:"max_mines"`
}

// TicTacToeConfig holds tic-tac-toe reward configuration.
// The game is free to enter, so only rewards are configurable.
type TicTacToeConfig struct {
	WinReward  int64 `mapstructure:"win_reward"`
	DrawReward int64 `mapstructure:"draw_reward"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase,
	// e.g. DATABASE_HOST, HOUSE_FEE_PCT, SESSIONS_CAPACITY.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing config file is fine; env vars can provide everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "casino")
	v.SetDefault("database.name", "casino")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	// House defaults
	v.SetDefault("house.fee_pct", 5.0)
	v.SetDefault("house.min_bet", 1)
	v.SetDefault("house.max_bet", 100000)
	v.SetDefault("house.default_bet", 1)

	// Session manager defaults
	v.SetDefault("sessions.capacity", 500)
	v.SetDefault("sessions.ttl", "3m")
	v.SetDefault("sessions.sweep_interval", "30s")

	// Claim defaults
	v.SetDefault("claims.daily_reward", 150)
	v.SetDefault("claims.daily_cooldown", "24h")
	v.SetDefault("claims.weekly_reward", 800)
	v.SetDefault("claims.weekly_cooldown", "168h")
	v.SetDefault("claims.fish_cooldown", "10m")

	// Game defaults
	v.SetDefault("games.mines.default_mines", 3)
	v.SetDefault("games.mines.max_mines", 12)
	v.SetDefault("games.tictactoe.win_reward", 100)
	v.SetDefault("games.tictactoe.draw_reward", 25)
}
