// Package config provides Viper-based configuration loading for dicebound.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// File is the log destination; empty means stderr.
	File string `mapstructure:"file"`
}

// BlindValues holds one integer per blind.
type BlindValues struct {
	Small int `mapstructure:"small"`
	Big   int `mapstructure:"big"`
	Boss  int `mapstructure:"boss"`
}

// GameConfig holds the tunable rule constants.
type GameConfig struct {
	HandSize  int `mapstructure:"hand_size"`
	MaxCharms int `mapstructure:"max_charms"`
	Hands     int `mapstructure:"hands"`
	Discards  int `mapstructure:"discards"`
	// Rerolls is the per-hand reroll allowance; -1 means unlimited.
	Rerolls       int         `mapstructure:"rerolls"`
	StartingCoins int         `mapstructure:"starting_coins"`
	StartingDice  int         `mapstructure:"starting_dice"`
	InterestStep  int         `mapstructure:"interest_step"`
	InterestCap   int         `mapstructure:"interest_cap"`
	Targets       BlindValues `mapstructure:"targets"`
	Rewards       BlindValues `mapstructure:"rewards"`
	StakeStep     float64     `mapstructure:"stake_step"`
	// Chances are 1-in-N odds.
	LuckyChance      int     `mapstructure:"lucky_chance"`
	FragileChance    int     `mapstructure:"fragile_chance"`
	GlassChance      int     `mapstructure:"glass_chance"`
	SpecialDieChance int     `mapstructure:"special_die_chance"`
	DaggerPerCost    float64 `mapstructure:"dagger_per_cost"`
	DaggerCap        float64 `mapstructure:"dagger_cap"`
	ShopOffers       int     `mapstructure:"shop_offers"`
	ShopRerollCost   int     `mapstructure:"shop_reroll_cost"`
	ShopRerollStep   int     `mapstructure:"shop_reroll_step"`
	RunePackPrice    int     `mapstructure:"rune_pack_price"`
	DicePackPrice    int     `mapstructure:"dice_pack_price"`
	// RainbowPolicy is "color_only" or "hand_and_color".
	RainbowPolicy string `mapstructure:"rainbow_policy"`
	// Seed fixes the random source; 0 means a fresh seed per game.
	Seed uint64 `mapstructure:"seed"`
}

// StorageConfig selects where saved games live.
type StorageConfig struct {
	// Backend is "file" or "postgres".
	Backend string `mapstructure:"backend"`
	// Path is the save file of the file backend.
	Path string `mapstructure:"path"`
	// Slot names the save row of the postgres backend.
	Slot string `mapstructure:"slot"`
}

// ContentConfig locates the catalogue.
type ContentConfig struct {
	// Dir overlays YAML catalogue files on the embedded defaults; empty uses
	// the defaults only.
	Dir string `mapstructure:"dir"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Game     GameConfig     `mapstructure:"game"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Content  ContentConfig  `mapstructure:"content"`
}

// Validate checks all configuration invariants. The database section is
// checked only when the postgres backend is selected.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Backend == "postgres" {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.HandSize < 1 || g.HandSize > 5 {
		errs = append(errs, fmt.Sprintf("game.hand_size must be 1-5, got %d", g.HandSize))
	}
	if g.Hands < 1 {
		errs = append(errs, fmt.Sprintf("game.hands must be >= 1, got %d", g.Hands))
	}
	if g.Discards < 0 {
		errs = append(errs, fmt.Sprintf("game.discards must be >= 0, got %d", g.Discards))
	}
	if g.Rerolls < -1 {
		errs = append(errs, fmt.Sprintf("game.rerolls must be >= -1, got %d", g.Rerolls))
	}
	if g.InterestStep < 1 {
		errs = append(errs, fmt.Sprintf("game.interest_step must be >= 1, got %d", g.InterestStep))
	}
	if g.Targets.Small < 1 || g.Targets.Big < 1 || g.Targets.Boss < 1 {
		errs = append(errs, "game.targets must all be >= 1")
	}
	if g.LuckyChance < 0 || g.FragileChance < 0 || g.GlassChance < 0 || g.SpecialDieChance < 0 {
		errs = append(errs, "game chances must be >= 0")
	}
	if g.DaggerCap < 0 {
		errs = append(errs, fmt.Sprintf("game.dagger_cap must be >= 0, got %v", g.DaggerCap))
	}
	validPolicies := map[string]bool{"color_only": true, "hand_and_color": true}
	if !validPolicies[g.RainbowPolicy] {
		errs = append(errs, fmt.Sprintf("game.rainbow_policy must be one of [color_only, hand_and_color], got %q", g.RainbowPolicy))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	switch s.Backend {
	case "file":
		if s.Path == "" {
			return errors.New("storage.path must not be empty for the file backend")
		}
	case "postgres":
		if s.Slot == "" {
			return errors.New("storage.slot must not be empty for the postgres backend")
		}
	default:
		return fmt.Errorf("storage.backend must be one of [file, postgres], got %q", s.Backend)
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with DICEBOUND_ prefix
	v.SetEnvPrefix("DICEBOUND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) { setDefaults(v) }

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "dicebound.log")

	v.SetDefault("game.hand_size", 5)
	v.SetDefault("game.max_charms", 5)
	v.SetDefault("game.hands", 4)
	v.SetDefault("game.discards", 3)
	v.SetDefault("game.rerolls", 2)
	v.SetDefault("game.starting_coins", 4)
	v.SetDefault("game.starting_dice", 3)
	v.SetDefault("game.interest_step", 5)
	v.SetDefault("game.interest_cap", 5)
	v.SetDefault("game.targets.small", 300)
	v.SetDefault("game.targets.big", 450)
	v.SetDefault("game.targets.boss", 600)
	v.SetDefault("game.rewards.small", 3)
	v.SetDefault("game.rewards.big", 4)
	v.SetDefault("game.rewards.boss", 5)
	v.SetDefault("game.stake_step", 0.5)
	v.SetDefault("game.lucky_chance", 5)
	v.SetDefault("game.fragile_chance", 4)
	v.SetDefault("game.glass_chance", 4)
	v.SetDefault("game.special_die_chance", 10)
	v.SetDefault("game.dagger_per_cost", 0.1)
	v.SetDefault("game.dagger_cap", 3.0)
	v.SetDefault("game.shop_offers", 3)
	v.SetDefault("game.shop_reroll_cost", 5)
	v.SetDefault("game.shop_reroll_step", 1)
	v.SetDefault("game.rune_pack_price", 4)
	v.SetDefault("game.dice_pack_price", 5)
	v.SetDefault("game.rainbow_policy", "color_only")
	v.SetDefault("game.seed", 0)

	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.path", "dicebound.save.json")
	v.SetDefault("storage.slot", "default")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "dicebound")
	v.SetDefault("database.password", "dicebound")
	v.SetDefault("database.name", "dicebound")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("content.dir", "")
}
