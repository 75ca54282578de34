// Package config loads the roster engine's configuration from defaults, an
// optional YAML file, a .env file and ROSTER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/warp/roster-engine/vacation"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Log      LogConfig      `mapstructure:"log"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	FullRest FullRestConfig `mapstructure:"full_rest"`
	Rules    RulesConfig    `mapstructure:"rules"`
}

// ServerConfig is the HTTP server.
type ServerConfig struct {
	Port int        `mapstructure:"port"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// StorageConfig selects where rules, holidays and requests live.
type StorageConfig struct {
	Driver     string        `mapstructure:"driver"`
	SQLitePath string        `mapstructure:"sqlite_path"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Redis      RedisConfig   `mapstructure:"redis"`
}

// RedisConfig is used by the redis driver.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// LogConfig: Level is a zap level name, Format is "json" or "console".
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CalendarConfig: LunarFile extends the built-in lunar table.
type CalendarConfig struct {
	LunarFile string `mapstructure:"lunar_file"`
}

// FullRestConfig holds the MAJOR holiday allotments.
type FullRestConfig struct {
	SpecialHolidays SpecialHolidaysConfig `mapstructure:"special_holidays"`
}

type SpecialHolidaysConfig struct {
	SpringFestival int `mapstructure:"spring_festival"`
	NationalDay    int `mapstructure:"national_day"`
}

// RulesConfig: FlushInterval is how often unsaved rule changes are retried.
type RulesConfig struct {
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

// Load reads configuration. Priority: environment > .env > file > defaults.
// An empty path looks for config.yaml in ./config and the working directory;
// a missing file is not an error.
func Load(path string) (*Config, error) {
	// .env only fills variables the environment does not already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()

	// ── defaults ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.sqlite_path", "./roster.db")
	v.SetDefault("storage.timeout", "5s")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.prefix", "roster:")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("calendar.lunar_file", "")

	v.SetDefault("full_rest.special_holidays.spring_festival", 9)
	v.SetDefault("full_rest.special_holidays.national_day", 7)

	v.SetDefault("rules.flush_interval", "30s")

	// ── file ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── environment ──
	v.SetEnvPrefix("ROSTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port must be within 1-65535")
	}
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("invalid config: storage.sqlite_path is required for the sqlite driver")
		}
	case DriverRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("invalid config: storage.redis.addr is required for the redis driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("invalid config: storage.driver %q, want sqlite, redis or memory", c.Storage.Driver)
	}
	if c.Storage.Timeout <= 0 {
		return fmt.Errorf("invalid config: storage.timeout must be positive")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid config: log.format %q, want json or console", c.Log.Format)
	}
	if c.FullRest.SpecialHolidays.SpringFestival < 0 || c.FullRest.SpecialHolidays.NationalDay < 0 {
		return fmt.Errorf("invalid config: full_rest.special_holidays must not be negative")
	}
	if c.Rules.FlushInterval <= 0 {
		return fmt.Errorf("invalid config: rules.flush_interval must be positive")
	}
	return nil
}

// FullRestConfig makes Config a vacation.FullRestSource.
func (c *Config) FullRestConfig() *vacation.FullRestConfig {
	return &vacation.FullRestConfig{
		SpecialHolidays: vacation.SpecialHolidayDays{
			SpringFestival: c.FullRest.SpecialHolidays.SpringFestival,
			NationalDay:    c.FullRest.SpecialHolidays.NationalDay,
		},
	}
}

var _ vacation.FullRestSource = (*Config)(nil)
