package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	// StoreErrorPolicyLog keeps failed store writes silent for the client, only logging them
	StoreErrorPolicyLog = "log"
	// StoreErrorPolicySurface returns failed store writes to the client
	StoreErrorPolicySurface = "surface"
)

type Config struct {
	App          App          `mapstructure:",squash"`
	Server       Server       `mapstructure:",squash"`
	Database     Database     `mapstructure:",squash"`
	Auth         Auth         `mapstructure:",squash"`
	Store        Store        `mapstructure:",squash"`
	DailySummary DailySummary `mapstructure:",squash"`
	SecretKey    string       `mapstructure:"secret_key"`
}

type App struct {
	LogLevel       string `mapstructure:"log_level"`
	Env            string `mapstructure:"app_env"`
	Timezone       string `mapstructure:"timezone"`
	Locale         string `mapstructure:"locale"`
	CurrencySymbol string `mapstructure:"currency_symbol"`
}

type Server struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Database struct {
	DSN        string `mapstructure:"-"`
	Driver     string `mapstructure:"database_driver"`
	Password   string `mapstructure:"database_password"`
	URL        string `mapstructure:"database_url"`
	User       string `mapstructure:"database_user"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type Auth struct {
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	AdminEmail    string        `mapstructure:"admin_email"`
	AdminPassword string        `mapstructure:"admin_password"`
	AdminName     string        `mapstructure:"admin_name"`
}

type Store struct {
	ErrorPolicy string `mapstructure:"store_error_policy"`
}

type DailySummary struct {
	CronSchedule string `mapstructure:"daily_summary_cron"`
	LookbackDays int    `mapstructure:"daily_summary_lookback_days"`
	Enabled      bool   `mapstructure:"daily_summary_enabled"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")

	viper.SetDefault("LOG_LEVEL", "debug")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("TIMEZONE", "Local")
	viper.SetDefault("LOCALE", "en-IN")
	viper.SetDefault("CURRENCY_SYMBOL", "₹")

	viper.SetDefault("DATABASE_DRIVER", DriverSQLite)
	viper.SetDefault("DATABASE_URL", "localhost:5432/sales?sslmode=disable")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")
	viper.SetDefault("SQLITE_PATH", "sales.db")

	viper.SetDefault("SECRET_KEY", "your_secret_key")
	viper.SetDefault("SESSION_TTL", "24h")
	viper.SetDefault("ADMIN_EMAIL", "")
	viper.SetDefault("ADMIN_PASSWORD", "")
	viper.SetDefault("ADMIN_NAME", "Admin")

	viper.SetDefault("STORE_ERROR_POLICY", StoreErrorPolicyLog)

	viper.SetDefault("DAILY_SUMMARY_CRON", "5 0 * * *") // every day at 00:05
	viper.SetDefault("DAILY_SUMMARY_LOOKBACK_DAYS", 3)
	viper.SetDefault("DAILY_SUMMARY_ENABLED", false)
}

func NewConfig() (*Config, error) {
	loadEnvFile()

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Debug("viper could not read .env, relying on environment: ", err)
	}

	err := viper.Unmarshal(config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	if err := config.finalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// finalize derives computed fields and rejects unusable values
func (c *Config) finalize() error {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	switch c.Database.Driver {
	case DriverPostgres:
		c.Database.DSN = fmt.Sprintf(
			"%s://%s:%s@%s",
			c.Database.Driver,
			c.Database.User,
			c.Database.Password,
			c.Database.URL,
		)
	case DriverSQLite:
		c.Database.DSN = c.Database.SQLitePath
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	c.Store.ErrorPolicy = strings.ToLower(strings.TrimSpace(c.Store.ErrorPolicy))
	if c.Store.ErrorPolicy != StoreErrorPolicyLog && c.Store.ErrorPolicy != StoreErrorPolicySurface {
		return fmt.Errorf("unsupported store error policy %q", c.Store.ErrorPolicy)
	}

	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.Auth.SessionTTL)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.App.Env != "" {
		os.Setenv("APP_ENV", c.App.Env)
	}

	return nil
}

// Location resolves the configured time zone used for calendar days
func (c *Config) Location() (*time.Location, error) {
	if c.App.Timezone == "" || c.App.Timezone == "Local" {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.App.Timezone, err)
	}

	return loc, nil
}

func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("could not resolve working directory: ", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("loaded .env from ", location)
			return
		}
	}

	logrus.Debug("no .env file found, using process environment")
}
