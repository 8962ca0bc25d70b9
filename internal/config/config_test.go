package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:      App{Timezone: "UTC"},
		Database: Database{Driver: "postgres", User: "u", Password: "p", URL: "db:5432/sales"},
		Auth:     Auth{SessionTTL: time.Hour},
		Store:    Store{ErrorPolicy: "LOG"},
	}
}

func TestFinalizeBuildsPostgresDSN(t *testing.T) {
	cfg := validConfig()

	require.NoError(t, cfg.finalize())
	assert.Equal(t, "postgres://u:p@db:5432/sales", cfg.Database.DSN)
	assert.Equal(t, StoreErrorPolicyLog, cfg.Store.ErrorPolicy)
}

func TestFinalizeUsesSQLitePath(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "SQLite"
	cfg.Database.SQLitePath = "/tmp/sales.db"

	require.NoError(t, cfg.finalize())
	assert.Equal(t, "/tmp/sales.db", cfg.Database.DSN)
}

func TestFinalizeRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }},
		{name: "policy", mutate: func(c *Config) { c.Store.ErrorPolicy = "panic" }},
		{name: "ttl", mutate: func(c *Config) { c.Auth.SessionTTL = 0 }},
		{name: "timezone", mutate: func(c *Config) { c.App.Timezone = "Mars/Olympus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.finalize())
		})
	}
}

func TestLocationDefaultsToLocal(t *testing.T) {
	cfg := &Config{}

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}
