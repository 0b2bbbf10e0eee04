package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "rental", cfg.DBConfig.DBName)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaConfig.Brokers)
	assert.True(t, decimal.RequireFromString("0.5").Equal(cfg.DepositRate))
	assert.Equal(t, "0 0 * * * *", cfg.Scheduler.ExpirySchedule)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 15*time.Minute, cfg.JWTConfig.AccessTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RENTAL_SERVICE_PORT", "9090")
	t.Setenv("RENTAL_APP_ENV", "production")
	t.Setenv("RENTAL_JWT_SECRET", "s3cret")
	t.Setenv("RENTAL_KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("RENTAL_DEPOSIT_RATE", "0.3")
	t.Setenv("RENTAL_SCHEDULER_ENABLED", "false")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "s3cret", cfg.JWTConfig.Secret)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaConfig.Brokers)
	assert.True(t, decimal.RequireFromString("0.3").Equal(cfg.DepositRate))
	assert.False(t, cfg.Scheduler.Enabled)
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]map[string]string{
		"deposit rate above one": {"RENTAL_DEPOSIT_RATE": "1.5"},
		"deposit rate garbage":   {"RENTAL_DEPOSIT_RATE": "half"},
		"bad schedule":           {"RENTAL_EXPIRY_SCHEDULE": "every hour"},
		"missing secret in prod": {"RENTAL_APP_ENV": "production"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := load(viper.New())
			assert.Error(t, err)
		})
	}
}
