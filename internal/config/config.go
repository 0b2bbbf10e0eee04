package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/thuexe/service-rental/internal/platform/database"
)

// EnvPrefix namespaces every environment variable read by the service.
const EnvPrefix = "RENTAL"

// JWTConfig holds token validation settings.
type JWTConfig struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// KafkaConfig holds broker settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// SchedulerConfig controls the background expiry job.
type SchedulerConfig struct {
	Enabled        bool
	ExpirySchedule string
}

// ServiceConfig holds all configuration for the rental service.
type ServiceConfig struct {
	Port              string
	AppEnv            string
	DBConfig          database.PostgresConfig
	JWTConfig         JWTConfig
	KafkaConfig       KafkaConfig
	Scheduler         SchedulerConfig
	DepositRate       decimal.Decimal
	IdempotencyDBPath string
	IdempotencyTTL    time.Duration
}

// IsDevelopment reports whether the service runs with development conveniences.
func (c *ServiceConfig) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Load reads configuration from a .env file (when present), an optional config.yaml,
// and RENTAL_-prefixed environment variables, in increasing precedence.
func Load() (*ServiceConfig, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*ServiceConfig, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	setDefaults(v)

	rate, err := decimal.NewFromString(v.GetString("DEPOSIT_RATE"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEPOSIT_RATE: %w", err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("DEPOSIT_RATE must be within [0, 1], got %s", rate)
	}

	secret := v.GetString("JWT_SECRET")
	appEnv := v.GetString("APP_ENV")
	if secret == "" && appEnv != "development" {
		return nil, fmt.Errorf("JWT_SECRET is required outside development")
	}

	schedule := v.GetString("EXPIRY_SCHEDULE")
	if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow).Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid EXPIRY_SCHEDULE %q: %w", schedule, err)
	}

	port := v.GetString("SERVICE_PORT")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	return &ServiceConfig{
		Port:   port,
		AppEnv: appEnv,
		DBConfig: database.PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWTConfig: JWTConfig{
			Secret:          secret,
			AccessTokenTTL:  v.GetDuration("JWT_ACCESS_TTL"),
			RefreshTokenTTL: v.GetDuration("JWT_REFRESH_TTL"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     splitList(v.GetString("KAFKA_BROKERS")),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		Scheduler: SchedulerConfig{
			Enabled:        v.GetBool("SCHEDULER_ENABLED"),
			ExpirySchedule: schedule,
		},
		DepositRate:       rate,
		IdempotencyDBPath: v.GetString("IDEMPOTENCY_DB_PATH"),
		IdempotencyTTL:    v.GetDuration("IDEMPOTENCY_TTL"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "rental")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "")
	v.SetDefault("DEPOSIT_RATE", "0.5")
	v.SetDefault("SCHEDULER_ENABLED", true)
	v.SetDefault("EXPIRY_SCHEDULE", "0 0 * * * *")
	v.SetDefault("IDEMPOTENCY_DB_PATH", "idempotency.db")
	v.SetDefault("IDEMPOTENCY_TTL", "24h")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
