package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostgresConfig_Strings(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: "5432", User: "rental", Password: "secret", DBName: "rental"}

	assert.Equal(t, "host=db port=5432 user=rental password=secret dbname=rental sslmode=disable TimeZone=UTC", cfg.DSN())
	assert.Equal(t, "postgres://rental:secret@db:5432/rental?sslmode=disable", cfg.DatabaseURL())

	cfg.SSLMode = "require"
	assert.Contains(t, cfg.DatabaseURL(), "sslmode=require")
}
