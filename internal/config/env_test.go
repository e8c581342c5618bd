package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvDefaultsAndOverrides(t *testing.T) {
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("DB_NAME", "hajj")
	t.Setenv("DB_USER", "root")
	t.Setenv("REMINDER_INTERVAL", "30m")
	t.Setenv("DOCUMENT_STORAGE", " S3 ")
	t.Setenv("S3_BUCKET", "docs")

	env, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", env.AppAddr)
	assert.Equal(t, "3306", env.DBPort)
	assert.Equal(t, 30*time.Minute, env.ReminderInterval)
	assert.Equal(t, 72*time.Hour, env.ReminderCooldown)
	assert.Equal(t, "s3", env.DocumentStorage)
	assert.Equal(t, 10, env.AssistantRatePerMinute)
	assert.NoError(t, env.Validate())
}

func TestValidateReportsMissingKeys(t *testing.T) {
	err := Env{}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SECRET_KEY")
	assert.Contains(t, err.Error(), "DB_NAME")
	assert.Contains(t, err.Error(), "DB_USER")
}

func TestValidateS3NeedsBucket(t *testing.T) {
	env := Env{SecretKey: "k", DBName: "n", DBUser: "u", DocumentStorage: "s3"}
	assert.Error(t, env.Validate())
}

func TestDSN(t *testing.T) {
	env := Env{DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "3307", DBName: "hajj"}
	dsn := env.DSN()
	assert.True(t, strings.HasPrefix(dsn, "u:p@tcp(db:3307)/hajj?"))
	assert.Contains(t, dsn, "parseTime=true")
}
