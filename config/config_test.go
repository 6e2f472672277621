package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestLoadConfigAndConnectMySQL_TestEnv(t *testing.T) {
	t.Setenv("APPENV", "test")

	cfg := LoadConfig()
	require.NotNil(t, cfg)
	assert.Same(t, cfg, LoadConfig())

	db, err := ConnectMySQL()
	require.NoError(t, err)
	require.NotNil(t, db)
	assert.Equal(t, "sqlite", db.Dialector.Name())
}

func TestConfigDSN(t *testing.T) {
	cfg := &Config{DBUSER: "clinic", DBPass: "pw", DBHost: "db", DBPort: 3307, DBName: "therapy"}
	assert.Equal(t, "clinic:pw@tcp(db:3307)/therapy?charset=utf8mb4&parseTime=true&loc=Local", cfg.DSN())
}

func TestConfigValidate(t *testing.T) {
	assert.ErrorIs(t, (&Config{AppEnv: "production"}).Validate(), ErrMissingJWTSecret)
	assert.ErrorIs(t, (&Config{}).Validate(), ErrMissingJWTSecret)
	assert.NoError(t, (&Config{AppEnv: "production", JWTSecret: "s3cret"}).Validate())
	assert.NoError(t, (&Config{AppEnv: "test"}).Validate())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestLogger_DefaultsToNop(t *testing.T) {
	SetLogger(nil)
	assert.NotNil(t, Logger())

	l := NewLogger("info", "json")
	SetLogger(l)
	defer SetLogger(nil)
	assert.Same(t, l, Logger())
}

func TestGormLogger_LogsSlowAndFailedQueries(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn)
	gl.slowThreshold = 0

	gl.Trace(t.Context(), timeAgo(), func() (string, int64) { return "SELECT 1", 1 }, nil)
	require.Equal(t, 1, logs.FilterMessage("slow query").Len())

	gl.Trace(t.Context(), timeAgo(), func() (string, int64) { return "SELECT 2", 0 }, assert.AnError)
	require.Equal(t, 1, logs.FilterMessage("query failed").Len())

	silent := gl.LogMode(gormlogger.Silent)
	silent.Trace(t.Context(), timeAgo(), func() (string, int64) { return "SELECT 3", 0 }, assert.AnError)
	assert.Equal(t, 2, logs.Len())
}

func timeAgo() time.Time {
	return time.Now().Add(-time.Second)
}
