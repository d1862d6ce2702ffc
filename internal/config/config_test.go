package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Should apply defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		c, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "50051", c.GRPCPort)
		assert.Equal(t, "8080", c.WebPort)
		assert.Equal(t, 15*time.Minute, c.TokenTTL)
		assert.Equal(t, "log", c.Notify.Driver)
		assert.Equal(t, 5*time.Second, c.Notify.Timeout)
		assert.Equal(t, 10, c.RateLimitBurst)

		loc, err := c.Location()
		require.NoError(t, err)
		assert.Equal(t, "America/Sao_Paulo", loc.String())
	})

	t.Run("Should require a JWT secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("Should reject unknown notification drivers", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("NOTIFY_DRIVER", "pigeon")
		_, err := Load()
		assert.ErrorContains(t, err, "NOTIFY_DRIVER")
	})

	t.Run("Should reject unknown time zones", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("APP_TIMEZONE", "Mars/Olympus")
		_, err := Load()
		assert.ErrorContains(t, err, "APP_TIMEZONE")
	})
}

func TestSQLitePath(t *testing.T) {
	t.Run("Should detect the embedded store", func(t *testing.T) {
		c := &Config{DatabaseURL: "sqlite:/var/lib/agenda.db"}
		p, ok := c.SQLitePath()
		assert.True(t, ok)
		assert.Equal(t, "/var/lib/agenda.db", p)

		_, ok = (&Config{DatabaseURL: "postgres://localhost/x"}).SQLitePath()
		assert.False(t, ok)
	})
}
