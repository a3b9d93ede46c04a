package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-driver", "sqlite", "-d", "file:auth.db", "-s", "secret",
				"-t", "3600", "-cookie-secure=false", "-env", "production", "-log-level", "debug",
				"-redis", "redis:6379", "-max-login-attempts", "10", "-login-cooldown", "2m",
				"-shutdown-timeout", "3s",
			},
			expected: &Config{
				ListenAddr:          "127.0.0.1:9090",
				DatabaseDriver:      "sqlite",
				DatabaseDSN:         "file:auth.db",
				SecretKey:           "secret",
				AccessTokenValidity: time.Hour,
				CookieSecure:        false,
				Environment:         "production",
				LogLevel:            "debug",
				RedisAddr:           "redis:6379",
				MaxLoginAttempts:    10,
				LoginCooldown:       2 * time.Minute,
				ShutdownTimeout:     3 * time.Second,
			},
		},
		{
			name: "unknown flags are left to other consumers",
			args: []string{"cmd", "-x", "1", "-a", ":1"},
			expected: func() *Config {
				c := defaults()
				c.ListenAddr = ":1"
				return &c
			}(),
		},
		{
			name: "durations take seconds or duration strings",
			args: []string{"cmd", "-t", "24h", "-login-cooldown", "900", "-shutdown-timeout", "5"},
			expected: func() *Config {
				c := defaults()
				c.AccessTokenValidity = 24 * time.Hour
				c.LoginCooldown = 15 * time.Minute
				c.ShutdownTimeout = 5 * time.Second
				return &c
			}(),
		},
		{
			name:        "bad integer panics",
			args:        []string{"cmd", "-t", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := defaults()

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(&config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(&config) })
			assert.Empty(t, cmp.Diff(tt.expected, &config))
		})
	}
}
