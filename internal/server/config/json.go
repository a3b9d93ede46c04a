package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Pointer fields
// distinguish "absent" from zero values so that a partial file only
// overrides what it mentions. Durations accept "1s" or a number of seconds.
type JsonConfig struct {
	ListenAddr          *string         `json:"listen_addr"`
	DatabaseDriver      *string         `json:"database_driver"`
	DatabaseDSN         *string         `json:"database_dsn"`
	SecretKey           *string         `json:"secret_key"`
	AccessTokenValidity *timex.Duration `json:"access_token_validity"`
	CookieSecure        *bool           `json:"cookie_secure"`
	Environment         *string         `json:"environment"`
	LogLevel            *string         `json:"log_level"`
	RedisAddr           *string         `json:"redis_addr"`
	MaxLoginAttempts    *int            `json:"max_login_attempts"`
	LoginCooldown       *timex.Duration `json:"login_cooldown"`
	ShutdownTimeout     *timex.Duration `json:"shutdown_timeout"`
}

// parseJson loads the file given by -c or -config, if any, into config.
// An unreadable file or invalid JSON panics: the server must not start on a
// half-read configuration.
func parseJson(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setIf(&config.ListenAddr, c.ListenAddr)
	setIf(&config.DatabaseDriver, c.DatabaseDriver)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.SecretKey, c.SecretKey)
	setIf(&config.CookieSecure, c.CookieSecure)
	setIf(&config.Environment, c.Environment)
	setIf(&config.LogLevel, c.LogLevel)
	setIf(&config.RedisAddr, c.RedisAddr)
	setIf(&config.MaxLoginAttempts, c.MaxLoginAttempts)

	if c.AccessTokenValidity != nil {
		config.AccessTokenValidity = c.AccessTokenValidity.Duration
	}
	if c.LoginCooldown != nil {
		config.LoginCooldown = c.LoginCooldown.Duration
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
