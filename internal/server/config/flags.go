package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

var (
	valueFlags = []string{
		"-a", "-driver", "-d", "-s", "-t", "-env", "-log-level",
		"-redis", "-max-login-attempts", "-login-cooldown", "-shutdown-timeout",
	}
	boolFlags = []string{"-cookie-secure"}
)

// parseFlags overlays command-line flags onto config.
//
//	-a string                  listen address (e.g. ":8080")
//	-driver string             database driver: pgx or sqlite
//	-d string                  database DSN
//	-s string                  token signing secret
//	-t seconds                 access token validity
//	-cookie-secure bool        mark the refresh cookie Secure
//	-env string                development or production
//	-log-level string          debug, info, warn or error
//	-redis string              Redis address for login throttling
//	-max-login-attempts int    failed logins allowed per window
//	-login-cooldown duration   throttle window
//	-shutdown-timeout duration graceful shutdown limit
//
// Duration flags take seconds ("86400") or a duration string ("24h").
// Parse errors panic, like a malformed JSON file does.
func parseFlags(config *Config) {
	args := flagx.Filter(os.Args[1:], valueFlags, boolFlags)

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to listen on")
	fs.StringVar(&config.DatabaseDriver, "driver", config.DatabaseDriver, "database driver (pgx|sqlite)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing secret")

	timex.DurationVar(fs, &config.AccessTokenValidity, "t", "access token validity (seconds or duration)")

	fs.BoolVar(&config.CookieSecure, "cookie-secure", config.CookieSecure, "set Secure on the refresh token cookie")
	fs.StringVar(&config.Environment, "env", config.Environment, "environment (development|production)")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
	fs.StringVar(&config.RedisAddr, "redis", config.RedisAddr, "redis address for login throttling")
	fs.IntVar(&config.MaxLoginAttempts, "max-login-attempts", config.MaxLoginAttempts, "failed logins allowed per cooldown window")
	timex.DurationVar(fs, &config.LoginCooldown, "login-cooldown", "login throttle window")
	timex.DurationVar(fs, &config.ShutdownTimeout, "shutdown-timeout", "graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
