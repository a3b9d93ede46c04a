package config

import (
	"fmt"
	"reflect"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

const EnvPrefix = "GOPHAUTH_"

// parseEnv overlays GOPHAUTH_* variables onto config. Unset variables leave
// the current values alone. Durations take seconds or a duration string.
func parseEnv(config *Config) error {
	opts := env.Options{
		Prefix: EnvPrefix,
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(time.Duration(0)): func(v string) (any, error) {
				return timex.ParseSeconds(v)
			},
		},
	}
	if err := env.ParseWithOptions(config, opts); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
