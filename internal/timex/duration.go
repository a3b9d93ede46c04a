// Package timex holds small time helpers shared by configuration code.
//
// Every duration setting reads the same way on every surface: a bare integer
// is a number of seconds, anything else goes through time.ParseDuration.
package timex

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseSeconds parses "86400" as 86400 seconds and "15m" or "1h30m" with
// time.ParseDuration.
func ParseSeconds(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return secondsToDuration(float64(n))
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: want seconds or a duration like \"15m\"", s)
	}
	return d, nil
}

func secondsToDuration(n float64) (time.Duration, error) {
	d := n * float64(time.Second)
	if d > math.MaxInt64 || d < math.MinInt64 {
		return 0, fmt.Errorf("duration of %v seconds overflows", n)
	}
	return time.Duration(d), nil
}

// Duration wraps time.Duration so it can be read from JSON either as a
// duration string ("15m") or as a number of seconds.
type Duration struct {
	time.Duration
}

// MarshalJSON writes the duration in its string form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "1s" style strings and plain numbers of seconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		parsed, err := secondsToDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	case string:
		parsed, err := ParseSeconds(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return errors.New("invalid duration")
	}
}

type durationValue struct {
	p *time.Duration
}

func (v durationValue) String() string {
	if v.p == nil {
		return "0s"
	}
	return v.p.String()
}

func (v durationValue) Set(s string) error {
	d, err := ParseSeconds(s)
	if err != nil {
		return err
	}
	*v.p = d
	return nil
}

// DurationVar defines a flag that reads seconds or a duration string into p.
func DurationVar(fs *flag.FlagSet, p *time.Duration, name, usage string) {
	fs.Var(durationValue{p: p}, name, usage)
}
