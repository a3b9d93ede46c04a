// Package flagx lets several independent flag sets share os.Args: each
// consumer filters out the flags it owns and parses only those.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps only the flags listed in valueFlags (each followed by its
// value) from args. See Filter.
func FilterArgs(args []string, valueFlags []string) []string {
	return Filter(args, valueFlags, nil)
}

// Filter returns the subset of args that belongs to the given flags.
//
// Flag names match regardless of the number of leading dashes, so "-config"
// also matches "--config". Value flags accept both "-a value" and "-a=value";
// boolean flags never consume the following argument, only "-flag" or
// "-flag=true|false". The order of kept arguments is preserved.
func Filter(args []string, valueFlags []string, boolFlags []string) []string {
	values := nameSet(valueFlags)
	bools := nameSet(boolFlags)

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, hasValue := strings.Cut(arg, "=")
		name = normalize(name)

		if _, ok := bools[name]; ok {
			filtered = append(filtered, arg)
			continue
		}

		if _, ok := values[name]; !ok {
			continue
		}

		filtered = append(filtered, arg)
		if hasValue {
			continue
		}

		// value is the next token unless it looks like another flag
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigFileFlag returns the JSON config path given with -c or -config, or
// an empty string. Other arguments are ignored.
func ConfigFileFlag() string {
	var config string

	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(args)

	return config
}

func nameSet(flags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(flags))
	for _, f := range flags {
		set[normalize(f)] = struct{}{}
	}
	return set
}

func normalize(name string) string {
	return strings.TrimLeft(name, "-")
}
