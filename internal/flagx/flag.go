// Package flagx holds the small pieces of command-line and config-file
// plumbing shared by the client and the server: argument filtering so each
// config layer only sees its own flags, the -c/-config lookup, a flag.Value
// for durations given in whole seconds and a JSON file loader.
package flagx

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// FilterArgs returns the subset of args made of allowed flags and their values.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -c conf.json
//  2. Flag and value combined with '=':      -config=conf.json
//
// A value is only consumed when the next argument does not look like a flag.
// The result is never nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; !ok {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// JsonConfigFlags extracts the config file path given with -c or -config.
// Other arguments are ignored; an empty string means no file was requested.
func JsonConfigFlags() string {
	var config string

	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(args)

	return config
}

// LoadJSON reads path and unmarshals it into v.
func LoadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Seconds is a flag.Value that reads an integer number of seconds into a
// time.Duration.
type Seconds struct {
	d *time.Duration
}

// SecondsVar defines a seconds flag on fs writing into d. The current value
// of d is the default.
func SecondsVar(fs *flag.FlagSet, d *time.Duration, name string, usage string) {
	fs.Var(&Seconds{d: d}, name, usage)
}

func (s *Seconds) String() string {
	if s == nil || s.d == nil {
		return "0"
	}
	return strconv.Itoa(int(s.d.Seconds()))
}

func (s *Seconds) Set(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid number of seconds %q", v)
	}
	if n < 0 {
		return fmt.Errorf("negative number of seconds %d", n)
	}
	*s.d = time.Duration(n) * time.Second
	return nil
}
