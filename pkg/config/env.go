package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CSV splits a comma separated list, dropping blank entries.
func CSV(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// envParsed returns def when key is unset or fails to parse.
func envParsed[T any](key string, def T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return def
	}
	v, err := parse(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return v
}

func EnvDefault(key, def string) string {
	return envParsed(key, def, func(s string) (string, error) { return s, nil })
}

func EnvIntDefault(key string, def int) int {
	return envParsed(key, def, strconv.Atoi)
}

func EnvBoolDefault(key string, def bool) bool {
	return envParsed(key, def, strconv.ParseBool)
}

var errNonPositive = errors.New("non-positive duration")

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	return envParsed(key, def, func(s string) (time.Duration, error) {
		d, err := time.ParseDuration(s)
		if err == nil && d <= 0 {
			err = errNonPositive
		}
		return d, err
	})
}
