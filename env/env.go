package env

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
)

var envPrefixes = []string{""}

// SetPrefixes sets the prefixes tried, in order, before every key.
// With no prefixes the key is looked up as-is.
func SetPrefixes(prefixes ...string) {
	if len(prefixes) == 0 {
		envPrefixes = []string{""}
		return
	}
	envPrefixes = prefixes
}

// Lookup returns the first non-empty value of key under any prefix.
func Lookup(key string) (string, bool) {
	for _, prefix := range envPrefixes {
		value, ok := os.LookupEnv(prefix + key)
		if ok && value != "" {
			return value, true
		}
	}
	return "", false
}

// Has reports whether key is set to a non-empty value under any prefix.
func Has(key string) bool {
	_, ok := Lookup(key)
	return ok
}

// GetEnv returns the parsed value of key, or defaultValue when it is unset.
func GetEnv[T any](key string, defaultValue T, parser func(string) (T, error)) (T, error) {
	value, ok := Lookup(key)
	if !ok {
		return defaultValue, nil
	}
	parsed, err := parser(value)
	if err != nil {
		return defaultValue, fmt.Errorf("env %s: invalid %T value %q: %w", key, parsed, value, err)
	}
	return parsed, nil
}

func GetEnvString(key string, defaultValue string) string {
	if value, ok := Lookup(key); ok {
		return value
	}
	return defaultValue
}

func GetEnvBool(key string, defaultValue bool) (bool, error) {
	return GetEnv(key, defaultValue, strconv.ParseBool)
}

func GetEnvFloat(key string, defaultValue float64) (float64, error) {
	return GetEnv(key, defaultValue, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// GetEnvCommaSep splits the value of key on commas and trims every element.
// Empty elements are dropped, so "a, ,b" yields [a b].
func GetEnvCommaSep(key string, defaultValue []string) []string {
	value, ok := Lookup(key)
	if !ok {
		return defaultValue
	}
	strs := strings.Split(value, ",")
	out := make([]string, 0, len(strs))
	for _, str := range strs {
		if str = strings.TrimSpace(str); str != "" {
			out = append(out, str)
		}
	}
	return out
}

// Keys returns the set keys, prefixes stripped, that start with keyPrefix.
func Keys(keyPrefix string) []string {
	var keys []string
	for _, kv := range os.Environ() {
		name, value, _ := strings.Cut(kv, "=")
		if value == "" {
			continue
		}
		for _, prefix := range envPrefixes {
			if key, ok := strings.CutPrefix(name, prefix); ok && strings.HasPrefix(key, keyPrefix) {
				if !slices.Contains(keys, key) {
					keys = append(keys, key)
				}
				break
			}
		}
	}
	slices.Sort(keys)
	return keys
}
