// Package config resolves a (path, key) pair into a driver settings map.
//
// The file is YAML. ${VAR} references are replaced with environment values
// before parsing (unset variables are left verbatim). The key is a dotted
// path into the document:
//
//	cache:
//	  sessions:
//	    addrs: ["${REDIS_ADDR}"]
//	    pool_size: 20
//
//	m, err := config.Load("/etc/app/cache.yaml", "cache.sessions")
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
)

var (
	ErrKeyNotFound = errors.New("config: key not found")
	ErrNotMap      = errors.New("config: value is not a map")
)

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads path and returns the map found at key.
func Load(path, key string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data, key)
}

// Parse is Load over an in-memory document.
func Parse(data []byte, key string) (map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return lookup(doc, key)
}

func expandEnvVars(input string) string {
	return envPattern.ReplaceAllStringFunc(input, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return match
	})
}

func lookup(doc map[string]any, key string) (map[string]any, error) {
	var cur any = doc
	if key != "" {
		for _, part := range strings.Split(key, ".") {
			m, ok := asMap(cur)
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrNotMap, part)
			}
			next, ok := m[part]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
			}
			cur = next
		}
	}
	if cur == nil {
		// "key:" with no body is an empty, valid settings map
		return map[string]any{}, nil
	}
	m, ok := asMap(cur)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotMap, key)
	}
	return m, nil
}

func asMap(v any) (map[string]any, bool) {
	switch mm := v.(type) {
	case map[string]any:
		return mm, true
	case map[any]any:
		out := make(map[string]any, len(mm))
		for k, val := range mm {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}
