package loader

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
)

// DefaultEnvPrefix is the prefix of environment variables read by default.
const DefaultEnvPrefix = "ANSISTR_"

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	prefix  string            // Environment variable prefix (e.g., "ANSISTR_")
	mapping map[string]string // Env var -> config path
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "ANSISTR_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(prefix),
	}
}

// NewEnvLoaderWithMapping creates a loader with custom environment variable mappings.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: mapping,
	}
}

// defaultEnvMapping covers variables whose names do not split cleanly
// into section and key.
func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "LOG_LEVEL":  "logging.level",
		prefix + "LOG_FORMAT": "logging.format",
		prefix + "EMAIL":      "license.email",
		prefix + "KEY":        "license.key",
	}
}

// Load reads environment variables and returns a configuration map.
// Note: Empty string values are treated as valid values, not as unset.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for env, path := range l.mapping {
		if val, ok := os.LookupEnv(env); ok {
			setByPath(config, path, l.parseValue(val))
		}
	}

	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, l.prefix) {
			continue
		}
		name, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		if _, mapped := l.mapping[name]; mapped {
			continue
		}
		setByPath(config, l.envToPath(name), l.parseValue(value))
	}

	return config, nil
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}

// RemoveMapping removes an environment variable mapping.
func (l *EnvLoader) RemoveMapping(envVar string) {
	delete(l.mapping, envVar)
}

// envToPath converts ANSISTR_BUFFER_EMBED_SIZE to buffer.embed_size: the
// first word names the section, the rest is the snake_case key.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.ToLower(strings.TrimPrefix(env, l.prefix))
	section, key, ok := strings.Cut(name, "_")
	if !ok {
		return section
	}
	return section + "." + key
}

// parseValue attempts to parse the string value into an appropriate type.
// Digits always parse as integers so that sizes of 0 and 1 stay numeric.
func (l *EnvLoader) parseValue(s string) any {
	if s == "" {
		return s
	}

	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return i
	}

	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}

	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}

	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data

	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
