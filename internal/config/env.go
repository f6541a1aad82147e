package config

import (
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GRIDSTORM_"

// envMapping holds shorthand variables that do not follow the
// GRIDSTORM_SECTION_KEY pattern.
var envMapping = map[string]string{
	"GRIDSTORM_LOG_LEVEL": "logging.level",
	"GRIDSTORM_LOG_FILE":  "logging.file",
	"GRIDSTORM_DATA":      "data.path",
}

// envOverlay reads GRIDSTORM_* variables from environ into a nested map.
// GRIDSTORM_GRID_EMPTY_TEXT becomes grid.empty_text.
func envOverlay(environ []string) map[string]any {
	out := make(map[string]any)
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		path, mapped := envMapping[name]
		if !mapped {
			path = envToPath(name)
		}
		if path == "" {
			continue
		}
		setByPath(out, path, parseEnvValue(value))
	}
	return out
}

// envToPath converts GRIDSTORM_DATA_SAVE_EDITS to data.save_edits. A name
// without a key part maps to nothing.
func envToPath(env string) string {
	section, key, ok := strings.Cut(strings.TrimPrefix(env, EnvPrefix), "_")
	if !ok || section == "" || key == "" {
		return ""
	}
	return strings.ToLower(section) + "." + strings.ToLower(key)
}

// parseEnvValue converts booleans and numbers; anything else stays a string.
func parseEnvValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
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

// deepMerge merges src into dst. Maps merge recursively; other values in
// src replace those in dst.
func deepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	for key, srcVal := range src {
		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dst[key].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = deepMerge(dstMap, srcMap)
			continue
		}
		dst[key] = srcVal
	}
	return dst
}
