package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const configFileVar = "CONFIG_FILE"

// fileValues holds settings read from the optional YAML config file. Keys are
// the lower-cased environment variable names, e.g. "api_url".
type fileValues map[string]string

func loadFile(path string) (fileValues, error) {
	if path == "" {
		return fileValues{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("[config loadFile] failed to read %s: %w", path, err)
	}
	values := fileValues{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("[config loadFile] failed to parse %s: %w", path, err)
	}
	normalised := make(fileValues, len(values))
	for k, v := range values {
		normalised[strings.ToLower(k)] = v
	}
	return normalised, nil
}

// get resolves envVar from the environment first, then the config file, then
// falls back to defaultValue.
func (f fileValues) get(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	if value, ok := f[strings.ToLower(envVar)]; ok && value != "" {
		return value
	}
	return defaultValue
}
