package config

import (
	"os"
	"strings"
	"time"
)

const (
	portEnvVar           = "PORT"
	appNameVar           = "APP_NAME"
	folderEnvVar         = "FOLDER"
	apiURLVar            = "API_URL"
	envVar               = "ENV"
	requestTimeoutEnvVar = "REQUEST_TIMEOUT"

	envProduction = "PRODUCTION"
)

type EnvVars struct {
	file fileValues
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.file.get(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.file.get(appNameVar, "Fine-Tune Admin")
}

func (e EnvVars) GetDataFolder() string {
	return e.file.get(folderEnvVar, "./data")
}

func (e EnvVars) GetEnv() string {
	return strings.ToUpper(e.file.get(envVar, "DEV"))
}

// GetAPIURL returns the base URL of the REST API (e.g., "https://api.example.com")
func (e EnvVars) GetAPIURL() string {
	return strings.TrimRight(e.file.get(apiURLVar, "http://localhost:3000"), "/")
}

func (e EnvVars) GetRequestTimeout() time.Duration {
	d, err := time.ParseDuration(e.file.get(requestTimeoutEnvVar, "30s"))
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

func (e EnvVars) IsProduction() bool {
	return e.GetEnv() == envProduction
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
