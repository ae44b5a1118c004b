package config

import "time"

type Config interface {
	EnvConfig
	TokenConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
	GetAPIURL() string
	GetRequestTimeout() time.Duration
	IsProduction() bool
}

type mainConfig struct {
	EnvVars
	Tokens
	Security
}

// New builds the configuration from the environment, layered over the YAML
// file named by CONFIG_FILE when it is set.
func New() (Config, error) {
	values, err := loadFile(GetEnv(configFileVar, ""))
	if err != nil {
		return nil, err
	}
	return mainConfig{
		EnvVars:  EnvVars{file: values},
		Tokens:   Tokens{file: values},
		Security: Security{file: values},
	}, nil
}
