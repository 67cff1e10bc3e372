package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config interface {
	EnvConfig
	CorsConfig
	SecurityConfig
	StationsConfig
	StorageConfig
	JobsConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetBaseURL() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Security
	Stations
	Storage
	Jobs
}

// New loads configuration from the environment and an optional config.yaml
// found in the working directory or ./config.
func New() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("[config New] read config file: %w", err)
		}
	}
	return FromViper(v), nil
}

// FromViper wraps an already populated viper instance.
func FromViper(v *viper.Viper) Config {
	return mainConfig{
		EnvVars:  EnvVars{v: v},
		Cors:     Cors{v: v},
		Security: Security{v: v},
		Stations: Stations{v: v},
		Storage:  Storage{v: v},
		Jobs:     Jobs{v: v},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(portEnvVar, "8080")
	v.SetDefault(appNameVar, "Station Dashboard")
	v.SetDefault(folderEnvVar, "./data")
	v.SetDefault(baseURLVar, "http://localhost:8080")
	v.SetDefault(envVar, "DEV")

	v.SetDefault(allowedOriginsVar, []string{})

	v.SetDefault(sessionTTLVar, 24*time.Hour)
	v.SetDefault(resetCodeTTLVar, 15*time.Minute)

	v.SetDefault(stationsPageSizeVar, 10)
	v.SetDefault(stationsTimeoutVar, 30*time.Second)

	v.SetDefault(storageBackendVar, string(StorageBackendFile))
	v.SetDefault(redisAddrVar, "127.0.0.1:6379")
	v.SetDefault(redisDBVar, 0)

	v.SetDefault(sessionPurgeScheduleVar, "0 0 * * * *")
	v.SetDefault(controllerIdleTTLVar, 2*time.Hour)
}
