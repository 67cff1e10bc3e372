package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	portEnvVar   = "PORT"
	appNameVar   = "APP_NAME"
	folderEnvVar = "FOLDER"
	baseURLVar   = "BASE_URL"
	envVar       = "ENV"
)

// EnvDev is the development environment; route tables and reset codes are
// only shown there.
const EnvDev = "DEV"

type EnvVars struct {
	v *viper.Viper
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.v.GetString(portEnvVar)
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.v.GetString(appNameVar)
}

func (e EnvVars) GetDataFolder() string {
	return e.v.GetString(folderEnvVar)
}

// GetEnv returns the deployment environment, upper-cased ("DEV", "PRODUCTION", ...)
func (e EnvVars) GetEnv() string {
	env := strings.ToUpper(e.v.GetString(envVar))
	if env == "" {
		return EnvDev
	}
	return env
}

// GetBaseURL returns the externally visible URL of the dashboard (e.g., "https://stations.example.com")
func (e EnvVars) GetBaseURL() string {
	return strings.TrimRight(e.v.GetString(baseURLVar), "/")
}
