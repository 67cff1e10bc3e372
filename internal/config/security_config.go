package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	sessionSecretVar = "SESSION_SECRET"
	sessionTTLVar    = "SESSION_TTL"
	resetCodeTTLVar  = "RESET_CODE_TTL"
)

type SecurityConfig interface {
	GetSessionSecret() string
	GetSessionTTL() time.Duration
	GetResetCodeTTL() time.Duration
}

type Security struct {
	v *viper.Viper
}

var _ SecurityConfig = Security{}

// GetSessionSecret returns the HMAC key for session tokens. Empty means a random
// per-process key is generated at startup.
func (s Security) GetSessionSecret() string {
	return s.v.GetString(sessionSecretVar)
}

func (s Security) GetSessionTTL() time.Duration {
	return s.v.GetDuration(sessionTTLVar) // Sessions expire after 24 hours by default
}

func (s Security) GetResetCodeTTL() time.Duration {
	return s.v.GetDuration(resetCodeTTLVar)
}
