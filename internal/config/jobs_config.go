package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	sessionPurgeScheduleVar = "SESSION_PURGE_SCHEDULE"
	controllerIdleTTLVar    = "CONTROLLER_IDLE_TTL"
)

type JobsConfig interface {
	GetSessionPurgeSchedule() string
	GetControllerIdleTTL() time.Duration
}

type Jobs struct {
	v *viper.Viper
}

var _ JobsConfig = Jobs{}

// GetSessionPurgeSchedule is a six-field cron spec (with seconds). Hourly by default.
func (j Jobs) GetSessionPurgeSchedule() string {
	return j.v.GetString(sessionPurgeScheduleVar)
}

// GetControllerIdleTTL is how long an unused dashboard stays in memory.
func (j Jobs) GetControllerIdleTTL() time.Duration {
	return j.v.GetDuration(controllerIdleTTLVar)
}
