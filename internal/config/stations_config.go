package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	stationsAPIURLVar   = "STATIONS_API_URL"
	stationsAPITokenVar = "STATIONS_API_TOKEN"
	stationsPageSizeVar = "STATIONS_PAGE_SIZE"
	stationsMockAPIVar  = "STATIONS_MOCK_API"
	stationsTimeoutVar  = "STATIONS_TIMEOUT"
)

// MockAPIPath is where the built-in station collection is mounted when enabled.
const MockAPIPath = "/mockapi"

type StationsConfig interface {
	GetStationsAPIURL() string
	GetStationsAPIToken() string
	GetStationsPageSize() int
	GetStationsTimeout() time.Duration
	GetMockAPIEnabled() bool
}

type Stations struct {
	v *viper.Viper
}

var _ StationsConfig = Stations{}

// GetStationsAPIURL returns the base URL of the remote collection (the URL that
// "/stations" is appended to). Falls back to the built-in mock API.
func (s Stations) GetStationsAPIURL() string {
	if u := s.v.GetString(stationsAPIURLVar); u != "" {
		return u
	}
	return EnvVars{v: s.v}.GetBaseURL() + MockAPIPath
}

func (s Stations) GetStationsAPIToken() string {
	return s.v.GetString(stationsAPITokenVar)
}

func (s Stations) GetStationsPageSize() int {
	if n := s.v.GetInt(stationsPageSizeVar); n > 0 {
		return n
	}
	return 10
}

func (s Stations) GetStationsTimeout() time.Duration {
	return s.v.GetDuration(stationsTimeoutVar)
}

// GetMockAPIEnabled reports whether the built-in collection is served. It is on
// by default when no remote URL is configured.
func (s Stations) GetMockAPIEnabled() bool {
	if s.v.IsSet(stationsMockAPIVar) {
		return s.v.GetBool(stationsMockAPIVar)
	}
	return s.v.GetString(stationsAPIURLVar) == ""
}
