// Package stations holds the station model and the client of the remote
// station collection.
package stations

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-station-dashboard/internal/errors"
)

type Status string

const (
	StatusActive      Status = "active"
	StatusInactive    Status = "inactive"
	StatusMaintenance Status = "maintenance"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusActive, StatusInactive, StatusMaintenance}

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusMaintenance:
		return true
	}
	return false
}

func (s Status) Label() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusInactive:
		return "Inactive"
	case StatusMaintenance:
		return "Maintenance"
	default:
		return "Unknown"
	}
}

// Number is a numeric station field. The remote collection sends these either
// as JSON numbers or as numeric strings; anything that does not parse decodes
// as an invalid Number instead of failing the whole document.
type Number struct {
	Value float64
	Valid bool
}

func NewNumber(v float64) Number {
	return Number{Value: v, Valid: true}
}

// ParseNumber parses s after trimming spaces.
func ParseNumber(s string) Number {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Number{}
	}
	return NewNumber(v)
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*n = Number{}
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*n = Number{}
			return nil
		}
		*n = ParseNumber(s)
	default:
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			*n = Number{}
			return nil
		}
		*n = NewNumber(v)
	}
	return nil
}

// String renders the number for form fields, empty when invalid.
func (n Number) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

func (n Number) InRange(min, max float64) bool {
	return n.Valid && n.Value >= min && n.Value <= max
}

// Station is a record of the remote collection. ID is assigned remotely.
type Station struct {
	ID                 string `json:"id,omitempty"`
	Name               string `json:"name"`
	Location           string `json:"location"`
	Status             Status `json:"status"`
	Latitude           Number `json:"latitude"`
	Longitude          Number `json:"longitude"`
	Type               string `json:"type"`
	LastReading        string `json:"lastReading"`
	CurrentTemperature Number `json:"currentTemperature"`
}

// Matches reports whether term is a case-insensitive substring of the name,
// location or type.
func (s Station) Matches(term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(s.Name), term) ||
		strings.Contains(strings.ToLower(s.Location), term) ||
		strings.Contains(strings.ToLower(s.Type), term)
}

const readingLayout = "02/01/2006 15:04"

var readingLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatReading renders the last reading timestamp for display.
func (s Station) FormatReading() string {
	if strings.TrimSpace(s.LastReading) == "" {
		return "No date"
	}
	for _, layout := range readingLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s.LastReading)); err == nil {
			return t.Format(readingLayout)
		}
	}
	return "Invalid date"
}

const (
	MinLatitude     = -90
	MaxLatitude     = 90
	MinLongitude    = -180
	MaxLongitude    = 180
	MinTemperature  = -50
	MaxTemperature  = 60
	DefaultType     = "Principal"
	DefaultTempText = "20"
)

// Input is the station form as submitted.
type Input struct {
	Name               string
	Location           string
	Status             Status
	Type               string
	Latitude           string
	Longitude          string
	CurrentTemperature string
	LastReading        string
}

// NewInput is the blank form of the create modal.
func NewInput() Input {
	return Input{
		Status:             StatusActive,
		Type:               DefaultType,
		Latitude:           "0",
		Longitude:          "0",
		CurrentTemperature: DefaultTempText,
	}
}

// InputFrom fills the form from an existing record.
func InputFrom(s Station) Input {
	return Input{
		Name:               s.Name,
		Location:           s.Location,
		Status:             s.Status,
		Type:               s.Type,
		Latitude:           s.Latitude.String(),
		Longitude:          s.Longitude.String(),
		CurrentTemperature: s.CurrentTemperature.String(),
		LastReading:        s.LastReading,
	}
}

// Validate checks every field and returns the record to send, without an id.
// All failures are reported together as apperrors.FieldErrors.
func (in Input) Validate() (Station, error) {
	fe := apperrors.FieldErrors{}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		fe.Add("name", "Name is required")
	}
	location := strings.TrimSpace(in.Location)
	if location == "" {
		fe.Add("location", "Location is required")
	}

	status := in.Status
	if status == "" {
		status = StatusActive
	}
	if !status.Valid() {
		fe.Add("status", "Status must be active, inactive or maintenance")
	}

	lat := ParseNumber(in.Latitude)
	if !lat.InRange(MinLatitude, MaxLatitude) {
		fe.Add("latitude", "Latitude must be between -90 and 90")
	}
	lng := ParseNumber(in.Longitude)
	if !lng.InRange(MinLongitude, MaxLongitude) {
		fe.Add("longitude", "Longitude must be between -180 and 180")
	}
	temp := ParseNumber(in.CurrentTemperature)
	if !temp.InRange(MinTemperature, MaxTemperature) {
		fe.Add("currentTemperature", "Temperature must be between -50°C and 60°C")
	}

	if err := fe.Err(); err != nil {
		return Station{}, err
	}

	return Station{
		Name:               name,
		Location:           location,
		Status:             status,
		Latitude:           lat,
		Longitude:          lng,
		Type:               strings.TrimSpace(in.Type),
		LastReading:        in.LastReading,
		CurrentTemperature: temp,
	}, nil
}
