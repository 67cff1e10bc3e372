package stations

import "time"

// FallbackStations is shown when the collection cannot be listed, so the
// first load is never empty. Readings are stamped relative to now.
func FallbackStations(now time.Time) []Station {
	return []Station{
		{
			ID:                 "1",
			Name:               "Central Station",
			Location:           "City Centre",
			Status:             StatusActive,
			Latitude:           NewNumber(-34.6037),
			Longitude:          NewNumber(-58.3816),
			Type:               "Principal",
			LastReading:        now.UTC().Format(time.RFC3339),
			CurrentTemperature: NewNumber(22.5),
		},
		{
			ID:                 "2",
			Name:               "North Station",
			Location:           "North Zone",
			Status:             StatusActive,
			Latitude:           NewNumber(-34.5875),
			Longitude:          NewNumber(-58.3974),
			Type:               "Secondary",
			LastReading:        now.Add(-5 * time.Minute).UTC().Format(time.RFC3339),
			CurrentTemperature: NewNumber(21.8),
		},
	}
}
