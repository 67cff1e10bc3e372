package stations_test

import (
	"encoding/json"
	"testing"

	apperrors "github.com/jrsteele09/go-station-dashboard/internal/errors"
	"github.com/jrsteele09/go-station-dashboard/stations"
	"github.com/stretchr/testify/require"
)

func TestNumberDecoding(t *testing.T) {
	tests := []struct {
		in   string
		want stations.Number
	}{
		{`22.5`, stations.NewNumber(22.5)},
		{`"21.8"`, stations.NewNumber(21.8)},
		{`" -3 "`, stations.NewNumber(-3)},
		{`"n/a"`, stations.Number{}},
		{`""`, stations.Number{}},
		{`null`, stations.Number{}},
		{`true`, stations.Number{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var n stations.Number
			require.NoError(t, json.Unmarshal([]byte(tt.in), &n))
			require.Equal(t, tt.want, n)
		})
	}
}

func TestStationDecodesMixedShapes(t *testing.T) {
	var list []stations.Station
	err := json.Unmarshal([]byte(`[
		{"id":"1","name":"A","latitude":"10.5","longitude":20,"currentTemperature":"hot","status":"active"},
		{"id":"2","name":"B","latitude":1,"longitude":2,"currentTemperature":18,"status":"maintenance"}
	]`), &list)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, stations.NewNumber(10.5), list[0].Latitude)
	require.False(t, list[0].CurrentTemperature.Valid)

	out, err := json.Marshal(list[0])
	require.NoError(t, err)
	require.Contains(t, string(out), `"latitude":10.5`)
	require.Contains(t, string(out), `"currentTemperature":null`)
}

func TestStationMatches(t *testing.T) {
	s := stations.Station{Name: "Central Station", Location: "City Centre", Type: "Principal"}
	require.True(t, s.Matches("central"))
	require.True(t, s.Matches("CITY"))
	require.True(t, s.Matches("princ"))
	require.True(t, s.Matches(""))
	require.False(t, s.Matches("north"))
}

func TestFormatReading(t *testing.T) {
	require.Equal(t, "No date", stations.Station{}.FormatReading())
	require.Equal(t, "Invalid date", stations.Station{LastReading: "yesterday"}.FormatReading())
	require.Equal(t, "01/03/2024 10:30", stations.Station{LastReading: "2024-03-01T10:30:00.000Z"}.FormatReading())
	require.Equal(t, "01/03/2024 00:00", stations.Station{LastReading: "2024-03-01"}.FormatReading())
}

func TestStatusLabel(t *testing.T) {
	require.Equal(t, "Active", stations.StatusActive.Label())
	require.Equal(t, "Maintenance", stations.StatusMaintenance.Label())
	require.Equal(t, "Unknown", stations.Status("broken").Label())
}

func TestInputValidate(t *testing.T) {
	valid := stations.Input{
		Name:               " Test ",
		Location:           "X",
		Status:             stations.StatusActive,
		Type:               "Principal",
		Latitude:           "10",
		Longitude:          "20",
		CurrentTemperature: "15",
	}

	t.Run("valid", func(t *testing.T) {
		s, err := valid.Validate()
		require.NoError(t, err)
		require.Equal(t, "Test", s.Name)
		require.Equal(t, stations.NewNumber(10), s.Latitude)
		require.Empty(t, s.ID)
	})

	t.Run("boundaries are inclusive", func(t *testing.T) {
		in := valid
		in.Latitude, in.Longitude, in.CurrentTemperature = "-90", "180", "60"
		_, err := in.Validate()
		require.NoError(t, err)
	})

	t.Run("every failing field is reported", func(t *testing.T) {
		in := stations.Input{
			Name:               " ",
			Location:           "",
			Latitude:           "90.1",
			Longitude:          "abc",
			CurrentTemperature: "-51",
		}
		_, err := in.Validate()
		require.ErrorIs(t, err, apperrors.ErrValidation)

		var fe apperrors.FieldErrors
		require.ErrorAs(t, err, &fe)
		require.Equal(t, "Name is required", fe["name"])
		require.Equal(t, "Location is required", fe["location"])
		require.Equal(t, "Latitude must be between -90 and 90", fe["latitude"])
		require.Equal(t, "Longitude must be between -180 and 180", fe["longitude"])
		require.Equal(t, "Temperature must be between -50°C and 60°C", fe["currentTemperature"])
		require.NotContains(t, fe, "status")
	})

	t.Run("unknown status", func(t *testing.T) {
		in := valid
		in.Status = "retired"
		_, err := in.Validate()
		var fe apperrors.FieldErrors
		require.ErrorAs(t, err, &fe)
		require.Contains(t, fe, "status")
	})

	t.Run("round trip through the form", func(t *testing.T) {
		s, err := valid.Validate()
		require.NoError(t, err)
		again, err := stations.InputFrom(s).Validate()
		require.NoError(t, err)
		require.Equal(t, s, again)
	})
}
