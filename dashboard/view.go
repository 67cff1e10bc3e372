package dashboard

import (
	"fmt"

	apperrors "github.com/jrsteele09/go-station-dashboard/internal/errors"
	"github.com/jrsteele09/go-station-dashboard/stations"
)

type FetchState string

const (
	FetchLoading FetchState = "loading"
	FetchIdle    FetchState = "idle"
)

type ModalMode string

const (
	ModalClosed ModalMode = "closed"
	ModalView   ModalMode = "view"
	ModalEdit   ModalMode = "edit"
	ModalCreate ModalMode = "create"
)

// StatusAll disables the status filter.
const StatusAll = "all"

type AlertKind string

const (
	AlertSuccess AlertKind = "success"
	AlertWarning AlertKind = "warning"
	AlertInfo    AlertKind = "info"
	AlertError   AlertKind = "error"
)

// AlertAction is what confirming an alert does.
type AlertAction string

const (
	ActionDismiss       AlertAction = "dismiss"
	ActionDeleteStation AlertAction = "delete_station"
	ActionLogout        AlertAction = "logout"
)

// Alert is a blocking notice. Alerts with a CancelText ask for confirmation.
type Alert struct {
	Kind        AlertKind
	Title       string
	Message     string
	ConfirmText string
	CancelText  string
	Action      AlertAction
	TargetID    string
}

func (a Alert) NeedsConfirmation() bool {
	return a.CancelText != ""
}

// Modal is the station form dialog.
type Modal struct {
	Mode      ModalMode
	StationID string
	Form      stations.Input
	Errors    apperrors.FieldErrors
	General   string
}

func (m Modal) Open() bool { return m.Mode != ModalClosed }

func (m Modal) ReadOnly() bool { return m.Mode == ModalView }

// Stats are recomputed from the full station list.
type Stats struct {
	Total              int
	Active             int
	Maintenance        int
	ValidTemperatures  int
	AverageTemperature float64
}

// AverageText renders the average with one decimal, "0" without readings.
func (s Stats) AverageText() string {
	if s.ValidTemperatures == 0 {
		return "0"
	}
	return fmt.Sprintf("%.1f", s.AverageTemperature)
}

func computeStats(list []stations.Station) Stats {
	var (
		stats Stats
		sum   float64
	)
	stats.Total = len(list)
	for _, s := range list {
		switch s.Status {
		case stations.StatusActive:
			stats.Active++
		case stations.StatusMaintenance:
			stats.Maintenance++
		}
		if s.CurrentTemperature.Valid {
			stats.ValidTemperatures++
			sum += s.CurrentTemperature.Value
		}
	}
	if stats.ValidTemperatures > 0 {
		stats.AverageTemperature = sum / float64(stats.ValidTemperatures)
	}
	return stats
}

// Page is one window of the filtered list.
type Page struct {
	Stations   []stations.Station
	Current    int
	TotalPages int
	Filtered   int
	// First and Last are 1-based positions in the filtered list, zero when empty
	First int
	Last  int
}

func (p Page) HasPrev() bool { return p.Current > 1 }

func (p Page) HasNext() bool { return p.Current < p.TotalPages }

func (p Page) Numbers() []int {
	out := make([]int, 0, p.TotalPages)
	for i := 1; i <= p.TotalPages; i++ {
		out = append(out, i)
	}
	return out
}

// View is a snapshot of everything the dashboard renders.
type View struct {
	Fetch         FetchState
	UsingFallback bool
	Search        string
	StatusFilter  string
	Page          Page
	Stats         Stats
	Modal         Modal
	Alert         *Alert
}
