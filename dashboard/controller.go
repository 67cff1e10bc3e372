// Package dashboard holds the per-session state of the station dashboard:
// the cached station list, search, filter and pagination, the station modal
// and blocking alerts.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/jrsteele09/go-station-dashboard/internal/errors"
	"github.com/jrsteele09/go-station-dashboard/stations"
	"github.com/rs/zerolog"
)

const DefaultPageSize = 10

const msgSaveFailed = "Error saving the station. Please try again."

// Controller owns one session's dashboard. State changes run under mu. List
// fetches release mu while the request is in flight so the view can report
// loading; whichever fetch or mutation completes last sets the list.
type Controller struct {
	mu       sync.Mutex
	repo     stations.Repository
	pageSize int
	logger   zerolog.Logger
	nowTime  func() time.Time

	stations     []stations.Station
	loaded       bool
	fetching     int
	fallback     bool
	search       string
	statusFilter string
	page         int
	modal        Modal
	alert        *Alert

	// unix nanoseconds, read by the registry without taking mu
	lastUsed atomic.Int64
}

type ControllerOption func(*Controller)

func WithPageSize(size int) ControllerOption {
	return func(c *Controller) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

func WithLogger(logger zerolog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ControllerOption {
	return func(c *Controller) {
		c.nowTime = nowFunc
	}
}

func NewController(repo stations.Repository, options ...ControllerOption) *Controller {
	c := &Controller{
		repo:         repo,
		pageSize:     DefaultPageSize,
		logger:       zerolog.Nop(),
		nowTime:      time.Now,
		statusFilter: StatusAll,
		page:         1,
		modal:        Modal{Mode: ModalClosed},
	}
	for _, opt := range options {
		opt(c)
	}
	c.touch(c.nowTime())
	return c
}

// EnsureLoaded fetches the list on first use. A first fetch already in flight
// is not repeated.
func (c *Controller) EnsureLoaded(ctx context.Context) {
	c.mu.Lock()
	pending := c.loaded || c.fetching > 0
	c.mu.Unlock()

	if !pending {
		c.Refresh(ctx)
	}
}

// Refresh refetches the list, falling back to the fixed dataset on failure.
// View reports FetchLoading until the request returns.
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.Lock()
	c.fetching++
	c.mu.Unlock()

	list, fallback := c.repo.ListWithFallback(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fetching--
	c.stations = list
	c.fallback = fallback
	c.loaded = true
	c.logger.Debug().Int("stations", len(list)).Bool("fallback", fallback).Msg("station list loaded")
}

// SetSearch changes the search term; a new term returns to page 1.
func (c *Controller) SetSearch(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if term != c.search {
		c.search = term
		c.page = 1
	}
}

// SetStatusFilter accepts StatusAll or a station status; anything else means StatusAll.
// A new filter returns to page 1.
func (c *Controller) SetStatusFilter(filter string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !stations.Status(filter).Valid() {
		filter = StatusAll
	}
	if filter != c.statusFilter {
		c.statusFilter = filter
		c.page = 1
	}
}

// GoToPage moves to page, clamped to [1, totalPages].
func (c *Controller) GoToPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.page = clamp(page, c.totalPages(len(c.filtered())))
}

// Filtered returns the stations that pass the search term and status filter.
func (c *Controller) Filtered() []stations.Station {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.filtered()
}

func (c *Controller) filtered() []stations.Station {
	out := make([]stations.Station, 0, len(c.stations))
	for _, s := range c.stations {
		if !s.Matches(c.search) {
			continue
		}
		if c.statusFilter != StatusAll && string(s.Status) != c.statusFilter {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (c *Controller) totalPages(n int) int {
	return (n + c.pageSize - 1) / c.pageSize
}

// View snapshots the dashboard for rendering.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	filtered := c.filtered()
	total := c.totalPages(len(filtered))
	current := c.page
	if current > total {
		current = clamp(current, total)
	}

	page := Page{Current: current, TotalPages: total, Filtered: len(filtered)}
	start := (current - 1) * c.pageSize
	if start < len(filtered) {
		end := min(start+c.pageSize, len(filtered))
		page.Stations = filtered[start:end]
		page.First = start + 1
		page.Last = end
	}

	v := View{
		Fetch:         c.fetchState(),
		UsingFallback: c.fallback,
		Search:        c.search,
		StatusFilter:  c.statusFilter,
		Page:          page,
		Stats:         computeStats(c.stations),
		Modal:         c.modal,
	}
	if c.alert != nil {
		a := *c.alert
		v.Alert = &a
	}
	return v
}

// Stations returns a copy of the full cached list.
func (c *Controller) Stations() []stations.Station {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]stations.Station(nil), c.stations...)
}

// OpenModal opens the station dialog. create ignores id; view and edit need
// a station in the list.
func (c *Controller) OpenModal(mode ModalMode, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch mode {
	case ModalCreate:
		form := stations.NewInput()
		form.LastReading = c.nowTime().UTC().Format(time.RFC3339)
		c.modal = Modal{Mode: ModalCreate, Form: form}
		return nil
	case ModalView, ModalEdit:
		s, ok := c.find(id)
		if !ok {
			return apperrors.Wrapf(apperrors.ErrNotFound, "[Controller OpenModal] station %s", id)
		}
		c.modal = Modal{Mode: mode, StationID: id, Form: stations.InputFrom(s)}
		return nil
	default:
		return fmt.Errorf("[Controller OpenModal] unknown mode %q", mode)
	}
}

func (c *Controller) CloseModal() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.modal = Modal{Mode: ModalClosed}
}

// Save validates in and creates or updates according to the mode the modal
// was opened with. Invalid input never reaches the repository. On success the
// modal closes and a success alert is raised.
func (c *Controller) Save(ctx context.Context, in stations.Input) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.modal.Mode {
	case ModalClosed:
		return ErrModalClosed
	case ModalView:
		return ErrReadOnlyModal
	}

	c.modal.Form = in
	c.modal.Errors = nil
	c.modal.General = ""

	record, err := in.Validate()
	if err != nil {
		var fe apperrors.FieldErrors
		if errors.As(err, &fe) {
			c.modal.Errors = fe
		}
		return fmt.Errorf("[Controller Save] %w", err)
	}

	if c.modal.Mode == ModalCreate {
		return c.create(ctx, record)
	}
	return c.update(ctx, c.modal.StationID, record)
}

func (c *Controller) create(ctx context.Context, record stations.Station) error {
	created, err := c.repo.Create(ctx, record)
	if err != nil {
		c.logger.Error().Err(err).Str("name", record.Name).Msg("station create failed")
		c.modal.General = msgSaveFailed
		return fmt.Errorf("[Controller Save] %w", err)
	}

	c.resync(ctx, func() { c.stations = append(c.stations, created) })
	c.modal = Modal{Mode: ModalClosed}
	c.alert = &Alert{
		Kind:        AlertSuccess,
		Title:       "Station Created",
		Message:     fmt.Sprintf("The station %q has been created successfully.", record.Name),
		ConfirmText: "OK",
		Action:      ActionDismiss,
	}
	c.logger.Info().Str("station_id", created.ID).Str("name", created.Name).Msg("station created")
	return nil
}

func (c *Controller) update(ctx context.Context, id string, record stations.Station) error {
	updated, err := c.repo.Update(ctx, id, record)
	if err != nil {
		c.logger.Error().Err(err).Str("station_id", id).Msg("station update failed")
		c.modal.General = msgSaveFailed
		return fmt.Errorf("[Controller Save] %w", err)
	}

	c.resync(ctx, func() {
		for i := range c.stations {
			if c.stations[i].ID == id {
				c.stations[i] = updated
			}
		}
	})
	c.modal = Modal{Mode: ModalClosed}
	c.alert = &Alert{
		Kind:        AlertSuccess,
		Title:       "Station Updated",
		Message:     fmt.Sprintf("The station %q has been updated successfully.", updated.Name),
		ConfirmText: "OK",
		Action:      ActionDismiss,
	}
	c.logger.Info().Str("station_id", id).Msg("station updated")
	return nil
}

// RequestDelete raises the confirmation alert. Nothing is deleted until
// ConfirmDelete.
func (c *Controller) RequestDelete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.alert = &Alert{
		Kind:        AlertWarning,
		Title:       "Confirm Deletion",
		Message:     fmt.Sprintf("Are you sure you want to delete the station %s? This action cannot be undone.", c.stationLabel(id, "this station")),
		ConfirmText: "Delete",
		CancelText:  "Cancel",
		Action:      ActionDeleteStation,
		TargetID:    id,
	}
}

// ConfirmDelete issues the delete requested by RequestDelete and reports the
// outcome with an alert. A failed delete leaves the list unchanged.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.confirmDelete(ctx)
}

func (c *Controller) confirmDelete(ctx context.Context) error {
	if c.alert == nil || c.alert.Action != ActionDeleteStation {
		return ErrNoPendingDelete
	}
	id := c.alert.TargetID
	label := c.stationLabel(id, "selected")
	c.alert = nil

	if err := c.repo.Delete(ctx, id); err != nil {
		c.logger.Error().Err(err).Str("station_id", id).Msg("station delete failed")
		c.alert = &Alert{
			Kind:        AlertError,
			Title:       "Delete Failed",
			Message:     "The station could not be deleted. Please try again.",
			ConfirmText: "OK",
			Action:      ActionDismiss,
		}
		return fmt.Errorf("[Controller ConfirmDelete] %w", err)
	}

	c.resync(ctx, func() {
		kept := c.stations[:0]
		for _, s := range c.stations {
			if s.ID != id {
				kept = append(kept, s)
			}
		}
		c.stations = kept
	})
	if c.modal.StationID == id {
		c.modal = Modal{Mode: ModalClosed}
	}
	c.alert = &Alert{
		Kind:        AlertSuccess,
		Title:       "Station Deleted",
		Message:     fmt.Sprintf("The station %s has been deleted successfully.", label),
		ConfirmText: "OK",
		Action:      ActionDismiss,
	}
	c.logger.Info().Str("station_id", id).Msg("station deleted")
	return nil
}

// CancelDelete drops a pending delete confirmation.
func (c *Controller) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.alert != nil && c.alert.Action == ActionDeleteStation {
		c.alert = nil
	}
}

// RequestLogout raises the logout confirmation; the caller ends the session
// when ConfirmAlert returns ActionLogout.
func (c *Controller) RequestLogout() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.alert = &Alert{
		Kind:        AlertWarning,
		Title:       "Sign Out",
		Message:     "Are you sure you want to sign out?",
		ConfirmText: "Sign Out",
		CancelText:  "Cancel",
		Action:      ActionLogout,
	}
}

// ConfirmAlert carries out the action of the open alert and returns it.
func (c *Controller) ConfirmAlert(ctx context.Context) (AlertAction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.alert == nil {
		return ActionDismiss, nil
	}
	switch action := c.alert.Action; action {
	case ActionDeleteStation:
		return action, c.confirmDelete(ctx)
	case ActionLogout:
		c.alert = nil
		return action, nil
	default:
		c.alert = nil
		return ActionDismiss, nil
	}
}

func (c *Controller) DismissAlert() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.alert = nil
}

// resync reloads the list after a mutation. When the reload fails the
// mutation's own response is applied instead.
func (c *Controller) resync(ctx context.Context, applyLocally func()) {
	list, err := c.repo.List(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("station resync failed, applying change locally")
		applyLocally()
		return
	}
	c.stations = list
	c.fallback = false
}

func (c *Controller) find(id string) (stations.Station, bool) {
	for _, s := range c.stations {
		if s.ID == id {
			return s, true
		}
	}
	return stations.Station{}, false
}

func (c *Controller) stationLabel(id, otherwise string) string {
	if s, ok := c.find(id); ok && strings.TrimSpace(s.Name) != "" {
		return fmt.Sprintf("%q", s.Name)
	}
	return otherwise
}

func (c *Controller) fetchState() FetchState {
	if c.fetching > 0 {
		return FetchLoading
	}
	return FetchIdle
}

func (c *Controller) touch(now time.Time) {
	c.lastUsed.Store(now.UnixNano())
}

func (c *Controller) idleSince() time.Time {
	return time.Unix(0, c.lastUsed.Load())
}

func clamp(page, totalPages int) int {
	return max(1, min(page, totalPages))
}
