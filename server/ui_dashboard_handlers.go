package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-station-dashboard/dashboard"
	apperrors "github.com/jrsteele09/go-station-dashboard/internal/errors"
	"github.com/jrsteele09/go-station-dashboard/stations"
	"github.com/jrsteele09/go-station-dashboard/users"
)

const (
	sectionStations = "stations"
	sectionProfile  = "profile"

	dashboardPage = "dashboard.html"
)

// DashboardPageData is the template model of the signed in pages
type DashboardPageData struct {
	AppName     string
	User        users.PublicUser
	MemberSince string
	Section     string
	View        dashboard.View
	// StatusFilters are the options of the status filter, "all" first
	StatusFilters []string

	// Change password form
	ProfileError   string
	ProfileSuccess string
}

func (s *Server) dashboardData(r *http.Request, section string, ctrl *dashboard.Controller) DashboardPageData {
	session := sessionFrom(r)
	data := DashboardPageData{
		AppName:       s.config.GetAppName(),
		User:          session.User,
		Section:       section,
		View:          ctrl.View(),
		StatusFilters: statusFilters(),
	}
	if !data.User.CreatedAt.IsZero() {
		data.MemberSince = data.User.CreatedAt.Local().Format("02/01/2006")
	}
	return data
}

func statusFilters() []string {
	out := []string{dashboard.StatusAll}
	for _, st := range stations.Statuses {
		out = append(out, string(st))
	}
	return out
}

func (s *Server) controllerFor(r *http.Request) *dashboard.Controller {
	return s.dashboards.Get(sessionFrom(r).ID)
}

// renderDashboard writes the whole page, or the "dashboard_body" block for HTMX.
func (s *Server) renderDashboard(w http.ResponseWriter, r *http.Request, data DashboardPageData) {
	name := layoutTemplate
	if isHTMXRequest(r) {
		name = "dashboard_body"
	}
	s.renderTemplate(w, dashboardPage, name, data)
}

// DashboardHandler renders the station list, loading it on first visit
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl := s.controllerFor(r)
		ctrl.EnsureLoaded(r.Context())
		s.renderDashboard(w, r, s.dashboardData(r, sectionStations, ctrl))
	}
}

// dashboardAction runs action against the session's controller, then
// re-renders the dashboard for HTMX or redirects back to it.
func (s *Server) dashboardAction(action func(ctx context.Context, r *http.Request, ctrl *dashboard.Controller)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		ctrl := s.controllerFor(r)
		ctrl.EnsureLoaded(r.Context())
		action(r.Context(), r, ctrl)

		if !isHTMXRequest(r) {
			http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
			return
		}
		s.renderDashboard(w, r, s.dashboardData(r, sectionStations, ctrl))
	}
}

func (s *Server) SearchHandler() http.HandlerFunc {
	return s.dashboardAction(func(_ context.Context, r *http.Request, ctrl *dashboard.Controller) {
		ctrl.SetSearch(r.FormValue("search"))
		if filter := r.FormValue("status"); filter != "" {
			ctrl.SetStatusFilter(filter)
		}
	})
}

func (s *Server) PageHandler() http.HandlerFunc {
	return s.dashboardAction(func(_ context.Context, r *http.Request, ctrl *dashboard.Controller) {
		page, err := strconv.Atoi(r.FormValue("page"))
		if err != nil {
			page = 1
		}
		ctrl.GoToPage(page)
	})
}

func (s *Server) RefreshHandler() http.HandlerFunc {
	return s.dashboardAction(func(ctx context.Context, _ *http.Request, ctrl *dashboard.Controller) {
		ctrl.Refresh(ctx)
	})
}

// OpenModalHandler opens the station dialog in mode
func (s *Server) OpenModalHandler(mode dashboard.ModalMode) http.HandlerFunc {
	return s.dashboardAction(func(_ context.Context, r *http.Request, ctrl *dashboard.Controller) {
		if err := ctrl.OpenModal(mode, r.PathValue("id")); err != nil {
			s.logger.Debug().Err(err).Str("station_id", r.PathValue("id")).Msg("modal not opened")
		}
	})
}

func (s *Server) CloseModalHandler() http.HandlerFunc {
	return s.dashboardAction(func(_ context.Context, _ *http.Request, ctrl *dashboard.Controller) {
		ctrl.CloseModal()
	})
}

// SaveModalHandler submits the station form. Field and save errors are kept
// on the modal and rendered with it.
func (s *Server) SaveModalHandler() http.HandlerFunc {
	return s.dashboardAction(func(ctx context.Context, r *http.Request, ctrl *dashboard.Controller) {
		err := ctrl.Save(ctx, stationInputFrom(r))
		switch {
		case err == nil, errors.Is(err, apperrors.ErrValidation):
		case errors.Is(err, dashboard.ErrModalClosed), errors.Is(err, dashboard.ErrReadOnlyModal):
			s.logger.Debug().Err(err).Msg("save ignored")
		default:
			s.logger.Warn().Err(err).Msg("station save failed")
		}
	})
}

func stationInputFrom(r *http.Request) stations.Input {
	return stations.Input{
		Name:               r.FormValue("name"),
		Location:           r.FormValue("location"),
		Status:             stations.Status(r.FormValue("status")),
		Type:               r.FormValue("type"),
		Latitude:           r.FormValue("latitude"),
		Longitude:          r.FormValue("longitude"),
		CurrentTemperature: r.FormValue("currentTemperature"),
		LastReading:        r.FormValue("lastReading"),
	}
}

// DeleteStationHandler only asks for confirmation, see AlertConfirmHandler
func (s *Server) DeleteStationHandler() http.HandlerFunc {
	return s.dashboardAction(func(_ context.Context, r *http.Request, ctrl *dashboard.Controller) {
		ctrl.RequestDelete(r.PathValue("id"))
	})
}

func (s *Server) RequestLogoutHandler() http.HandlerFunc {
	return s.dashboardAction(func(_ context.Context, _ *http.Request, ctrl *dashboard.Controller) {
		ctrl.RequestLogout()
	})
}

// AlertConfirmHandler carries out the open alert. Confirming the logout alert
// ends the session.
func (s *Server) AlertConfirmHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl := s.controllerFor(r)
		action, err := ctrl.ConfirmAlert(r.Context())
		if err != nil {
			s.logger.Warn().Err(err).Str("action", string(action)).Msg("alert action failed")
		}
		if action == dashboard.ActionLogout {
			s.endSession(w, r, sessionFrom(r).ID)
			return
		}
		if !isHTMXRequest(r) {
			http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
			return
		}
		s.renderDashboard(w, r, s.dashboardData(r, sectionStations, ctrl))
	}
}

func (s *Server) AlertDismissHandler() http.HandlerFunc {
	return s.dashboardAction(func(_ context.Context, _ *http.Request, ctrl *dashboard.Controller) {
		ctrl.DismissAlert()
	})
}

// ProfileHandler renders the profile section
func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderProfile(w, r, "", r.URL.Query().Get("success"))
	}
}

func (s *Server) renderProfile(w http.ResponseWriter, r *http.Request, errorMsg, successMsg string) {
	data := s.dashboardData(r, sectionProfile, s.controllerFor(r))
	if user, err := s.auth.GetUser(r.Context(), data.User.ID); err == nil {
		data.User = user.Public()
	} else {
		s.logger.Warn().Err(err).Str("user_id", data.User.ID).Msg("profile user lookup failed")
	}
	if !data.User.CreatedAt.IsZero() {
		data.MemberSince = data.User.CreatedAt.Local().Format("02/01/2006")
	}
	data.ProfileError = errorMsg
	data.ProfileSuccess = successMsg

	name := layoutTemplate
	if isHTMXRequest(r) {
		name = "profile"
	}
	s.renderTemplate(w, dashboardPage, name, data)
}

// ChangePasswordPostHandler updates the signed in user's password
func (s *Server) ChangePasswordPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		current := r.FormValue("current_password")
		newPassword := r.FormValue("new_password")
		confirm := r.FormValue("confirm_password")
		if current == "" || newPassword == "" || confirm == "" {
			s.renderProfile(w, r, "All fields are required", "")
			return
		}
		if err := s.auth.Validator().ValidateNewPassword(newPassword, confirm); err != nil {
			s.renderProfile(w, r, apperrors.UserMessage(err), "")
			return
		}

		err := s.auth.UpdatePassword(r.Context(), sessionFrom(r).ID, current, newPassword)
		switch {
		case err == nil:
			s.renderProfile(w, r, "", "Password updated successfully")
		case errors.Is(err, apperrors.ErrAuth):
			s.renderProfile(w, r, "The current password is incorrect", "")
		case isSessionError(err):
			s.dashboards.Remove(sessionFrom(r).ID)
			s.clearLoginSessionCookie(w, r)
			redirectWithError(w, r, RouteLogin, apperrors.UserMessage(err))
		case errors.Is(err, apperrors.ErrValidation):
			s.renderProfile(w, r, apperrors.UserMessage(err), "")
		default:
			s.logger.Err(err).Msg("password update failed")
			s.renderProfile(w, r, "Error updating the password", "")
		}
	}
}

func isSessionError(err error) bool {
	return errors.Is(err, apperrors.ErrSessionNotFound) ||
		errors.Is(err, apperrors.ErrSessionExpired) ||
		errors.Is(err, apperrors.ErrInvalidToken)
}
