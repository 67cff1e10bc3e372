package server

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/jrsteele09/go-station-dashboard/internal/errors"
	"github.com/jrsteele09/go-station-dashboard/users"
)

// ValidatePasswordHandler reports password strength as an HTMX fragment
func (s *Server) ValidatePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		password := r.FormValue("new_password")
		if password == "" {
			password = r.FormValue("password")
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if password == "" {
			w.WriteHeader(http.StatusOK)
			return
		}

		problems := users.PasswordProblems(password)
		if len(problems) > 0 {
			w.Header().Set("HX-Trigger", `{"passwordInvalid": ""}`)
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, `<ul class="password-rules">`)
			for _, p := range problems {
				fmt.Fprintf(w, `<li class="text-danger">%s</li>`, template.HTMLEscapeString(p))
			}
			fmt.Fprint(w, `</ul>`)
			return
		}

		w.Header().Set("HX-Trigger", `{"passwordValid": ""}`)
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `<span class="text-success">Strong password</span>`)
	}
}

// SignupGetHandler renders the signup page
func (s *Server) SignupGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.pageData(r)
		data.Name = r.URL.Query().Get("name")
		s.renderPage(w, r, "signup.html", data)
	}
}

// SignupPostHandler handles registration form submission
func (s *Server) SignupPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		name := r.FormValue("name")
		email := r.FormValue("email")
		password := r.FormValue("password")
		confirm := r.FormValue("confirm_password")

		fail := func(msg string) {
			redirectSuccess(w, r, withQuery(RouteSignup, url.Values{
				"error": {msg},
				"email": {email},
				"name":  {name},
			}))
		}

		if strings.TrimSpace(confirm) == "" {
			fail("Please fill in all fields")
			return
		}
		if err := s.auth.Validator().ValidateNewPassword(password, confirm); err != nil {
			fail(apperrors.UserMessage(err))
			return
		}

		user, err := s.auth.Register(r.Context(), email, password, name)
		if err != nil {
			if !errors.Is(err, apperrors.ErrValidation) && !errors.Is(err, apperrors.ErrConflict) {
				s.logger.Err(err).Msg("registration failed")
			}
			fail(apperrors.UserMessage(err))
			return
		}

		redirectSuccess(w, r, withQuery(RouteLogin, url.Values{
			"success": {"Account created successfully, please sign in"},
			"email":   {user.Email},
		}))
	}
}

const (
	stepEmail    = "email"
	stepCode     = "code"
	stepPassword = "password"
)

// ForgotPasswordGetHandler renders the first step of password recovery
func (s *Server) ForgotPasswordGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.pageData(r)
		data.Step = stepEmail
		s.renderPage(w, r, "forgot_password.html", data)
	}
}

// ForgotPasswordPostHandler advances password recovery one step. The email
// and verified code travel in hidden fields between steps.
func (s *Server) ForgotPasswordPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		data := UIPageData{
			AppName: s.config.GetAppName(),
			Email:   strings.TrimSpace(r.FormValue("email")),
			Code:    strings.TrimSpace(r.FormValue("code")),
			Step:    r.FormValue("step"),
		}
		ctx := r.Context()

		switch data.Step {
		case stepCode:
			if err := s.auth.VerifyResetCode(ctx, data.Email, data.Code); err != nil {
				data.Error = apperrors.UserMessage(err)
				break
			}
			data.Step = stepPassword

		case stepPassword:
			err := s.auth.ResetPassword(ctx, data.Email, data.Code, r.FormValue("new_password"), r.FormValue("confirm_password"))
			if err == nil {
				redirectSuccess(w, r, withQuery(RouteLogin, url.Values{
					"success": {"Password updated, please sign in"},
					"email":   {data.Email},
				}))
				return
			}
			data.Error = apperrors.UserMessage(err)
			if errors.Is(err, apperrors.ErrAuth) {
				// the code is gone or spent, start over from the code step
				data.Step = stepCode
				data.Code = ""
			}

		default:
			data.Step = stepEmail
			if err := users.ValidateEmail(data.Email); err != nil {
				data.Error = apperrors.UserMessage(err)
				break
			}
			code, err := s.auth.RequestPasswordReset(ctx, data.Email)
			if err != nil {
				if !errors.Is(err, apperrors.ErrNotFound) {
					s.logger.Err(err).Msg("password recovery failed")
				}
				data.Error = apperrors.UserMessage(err)
				break
			}
			data.Step = stepCode
			data.Success = "A recovery code has been issued for " + data.Email
			if s.isDev() {
				data.DevCode = code
			}
		}

		s.renderPage(w, r, "forgot_password.html", data)
	}
}
