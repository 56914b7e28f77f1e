package api

import (
	"net/http"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/models"
	"github.com/SamFelix03/cummadashboard/internal/service"
)

func (s *HTTPServer) handleSignupStartup(w http.ResponseWriter, r *http.Request) {
	var in service.StartupSignupInput
	if err := decodeJSON(r, &in); err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	startup, err := s.svc.Auth.SignupStartup(r.Context(), &in)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": startup.ID, "userId": startup.UserID})
}

func (s *HTTPServer) handleSignupServiceProvider(w http.ResponseWriter, r *http.Request) {
	var in service.ServiceProviderSignupInput
	if err := decodeJSON(r, &in); err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	provider, err := s.svc.Auth.SignupServiceProvider(r.Context(), &in)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": provider.ID, "userId": provider.UserID})
}

func (s *HTTPServer) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var in service.SignInInput
	if err := decodeJSON(r, &in); err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	res, err := s.svc.Auth.SignIn(r.Context(), &in)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	s.sessions.setCookie(w, res.Token, res.ExpiresAt, res.RememberMe)
	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}
	if err := s.svc.Auth.VerifyEmail(r.Context(), token); err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "email verified"})
}

type sessionResponse struct {
	User      *models.User `json:"user"`
	ProfileID string       `json:"profileId"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

func (s *HTTPServer) handleSession(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	user, err := s.svc.Auth.CurrentUser(r.Context(), session)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{User: user, ProfileID: session.ProfileID, ExpiresAt: session.ExpiresAt})
}

func (s *HTTPServer) handleSignOut(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	if err := s.svc.Auth.SignOut(r.Context(), session.ID); err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	s.sessions.clearCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}
