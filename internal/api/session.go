package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/auth"
	"github.com/SamFelix03/cummadashboard/internal/config"
	"github.com/SamFelix03/cummadashboard/internal/domain"
	"github.com/SamFelix03/cummadashboard/internal/models"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// SessionAuthenticator resolves a raw session token into a live session.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, raw string) (*models.Session, error)
}

// sessionAuth authenticates the caller and checks the casbin policy for
// the role, path and method.
type sessionAuth struct {
	authn  SessionAuthenticator
	rbac   *auth.Authorizer
	cfg    config.SessionConfig
	logger *zerolog.Logger
}

func (a *sessionAuth) middleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := a.tokenFrom(r)
			if raw == "" {
				writeError(w, http.StatusUnauthorized, domain.ErrUnauthenticated.Error())
				return
			}

			session, err := a.authn.Authenticate(r.Context(), raw)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					writeError(w, http.StatusUnauthorized, err.Error())
					return
				}
				writeDomainError(w, r, a.logger, err)
				return
			}

			allowed, err := a.rbac.Allowed(session.UserType, r.URL.Path, r.Method)
			if err != nil {
				writeDomainError(w, r, a.logger, err)
				return
			}
			if !allowed {
				writeError(w, http.StatusForbidden, domain.ErrForbidden.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
		})
	}
}

// tokenFrom prefers the Authorization header over the session cookie.
func (a *sessionAuth) tokenFrom(r *http.Request) string {
	if h := strings.TrimSpace(r.Header.Get("Authorization")); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return ""
	}
	if c, err := r.Cookie(a.cfg.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// setCookie stores the token in an HttpOnly cookie. Without rememberMe the
// cookie lives only as long as the browser session.
func (a *sessionAuth) setCookie(w http.ResponseWriter, token string, expires time.Time, rememberMe bool) {
	c := &http.Cookie{
		Name:     a.cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if rememberMe {
		c.Expires = expires
	}
	http.SetCookie(w, c)
}

func (a *sessionAuth) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   a.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
