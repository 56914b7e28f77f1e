package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/SamFelix03/cummadashboard/internal/config"

	"github.com/gorilla/mux"
)

const (
	apiKeyHeaderDefault   = "x-api-key"
	apiExtraHeaderDefault = "x-api-extra"

	permReadFacilities  = "read:facilities"
	permWriteFacilities = "write:facilities"
)

var (
	errMissingAPIKey    = errors.New("missing api key headers")
	errInvalidAPIKey    = errors.New("invalid api key")
	errInvalidExtra     = errors.New("invalid extra header")
	errPermissionDenied = errors.New("permission denied")
)

// AdminAuth guards the back office routes with static API keys.
type AdminAuth struct {
	cfg     config.APIAuthConfig
	clients map[string]config.APIClientKey
}

func NewAdminAuth(cfg config.APIAuthConfig) *AdminAuth {
	m := make(map[string]config.APIClientKey, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		m[k.Key] = k
	}
	return &AdminAuth{cfg: cfg, clients: m}
}

func (a *AdminAuth) Middleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client, err := a.checkAuth(r)
			if err != nil {
				statusCode := http.StatusUnauthorized
				if errors.Is(err, errPermissionDenied) {
					statusCode = http.StatusForbidden
				}
				writeError(w, statusCode, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(contextWithAdmin(r.Context(), client.Name)))
		})
	}
}

func (a *AdminAuth) header(name, fallback string) string {
	h := strings.TrimSpace(strings.ToLower(name))
	if h == "" {
		return fallback
	}
	return h
}

func (a *AdminAuth) checkAuth(r *http.Request) (config.APIClientKey, error) {
	apiKey := strings.TrimSpace(r.Header.Get(a.header(a.cfg.HeaderAPIKey, apiKeyHeaderDefault)))
	extra := strings.TrimSpace(r.Header.Get(a.header(a.cfg.HeaderExtra, apiExtraHeaderDefault)))
	if apiKey == "" || extra == "" {
		return config.APIClientKey{}, errMissingAPIKey
	}

	client, ok := a.clients[apiKey]
	if !ok {
		return config.APIClientKey{}, errInvalidAPIKey
	}
	if subtle.ConstantTimeCompare([]byte(client.Extra), []byte(extra)) != 1 {
		return config.APIClientKey{}, errInvalidExtra
	}

	if err := checkPermissions(client, requiredPermission(r)); err != nil {
		return config.APIClientKey{}, err
	}
	return client, nil
}

// checkPermissions treats an empty permission list as allow-all.
func checkPermissions(client config.APIClientKey, required string) error {
	if required == "" || len(client.Permissions) == 0 {
		return nil
	}
	for _, p := range client.Permissions {
		if strings.TrimSpace(p) == required {
			return nil
		}
	}
	return errPermissionDenied
}

func requiredPermission(r *http.Request) string {
	if !strings.HasPrefix(r.URL.Path, "/api/admin/facilities") {
		return ""
	}
	if r.Method == http.MethodGet {
		return permReadFacilities
	}
	return permWriteFacilities
}
