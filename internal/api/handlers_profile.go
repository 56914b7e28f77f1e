package api

import "net/http"

func (s *HTTPServer) handleGetStartupProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Profiles.Startup(r.Context(), sessionFrom(r.Context()).ProfileID)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *HTTPServer) handlePatchStartupProfile(w http.ResponseWriter, r *http.Request) {
	patch, err := readBody(r)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	p, err := s.svc.Profiles.PatchStartup(r.Context(), sessionFrom(r.Context()).ProfileID, patch)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *HTTPServer) handleGetProviderProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Profiles.ServiceProvider(r.Context(), sessionFrom(r.Context()).ProfileID)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *HTTPServer) handlePatchProviderProfile(w http.ResponseWriter, r *http.Request) {
	patch, err := readBody(r)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	p, err := s.svc.Profiles.PatchServiceProvider(r.Context(), sessionFrom(r.Context()).ProfileID, patch)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
