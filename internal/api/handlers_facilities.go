package api

import (
	"net/http"

	"github.com/SamFelix03/cummadashboard/internal/models"
	"github.com/SamFelix03/cummadashboard/internal/service"

	"github.com/gorilla/mux"
)

type facilityList struct {
	Facilities []*models.Facility `json:"facilities"`
}

func newFacilityList(list []*models.Facility) facilityList {
	if list == nil {
		list = []*models.Facility{}
	}
	return facilityList{Facilities: list}
}

func (s *HTTPServer) handleCreateFacility(w http.ResponseWriter, r *http.Request) {
	var in service.CreateFacilityInput
	if err := decodeJSON(r, &in); err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	f, err := s.svc.Facilities.Create(r.Context(), sessionFrom(r.Context()).ProfileID, &in)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": f.ID, "status": string(f.Status)})
}

func (s *HTTPServer) handleListFacilities(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	list, err := s.svc.Facilities.ListOwn(r.Context(), sessionFrom(r.Context()).ProfileID, limit, offset)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newFacilityList(list))
}

func (s *HTTPServer) handleGetFacility(w http.ResponseWriter, r *http.Request) {
	f, err := s.svc.Facilities.GetOwn(r.Context(), sessionFrom(r.Context()).ProfileID, mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *HTTPServer) handleUpdateFacility(w http.ResponseWriter, r *http.Request) {
	var details models.FacilityDetails
	if err := decodeJSON(r, &details); err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	f, err := s.svc.Facilities.Update(r.Context(), sessionFrom(r.Context()).ProfileID, mux.Vars(r)["id"], &details)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *HTTPServer) handleDeleteFacility(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Facilities.Delete(r.Context(), sessionFrom(r.Context()).ProfileID, mux.Vars(r)["id"]); err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "facility deleted"})
}

func (s *HTTPServer) handleCatalog(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	facilityType := models.FacilityType(r.URL.Query().Get("type"))
	list, err := s.svc.Facilities.Catalog(r.Context(), facilityType, limit, offset)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newFacilityList(list))
}

func (s *HTTPServer) handleCatalogItem(w http.ResponseWriter, r *http.Request) {
	f, err := s.svc.Facilities.CatalogItem(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *HTTPServer) handleAdminListFacilities(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	status := models.FacilityStatus(r.URL.Query().Get("status"))
	list, err := s.svc.Facilities.ListForModeration(r.Context(), status, limit, offset)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newFacilityList(list))
}

func (s *HTTPServer) handleAdminSetFacilityStatus(w http.ResponseWriter, r *http.Request) {
	var in service.FacilityStatusInput
	if err := decodeJSON(r, &in); err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	f, err := s.svc.Facilities.SetStatus(r.Context(), mux.Vars(r)["id"], in.Status, adminFrom(r.Context()))
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}
