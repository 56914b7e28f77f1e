package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/export"
	"github.com/SamFelix03/cummadashboard/internal/models"
	"github.com/SamFelix03/cummadashboard/internal/service"

	"github.com/gorilla/mux"
)

type startupDetails struct {
	StartupName string `json:"startupName"`
	LogoURL     string `json:"logoUrl"`
}

// bookingResponse is the listing shape shown on provider and startup pages.
type bookingResponse struct {
	ID             string               `json:"id"`
	FacilityID     string               `json:"facilityId"`
	FacilityName   string               `json:"facilityName"`
	FacilityType   models.FacilityType  `json:"facilityType"`
	Status         models.BookingStatus `json:"status"`
	RentalPlan     models.PlanDuration  `json:"rentalPlan"`
	Amount         float64              `json:"amount"`
	StartupID      string               `json:"startupId"`
	StartupDetails startupDetails       `json:"startupDetails"`
	BookedOn       time.Time            `json:"bookedOn"`
	ValidityTill   time.Time            `json:"validityTill"`
	CreatedAt      time.Time            `json:"createdAt"`
}

func newBookingResponse(v *models.BookingView) bookingResponse {
	return bookingResponse{
		ID:           v.ID,
		FacilityID:   v.FacilityID,
		FacilityName: v.FacilityName,
		FacilityType: v.FacilityType,
		Status:       v.Status,
		RentalPlan:   v.RentalPlan,
		Amount:       v.Amount,
		StartupID:    v.StartupID,
		StartupDetails: startupDetails{
			StartupName: v.StartupName,
			LogoURL:     v.Logo(),
		},
		BookedOn:     v.BookedOn(),
		ValidityTill: v.ValidityTill(),
		CreatedAt:    v.CreatedAt,
	}
}

type bookingList struct {
	Bookings []bookingResponse `json:"bookings"`
}

func newBookingList(views []*models.BookingView) bookingList {
	out := make([]bookingResponse, 0, len(views))
	for _, v := range views {
		out = append(out, newBookingResponse(v))
	}
	return bookingList{Bookings: out}
}

func (s *HTTPServer) handleProviderBookings(w http.ResponseWriter, r *http.Request) {
	views, err := s.svc.Bookings.ProviderBookings(r.Context(), sessionFrom(r.Context()).ProfileID)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newBookingList(views))
}

func (s *HTTPServer) handleProviderRequests(w http.ResponseWriter, r *http.Request) {
	views, err := s.svc.Bookings.ProviderRequests(r.Context(), sessionFrom(r.Context()).ProfileID)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newBookingList(views))
}

func (s *HTTPServer) handleApproveBooking(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.Bookings.Approve(r.Context(), sessionFrom(r.Context()).ProfileID, mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newBookingResponse(v))
}

func (s *HTTPServer) handleRejectBooking(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.Bookings.Reject(r.Context(), sessionFrom(r.Context()).ProfileID, mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newBookingResponse(v))
}

func (s *HTTPServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Bookings.Dashboard(r.Context(), sessionFrom(r.Context()).ProfileID)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *HTTPServer) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	providerID := sessionFrom(r.Context()).ProfileID
	views, err := s.svc.Bookings.ProviderBookings(r.Context(), providerID)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	d, err := s.svc.Bookings.Dashboard(r.Context(), providerID)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteBookings(&buf, views, d.MonthlyPayouts); err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}

	fileName := fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *HTTPServer) handleRequestBooking(w http.ResponseWriter, r *http.Request) {
	var in service.BookingRequestInput
	if err := decodeJSON(r, &in); err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	b, err := s.svc.Bookings.Request(r.Context(), sessionFrom(r.Context()).ProfileID, &in)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *HTTPServer) handleStartupBookings(w http.ResponseWriter, r *http.Request) {
	views, err := s.svc.Bookings.StartupBookings(r.Context(), sessionFrom(r.Context()).ProfileID)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newBookingList(views))
}
