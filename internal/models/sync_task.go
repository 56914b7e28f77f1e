package models

import "time"

const (
	LedgerTaskUpsert = "upsert_booking"
	LedgerTaskStatus = "update_status"
)

// LedgerTask is a queued write of one booking row to the earnings ledger.
type LedgerTask struct {
	Type       string       `json:"type"`
	BookingID  string       `json:"booking_id"`
	Booking    *BookingView `json:"booking,omitempty"`
	Status     string       `json:"status,omitempty"`
	Attempts   int          `json:"attempts"`
	LastError  string       `json:"last_error,omitempty"`
	EnqueuedAt time.Time    `json:"enqueued_at"`
}

// LedgerRow is the flattened ledger representation of a booking.
type LedgerRow struct {
	BookingID    string
	ProviderID   string
	StartupName  string
	FacilityType string
	RentalPlan   string
	Amount       float64
	BookedOn     time.Time
	Status       string
}

func NewLedgerRow(v *BookingView) LedgerRow {
	return LedgerRow{
		BookingID:    v.ID,
		ProviderID:   v.ServiceProviderID,
		StartupName:  v.StartupName,
		FacilityType: v.FacilityType.Label(),
		RentalPlan:   string(v.RentalPlan),
		Amount:       v.Amount,
		BookedOn:     v.BookedOn(),
		Status:       string(v.Status),
	}
}
