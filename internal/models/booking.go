package models

import "time"

type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingApproved BookingStatus = "approved"
	BookingRejected BookingStatus = "rejected"
)

func (s BookingStatus) Valid() bool {
	return s == BookingPending || s == BookingApproved || s == BookingRejected
}

type Booking struct {
	ID         string        `json:"id" bson:"_id"`
	StartupID  string        `json:"startupId" bson:"startupId"`
	FacilityID string        `json:"facilityId" bson:"facilityId"`
	Status     BookingStatus `json:"status" bson:"status"`
	RentalPlan PlanDuration  `json:"rentalPlan" bson:"rentalPlan"`
	Amount     float64       `json:"amount" bson:"amount"`
	CreatedAt  time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// BookedOn is the moment the booking was last updated, which for approved
// bookings is the approval time.
func (b *Booking) BookedOn() time.Time {
	return b.UpdatedAt
}

// ValidityTill is BookedOn plus the length of the booked plan.
func (b *Booking) ValidityTill() time.Time {
	return ValidityTill(b.BookedOn(), b.RentalPlan)
}

func ValidityTill(bookedOn time.Time, plan PlanDuration) time.Time {
	return bookedOn.Add(plan.Length())
}

// BookingView is a booking joined with its facility and startup, as read
// by listings, exports and the dashboard.
type BookingView struct {
	Booking           `bson:",inline"`
	FacilityType      FacilityType   `json:"facilityType" bson:"facilityType"`
	FacilityName      string         `json:"facilityName" bson:"facilityName"`
	FacilityStatus    FacilityStatus `json:"facilityStatus" bson:"facilityStatus"`
	ServiceProviderID string         `json:"serviceProviderId" bson:"serviceProviderId"`
	StartupName       string         `json:"startupName" bson:"startupName"`
	StartupLogoURL    string         `json:"startupLogoUrl" bson:"startupLogoUrl"`
}

// Logo returns the startup logo or the placeholder when none is set.
func (v *BookingView) Logo() string {
	if v.StartupLogoURL == "" {
		return PlaceholderLogoURL
	}
	return v.StartupLogoURL
}

// BookingFilter narrows booking queries. Zero values mean "any".
type BookingFilter struct {
	ServiceProviderID string
	StartupID         string
	FacilityID        string
	Status            BookingStatus
	FacilityStatus    FacilityStatus
}
