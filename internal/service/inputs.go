package service

import "github.com/SamFelix03/cummadashboard/internal/models"

// Credentials are the account fields shared by both signup forms.
type Credentials struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,password"`
	Terms    bool   `json:"terms" validate:"eq=true"`
}

// StartupSignupInput is the flat startup signup form: credentials plus the
// startup profile fields.
type StartupSignupInput struct {
	Credentials
	models.Startup
}

// ServiceProviderSignupInput is the flat provider signup form.
type ServiceProviderSignupInput struct {
	Credentials
	models.ServiceProvider
}

type SignInInput struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

// CreateFacilityInput is the flat facility form: the facility type next to
// the details fields.
type CreateFacilityInput struct {
	Type models.FacilityType `json:"type"`
	models.FacilityDetails
}

type BookingRequestInput struct {
	FacilityID string              `json:"facilityId" validate:"required"`
	RentalPlan models.PlanDuration `json:"rentalPlan" validate:"required,enum"`
}

type FacilityStatusInput struct {
	Status models.FacilityStatus `json:"status" validate:"required,oneof=active rejected"`
}
