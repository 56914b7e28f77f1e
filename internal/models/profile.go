package models

import "time"

type EntityType string

const (
	EntityLLP                EntityType = "LLP"
	EntityPrivateLimited     EntityType = "Private Limited"
	EntitySoleProprietorship EntityType = "Sole Proprietorship"
)

func (e EntityType) Valid() bool {
	switch e {
	case EntityLLP, EntityPrivateLimited, EntitySoleProprietorship:
		return true
	}
	return false
}

type LookingFor string

const (
	LookingForCoworking LookingFor = "Coworking Spaces"
	LookingForRawSpace  LookingFor = "Raw Space"
)

func (l LookingFor) Valid() bool {
	return l == LookingForCoworking || l == LookingForRawSpace
}

type ServiceProviderType string

const (
	ProviderIncubator        ServiceProviderType = "Incubator"
	ProviderAccelerator      ServiceProviderType = "Accelerator"
	ProviderInstitution      ServiceProviderType = "Institution/University"
	ProviderPrivateCoworking ServiceProviderType = "Private Coworking Space"
	ProviderCommunitySpace   ServiceProviderType = "Community Space"
	ProviderCafe             ServiceProviderType = "Cafe"
)

func (t ServiceProviderType) Valid() bool {
	switch t {
	case ProviderIncubator, ProviderAccelerator, ProviderInstitution,
		ProviderPrivateCoworking, ProviderCommunitySpace, ProviderCafe:
		return true
	}
	return false
}

// PlaceholderLogoURL is shown for startups that never uploaded a logo.
const PlaceholderLogoURL = "/placeholder-logo.png"

type Startup struct {
	ID                 string       `json:"id" bson:"_id"`
	UserID             string       `json:"userId" bson:"userId"`
	StartupName        string       `json:"startupName" bson:"startupName" validate:"required,max=200"`
	ContactName        string       `json:"contactName" bson:"contactName" validate:"required,max=120"`
	ContactNumber      string       `json:"contactNumber" bson:"contactNumber" validate:"required,phone"`
	FounderName        string       `json:"founderName" bson:"founderName" validate:"required,max=120"`
	FounderDesignation string       `json:"founderDesignation" bson:"founderDesignation" validate:"required,max=120"`
	EntityType         EntityType   `json:"entityType" bson:"entityType" validate:"required,enum"`
	TeamSize           int          `json:"teamSize" bson:"teamSize" validate:"gte=0"`
	DPIITNumber        *string      `json:"dpiitNumber" bson:"dpiitNumber" validate:"omitempty,max=64"`
	Industry           string       `json:"industry" bson:"industry" validate:"required"`
	Sector             string       `json:"sector" bson:"sector" validate:"required"`
	StageCompleted     string       `json:"stagecompleted" bson:"stagecompleted" validate:"required"`
	StartupMailID      string       `json:"startupMailId" bson:"startupMailId" validate:"required,email"`
	Website            *string      `json:"website" bson:"website" validate:"omitempty,website"`
	LinkedinStartupURL *string      `json:"linkedinStartupUrl" bson:"linkedinStartupUrl" validate:"omitempty,linkedin"`
	LinkedinFounderURL *string      `json:"linkedinFounderUrl" bson:"linkedinFounderUrl" validate:"omitempty,linkedin"`
	LookingFor         []LookingFor `json:"lookingFor" bson:"lookingFor" validate:"omitempty,unique,dive,enum"`
	Address            string       `json:"address,omitempty" bson:"address,omitempty"`
	LogoURL            string       `json:"logoUrl,omitempty" bson:"logoUrl,omitempty"`
	CreatedAt          time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt" bson:"updatedAt"`
}

type ServiceProvider struct {
	ID                         string              `json:"id" bson:"_id"`
	UserID                     string              `json:"userId" bson:"userId"`
	ServiceProviderType        ServiceProviderType `json:"serviceProviderType" bson:"serviceProviderType" validate:"required,enum"`
	ServiceName                string              `json:"serviceName" bson:"serviceName" validate:"required,max=200"`
	Address                    string              `json:"address" bson:"address" validate:"required"`
	City                       string              `json:"city" bson:"city" validate:"required"`
	StateProvince              string              `json:"stateProvince" bson:"stateProvince" validate:"required"`
	ZipPostalCode              string              `json:"zipPostalCode" bson:"zipPostalCode" validate:"required,max=16"`
	PrimaryContact1Name        string              `json:"primaryContact1Name" bson:"primaryContact1Name" validate:"required"`
	PrimaryContact1Designation string              `json:"primaryContact1Designation" bson:"primaryContact1Designation" validate:"required"`
	Contact2Name               string              `json:"contact2Name,omitempty" bson:"contact2Name,omitempty"`
	Contact2Designation        string              `json:"contact2Designation,omitempty" bson:"contact2Designation,omitempty"`
	PrimaryContactNumber       string              `json:"primaryContactNumber" bson:"primaryContactNumber" validate:"required,phone"`
	AlternateContactNumber     string              `json:"alternateContactNumber,omitempty" bson:"alternateContactNumber,omitempty" validate:"omitempty,phone"`
	PrimaryEmailID             string              `json:"primaryEmailId" bson:"primaryEmailId" validate:"required,email"`
	AlternateEmailID           string              `json:"alternateEmailId,omitempty" bson:"alternateEmailId,omitempty" validate:"omitempty,email"`
	WebsiteURL                 string              `json:"websiteUrl,omitempty" bson:"websiteUrl,omitempty" validate:"omitempty,website"`
	LogoURL                    string              `json:"logoUrl,omitempty" bson:"logoUrl,omitempty"`
	Features                   []string            `json:"features" bson:"features" validate:"dive,required"`
	CreatedAt                  time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt                  time.Time           `json:"updatedAt" bson:"updatedAt"`
}
