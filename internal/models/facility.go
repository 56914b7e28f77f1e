package models

import "time"

type FacilityType string

const (
	FacilityIndividualCabin   FacilityType = "individual-cabin"
	FacilityCoworkingSpaces   FacilityType = "coworking-spaces"
	FacilityMeetingRooms      FacilityType = "meeting-rooms"
	FacilityBioAlliedLabs     FacilityType = "bio-allied-labs"
	FacilityManufacturingLabs FacilityType = "manufacturing-labs"
	FacilityPrototypingLabs   FacilityType = "prototyping-labs"
	FacilitySoftware          FacilityType = "software"
	FacilitySaaSAllied        FacilityType = "saas-allied"
	FacilityRawSpaceOffice    FacilityType = "raw-space-office"
	FacilityRawSpaceLab       FacilityType = "raw-space-lab"
)

// FacilityTypes lists every facility type in catalog order.
var FacilityTypes = []FacilityType{
	FacilityIndividualCabin,
	FacilityCoworkingSpaces,
	FacilityMeetingRooms,
	FacilityBioAlliedLabs,
	FacilityManufacturingLabs,
	FacilityPrototypingLabs,
	FacilitySoftware,
	FacilitySaaSAllied,
	FacilityRawSpaceOffice,
	FacilityRawSpaceLab,
}

var facilityLabels = map[FacilityType]string{
	FacilityIndividualCabin:   "Individual Cabin",
	FacilityCoworkingSpaces:   "Coworking Spaces",
	FacilityMeetingRooms:      "Meeting Rooms",
	FacilityBioAlliedLabs:     "Bio Allied Labs",
	FacilityManufacturingLabs: "Manufacturing Labs",
	FacilityPrototypingLabs:   "Prototyping Labs",
	FacilitySoftware:          "Software",
	FacilitySaaSAllied:        "SaaS Allied",
	FacilityRawSpaceOffice:    "Raw Space (Office)",
	FacilityRawSpaceLab:       "Raw Space (Lab)",
}

func (t FacilityType) Valid() bool {
	_, ok := facilityLabels[t]
	return ok
}

// Label is the human readable name used in exports and notifications.
func (t FacilityType) Label() string {
	if l, ok := facilityLabels[t]; ok {
		return l
	}
	return string(t)
}

// IsLab reports whether the type carries lab equipment rows.
func (t FacilityType) IsLab() bool {
	return t == FacilityBioAlliedLabs || t == FacilityManufacturingLabs || t == FacilityPrototypingLabs
}

// IsRawSpace reports whether the type is described by area rows.
func (t FacilityType) IsRawSpace() bool {
	return t == FacilityRawSpaceOffice || t == FacilityRawSpaceLab
}

type FacilityStatus string

const (
	FacilityPending  FacilityStatus = "pending"
	FacilityActive   FacilityStatus = "active"
	FacilityRejected FacilityStatus = "rejected"
)

func (s FacilityStatus) Valid() bool {
	return s == FacilityPending || s == FacilityActive || s == FacilityRejected
}

// PlanDuration names a rental plan. The same set of values is used for the
// plan name and its duration.
type PlanDuration string

const (
	PlanAnnual  PlanDuration = "Annual"
	PlanMonthly PlanDuration = "Monthly"
	PlanWeekly  PlanDuration = "Weekly"
	PlanDaily   PlanDuration = "One Day (24 Hours)"
)

var planLengths = map[PlanDuration]time.Duration{
	PlanAnnual:  365 * 24 * time.Hour,
	PlanMonthly: 30 * 24 * time.Hour,
	PlanWeekly:  7 * 24 * time.Hour,
	PlanDaily:   24 * time.Hour,
}

func (d PlanDuration) Valid() bool {
	_, ok := planLengths[d]
	return ok
}

// Length returns how long a booking on this plan stays valid.
func (d PlanDuration) Length() time.Duration {
	return planLengths[d]
}

type RentalPlan struct {
	Name     PlanDuration `json:"name" bson:"name"`
	Price    float64      `json:"price" bson:"price"`
	Duration PlanDuration `json:"duration" bson:"duration"`
}

// Equipment is one row of a lab, software or SaaS listing. Which fields
// apply depends on the facility type, see FacilityDetails.Validate.
type Equipment struct {
	LabName         string `json:"labName,omitempty" bson:"labName,omitempty"`
	EquipmentName   string `json:"equipmentName,omitempty" bson:"equipmentName,omitempty"`
	CapacityAndMake string `json:"capacityAndMake,omitempty" bson:"capacityAndMake,omitempty"`
	SoftwareName    string `json:"softwareName,omitempty" bson:"softwareName,omitempty"`
	Version         string `json:"version,omitempty" bson:"version,omitempty"`
}

type AreaType string

const (
	AreaCovered   AreaType = "Covered"
	AreaUncovered AreaType = "Uncovered"
)

type Furnishing string

const (
	Furnished    Furnishing = "Furnished"
	NotFurnished Furnishing = "Not Furnished"
)

type Customisation string

const (
	OpenToCustomisation Customisation = "Open to Customisation"
	CannotBeCustomised  Customisation = "Cannot be Customised"
)

type AreaDetail struct {
	Area          *float64      `json:"area" bson:"area"`
	Type          AreaType      `json:"type" bson:"type"`
	Furnishing    Furnishing    `json:"furnishing" bson:"furnishing"`
	Customisation Customisation `json:"customisation" bson:"customisation"`
}

// FacilityDetails is the tagged union of all facility shapes. The base
// fields are shared; each facility type uses its own subset of the rest.
type FacilityDetails struct {
	Name        string       `json:"name" bson:"name"`
	Description string       `json:"description" bson:"description"`
	Images      []string     `json:"images" bson:"images"`
	VideoLink   string       `json:"videoLink,omitempty" bson:"videoLink,omitempty"`
	RentalPlans []RentalPlan `json:"rentalPlans" bson:"rentalPlans"`

	TotalCabins     *int `json:"totalCabins,omitempty" bson:"totalCabins,omitempty"`
	AvailableCabins *int `json:"availableCabins,omitempty" bson:"availableCabins,omitempty"`

	TotalSeats     *int `json:"totalSeats,omitempty" bson:"totalSeats,omitempty"`
	AvailableSeats *int `json:"availableSeats,omitempty" bson:"availableSeats,omitempty"`

	TotalRooms               *int `json:"totalRooms,omitempty" bson:"totalRooms,omitempty"`
	SeatingCapacity          *int `json:"seatingCapacity,omitempty" bson:"seatingCapacity,omitempty"`
	TotalTrainingRoomSeaters *int `json:"totalTrainingRoomSeaters,omitempty" bson:"totalTrainingRoomSeaters,omitempty"`

	Equipment   []Equipment  `json:"equipment,omitempty" bson:"equipment,omitempty"`
	AreaDetails []AreaDetail `json:"areaDetails,omitempty" bson:"areaDetails,omitempty"`
}

type Facility struct {
	ID                string          `json:"id" bson:"_id"`
	ServiceProviderID string          `json:"serviceProviderId" bson:"serviceProviderId"`
	FacilityType      FacilityType    `json:"facilityType" bson:"facilityType"`
	Status            FacilityStatus  `json:"status" bson:"status"`
	Details           FacilityDetails `json:"details" bson:"details"`
	CreatedAt         time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// Plan looks up a rental plan of the facility by name.
func (f *Facility) Plan(name PlanDuration) (RentalPlan, bool) {
	for _, p := range f.Details.RentalPlans {
		if p.Name == name {
			return p, true
		}
	}
	return RentalPlan{}, false
}
