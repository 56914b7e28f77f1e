package models

import (
	"fmt"
	"sort"
	"strings"
)

// FieldErrors maps a JSON path such as "details.rentalPlans[0].price" to a
// human readable message.
type FieldErrors map[string]string

func (e FieldErrors) Add(path, msg string) {
	if _, exists := e[path]; !exists {
		e[path] = msg
	}
}

func (e FieldErrors) Empty() bool {
	return len(e) == 0
}

// Error joins the messages in path order so the output is stable.
func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return strings.Join(parts, "; ")
}

const detailsPrefix = "details."

// Validate checks the details against the contract of the facility type
// and returns every violation found. A nil result means the details are valid.
func (d *FacilityDetails) Validate(t FacilityType) FieldErrors {
	errs := FieldErrors{}
	if !t.Valid() {
		errs.Add("facilityType", fmt.Sprintf("unknown facility type %q", t))
		return errs
	}

	d.validateBase(errs)

	switch t {
	case FacilityIndividualCabin:
		requireCount(errs, "totalCabins", d.TotalCabins)
		requireCount(errs, "availableCabins", d.AvailableCabins)
		requireNotAbove(errs, "availableCabins", d.AvailableCabins, d.TotalCabins)
	case FacilityCoworkingSpaces:
		requireCount(errs, "totalSeats", d.TotalSeats)
		requireCount(errs, "availableSeats", d.AvailableSeats)
		requireNotAbove(errs, "availableSeats", d.AvailableSeats, d.TotalSeats)
	case FacilityMeetingRooms:
		requireCount(errs, "totalRooms", d.TotalRooms)
		requireCount(errs, "seatingCapacity", d.SeatingCapacity)
		requireCount(errs, "totalTrainingRoomSeaters", d.TotalTrainingRoomSeaters)
	case FacilityBioAlliedLabs, FacilityManufacturingLabs, FacilityPrototypingLabs:
		d.validateEquipment(errs, func(i int, e Equipment) {
			requireText(errs, equipmentPath(i, "labName"), e.LabName)
			requireText(errs, equipmentPath(i, "equipmentName"), e.EquipmentName)
			requireText(errs, equipmentPath(i, "capacityAndMake"), e.CapacityAndMake)
		})
	case FacilitySoftware:
		d.validateEquipment(errs, func(i int, e Equipment) {
			requireText(errs, equipmentPath(i, "softwareName"), e.SoftwareName)
			requireText(errs, equipmentPath(i, "version"), e.Version)
		})
	case FacilitySaaSAllied:
		d.validateEquipment(errs, func(i int, e Equipment) {
			requireText(errs, equipmentPath(i, "equipmentName"), e.EquipmentName)
			requireText(errs, equipmentPath(i, "capacityAndMake"), e.CapacityAndMake)
		})
	case FacilityRawSpaceOffice, FacilityRawSpaceLab:
		d.validateAreas(errs)
	}

	if errs.Empty() {
		return nil
	}
	return errs
}

func (d *FacilityDetails) validateBase(errs FieldErrors) {
	requireText(errs, "name", d.Name)
	requireText(errs, "description", d.Description)
	for i, img := range d.Images {
		if strings.TrimSpace(img) == "" {
			errs.Add(fmt.Sprintf("%simages[%d]", detailsPrefix, i), "image url must not be empty")
		}
	}

	if len(d.RentalPlans) == 0 {
		errs.Add(detailsPrefix+"rentalPlans", "at least one rental plan is required")
		return
	}
	seen := make(map[PlanDuration]bool, len(d.RentalPlans))
	for i, p := range d.RentalPlans {
		base := fmt.Sprintf("%srentalPlans[%d].", detailsPrefix, i)
		if !p.Name.Valid() {
			errs.Add(base+"name", "name must be one of Annual, Monthly, Weekly, One Day (24 Hours)")
		} else if seen[p.Name] {
			errs.Add(base+"name", fmt.Sprintf("duplicate rental plan %q", p.Name))
		}
		seen[p.Name] = true
		if !p.Duration.Valid() {
			errs.Add(base+"duration", "duration must be one of Annual, Monthly, Weekly, One Day (24 Hours)")
		}
		if p.Price <= 0 {
			errs.Add(base+"price", "price must be greater than 0")
		}
	}
}

func (d *FacilityDetails) validateEquipment(errs FieldErrors, check func(int, Equipment)) {
	if len(d.Equipment) == 0 {
		errs.Add(detailsPrefix+"equipment", "at least one equipment entry is required")
		return
	}
	for i, e := range d.Equipment {
		check(i, e)
	}
}

func (d *FacilityDetails) validateAreas(errs FieldErrors) {
	if len(d.AreaDetails) == 0 {
		errs.Add(detailsPrefix+"areaDetails", "at least one area entry is required")
		return
	}
	for i, a := range d.AreaDetails {
		base := fmt.Sprintf("%sareaDetails[%d].", detailsPrefix, i)
		switch {
		case a.Area == nil:
			errs.Add(base+"area", "area is required")
		case *a.Area <= 0:
			errs.Add(base+"area", "area must be greater than 0")
		}
		if a.Type != AreaCovered && a.Type != AreaUncovered {
			errs.Add(base+"type", "type must be Covered or Uncovered")
		}
		if a.Furnishing != Furnished && a.Furnishing != NotFurnished {
			errs.Add(base+"furnishing", "furnishing must be Furnished or Not Furnished")
		}
		if a.Customisation != OpenToCustomisation && a.Customisation != CannotBeCustomised {
			errs.Add(base+"customisation", "customisation must be Open to Customisation or Cannot be Customised")
		}
	}
}

func equipmentPath(i int, field string) string {
	return fmt.Sprintf("equipment[%d].%s", i, field)
}

func requireText(errs FieldErrors, field, v string) {
	if strings.TrimSpace(v) == "" {
		errs.Add(detailsPrefix+field, field+" is required")
	}
}

func requireCount(errs FieldErrors, field string, v *int) {
	switch {
	case v == nil:
		errs.Add(detailsPrefix+field, field+" is required")
	case *v < 0:
		errs.Add(detailsPrefix+field, field+" must not be negative")
	}
}

func requireNotAbove(errs FieldErrors, field string, available, total *int) {
	if available != nil && total != nil && *available > *total {
		errs.Add(detailsPrefix+field, field+" must not exceed the total")
	}
}

// Normalize returns a copy of the details that keeps the base fields and
// only the variant fields that belong to t.
func (d FacilityDetails) Normalize(t FacilityType) FacilityDetails {
	out := FacilityDetails{
		Name:        strings.TrimSpace(d.Name),
		Description: strings.TrimSpace(d.Description),
		Images:      append([]string{}, d.Images...),
		VideoLink:   strings.TrimSpace(d.VideoLink),
		RentalPlans: append([]RentalPlan(nil), d.RentalPlans...),
	}

	switch {
	case t == FacilityIndividualCabin:
		out.TotalCabins, out.AvailableCabins = d.TotalCabins, d.AvailableCabins
	case t == FacilityCoworkingSpaces:
		out.TotalSeats, out.AvailableSeats = d.TotalSeats, d.AvailableSeats
	case t == FacilityMeetingRooms:
		out.TotalRooms = d.TotalRooms
		out.SeatingCapacity = d.SeatingCapacity
		out.TotalTrainingRoomSeaters = d.TotalTrainingRoomSeaters
	case t.IsLab():
		for _, e := range d.Equipment {
			out.Equipment = append(out.Equipment, Equipment{
				LabName:         e.LabName,
				EquipmentName:   e.EquipmentName,
				CapacityAndMake: e.CapacityAndMake,
			})
		}
	case t == FacilitySoftware:
		for _, e := range d.Equipment {
			out.Equipment = append(out.Equipment, Equipment{SoftwareName: e.SoftwareName, Version: e.Version})
		}
	case t == FacilitySaaSAllied:
		for _, e := range d.Equipment {
			out.Equipment = append(out.Equipment, Equipment{EquipmentName: e.EquipmentName, CapacityAndMake: e.CapacityAndMake})
		}
	case t.IsRawSpace():
		out.AreaDetails = append([]AreaDetail(nil), d.AreaDetails...)
	}
	return out
}
