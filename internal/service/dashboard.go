package service

import (
	"math"
	"sort"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/models"
)

// BuildDashboard computes provider KPIs from the provider's facilities and
// booking views at instant now. Month boundaries use now's location.
func BuildDashboard(now time.Time, facilities []*models.Facility, views []*models.BookingView) models.Dashboard {
	loc := now.Location()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	prevStart := monthStart.AddDate(0, -1, 0)
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)

	d := models.Dashboard{
		MonthlyPayouts: []models.MonthlyPayout{},
		StartupsByType: []models.MonthlyCounts{},
	}

	for _, f := range facilities {
		if f.Status != models.FacilityActive {
			continue
		}
		d.TotalFacilities++
		if !f.CreatedAt.In(loc).Before(monthStart) {
			d.ThisMonth++
		}
	}

	var (
		prevEarnings float64
		payouts      = map[time.Time]float64{}
		byType       = map[time.Time]map[models.FacilityType]int{}
	)
	for _, v := range views {
		if v.Status != models.BookingApproved {
			continue
		}
		bookedOn := v.BookedOn().In(loc)
		month := time.Date(bookedOn.Year(), bookedOn.Month(), 1, 0, 0, 0, 0, loc)

		d.TotalBookings++
		d.TotalEarnings += v.Amount
		switch {
		case !bookedOn.Before(monthStart):
			d.MonthlyBookings++
			d.MonthlyEarnings += v.Amount
		case !bookedOn.Before(prevStart):
			prevEarnings += v.Amount
		}

		payouts[month] += v.Amount
		if !bookedOn.Before(yearStart) {
			if byType[month] == nil {
				byType[month] = map[models.FacilityType]int{}
			}
			byType[month][v.FacilityType]++
		}
	}

	d.MonthlyComparison = percentChange(prevEarnings, d.MonthlyEarnings)

	for _, m := range sortedMonths(payouts) {
		d.MonthlyPayouts = append(d.MonthlyPayouts, models.MonthlyPayout{
			Month:  m.Format(models.MonthLabelLayout),
			Amount: payouts[m],
		})
	}
	for _, m := range sortedMonths(byType) {
		d.StartupsByType = append(d.StartupsByType, models.MonthlyCounts{
			Month:  m.Format(models.MonthLabelLayout),
			Counts: byType[m],
		})
	}
	return d
}

// percentChange reports 100 whenever there was nothing to compare against.
func percentChange(prev, cur float64) int {
	if prev == 0 {
		return 100
	}
	return int(math.Round((cur - prev) / prev * 100))
}

func sortedMonths[V any](m map[time.Time]V) []time.Time {
	months := make([]time.Time, 0, len(m))
	for k := range m {
		months = append(months, k)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	return months
}
