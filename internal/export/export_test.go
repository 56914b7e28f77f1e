package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteBookings(t *testing.T) {
	bookedOn := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	views := []*models.BookingView{{
		Booking: models.Booking{
			ID:         "b-1",
			Status:     models.BookingApproved,
			RentalPlan: models.PlanMonthly,
			Amount:     1200,
			UpdatedAt:  bookedOn,
		},
		FacilityType: models.FacilityIndividualCabin,
		FacilityName: "Cabin A",
		StartupName:  "Acme",
	}}
	payouts := []models.MonthlyPayout{{Month: "Jan 26", Amount: 0}, {Month: "Feb 26", Amount: 1200}}

	var buf bytes.Buffer
	require.NoError(t, WriteBookings(&buf, views, payouts))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{BookingsSheet, PayoutsSheet}, f.GetSheetList())

	rows, err := f.GetRows(BookingsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Booking ID", rows[0][0])
	assert.Equal(t, "b-1", rows[1][0])
	assert.Equal(t, "Acme", rows[1][1])
	assert.Equal(t, "Individual Cabin", rows[1][3])
	assert.Equal(t, "10 Feb 2026", rows[1][7])
	assert.Equal(t, "12 Mar 2026", rows[1][8])

	payoutRows, err := f.GetRows(PayoutsSheet)
	require.NoError(t, err)
	require.Len(t, payoutRows, 4)
	assert.Equal(t, []string{"Feb 26", "1200"}, payoutRows[2])
	assert.Equal(t, []string{"Total", "1200"}, payoutRows[3])
}

func TestWriteBookingsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBookings(&buf, nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(BookingsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
