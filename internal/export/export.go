// Package export renders provider bookings as an Excel workbook.
package export

import (
	"fmt"
	"io"

	"github.com/SamFelix03/cummadashboard/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	BookingsSheet = "Bookings"
	PayoutsSheet  = "Monthly payouts"

	dateLayout = "02 Jan 2006"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var bookingHeaders = []string{
	"Booking ID", "Startup", "Facility", "Facility type", "Plan", "Amount", "Status", "Booked on", "Valid till",
}

// WriteBookings writes a workbook with one row per booking and a monthly
// payout summary to w.
func WriteBookings(w io.Writer, views []*models.BookingView, payouts []models.MonthlyPayout) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(BookingsSheet)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if _, err := f.NewSheet(PayoutsSheet); err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	_ = f.DeleteSheet("Sheet1")

	header, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating style: %w", err)
	}

	if err := writeHeader(f, BookingsSheet, bookingHeaders, header); err != nil {
		return err
	}
	for i, v := range views {
		row := []interface{}{
			v.ID,
			v.StartupName,
			v.FacilityName,
			v.FacilityType.Label(),
			string(v.RentalPlan),
			v.Amount,
			string(v.Status),
			v.BookedOn().Format(dateLayout),
			v.ValidityTill().Format(dateLayout),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(BookingsSheet, cell, &row); err != nil {
			return fmt.Errorf("error writing booking row: %w", err)
		}
	}
	_ = f.SetColWidth(BookingsSheet, "A", "A", 38)
	_ = f.SetColWidth(BookingsSheet, "B", "I", 20)

	if err := writeHeader(f, PayoutsSheet, []string{"Month", "Amount"}, header); err != nil {
		return err
	}
	var total float64
	for i, p := range payouts {
		_ = f.SetCellValue(PayoutsSheet, fmt.Sprintf("A%d", i+2), p.Month)
		_ = f.SetCellValue(PayoutsSheet, fmt.Sprintf("B%d", i+2), p.Amount)
		total += p.Amount
	}
	totalRow := len(payouts) + 2
	_ = f.SetCellValue(PayoutsSheet, fmt.Sprintf("A%d", totalRow), "Total")
	_ = f.SetCellValue(PayoutsSheet, fmt.Sprintf("B%d", totalRow), total)
	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellStyle(PayoutsSheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("B%d", totalRow), bold)
	_ = f.SetColWidth(PayoutsSheet, "A", "B", 16)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("error writing header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	return f.SetCellStyle(sheet, "A1", last, style)
}
