// Package google writes the earnings ledger to a Google Sheets spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/config"
	"github.com/SamFelix03/cummadashboard/internal/domain"
	"github.com/SamFelix03/cummadashboard/internal/logging"
	"github.com/SamFelix03/cummadashboard/internal/models"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const timeLayout = "2006-01-02 15:04:05"

var ledgerHeader = []interface{}{
	"Booking ID", "Provider ID", "Startup", "Facility type", "Plan", "Amount", "Booked on", "Status",
}

var errRowNotFound = errors.New("booking row not found")

// LedgerService keeps one spreadsheet row per booking.
type LedgerService struct {
	service       *sheets.Service
	spreadsheetID string
	sheet         string
	cb            *gobreaker.CircuitBreaker
	logger        *zerolog.Logger

	rowCache map[string]int
	cacheMu  sync.RWMutex
}

var _ domain.LedgerWriter = (*LedgerService)(nil)

// NewLedgerService authenticates with a service account credentials file.
func NewLedgerService(ctx context.Context, cfg config.GoogleConfig, logger *zerolog.Logger) (*LedgerService, error) {
	credentialsJSON, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}
	return newLedgerService(srv, cfg.LedgerSpreadsheetID, cfg.LedgerSheet, logger), nil
}

func newLedgerService(srv *sheets.Service, spreadsheetID, sheet string, logger *zerolog.Logger) *LedgerService {
	if sheet == "" {
		sheet = "Ledger"
	}
	l := logging.Component(logger, "ledger_sheets")
	return &LedgerService{
		service:       srv,
		spreadsheetID: spreadsheetID,
		sheet:         sheet,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "sheets",
			Timeout: time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 4
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				l.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			},
		}),
		logger:   l,
		rowCache: make(map[string]int),
	}
}

func (s *LedgerService) rng(cells string) string {
	return s.sheet + "!" + cells
}

// call runs a Sheets request through the circuit breaker.
func (s *LedgerService) call(fn func() error) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

// TestConnection reads the header cell of the ledger sheet.
func (s *LedgerService) TestConnection(ctx context.Context) error {
	return s.call(func() error {
		_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.rng("A1")).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("connection test failed: %w", err)
		}
		return nil
	})
}

// EnsureHeader writes the column titles into the first row.
func (s *LedgerService) EnsureHeader(ctx context.Context) error {
	return s.call(func() error {
		_, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, s.rng("A1:H1"), &sheets.ValueRange{
			Values: [][]interface{}{ledgerHeader},
		}).ValueInputOption("RAW").Context(ctx).Do()
		return err
	})
}

// WarmUpCache populates the row index cache from the booking id column.
func (s *LedgerService) WarmUpCache(ctx context.Context) error {
	var resp *sheets.ValueRange
	err := s.call(func() error {
		var err error
		resp, err = s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.rng("A:A")).Context(ctx).Do()
		return err
	})
	if err != nil {
		return err
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[string]int)
	for i, row := range resp.Values {
		if id := cellString(row); id != "" && i > 0 {
			s.rowCache[id] = i + 1
		}
	}
	return nil
}

// UpsertBooking updates the booking row or appends a new one.
func (s *LedgerService) UpsertBooking(ctx context.Context, row models.LedgerRow) error {
	if row.BookingID == "" {
		return errors.New("booking id is required")
	}

	rowIdx, err := s.FindBookingRow(ctx, row.BookingID)
	if errors.Is(err, errRowNotFound) {
		return s.appendRow(ctx, row)
	}
	if err != nil {
		return err
	}

	return s.call(func() error {
		_, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, s.rng(fmt.Sprintf("A%d:H%d", rowIdx, rowIdx)), &sheets.ValueRange{
			Values: [][]interface{}{rowValues(row)},
		}).ValueInputOption("RAW").Context(ctx).Do()
		return err
	})
}

func (s *LedgerService) appendRow(ctx context.Context, row models.LedgerRow) error {
	return s.call(func() error {
		resp, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, s.rng("A:H"), &sheets.ValueRange{
			Values: [][]interface{}{rowValues(row)},
		}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
		if err != nil {
			return err
		}
		if resp.Updates != nil {
			if idx := rowFromRange(resp.Updates.UpdatedRange); idx > 0 {
				s.setCachedRow(row.BookingID, idx)
			}
		}
		return nil
	})
}

// UpdateBookingStatus rewrites the status cell. Bookings that never made
// it into the ledger are ignored.
func (s *LedgerService) UpdateBookingStatus(ctx context.Context, bookingID, status string) error {
	rowIdx, err := s.FindBookingRow(ctx, bookingID)
	if errors.Is(err, errRowNotFound) {
		s.logger.Debug().Str("booking_id", bookingID).Msg("status update for booking without ledger row")
		return nil
	}
	if err != nil {
		return err
	}

	return s.call(func() error {
		_, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, s.rng(fmt.Sprintf("H%d", rowIdx)), &sheets.ValueRange{
			Values: [][]interface{}{{status}},
		}).ValueInputOption("RAW").Context(ctx).Do()
		return err
	})
}

// FindBookingRow locates the 1-based row of bookingID in column A.
func (s *LedgerService) FindBookingRow(ctx context.Context, bookingID string) (int, error) {
	if row, ok := s.getCachedRow(bookingID); ok {
		return row, nil
	}

	var resp *sheets.ValueRange
	err := s.call(func() error {
		var err error
		resp, err = s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.rng("A:A")).Context(ctx).Do()
		return err
	})
	if err != nil {
		return 0, err
	}

	for i, row := range resp.Values {
		if cellString(row) == bookingID {
			s.setCachedRow(bookingID, i+1)
			return i + 1, nil
		}
	}
	return 0, errRowNotFound
}

func (s *LedgerService) getCachedRow(id string) (int, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	row, ok := s.rowCache[id]
	return row, ok
}

func (s *LedgerService) setCachedRow(id string, row int) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache[id] = row
}

func rowValues(r models.LedgerRow) []interface{} {
	return []interface{}{
		r.BookingID,
		r.ProviderID,
		r.StartupName,
		r.FacilityType,
		r.RentalPlan,
		r.Amount,
		r.BookedOn.UTC().Format(timeLayout),
		r.Status,
	}
}

func cellString(row []interface{}) string {
	if len(row) == 0 {
		return ""
	}
	if s, ok := row[0].(string); ok {
		return s
	}
	return fmt.Sprint(row[0])
}

// rowFromRange extracts the first row number of an A1 range such as
// "Ledger!A5:H5".
func rowFromRange(a1 string) int {
	if i := strings.LastIndex(a1, "!"); i >= 0 {
		a1 = a1[i+1:]
	}
	var row int
	digits := false
	for _, r := range a1 {
		switch {
		case r >= '0' && r <= '9':
			row = row*10 + int(r-'0')
			digits = true
		case digits:
			return row
		}
	}
	return row
}
