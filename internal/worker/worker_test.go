package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/config"
	"github.com/SamFelix03/cummadashboard/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	mu          sync.Mutex
	failures    int
	upserts     []models.LedgerRow
	statusCalls map[string]string
}

func (f *fakeLedger) UpsertBooking(_ context.Context, row models.LedgerRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("sheets unavailable")
	}
	f.upserts = append(f.upserts, row)
	return nil
}

func (f *fakeLedger) UpdateBookingStatus(_ context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusCalls == nil {
		f.statusCalls = map[string]string{}
	}
	f.statusCalls[id] = status
	return nil
}

func (f *fakeLedger) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.upserts)
}

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func fastConfig() config.LedgerConfig {
	return config.LedgerConfig{MaxRetries: 3, BaseDelayMillis: 5, MaxDelayMillis: 20}
}

func approvedView() *models.BookingView {
	return &models.BookingView{
		Booking: models.Booking{
			ID: "b1", Status: models.BookingApproved, RentalPlan: models.PlanWeekly, Amount: 700,
			UpdatedAt: time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC),
		},
		FacilityType:      models.FacilityCoworkingSpaces,
		ServiceProviderID: "p1",
		StartupName:       "Acme",
	}
}

func TestProcessTaskSuccess(t *testing.T) {
	ledger := &fakeLedger{}
	w := NewLedgerWorker(ledger, nil, fastConfig(), nopLogger())

	ctx := context.Background()
	require.NoError(t, w.EnqueueTask(ctx, models.LedgerTask{Type: models.LedgerTaskUpsert, Booking: approvedView()}))

	task, ok := w.tryLocalQueue()
	require.True(t, ok)
	assert.Equal(t, "b1", task.BookingID)
	assert.False(t, task.EnqueuedAt.IsZero())

	w.processTask(ctx, &task)
	require.Len(t, ledger.upserts, 1)
	row := ledger.upserts[0]
	assert.Equal(t, "p1", row.ProviderID)
	assert.Equal(t, "Acme", row.StartupName)
	assert.Equal(t, 700.0, row.Amount)
	assert.Equal(t, "approved", row.Status)
}

func TestEnqueueValidation(t *testing.T) {
	w := NewLedgerWorker(&fakeLedger{}, nil, fastConfig(), nopLogger())
	assert.Error(t, w.EnqueueTask(context.Background(), models.LedgerTask{BookingID: "b1"}))
	assert.Error(t, w.EnqueueTask(context.Background(), models.LedgerTask{Type: models.LedgerTaskStatus}))
}

func TestStatusTask(t *testing.T) {
	ledger := &fakeLedger{}
	w := NewLedgerWorker(ledger, nil, fastConfig(), nopLogger())

	task := models.LedgerTask{Type: models.LedgerTaskStatus, BookingID: "b9", Status: "rejected"}
	w.processTask(context.Background(), &task)
	assert.Equal(t, "rejected", ledger.statusCalls["b9"])
}

func TestPermanentFailureGoesToDeadLetter(t *testing.T) {
	w := NewLedgerWorker(&fakeLedger{}, nil, fastConfig(), nopLogger())

	task := models.LedgerTask{Type: "mystery", BookingID: "b1"}
	w.processTask(context.Background(), &task)

	dead := w.DeadLetters()
	require.Len(t, dead, 1)
	assert.Contains(t, dead[0].LastError, "unknown task type")
	assert.Zero(t, dead[0].Attempts)
}

func TestRetryThenSucceed(t *testing.T) {
	ledger := &fakeLedger{failures: 2}
	w := NewLedgerWorker(ledger, nil, fastConfig(), nopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	require.NoError(t, w.EnqueueTask(ctx, models.LedgerTask{Type: models.LedgerTaskUpsert, Booking: approvedView()}))
	require.Eventually(t, func() bool { return ledger.upsertCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Empty(t, w.DeadLetters())
}

func TestRetriesExhausted(t *testing.T) {
	ledger := &fakeLedger{failures: 100}
	w := NewLedgerWorker(ledger, nil, fastConfig(), nopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	require.NoError(t, w.EnqueueTask(ctx, models.LedgerTask{Type: models.LedgerTaskUpsert, Booking: approvedView()}))
	require.Eventually(t, func() bool { return len(w.DeadLetters()) == 1 }, 2*time.Second, 5*time.Millisecond)

	dead := w.DeadLetters()[0]
	assert.Equal(t, 3, dead.Attempts)
	assert.Equal(t, "sheets unavailable", dead.LastError)
	assert.Zero(t, ledger.upsertCount())
}

func TestRedisQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ledger := &fakeLedger{}
	w := NewLedgerWorker(ledger, client, fastConfig(), nopLogger())
	w.popTimeout = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, w.EnqueueTask(ctx, models.LedgerTask{Type: models.LedgerTaskUpsert, Booking: approvedView()}))
	queued, err := mr.List("ledger:tasks")
	require.NoError(t, err)
	require.Len(t, queued, 1)

	var decoded models.LedgerTask
	require.NoError(t, json.Unmarshal([]byte(queued[0]), &decoded))
	assert.Equal(t, "b1", decoded.BookingID)

	go w.Start(ctx)
	require.Eventually(t, func() bool { return ledger.upsertCount() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestRedisDeadLetter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	w := NewLedgerWorker(&fakeLedger{}, client, config.LedgerConfig{DeadLetterKey: "dead"}, nopLogger())
	task := models.LedgerTask{Type: models.LedgerTaskUpsert, BookingID: "b1"}
	w.processTask(context.Background(), &task)

	dead, err := mr.List("dead")
	require.NoError(t, err)
	assert.Len(t, dead, 1)
	assert.Empty(t, w.DeadLetters())
}

func TestRetryPolicyNextDelay(t *testing.T) {
	p := RetryPolicy{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, BackoffFactor: 2}
	assert.Equal(t, 100*time.Millisecond, p.NextDelay(0))
	assert.Equal(t, 100*time.Millisecond, p.NextDelay(1))
	assert.Equal(t, 400*time.Millisecond, p.NextDelay(3))
	assert.Equal(t, time.Second, p.NextDelay(10))
	assert.Equal(t, time.Second, RetryPolicy{}.NextDelay(1))
}
