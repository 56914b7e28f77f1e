package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/config"
	"github.com/SamFelix03/cummadashboard/internal/domain"
	"github.com/SamFelix03/cummadashboard/internal/logging"
	"github.com/SamFelix03/cummadashboard/internal/metrics"
	"github.com/SamFelix03/cummadashboard/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// LedgerWorker applies booking ledger tasks to the earnings spreadsheet.
// Tasks travel through a redis list when redis is available and through an
// in-memory channel otherwise. Failed tasks are retried with backoff and
// parked in a dead letter list once retries run out.
type LedgerWorker struct {
	writer        domain.LedgerWriter
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan models.LedgerTask
	queueKey      string
	deadLetterKey string
	popTimeout    time.Duration
	logger        *zerolog.Logger
	now           func() time.Time

	mu   sync.Mutex
	dead []models.LedgerTask
	wg   sync.WaitGroup
}

var _ domain.LedgerQueue = (*LedgerWorker)(nil)

func NewLedgerWorker(writer domain.LedgerWriter, redisClient *redis.Client, cfg config.LedgerConfig, logger *zerolog.Logger) *LedgerWorker {
	retry := RetryPolicy{
		MaxRetries:    cfg.MaxRetries,
		InitialDelay:  time.Duration(cfg.BaseDelayMillis) * time.Millisecond,
		MaxDelay:      time.Duration(cfg.MaxDelayMillis) * time.Millisecond,
		BackoffFactor: 2,
	}
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = time.Minute
	}

	queueKey, deadKey := cfg.QueueKey, cfg.DeadLetterKey
	if queueKey == "" {
		queueKey = "ledger:tasks"
	}
	if deadKey == "" {
		deadKey = "ledger:dead"
	}

	return &LedgerWorker{
		writer:        writer,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan models.LedgerTask, models.WorkerQueueSize),
		queueKey:      queueKey,
		deadLetterKey: deadKey,
		popTimeout:    time.Second,
		logger:        logging.Component(logger, "ledger_worker"),
		now:           time.Now,
	}
}

// EnqueueTask schedules a task via redis or the in-memory queue.
func (w *LedgerWorker) EnqueueTask(ctx context.Context, task models.LedgerTask) error {
	if task.Type == "" {
		return errors.New("task type is required")
	}
	if task.BookingID == "" && task.Booking != nil {
		task.BookingID = task.Booking.ID
	}
	if task.BookingID == "" {
		return errors.New("booking id is required")
	}
	if task.EnqueuedAt.IsZero() {
		task.EnqueuedAt = w.now().UTC()
	}

	if w.redis != nil {
		if err := w.pushRedis(ctx, w.queueKey, task); err != nil {
			w.logger.Warn().Err(err).Msg("redis push failed, fallback to memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- task:
		return nil
	default:
		return fmt.Errorf("ledger queue full, task for booking %s dropped", task.BookingID)
	}
}

// Start launches the main loop; stops when ctx is done.
func (w *LedgerWorker) Start(ctx context.Context) {
	w.logger.Info().Bool("redis", w.redis != nil).Msg("ledger worker started")
	defer w.logger.Info().Msg("ledger worker stopped")

	for {
		if w.redis == nil {
			select {
			case <-ctx.Done():
				w.wg.Wait()
				return
			case t := <-w.queue:
				w.processTask(ctx, &t)
			}
			continue
		}

		select {
		case <-ctx.Done():
			w.wg.Wait()
			return
		default:
		}

		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, &t)
			continue
		}
		if t, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, &t)
		}
	}
}

func (w *LedgerWorker) tryLocalQueue() (models.LedgerTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return models.LedgerTask{}, false
	}
}

func (w *LedgerWorker) tryRedis(ctx context.Context) (models.LedgerTask, bool) {
	res, err := w.redis.BRPop(ctx, w.popTimeout, w.queueKey).Result()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return models.LedgerTask{}, false
		}
		w.logger.Error().Err(err).Msg("redis BRPOP error")
		// Avoid a hot loop while redis is unreachable.
		select {
		case <-ctx.Done():
		case <-time.After(w.popTimeout):
		}
		return models.LedgerTask{}, false
	}
	if len(res) != 2 {
		return models.LedgerTask{}, false
	}
	var task models.LedgerTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("decode redis task")
		return models.LedgerTask{}, false
	}
	return task, true
}

func (w *LedgerWorker) processTask(ctx context.Context, task *models.LedgerTask) {
	err := w.handle(ctx, task)
	if err == nil {
		metrics.IncLedger("ok")
		w.logger.Debug().Str("booking_id", task.BookingID).Str("task", task.Type).Msg("ledger task applied")
		return
	}

	var perm *permanentError
	if errors.As(err, &perm) {
		task.LastError = err.Error()
		w.deadLetter(ctx, task)
		return
	}
	w.retryOrFail(ctx, task, err)
}

type permanentError struct{ msg string }

func (e *permanentError) Error() string { return e.msg }

func (w *LedgerWorker) handle(ctx context.Context, task *models.LedgerTask) error {
	switch task.Type {
	case models.LedgerTaskUpsert:
		if task.Booking == nil {
			return &permanentError{"booking payload missing"}
		}
		return w.writer.UpsertBooking(ctx, models.NewLedgerRow(task.Booking))
	case models.LedgerTaskStatus:
		if task.BookingID == "" || task.Status == "" {
			return &permanentError{"booking id or status missing"}
		}
		return w.writer.UpdateBookingStatus(ctx, task.BookingID, task.Status)
	default:
		return &permanentError{"unknown task type: " + task.Type}
	}
}

func (w *LedgerWorker) retryOrFail(ctx context.Context, task *models.LedgerTask, cause error) {
	task.Attempts++
	task.LastError = cause.Error()
	if task.Attempts >= w.retryPolicy.MaxRetries {
		w.deadLetter(ctx, task)
		return
	}

	delay := w.retryPolicy.NextDelay(task.Attempts)
	metrics.IncLedger("retry")
	w.logger.Warn().
		Err(cause).
		Str("booking_id", task.BookingID).
		Int("attempt", task.Attempts).
		Dur("delay", delay).
		Msg("ledger task failed, retrying")

	retry := *task
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			// Keep the task so a restart can pick it up.
			w.deadLetter(context.Background(), &retry)
		case <-timer.C:
			if err := w.EnqueueTask(ctx, retry); err != nil {
				w.logger.Error().Err(err).Str("booking_id", retry.BookingID).Msg("requeue failed")
				w.deadLetter(ctx, &retry)
			}
		}
	}()
}

func (w *LedgerWorker) deadLetter(ctx context.Context, task *models.LedgerTask) {
	metrics.IncLedger("dead")
	w.logger.Error().
		Str("booking_id", task.BookingID).
		Str("task", task.Type).
		Int("attempts", task.Attempts).
		Str("last_error", task.LastError).
		Msg("ledger task moved to dead letter")

	if w.redis != nil {
		err := w.pushRedis(ctx, w.deadLetterKey, *task)
		if err == nil {
			return
		}
		w.logger.Error().Err(err).Msg("dead letter push failed")
	}
	w.mu.Lock()
	w.dead = append(w.dead, *task)
	w.mu.Unlock()
}

// DeadLetters returns the tasks parked in memory.
func (w *LedgerWorker) DeadLetters() []models.LedgerTask {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.LedgerTask(nil), w.dead...)
}

func (w *LedgerWorker) pushRedis(ctx context.Context, key string, task models.LedgerTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, key, data).Err()
}
