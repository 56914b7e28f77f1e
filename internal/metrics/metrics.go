package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cumma"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		},
		[]string{"route", "method", "code"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Booking state changes by resulting status.",
		},
		[]string{"status"},
	)

	facilities = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "facilities_total",
			Help:      "Facility submissions and moderation results by type and status.",
		},
		[]string{"facility_type", "status"},
	)

	signups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signups_total",
			Help:      "Completed sign-ups by user type.",
		},
		[]string{"user_type"},
	)

	ledgerTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_tasks_total",
			Help:      "Ledger worker task outcomes.",
		},
		[]string{"result"},
	)

	mailSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mail_sent_total",
			Help:      "Outgoing mail attempts by result.",
		},
		[]string{"result"},
	)

	botCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bot_commands_total",
			Help:      "Moderation bot commands by command and result.",
		},
		[]string{"command", "result"},
	)

	botUpdateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bot_update_processing_seconds",
			Help:      "Time spent processing one Telegram update.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration, bookings, facilities, signups, ledgerTasks, mailSent,
			botCommands, botUpdateDuration,
		)
	})
}

// ObserveHTTP records one served request.
func ObserveHTTP(route, method string, code int, elapsed time.Duration) {
	httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func IncBooking(status string) {
	bookings.WithLabelValues(status).Inc()
}

func IncFacility(facilityType, status string) {
	facilities.WithLabelValues(facilityType, status).Inc()
}

func IncSignup(userType string) {
	signups.WithLabelValues(userType).Inc()
}

// IncLedger counts worker outcomes: "ok", "retry" or "dead".
func IncLedger(result string) {
	ledgerTasks.WithLabelValues(result).Inc()
}

func IncMail(result string) {
	mailSent.WithLabelValues(result).Inc()
}

// IncBotCommand counts a bot command by its outcome: "ok", "denied" or "error".
func IncBotCommand(command, result string) {
	botCommands.WithLabelValues(command, result).Inc()
}

func ObserveBotUpdate(elapsed time.Duration) {
	botUpdateDuration.Observe(elapsed.Seconds())
}
