package domain

import (
	"context"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// FacilityFilter narrows facility listings. Zero values mean "any".
type FacilityFilter struct {
	ServiceProviderID string
	Type              models.FacilityType
	Status            models.FacilityStatus
	Limit             int
	Offset            int
}

type UserRepository interface {
	// CreateStartupAccount writes the user and its startup profile atomically.
	CreateStartupAccount(ctx context.Context, user *models.User, startup *models.Startup) error
	// CreateServiceProviderAccount writes the user and its provider profile atomically.
	CreateServiceProviderAccount(ctx context.Context, user *models.User, provider *models.ServiceProvider) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SetEmailVerified(ctx context.Context, userID string) error
}

type ProfileRepository interface {
	GetStartup(ctx context.Context, id string) (*models.Startup, error)
	GetStartupByUserID(ctx context.Context, userID string) (*models.Startup, error)
	UpdateStartup(ctx context.Context, startup *models.Startup) error
	GetServiceProvider(ctx context.Context, id string) (*models.ServiceProvider, error)
	GetServiceProviderByUserID(ctx context.Context, userID string) (*models.ServiceProvider, error)
	UpdateServiceProvider(ctx context.Context, provider *models.ServiceProvider) error
}

type FacilityRepository interface {
	CreateFacility(ctx context.Context, facility *models.Facility) error
	GetFacility(ctx context.Context, id string) (*models.Facility, error)
	ListFacilities(ctx context.Context, filter FacilityFilter) ([]*models.Facility, error)
	// UpdateFacilityDetails replaces details of a facility owned by providerID
	// and sets its status. Returns ErrNotFound when no such facility is owned.
	UpdateFacilityDetails(ctx context.Context, id, providerID string, details models.FacilityDetails, status models.FacilityStatus) error
	SetFacilityStatus(ctx context.Context, id string, status models.FacilityStatus) error
	DeleteFacility(ctx context.Context, id, providerID string) error
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBookingView(ctx context.Context, id string) (*models.BookingView, error)
	// UpdateBookingStatus moves a booking from one status to another.
	// Returns ErrInvalidTransition when the booking is not in status from.
	UpdateBookingStatus(ctx context.Context, id string, from, to models.BookingStatus, at time.Time) error
	ListBookingViews(ctx context.Context, filter models.BookingFilter) ([]*models.BookingView, error)
}

// Repository is the full document store used by the API process.
type Repository interface {
	UserRepository
	ProfileRepository
	FacilityRepository
	BookingRepository
	Ping(ctx context.Context) error
	Close() error
}

type SessionRepository interface {
	SaveSession(ctx context.Context, session *models.Session, ttl time.Duration) error
	// GetSession returns nil, nil when the session does not exist.
	GetSession(ctx context.Context, id string) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	ResetRateLimit(ctx context.Context, key string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type Mailer interface {
	SendVerification(ctx context.Context, to, name, link string) error
}

type LedgerWriter interface {
	UpsertBooking(ctx context.Context, row models.LedgerRow) error
	UpdateBookingStatus(ctx context.Context, bookingID, status string) error
}

type LedgerQueue interface {
	EnqueueTask(ctx context.Context, task models.LedgerTask) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}
