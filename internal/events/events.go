package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventUserRegistered        = "user_registered"
	EventFacilitySubmitted     = "facility_submitted"
	EventFacilityStatusChanged = "facility_status_changed"
	EventBookingRequested      = "booking_requested"
	EventBookingApproved       = "booking_approved"
	EventBookingRejected       = "booking_rejected"
)

// UserEventPayload is published once an account and its profile exist.
type UserEventPayload struct {
	UserID      string `json:"user_id"`
	ProfileID   string `json:"profile_id"`
	Email       string `json:"email"`
	UserType    string `json:"user_type"`
	DisplayName string `json:"display_name"`
}

// FacilityEventPayload describes a facility snapshot for event consumers.
type FacilityEventPayload struct {
	FacilityID        string    `json:"facility_id"`
	ServiceProviderID string    `json:"service_provider_id"`
	FacilityType      string    `json:"facility_type"`
	Name              string    `json:"name"`
	Status            string    `json:"status"`
	PreviousStatus    string    `json:"previous_status,omitempty"`
	ChangedBy         string    `json:"changed_by,omitempty"`
	At                time.Time `json:"at"`
}

// BookingEventPayload describes the minimal booking snapshot for event consumers.
type BookingEventPayload struct {
	BookingID         string    `json:"booking_id"`
	StartupID         string    `json:"startup_id"`
	StartupName       string    `json:"startup_name"`
	FacilityID        string    `json:"facility_id"`
	FacilityName      string    `json:"facility_name"`
	ServiceProviderID string    `json:"service_provider_id"`
	RentalPlan        string    `json:"rental_plan"`
	Amount            float64   `json:"amount"`
	Status            string    `json:"status"`
	At                time.Time `json:"at"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the event payload into v.
func (e *Event) Decode(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// ErrorHook receives handler failures.
type ErrorHook func(event *Event, err error)

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	onError     ErrorHook
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// OnError sets the hook invoked when a handler returns an error.
func (b *EventBus) OnError(hook ErrorHook) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onError = hook
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	hook := b.onError
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		if err := handler(event); err != nil && hook != nil {
			hook(event, err)
		}
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
