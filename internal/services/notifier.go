package services

import (
	"context"
	"log"
	"time"
)

// AppointmentEvent carries what downstream consumers need about a new booking.
type AppointmentEvent struct {
	AppointmentID uint    `json:"appointment_id"`
	PropertyID    uint    `json:"property_id"`
	PropertyName  string  `json:"property_name"`
	Location      string  `json:"location"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"`
	Name          string  `json:"name"`
	Phone         string  `json:"phone"`
	Email         string  `json:"email,omitempty"`
	PreferredDate string  `json:"preferred_date"`
	PreferredTime string  `json:"preferred_time"`
	Message       string  `json:"message,omitempty"`
}

// Notifier is told about new appointments.
type Notifier interface {
	AppointmentCreated(ctx context.Context, event AppointmentEvent) error
}

// LogNotifier writes events to the log.
type LogNotifier struct{}

// AppointmentCreated logs the event.
func (LogNotifier) AppointmentCreated(_ context.Context, event AppointmentEvent) error {
	log.Printf("[notify] appointment #%d for %q by %s (%s) on %s %s",
		event.AppointmentID, event.PropertyName, event.Name, event.Phone, event.PreferredDate, event.PreferredTime)
	return nil
}

// MultiNotifier fans an event out to every notifier. A failing notifier does not
// stop the others; failures are logged.
type MultiNotifier []Notifier

// AppointmentCreated forwards the event.
func (m MultiNotifier) AppointmentCreated(ctx context.Context, event AppointmentEvent) error {
	for _, n := range m {
		if err := n.AppointmentCreated(ctx, event); err != nil {
			log.Printf("[notify] %T failed: %v", n, err)
		}
	}
	return nil
}

// Dispatch delivers the event in the background with a bounded timeout.
func Dispatch(n Notifier, event AppointmentEvent) {
	if n == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := n.AppointmentCreated(ctx, event); err != nil {
			log.Printf("[notify] appointment #%d: %v", event.AppointmentID, err)
		}
	}()
}
