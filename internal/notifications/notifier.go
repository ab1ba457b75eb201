package notifications

import (
	"context"
	"fmt"
	"html/template"
	"time"

	"roombook/pkg/kafka"
	"roombook/pkg/logger"
	"roombook/pkg/model"
)

// Notifier turns booking events into emails for the booker.
type Notifier struct {
	mailer    Mailer
	templates *template.Template
	location  *time.Location
	log       *logger.Logger
}

func NewNotifier(mailer Mailer, location *time.Location, log *logger.Logger) (*Notifier, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	if location == nil {
		location = time.UTC
	}
	return &Notifier{
		mailer:    mailer,
		templates: tmpl,
		location:  location,
		log:       log,
	}, nil
}

// Handle is a kafka.MessageHandler. Undecodable payloads are permanent failures; delivery
// failures are transient so the consumer retries them.
func (n *Notifier) Handle(ctx context.Context, msg kafka.Message) error {
	eventType := msg.GetEventType()

	var subject, name string
	switch eventType {
	case model.EventBookingCreated:
		subject, name = "Booking confirmed", templateCreated
	case model.EventBookingCancelled:
		subject, name = "Booking cancelled", templateCancelled
	default:
		n.log.Debug("Ignoring event", "event_type", eventType, "event_id", msg.GetEventID())
		return nil
	}

	var event model.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("invalid booking event payload", err)
	}
	if event.BookerEmail == "" {
		n.log.Warn("Booking event has no booker email, skipping",
			"event_type", eventType,
			"booking_id", event.BookingID,
		)
		return nil
	}

	view := newEmailView(event, n.location)
	body, err := render(n.templates, name, view)
	if err != nil {
		return kafka.NewPermanentError("failed to render email", err)
	}

	email := Email{
		To:      event.BookerEmail,
		Subject: fmt.Sprintf("%s: %s", subject, event.Title),
		HTML:    body,
	}
	if err := n.mailer.Send(ctx, email); err != nil {
		return kafka.NewTransientError("failed to send email", err)
	}

	n.log.Info("Notification sent",
		"event_type", eventType,
		"booking_id", event.BookingID,
		"to", event.BookerEmail,
	)
	return nil
}
