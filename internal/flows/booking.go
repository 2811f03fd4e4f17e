package flows

import (
	"context"

	"github.com/vowhq/vowctl/internal/api"
	"github.com/vowhq/vowctl/internal/wizard"
)

// BookingCreator is the slice of the API the booking wizard submits through.
type BookingCreator interface {
	CreateIdempotent(ctx context.Context, in any) (*api.Booking, error)
}

// BookingInput is the payload the booking wizard submits.
type BookingInput struct {
	ServiceID  string `json:"serviceId"`
	EventDate  string `json:"eventDate"`
	Venue      string `json:"venue,omitempty"`
	GuestCount int    `json:"guestCount,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// NewBooking builds the four-step customer booking wizard. Creation goes
// through the idempotent path so a retried submit cannot double-book.
func NewBooking(bookings BookingCreator) (*wizard.Machine, error) {
	steps := []wizard.Step{
		{
			Name:  "service",
			Title: "Choose a service",
			Fields: []wizard.Field{
				{Name: "service_id", Label: "Service ID"},
			},
			Validate: wizard.Required("service_id", "service"),
		},
		{
			Name:  "event",
			Title: "Event details",
			Fields: []wizard.Field{
				{Name: "event_date", Label: "Event date", Placeholder: "YYYY-MM-DD"},
				{Name: "venue", Label: "Venue"},
				{Name: "guest_count", Label: "Guest count"},
			},
			Validate: wizard.All(
				wizard.Required("event_date", "event date"),
				wizard.Date("event_date", "event date"),
				wizard.IntBetween("guest_count", "guest count", 1, 5000),
			),
		},
		{
			Name:  "details",
			Title: "Requirements",
			Fields: []wizard.Field{
				{Name: "notes", Label: "Notes for the provider", Multiline: true},
			},
		},
		{
			Name:  "review",
			Title: "Review & confirm",
			Fields: []wizard.Field{
				{Name: "confirm", Label: "Type yes to confirm the booking request"},
			},
			Validate: wizard.MustBeTrue("confirm", "please confirm the booking request"),
		},
	}

	return wizard.New(steps, func(ctx context.Context, v wizard.Values) error {
		guestCount, _ := wizard.Int(v, "guest_count")
		_, err := bookings.CreateIdempotent(ctx, BookingInput{
			ServiceID:  wizard.Str(v, "service_id"),
			EventDate:  wizard.Str(v, "event_date"),
			Venue:      wizard.Str(v, "venue"),
			GuestCount: guestCount,
			Notes:      wizard.Str(v, "notes"),
		})
		return err
	})
}
