package usecase

import "retreat-booking/internal/data/entity"

// Transition is the (status, payment_status) pair an event moves a booking to.
type Transition struct {
	Status        entity.BookingStatus
	PaymentStatus entity.PaymentStatus
	// ReferenceRequired rejects events of this family that carry no booking id.
	ReferenceRequired bool
}

var (
	transitionPaid = Transition{
		Status:            entity.BookingStatusConfirmed,
		PaymentStatus:     entity.PaymentStatusPaid,
		ReferenceRequired: true,
	}
	transitionCancelled = Transition{
		Status:        entity.BookingStatusCancelled,
		PaymentStatus: entity.PaymentStatusCancelled,
	}
)

var eventTransitions = map[string]Transition{
	"booking.payment_received": transitionPaid,
	"booking.paid":             transitionPaid,
	"payment.completed":        transitionPaid,
	"booking.cancelled":        transitionCancelled,
	"payment.cancelled":        transitionCancelled,
}

// TransitionFor maps an event type (exact match) to its transition. Unknown
// types report false and leave bookings untouched.
func TransitionFor(eventType string) (Transition, bool) {
	t, ok := eventTransitions[eventType]
	return t, ok
}

// AppliedTo reports whether b is already in the target state.
func (t Transition) AppliedTo(b *entity.Booking) bool {
	return b.Status == t.Status && b.PaymentStatus == t.PaymentStatus
}
