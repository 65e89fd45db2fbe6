package entity

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

type Occupancy string

const (
	OccupancySingle Occupancy = "single"
	OccupancyDouble Occupancy = "double"
)

// Multiplier is the number of guests the occupancy prices for.
func (o Occupancy) Multiplier() int {
	if o == OccupancyDouble {
		return 2
	}
	return 1
}

type Booking struct {
	BaseNoDelete
	UserID            string        `db:"user_id"`
	Name              string        `db:"name"`
	Email             string        `db:"email"`
	Phone             string        `db:"phone"`
	Package           string        `db:"package"`
	Nights            int           `db:"nights"`
	Occupancy         Occupancy     `db:"occupancy"`
	Guests            int           `db:"guests"`
	PricePerPerson    float64       `db:"price_per_person"`
	TotalPrice        float64       `db:"total_price"`
	ExternalBookingID string        `db:"external_booking_id"`
	CheckoutURL       *string       `db:"checkout_url"`
	PaymentStatus     PaymentStatus `db:"payment_status"`
	Status            BookingStatus `db:"status"`
}
