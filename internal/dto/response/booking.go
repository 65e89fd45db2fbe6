package response

import (
	"time"

	"retreat-booking/internal/data/entity"
)

type CreateBookingResponse struct {
	Success           bool   `json:"success"`
	BookingID         string `json:"booking_id"`
	CheckoutURL       string `json:"checkout_url"`
	ExternalBookingID string `json:"external_booking_id"`
}

type BookingResponse struct {
	ID                string               `json:"id"`
	Name              string               `json:"name"`
	Email             string               `json:"email"`
	Phone             string               `json:"phone,omitempty"`
	Package           string               `json:"package"`
	Nights            int                  `json:"nights"`
	Occupancy         entity.Occupancy     `json:"occupancy"`
	Guests            int                  `json:"guests"`
	PricePerPerson    float64              `json:"price_per_person"`
	TotalPrice        float64              `json:"total_price"`
	ExternalBookingID string               `json:"external_booking_id"`
	CheckoutURL       string               `json:"checkout_url,omitempty"`
	PaymentStatus     entity.PaymentStatus `json:"payment_status"`
	Status            entity.BookingStatus `json:"status"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// BookingToResponse converts the stored entity for API output
func BookingToResponse(b *entity.Booking) *BookingResponse {
	resp := &BookingResponse{
		ID:                b.ID.String(),
		Name:              b.Name,
		Email:             b.Email,
		Phone:             b.Phone,
		Package:           b.Package,
		Nights:            b.Nights,
		Occupancy:         b.Occupancy,
		Guests:            b.Guests,
		PricePerPerson:    b.PricePerPerson,
		TotalPrice:        b.TotalPrice,
		ExternalBookingID: b.ExternalBookingID,
		PaymentStatus:     b.PaymentStatus,
		Status:            b.Status,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
	if b.CheckoutURL != nil {
		resp.CheckoutURL = *b.CheckoutURL
	}
	return resp
}
