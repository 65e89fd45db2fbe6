package provider

import (
	"context"
	"fmt"
	"net/http"

	"retreat-booking/pkg/utils"

	"go.uber.org/zap"
)

const flowBooking = "booking"

type bookingCustomer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type createBookingPayload struct {
	Customer bookingCustomer `json:"customer"`
	Notes    string          `json:"notes"`
	Amount   float64         `json:"amount"`
}

// BookingProvider creates a booking directly on the trip. The response
// carries both the reference and the checkout URL.
type BookingProvider struct {
	client *client
}

func NewBookingProvider(cfg utils.WeTravelConfig, httpClient *http.Client, log *zap.Logger) *BookingProvider {
	return &BookingProvider{
		client: newClient(cfg, httpClient, log.With(zap.String("provider", "wetravel"), zap.String("flow", flowBooking))),
	}
}

func (p *BookingProvider) Name() string {
	return "wetravel-" + flowBooking
}

func (p *BookingProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	payload := createBookingPayload{
		Customer: bookingCustomer{
			FirstName: req.Customer.FirstName,
			LastName:  req.Customer.LastName,
			Email:     req.Customer.Email,
			Phone:     req.Customer.Phone,
		},
		Notes:  req.Note,
		Amount: req.Amount,
	}

	body, err := p.client.post(ctx, flowBooking, p.client.tripURL("bookings"), payload, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	fields, err := decodeFields(body)
	if err != nil {
		return nil, err
	}

	reference := fields.first(bookingReferenceKeys)
	if reference == "" {
		return nil, fmt.Errorf("create booking: %w", ErrMissingReference)
	}

	return &Checkout{
		ReferenceID: reference,
		CheckoutURL: fields.first(bookingCheckoutKeys),
	}, nil
}
