// Package provider adapts the WeTravel API to a single checkout-creation
// contract. Two upstream flows are supported: direct booking creation and
// lead creation with a derived checkout URL.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Customer is the normalized traveller identity sent upstream.
type Customer struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// CheckoutRequest is what the intake flow asks the provider to create.
type CheckoutRequest struct {
	Customer       Customer
	Note           string
	Amount         float64
	IdempotencyKey string
}

// Checkout is the canonical result of either upstream flow.
type Checkout struct {
	ReferenceID string
	CheckoutURL string
}

// Provider creates a provider-side booking or lead and returns where the
// traveller pays.
type Provider interface {
	Name() string
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error)
}

// ErrMissingReference is returned when a 2xx response carries no usable id.
var ErrMissingReference = errors.New("provider response has no reference id")

// ProviderError is a non-2xx answer from the provider. Body holds the
// upstream response verbatim.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
}

// Scrub removes every occurrence of the given secrets from s.
func Scrub(s string, secrets ...string) string {
	for _, secret := range secrets {
		if secret != "" {
			s = strings.ReplaceAll(s, secret, "[REDACTED]")
		}
	}
	return s
}
