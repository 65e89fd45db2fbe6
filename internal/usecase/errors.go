package usecase

import (
	"errors"
	"fmt"
	"strings"

	"retreat-booking/internal/provider"
	"retreat-booking/pkg/utils"
)

var (
	// ErrUnauthorized means no authenticated caller was supplied
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotConfigured means provider credentials are absent
	ErrNotConfigured = errors.New("payment provider not configured")

	// ErrBookingNotFound is a lookup miss. In the webhook path it is only logged.
	ErrBookingNotFound = errors.New("booking not found")
)

// ValidationError reports every missing required field, or per-field
// messages for present-but-invalid values.
type ValidationError struct {
	Missing []string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return "validation failed: missing " + strings.Join(e.Missing, ", ")
	}
	return "validation failed: " + utils.FormatValidationErrors(e.Fields)
}

// ProviderCallError wraps any failure of the payment provider call.
type ProviderCallError struct {
	Err error
}

func (e *ProviderCallError) Error() string {
	return "payment provider call failed: " + e.Err.Error()
}

func (e *ProviderCallError) Unwrap() error { return e.Err }

// Details returns diagnostic text for the caller with the given secrets
// removed. Upstream rejections keep the provider body verbatim otherwise.
func (e *ProviderCallError) Details(secrets ...string) string {
	var perr *provider.ProviderError
	if errors.As(e.Err, &perr) {
		return provider.Scrub(perr.Body, secrets...)
	}
	return provider.Scrub(e.Err.Error(), secrets...)
}

// SignatureError rejects an unauthenticated webhook delivery.
type SignatureError struct {
	// Missing is set when the header or the shared secret is absent.
	Missing bool
}

func (e *SignatureError) Error() string {
	if e.Missing {
		return "webhook signature or secret missing"
	}
	return "webhook signature mismatch"
}

// PayloadError is an authenticated webhook body that is not a valid event.
type PayloadError struct {
	Err error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("invalid webhook payload: %v", e.Err)
}

func (e *PayloadError) Unwrap() error { return e.Err }
