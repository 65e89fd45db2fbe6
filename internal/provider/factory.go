package provider

import (
	"fmt"
	"net/http"

	"retreat-booking/pkg/utils"

	"go.uber.org/zap"
)

// New returns the provider selected by cfg.Mode.
func New(cfg utils.WeTravelConfig, httpClient *http.Client, log *zap.Logger) (Provider, error) {
	switch cfg.Mode {
	case utils.ProviderModeBooking, "":
		return NewBookingProvider(cfg, httpClient, log), nil
	case utils.ProviderModeLead:
		return NewLeadProvider(cfg, httpClient, log), nil
	default:
		return nil, fmt.Errorf("unknown provider mode %q", cfg.Mode)
	}
}
