package adaptor

import (
	"retreat-booking/internal/usecase"
	"retreat-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Booking *BookingHandler
	Webhook *WebhookHandler
}

func NewHandler(service *usecase.Service, config *utils.Config, log *zap.Logger) *Handler {
	return &Handler{
		Booking: NewBookingHandler(service.Booking, []string{config.WeTravel.APIKey}, log),
		Webhook: NewWebhookHandler(service.Webhook, []string{config.WeTravel.APIKey, config.WeTravel.WebhookSecret}, log),
	}
}
