package usecase

import (
	"retreat-booking/internal/data/repository"
	"retreat-booking/internal/provider"
	"retreat-booking/pkg/cache"
	"retreat-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Booking BookingService
	Webhook WebhookService
}

func NewService(repo *repository.Repository, p provider.Provider, c cache.Cache, config *utils.Config, log *zap.Logger) *Service {
	return &Service{
		Booking: NewBookingService(repo.Booking, p, c, DefaultCatalog(), config, log),
		Webhook: NewWebhookService(repo.Booking, c, config, log),
	}
}
