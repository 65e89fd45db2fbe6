package usecase

import (
	"context"
	"fmt"
	"time"

	"retreat-booking/internal/data/repository"
	"retreat-booking/internal/dto/request"
	"retreat-booking/pkg/cache"
	"retreat-booking/pkg/metrics"
	"retreat-booking/pkg/utils"

	"go.uber.org/zap"
)

// Webhook outcomes, also used as metric labels.
const (
	OutcomeApplied   = "applied"
	OutcomeIgnored   = "ignored"
	OutcomeNotFound  = "not_found"
	OutcomeDuplicate = "duplicate"
)

type WebhookService interface {
	// HandleWebhook verifies a raw delivery and applies it.
	HandleWebhook(ctx context.Context, body []byte, signature string) (string, error)

	// HandleEvent applies an already verified event to the matching booking.
	HandleEvent(ctx context.Context, event *request.WebhookEvent) (string, error)
}

type webhookService struct {
	repo     repository.BookingRepository
	verifier *WebhookVerifier
	cache    cache.Cache
	seenTTL  time.Duration
	log      *zap.Logger
}

func NewWebhookService(repo repository.BookingRepository, c cache.Cache, config *utils.Config, log *zap.Logger) WebhookService {
	if c == nil {
		c = cache.NopCache{}
	}
	return &webhookService{
		repo:     repo,
		verifier: NewWebhookVerifier(config.WeTravel.WebhookSecret),
		cache:    c,
		seenTTL:  config.Redis.IdempotencyTTL,
		log:      log.With(zap.String("service", "webhook")),
	}
}

func (s *webhookService) HandleWebhook(ctx context.Context, body []byte, signature string) (string, error) {
	event, err := s.verifier.Verify(body, signature)
	if err != nil {
		s.log.Warn("Webhook rejected", zap.Error(err))
		return "", err
	}

	key := seenKey(body)
	var seen bool
	if found, err := s.cache.GetJSON(ctx, key, &seen); err != nil {
		s.log.Warn("Webhook dedupe lookup failed", zap.Error(err))
	} else if found && seen {
		s.log.Info("Webhook already processed",
			zap.String("type", event.Type),
			zap.String("correlation_id", event.CorrelationID()),
		)
		metrics.WebhookEvents.WithLabelValues(event.Type, OutcomeDuplicate).Inc()
		return OutcomeDuplicate, nil
	}

	outcome, err := s.HandleEvent(ctx, event)
	if err != nil {
		return "", err
	}

	// Marked only after the store reflects the event, so a failed apply is retried on redelivery
	if s.seenTTL > 0 {
		if err := s.cache.SetJSON(ctx, key, true, s.seenTTL); err != nil {
			s.log.Warn("Failed to mark webhook as processed", zap.Error(err))
		}
	}

	return outcome, nil
}

func (s *webhookService) HandleEvent(ctx context.Context, event *request.WebhookEvent) (string, error) {
	correlationID := event.CorrelationID()
	log := s.log.With(
		zap.String("type", event.Type),
		zap.String("correlation_id", correlationID),
	)

	transition, known := TransitionFor(event.Type)
	if !known {
		log.Info("Unhandled webhook event type")
		metrics.WebhookEvents.WithLabelValues(event.Type, OutcomeIgnored).Inc()
		return OutcomeIgnored, nil
	}

	if correlationID == "" {
		if transition.ReferenceRequired {
			log.Warn("Webhook event without booking id")
			return "", &ValidationError{Missing: []string{"booking_id"}}
		}
		log.Info("Webhook event without booking id ignored")
		metrics.WebhookEvents.WithLabelValues(event.Type, OutcomeIgnored).Inc()
		return OutcomeIgnored, nil
	}

	bookings, err := s.repo.FindByExternalID(ctx, correlationID)
	if err != nil {
		log.Error("Failed to find booking for webhook", zap.Error(err))
		return "", fmt.Errorf("find booking %s: %w", correlationID, err)
	}

	if len(bookings) == 0 {
		log.Warn("Booking not found for webhook", zap.Error(ErrBookingNotFound))
		metrics.WebhookEvents.WithLabelValues(event.Type, OutcomeNotFound).Inc()
		return OutcomeNotFound, nil
	}
	if len(bookings) > 1 {
		log.Warn("Multiple bookings share an external id, updating the first", zap.Int("count", len(bookings)))
	}

	booking := bookings[0]
	if transition.AppliedTo(booking) {
		log.Info("Booking already in target state", zap.String("booking_id", booking.ID.String()))
		metrics.WebhookEvents.WithLabelValues(event.Type, OutcomeDuplicate).Inc()
		return OutcomeDuplicate, nil
	}

	if err := s.repo.UpdateStatus(ctx, booking.ID, transition.Status, transition.PaymentStatus); err != nil {
		log.Error("Failed to update booking status", zap.Error(err), zap.String("booking_id", booking.ID.String()))
		return "", fmt.Errorf("update booking %s: %w", booking.ID, err)
	}

	log.Info("Booking status updated",
		zap.String("booking_id", booking.ID.String()),
		zap.String("from_status", string(booking.Status)),
		zap.String("status", string(transition.Status)),
		zap.String("payment_status", string(transition.PaymentStatus)),
	)
	metrics.WebhookEvents.WithLabelValues(event.Type, OutcomeApplied).Inc()

	return OutcomeApplied, nil
}

func seenKey(body []byte) string {
	return "webhook:" + digest(string(body))
}
