package wire

import (
	"retreat-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireWebhook(r chi.Router, webhookHandler *adaptor.WebhookHandler) {
	// ==================== PROVIDER CALLBACKS (HMAC signature) ====================
	// POST /api/webhooks/wetravel - Payment and cancellation events
	r.Post("/api/webhooks/wetravel", webhookHandler.WeTravel)
}
