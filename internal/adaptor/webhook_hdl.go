package adaptor

import (
	"errors"
	"io"
	"net/http"

	"retreat-booking/internal/provider"
	"retreat-booking/internal/usecase"
	"retreat-booking/pkg/utils"

	"go.uber.org/zap"
)

const (
	// SignatureHeader carries the hex HMAC of the raw body
	SignatureHeader = "X-WeTravel-Signature"

	maxWebhookBody = 1 << 20
)

type WebhookHandler struct {
	service usecase.WebhookService
	secrets []string
	log     *zap.Logger
}

// NewWebhookHandler builds the webhook handler. secrets are removed from any
// error detail written to the response.
func NewWebhookHandler(service usecase.WebhookService, secrets []string, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		secrets: secrets,
		log:     log.With(zap.String("handler", "webhook")),
	}
}

// WeTravel handles POST /api/webhooks/wetravel (signature-authenticated)
func (h *WebhookHandler) WeTravel(w http.ResponseWriter, r *http.Request) {
	// The signature covers the exact bytes, so the body is read before any decoding
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		h.log.Warn("Failed to read webhook body", zap.Error(err))
		utils.ResponseBadRequest(w, "Invalid payload", nil)
		return
	}

	outcome, err := h.service.HandleWebhook(r.Context(), body, r.Header.Get(SignatureHeader))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.log.Debug("Webhook acknowledged", zap.String("outcome", outcome))
	utils.ResponseAck(w)
}

func (h *WebhookHandler) handleServiceError(w http.ResponseWriter, err error) {
	var (
		signatureErr  *usecase.SignatureError
		payloadErr    *usecase.PayloadError
		validationErr *usecase.ValidationError
	)

	switch {
	case errors.As(err, &signatureErr):
		if signatureErr.Missing {
			utils.ResponseUnauthorized(w, "Unauthorized")
			return
		}
		utils.ResponseUnauthorized(w, "Invalid signature")

	case errors.As(err, &payloadErr):
		utils.ResponseBadRequest(w, "Invalid payload", nil)

	case errors.As(err, &validationErr):
		utils.ResponseBadRequest(w, "No booking ID", nil)

	default:
		h.log.Error("Failed to process webhook", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error", provider.Scrub(err.Error(), h.secrets...))
	}
}
