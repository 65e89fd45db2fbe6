package request

// WebhookEvent is the provider callback envelope.
type WebhookEvent struct {
	Type string           `json:"type"`
	Data WebhookEventData `json:"data"`
}

type WebhookEventData struct {
	ID        FlexString `json:"id"`
	BookingID FlexString `json:"booking_id"`
}

// CorrelationID returns data.booking_id, or data.id when that is empty.
func (e WebhookEvent) CorrelationID() string {
	if e.Data.BookingID != "" {
		return string(e.Data.BookingID)
	}
	return string(e.Data.ID)
}
