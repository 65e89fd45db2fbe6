package usecase

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"retreat-booking/internal/dto/request"
)

// WebhookVerifier authenticates provider callbacks signed with a shared
// secret: the signature header is the lowercase hex HMAC-SHA256 of the raw
// body.
type WebhookVerifier struct {
	secret []byte
}

func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: []byte(secret)}
}

// Sign returns the expected signature for body.
func (v *WebhookVerifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks signature against body and decodes the event. The
// signature is compared exactly as sent, in constant time.
func (v *WebhookVerifier) Verify(body []byte, signature string) (*request.WebhookEvent, error) {
	if signature == "" || len(v.secret) == 0 {
		return nil, &SignatureError{Missing: true}
	}

	expected := v.Sign(body)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, &SignatureError{}
	}

	var event request.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, &PayloadError{Err: err}
	}

	return &event, nil
}
