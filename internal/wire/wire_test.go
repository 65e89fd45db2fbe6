package wire

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"retreat-booking/internal/adaptor"
	"retreat-booking/internal/data/entity"
	"retreat-booking/internal/data/repository"
	"retreat-booking/internal/provider"
	"retreat-booking/pkg/cache"
	"retreat-booking/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memBookings is an in-memory repository.BookingRepository.
type memBookings struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]entity.Booking
	order    []uuid.UUID
}

func (m *memBookings) Create(_ context.Context, b *entity.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = *b
	m.order = append(m.order, b.ID)
	return nil
}

func (m *memBookings) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *memBookings) FindByExternalID(_ context.Context, externalID string) ([]*entity.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Booking
	for _, id := range m.order {
		if b := m.bookings[id]; b.ExternalBookingID == externalID {
			out = append(out, &b)
		}
	}
	return out, nil
}

func (m *memBookings) UpdateStatus(_ context.Context, id uuid.UUID, status entity.BookingStatus, paymentStatus entity.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.bookings[id]
	b.Status = status
	b.PaymentStatus = paymentStatus
	m.bookings[id] = b
	return nil
}

const (
	testJWTSecret     = "jwt-secret"
	testWebhookSecret = "whsec_e2e"
)

func newTestApp(t *testing.T) (http.Handler, *memBookings) {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trips/trip-42/bookings" || r.Header.Get("Authorization") != "Bearer sk_test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"booking_id":"abc123","payment_url":"https://pay.example.com/abc123"}}`))
	}))
	t.Cleanup(upstream.Close)

	config := &utils.Config{
		App:       utils.AppConfig{Name: "retreat-booking-test"},
		Auth:      utils.AuthConfig{JWTSecret: testJWTSecret},
		RateLimit: utils.RateLimitConfig{PerMinute: 600, Burst: 100},
		WeTravel: utils.WeTravelConfig{
			APIKey:        "sk_test",
			TripID:        "trip-42",
			WebhookSecret: testWebhookSecret,
			BaseURL:       upstream.URL,
			Mode:          utils.ProviderModeBooking,
			Timeout:       2 * time.Second,
		},
	}

	p, err := provider.New(config.WeTravel, upstream.Client(), zap.NewNop())
	require.NoError(t, err)

	store := &memBookings{bookings: make(map[uuid.UUID]entity.Booking)}
	repo := &repository.Repository{Booking: store}

	app := Wiring(repo, p, cache.NopCache{}, config, zap.NewNop())
	return app.Router, store
}

func bearer(t *testing.T, subject string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func sign(body string) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestBookingThenPaymentWebhook(t *testing.T) {
	router, store := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(`{
		"name": "Jane Doe",
		"email": "j@x.com",
		"package": "diamond-club",
		"nights": "3",
		"occupancy": "double",
		"total_price": 2460,
		"price_per_person": 1230
	}`))
	req.Header.Set("Authorization", bearer(t, "user-1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created struct {
		Success           bool   `json:"success"`
		BookingID         string `json:"booking_id"`
		CheckoutURL       string `json:"checkout_url"`
		ExternalBookingID string `json:"external_booking_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.Success)
	assert.Equal(t, "abc123", created.ExternalBookingID)
	assert.Equal(t, "https://pay.example.com/abc123", created.CheckoutURL)

	id, err := uuid.Parse(created.BookingID)
	require.NoError(t, err)
	stored, _ := store.FindByID(context.Background(), id)
	require.NotNil(t, stored)
	assert.Equal(t, entity.BookingStatusPending, stored.Status)

	body := `{"type":"booking.paid","data":{"booking_id":"abc123"}}`
	req = httptest.NewRequest(http.MethodPost, "/api/webhooks/wetravel", strings.NewReader(body))
	req.Header.Set(adaptor.SignatureHeader, sign(body))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	stored, _ = store.FindByID(context.Background(), id)
	assert.Equal(t, entity.BookingStatusConfirmed, stored.Status)
	assert.Equal(t, entity.PaymentStatusPaid, stored.PaymentStatus)

	req = httptest.NewRequest(http.MethodGet, "/api/bookings/"+created.BookingID, nil)
	req.Header.Set("Authorization", bearer(t, "user-1"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"confirmed"`)

	req = httptest.NewRequest(http.MethodGet, "/api/bookings/"+created.BookingID, nil)
	req.Header.Set("Authorization", bearer(t, "user-2"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoutes(t *testing.T) {
	router, _ := newTestApp(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		header map[string]string
		status int
	}{
		{name: "health", method: http.MethodGet, path: "/health", status: http.StatusOK},
		{name: "metrics", method: http.MethodGet, path: "/metrics", status: http.StatusOK},
		{name: "booking without token", method: http.MethodPost, path: "/api/bookings", body: `{}`, status: http.StatusUnauthorized},
		{name: "webhook without signature", method: http.MethodPost, path: "/api/webhooks/wetravel", body: `{}`, status: http.StatusUnauthorized},
		{
			name:   "webhook with wrong signature",
			method: http.MethodPost,
			path:   "/api/webhooks/wetravel",
			body:   `{"type":"booking.paid","data":{"booking_id":"abc123"}}`,
			header: map[string]string{adaptor.SignatureHeader: sign(`{"type":"booking.paid"}`)},
			status: http.StatusUnauthorized,
		},
		{
			name:   "webhook for unknown booking",
			method: http.MethodPost,
			path:   "/api/webhooks/wetravel",
			body:   `{"type":"booking.paid","data":{"booking_id":"missing"}}`,
			header: map[string]string{adaptor.SignatureHeader: sign(`{"type":"booking.paid","data":{"booking_id":"missing"}}`)},
			status: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}
