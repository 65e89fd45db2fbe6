package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"retreat-booking/internal/data/entity"
	"retreat-booking/internal/dto/request"
	"retreat-booking/internal/provider"
	"retreat-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const validRequest = `{
	"name": "Jane Doe",
	"email": "j@x.com",
	"package": "diamond-club",
	"nights": "3",
	"occupancy": "double",
	"total_price": 2460,
	"price_per_person": 1230
}`

func newBookingService(repo *memRepo, p provider.Provider, c *memCache) BookingService {
	// A typed nil would bypass the NopCache default
	if c == nil {
		return NewBookingService(repo, p, nil, DefaultCatalog(), testConfig(), zap.NewNop())
	}
	return NewBookingService(repo, p, c, DefaultCatalog(), testConfig(), zap.NewNop())
}

func TestCreateBooking_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		missing []string
	}{
		{
			name:    "empty body",
			body:    `{}`,
			missing: []string{"email", "name", "nights", "occupancy", "package", "total_price"},
		},
		{
			name:    "whitespace name",
			body:    `{"name":"   ","email":"j@x.com","package":"diamond-club","nights":3,"occupancy":"double","total_price":2460}`,
			missing: []string{"name"},
		},
		{
			name:    "no email",
			body:    `{"name":"Jane","package":"diamond-club","nights":3,"occupancy":"double","total_price":2460}`,
			missing: []string{"email"},
		},
		{
			name:    "no package",
			body:    `{"name":"Jane","email":"j@x.com","nights":3,"occupancy":"double","total_price":2460}`,
			missing: []string{"package"},
		},
		{
			name:    "empty nights string",
			body:    `{"name":"Jane","email":"j@x.com","package":"diamond-club","nights":"","occupancy":"double","total_price":2460}`,
			missing: []string{"nights"},
		},
		{
			name:    "no occupancy",
			body:    `{"name":"Jane","email":"j@x.com","package":"diamond-club","nights":3,"total_price":2460}`,
			missing: []string{"occupancy"},
		},
		{
			name:    "no total price",
			body:    `{"name":"Jane","email":"j@x.com","package":"diamond-club","nights":3,"occupancy":"double"}`,
			missing: []string{"total_price"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memRepo{}
			p := &mockProvider{}
			svc := newBookingService(repo, p, nil)

			_, err := svc.CreateBooking(context.Background(), testCaller, decodeRequest(t, tt.body))

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.missing, verr.Missing)
			p.AssertNotCalled(t, "CreateCheckout", mock.Anything, mock.Anything)
			assert.Zero(t, repo.creates)
		})
	}
}

func TestCreateBooking_InvalidFields(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{
			name:  "bad email",
			body:  `{"name":"Jane","email":"not-an-email","package":"diamond-club","nights":3,"occupancy":"double","total_price":2460}`,
			field: "email",
		},
		{
			name:  "bad occupancy",
			body:  `{"name":"Jane","email":"j@x.com","package":"diamond-club","nights":3,"occupancy":"triple","total_price":2460}`,
			field: "occupancy",
		},
		{
			name:  "unknown package",
			body:  `{"name":"Jane","email":"j@x.com","package":"treehouse","nights":3,"occupancy":"double","total_price":2460}`,
			field: "package",
		},
		{
			name:  "nights not offered",
			body:  `{"name":"Jane","email":"j@x.com","package":"diamond-club","nights":7,"occupancy":"double","total_price":2460}`,
			field: "nights",
		},
		{
			name:  "guests disagree with occupancy",
			body:  `{"name":"Jane","email":"j@x.com","package":"diamond-club","nights":3,"occupancy":"double","guests":3,"total_price":2460}`,
			field: "guests",
		},
		{
			name:  "price per person off catalogue",
			body:  `{"name":"Jane","email":"j@x.com","package":"diamond-club","nights":3,"occupancy":"double","price_per_person":1000,"total_price":2000}`,
			field: "price_per_person",
		},
		{
			name:  "double total is not twice the price",
			body:  `{"name":"Jane","email":"j@x.com","package":"diamond-club","nights":3,"occupancy":"double","total_price":1230}`,
			field: "total_price",
		},
		{
			name:  "single total is not the price",
			body:  `{"name":"Jane","email":"j@x.com","package":"diamond-club","nights":3,"occupancy":"single","total_price":3300}`,
			field: "total_price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memRepo{}
			p := &mockProvider{}
			svc := newBookingService(repo, p, nil)

			_, err := svc.CreateBooking(context.Background(), testCaller, decodeRequest(t, tt.body))

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Empty(t, verr.Missing)
			assert.Contains(t, verr.Fields, tt.field)
			p.AssertNotCalled(t, "CreateCheckout", mock.Anything, mock.Anything)
			assert.Zero(t, repo.creates)
		})
	}
}

func TestCreateBooking_OccupancyPricing(t *testing.T) {
	tests := []struct {
		occupancy string
		total     float64
		guests    int
	}{
		{occupancy: "single", total: 1650, guests: 1},
		{occupancy: "double", total: 2460, guests: 2},
	}

	for _, tt := range tests {
		t.Run(tt.occupancy, func(t *testing.T) {
			repo := &memRepo{}
			p := &mockProvider{}
			p.On("CreateCheckout", mock.Anything, mock.MatchedBy(func(req provider.CheckoutRequest) bool {
				return req.Amount == tt.total
			})).Return(&provider.Checkout{ReferenceID: "ref-" + tt.occupancy}, nil).Once()

			svc := newBookingService(repo, p, nil)
			req := decodeRequest(t, `{"name":"Jane","email":"j@x.com","package":"diamond-club","nights":3}`)
			req.Occupancy = tt.occupancy
			req.TotalPrice = tt.total

			_, err := svc.CreateBooking(context.Background(), testCaller, req)
			require.NoError(t, err)

			require.Len(t, repo.bookings, 1)
			b := repo.bookings[0]
			assert.Equal(t, tt.guests, b.Guests)
			assert.InDelta(t, tt.total, b.PricePerPerson*float64(b.Occupancy.Multiplier()), 0.005)
			assert.Nil(t, b.CheckoutURL)
			p.AssertExpectations(t)
		})
	}
}

func TestCreateBooking_ProviderFailureCreatesNothing(t *testing.T) {
	repo := &memRepo{}
	p := &mockProvider{}
	p.On("CreateCheckout", mock.Anything, mock.Anything).
		Return(nil, &provider.ProviderError{StatusCode: 422, Body: `{"error":"bad key sk_live_secret"}`}).Once()

	svc := newBookingService(repo, p, nil)
	_, err := svc.CreateBooking(context.Background(), testCaller, decodeRequest(t, validRequest))

	var perr *ProviderCallError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, `{"error":"bad key [REDACTED]"}`, perr.Details("sk_live_secret"))
	assert.Zero(t, repo.creates)
	p.AssertExpectations(t)
}

func TestCreateBooking_Success(t *testing.T) {
	repo := &memRepo{}
	p := &mockProvider{}

	var sent provider.CheckoutRequest
	p.On("CreateCheckout", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(provider.CheckoutRequest) }).
		Return(&provider.Checkout{ReferenceID: "abc123", CheckoutURL: "https://pay.example.com/abc123"}, nil).Once()

	svc := newBookingService(repo, p, nil)
	resp, err := svc.CreateBooking(context.Background(), testCaller, decodeRequest(t, validRequest))
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "abc123", resp.ExternalBookingID)
	assert.Equal(t, "https://pay.example.com/abc123", resp.CheckoutURL)

	require.Equal(t, 1, repo.creates)
	b := repo.bookings[0]
	assert.Equal(t, resp.BookingID, b.ID.String())
	assert.Equal(t, "abc123", b.ExternalBookingID)
	assert.Equal(t, entity.BookingStatusPending, b.Status)
	assert.Equal(t, entity.PaymentStatusPending, b.PaymentStatus)
	assert.Equal(t, testCaller.Subject, b.UserID)
	assert.Equal(t, 2, b.Guests)
	require.NotNil(t, b.CheckoutURL)

	assert.Equal(t, provider.Customer{FirstName: "Jane", LastName: "Doe", Email: "j@x.com"}, sent.Customer)
	assert.Equal(t, "Package: Luxury Suite Diamond Club\nNights: 3\nOccupancy: double\nGuests: 2\nTotal: 2460.00", sent.Note)
	assert.Equal(t, 2460.0, sent.Amount)
	assert.Len(t, sent.IdempotencyKey, 64)
	p.AssertExpectations(t)
}

func TestCreateBooking_StoreFailureAfterProvider(t *testing.T) {
	repo := &memRepo{createErr: errors.New("connection refused")}
	p := &mockProvider{}
	p.On("CreateCheckout", mock.Anything, mock.Anything).
		Return(&provider.Checkout{ReferenceID: "abc123"}, nil).Once()

	svc := newBookingService(repo, p, nil)
	_, err := svc.CreateBooking(context.Background(), testCaller, decodeRequest(t, validRequest))

	require.Error(t, err)
	var perr *ProviderCallError
	assert.False(t, errors.As(err, &perr))
	assert.Contains(t, err.Error(), "abc123")
	p.AssertExpectations(t)
}

func TestCreateBooking_NotConfigured(t *testing.T) {
	repo := &memRepo{}
	p := &mockProvider{}
	config := testConfig()
	config.WeTravel.APIKey = ""

	svc := NewBookingService(repo, p, nil, DefaultCatalog(), config, zap.NewNop())
	_, err := svc.CreateBooking(context.Background(), testCaller, decodeRequest(t, validRequest))

	assert.ErrorIs(t, err, ErrNotConfigured)
	p.AssertNotCalled(t, "CreateCheckout", mock.Anything, mock.Anything)
	assert.Zero(t, repo.creates)
}

func TestCreateBooking_Unauthorized(t *testing.T) {
	svc := newBookingService(&memRepo{}, &mockProvider{}, nil)
	_, err := svc.CreateBooking(context.Background(), utils.Caller{}, decodeRequest(t, validRequest))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateBooking_ReplaysCompletedSubmission(t *testing.T) {
	repo := &memRepo{}
	p := &mockProvider{}
	p.On("CreateCheckout", mock.Anything, mock.Anything).
		Return(&provider.Checkout{ReferenceID: "abc123", CheckoutURL: "https://pay.example.com/abc123"}, nil).Once()

	svc := newBookingService(repo, p, newMemCache())

	first, err := svc.CreateBooking(context.Background(), testCaller, decodeRequest(t, validRequest))
	require.NoError(t, err)
	second, err := svc.CreateBooking(context.Background(), testCaller, decodeRequest(t, validRequest))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.creates)
	p.AssertNumberOfCalls(t, "CreateCheckout", 1)
}

func TestCreateBooking_DifferentCallersAreNotReplayed(t *testing.T) {
	repo := &memRepo{}
	p := &mockProvider{}
	p.On("CreateCheckout", mock.Anything, mock.Anything).
		Return(&provider.Checkout{ReferenceID: "abc123"}, nil).Once()
	p.On("CreateCheckout", mock.Anything, mock.Anything).
		Return(&provider.Checkout{ReferenceID: "def456"}, nil).Once()

	svc := newBookingService(repo, p, newMemCache())

	_, err := svc.CreateBooking(context.Background(), testCaller, decodeRequest(t, validRequest))
	require.NoError(t, err)
	_, err = svc.CreateBooking(context.Background(), utils.Caller{Subject: "user-2"}, decodeRequest(t, validRequest))
	require.NoError(t, err)

	assert.Equal(t, 2, repo.creates)
	p.AssertNumberOfCalls(t, "CreateCheckout", 2)
}

func TestGetBooking(t *testing.T) {
	repo := &memRepo{}
	stored := repo.seed("abc123")
	svc := newBookingService(repo, &mockProvider{}, nil)

	t.Run("owner", func(t *testing.T) {
		resp, err := svc.GetBooking(context.Background(), testCaller, stored.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "abc123", resp.ExternalBookingID)
		assert.Equal(t, entity.BookingStatusPending, resp.Status)
	})

	t.Run("admin", func(t *testing.T) {
		_, err := svc.GetBooking(context.Background(), utils.Caller{Subject: "ops", Role: "admin"}, stored.ID.String())
		require.NoError(t, err)
	})

	t.Run("other caller", func(t *testing.T) {
		_, err := svc.GetBooking(context.Background(), utils.Caller{Subject: "user-2"}, stored.ID.String())
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.GetBooking(context.Background(), testCaller, uuid.NewString())
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := svc.GetBooking(context.Background(), testCaller, "not-a-uuid")
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}

func TestCreateBooking_ConcurrentSubmissionsShareOneCall(t *testing.T) {
	repo := &memRepo{}
	p := &mockProvider{}
	started := make(chan struct{})
	release := make(chan struct{})
	p.On("CreateCheckout", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&provider.Checkout{ReferenceID: "abc123"}, nil).Once()

	svc := newBookingService(repo, p, nil)

	type result struct {
		bookingID string
		err       error
	}
	results := make(chan result, 2)
	submit := func(req *request.CreateBookingRequest) {
		resp, err := svc.CreateBooking(context.Background(), testCaller, req)
		if err != nil {
			results <- result{err: err}
			return
		}
		results <- result{bookingID: resp.BookingID}
	}

	reqA, reqB := decodeRequest(t, validRequest), decodeRequest(t, validRequest)
	go submit(reqA)
	<-started
	go submit(reqB)
	// Let the second submission join the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(release)

	first, second := <-results, <-results
	require.NoError(t, first.err)
	require.NoError(t, second.err)
	assert.Equal(t, first.bookingID, second.bookingID)
	assert.Equal(t, 1, repo.createCount())
	p.AssertNumberOfCalls(t, "CreateCheckout", 1)
}

func TestCreateBooking_WaiterSurvivesFirstCallerCancel(t *testing.T) {
	repo := &memRepo{}
	p := &mockProvider{}
	started := make(chan struct{})
	release := make(chan struct{})
	p.On("CreateCheckout", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&provider.Checkout{ReferenceID: "abc123"}, nil).Once()

	svc := newBookingService(repo, p, nil)

	reqA, reqB := decodeRequest(t, validRequest), decodeRequest(t, validRequest)
	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := svc.CreateBooking(ctxA, testCaller, reqA)
		errA <- err
	}()
	<-started

	type result struct {
		externalID string
		err        error
	}
	resB := make(chan result, 1)
	go func() {
		resp, err := svc.CreateBooking(context.Background(), testCaller, reqB)
		if err != nil {
			resB <- result{err: err}
			return
		}
		resB <- result{externalID: resp.ExternalBookingID}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, "abc123", b.externalID)
	assert.Equal(t, 1, repo.createCount())
	p.AssertNumberOfCalls(t, "CreateCheckout", 1)
}

func TestCreateBooking_StoreWriteOutlivesCallerCancel(t *testing.T) {
	repo := &memRepo{}
	p := &mockProvider{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The caller disconnects while the provider call is in flight
	p.On("CreateCheckout", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(&provider.Checkout{ReferenceID: "abc123"}, nil).Once()

	svc := newBookingService(repo, p, nil)
	_, _ = svc.CreateBooking(ctx, testCaller, decodeRequest(t, validRequest))

	require.Eventually(t, func() bool { return repo.createCount() == 1 }, time.Second, 10*time.Millisecond)
	p.AssertExpectations(t)
}
