package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"retreat-booking/internal/data/entity"
	"retreat-booking/internal/data/repository"
	"retreat-booking/internal/dto/request"
	"retreat-booking/internal/dto/response"
	"retreat-booking/internal/provider"
	"retreat-booking/pkg/cache"
	"retreat-booking/pkg/metrics"
	"retreat-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type BookingService interface {
	// CreateBooking validates the request, opens a checkout with the payment
	// provider and persists the pending booking.
	CreateBooking(ctx context.Context, caller utils.Caller, req *request.CreateBookingRequest) (*response.CreateBookingResponse, error)

	// GetBooking returns a booking owned by the caller.
	GetBooking(ctx context.Context, caller utils.Caller, bookingID string) (*response.BookingResponse, error)
}

// bookingDraft is a validated request with every derived field filled in.
type bookingDraft struct {
	Name           string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Package        string
	PackageName    string
	Nights         int
	Occupancy      entity.Occupancy
	Guests         int
	PricePerPerson float64
	TotalPrice     float64
}

type bookingService struct {
	repo     repository.BookingRepository
	provider provider.Provider
	cache    cache.Cache
	catalog  Catalog
	config   utils.WeTravelConfig
	replay   time.Duration
	inflight singleflight.Group
	log      *zap.Logger
}

func NewBookingService(
	repo repository.BookingRepository,
	p provider.Provider,
	c cache.Cache,
	catalog Catalog,
	config *utils.Config,
	log *zap.Logger,
) BookingService {
	if c == nil {
		c = cache.NopCache{}
	}
	return &bookingService{
		repo:     repo,
		provider: p,
		cache:    c,
		catalog:  catalog,
		config:   config.WeTravel,
		replay:   config.Redis.IdempotencyTTL,
		log:      log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, caller utils.Caller, req *request.CreateBookingRequest) (*response.CreateBookingResponse, error) {
	if caller.Subject == "" {
		return nil, ErrUnauthorized
	}

	req.Normalize()
	if errs := utils.ValidateStruct(req); !errs.Empty() {
		s.log.Warn("Create booking validation failed",
			zap.Strings("missing", errs.Missing),
			zap.Any("invalid", errs.Invalid),
		)
		if len(errs.Missing) > 0 {
			return nil, &ValidationError{Missing: errs.Missing}
		}
		return nil, &ValidationError{Fields: errs.Invalid}
	}

	draft, err := s.derive(req)
	if err != nil {
		s.log.Warn("Create booking rejected", zap.Error(err))
		return nil, err
	}

	if !s.config.HasCredentials() || s.provider == nil {
		s.log.Error("WeTravel API not configured")
		return nil, ErrNotConfigured
	}

	key := IdempotencyKey(caller.Subject, draft)

	var replayed response.CreateBookingResponse
	if found, err := s.cache.GetJSON(ctx, replayKey(key), &replayed); err != nil {
		s.log.Warn("Idempotency cache lookup failed", zap.Error(err))
	} else if found {
		s.log.Info("Replaying completed booking",
			zap.String("booking_id", replayed.BookingID),
			zap.String("external_booking_id", replayed.ExternalBookingID),
		)
		return &replayed, nil
	}

	// Identical submissions in flight share one provider call. The shared call
	// outlives any single waiter; each waiter stops on its own context only.
	ch := s.inflight.DoChan(key, func() (interface{}, error) {
		return s.create(context.WithoutCancel(ctx), caller, draft, key)
	})

	select {
	case <-ctx.Done():
		s.log.Warn("Create booking abandoned by caller",
			zap.Error(ctx.Err()),
			zap.String("idempotency_key", key),
		)
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.log.Debug("Concurrent booking submission collapsed", zap.String("idempotency_key", key))
		}
		resp := *res.Val.(*response.CreateBookingResponse)
		return &resp, nil
	}
}

// storeWriteTimeout bounds the booking insert that follows a provider success.
const storeWriteTimeout = 5 * time.Second

// create performs the provider call and the store write. The store is only
// touched after the provider succeeded. ctx carries no cancellation; the
// provider client timeout bounds the call.
func (s *bookingService) create(ctx context.Context, caller utils.Caller, d *bookingDraft, key string) (*response.CreateBookingResponse, error) {
	checkout, err := s.provider.CreateCheckout(ctx, provider.CheckoutRequest{
		Customer: provider.Customer{
			FirstName: d.FirstName,
			LastName:  d.LastName,
			Email:     d.Email,
			Phone:     d.Phone,
		},
		Note:           bookingNote(d),
		Amount:         d.TotalPrice,
		IdempotencyKey: key,
	})
	if err != nil {
		s.log.Error("Failed to create WeTravel booking",
			zap.Error(err),
			zap.String("provider", s.provider.Name()),
			zap.String("user_id", caller.Subject),
		)
		return nil, &ProviderCallError{Err: err}
	}

	booking := &entity.Booking{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: time.Now().UTC(),
		},
		UserID:            caller.Subject,
		Name:              d.Name,
		Email:             d.Email,
		Phone:             d.Phone,
		Package:           d.Package,
		Nights:            d.Nights,
		Occupancy:         d.Occupancy,
		Guests:            d.Guests,
		PricePerPerson:    d.PricePerPerson,
		TotalPrice:        d.TotalPrice,
		ExternalBookingID: checkout.ReferenceID,
		PaymentStatus:     entity.PaymentStatusPending,
		Status:            entity.BookingStatusPending,
	}
	if checkout.CheckoutURL != "" {
		booking.CheckoutURL = &checkout.CheckoutURL
	}

	storeCtx, cancel := context.WithTimeout(ctx, storeWriteTimeout)
	defer cancel()

	if err := s.repo.Create(storeCtx, booking); err != nil {
		// No compensation exists on the provider side; this needs manual follow-up.
		s.log.Error("Provider booking created without local record",
			zap.Error(err),
			zap.String("external_booking_id", checkout.ReferenceID),
			zap.String("user_id", caller.Subject),
			zap.String("email", d.Email),
		)
		return nil, fmt.Errorf("store booking for %s: %w", checkout.ReferenceID, err)
	}
	metrics.BookingsCreated.Inc()

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("external_booking_id", booking.ExternalBookingID),
		zap.String("user_id", caller.Subject),
		zap.String("package", d.Package),
		zap.Float64("total_price", d.TotalPrice),
	)

	resp := &response.CreateBookingResponse{
		Success:           true,
		BookingID:         booking.ID.String(),
		CheckoutURL:       checkout.CheckoutURL,
		ExternalBookingID: checkout.ReferenceID,
	}

	if s.replay > 0 {
		if err := s.cache.SetJSON(ctx, replayKey(key), resp, s.replay); err != nil {
			s.log.Warn("Failed to cache booking for replay", zap.Error(err))
		}
	}

	return resp, nil
}

// derive checks the request against the catalogue and fills guests, price
// per person and the display name.
func (s *bookingService) derive(req *request.CreateBookingRequest) (*bookingDraft, error) {
	invalid := make(map[string]string)

	occupancy := entity.Occupancy(req.Occupancy)
	multiplier := occupancy.Multiplier()
	nights := int(req.Nights)

	pkg, known := s.catalog.Lookup(req.Package)
	if !known {
		invalid["package"] = "Unknown package"
	} else if !pkg.OffersNights(nights) {
		invalid["nights"] = fmt.Sprintf("Package %s is not offered for %d nights", pkg.ID, nights)
	}

	guests := multiplier
	if req.Guests != nil && *req.Guests != guests {
		invalid["guests"] = fmt.Sprintf("Must be %d for %s occupancy", guests, occupancy)
	}

	listPrice, listed := pkg.PricePerPerson(nights, occupancy)
	pricePerPerson := utils.RoundCents(req.TotalPrice / float64(multiplier))
	switch {
	case req.PricePerPerson != nil:
		pricePerPerson = *req.PricePerPerson
		if listed && !utils.AmountsEqual(pricePerPerson, listPrice) {
			invalid["price_per_person"] = fmt.Sprintf("Must be %.2f for this package", listPrice)
		}
	case listed:
		pricePerPerson = listPrice
	}

	if !utils.AmountsEqual(req.TotalPrice, pricePerPerson*float64(multiplier)) {
		invalid["total_price"] = fmt.Sprintf("Must equal price_per_person x %d", multiplier)
	}

	if len(invalid) > 0 {
		return nil, &ValidationError{Fields: invalid}
	}

	first, last := utils.SplitName(req.Name)

	return &bookingDraft{
		Name:           req.Name,
		FirstName:      first,
		LastName:       last,
		Email:          req.Email,
		Phone:          req.Phone,
		Package:        req.Package,
		PackageName:    pkg.Name,
		Nights:         nights,
		Occupancy:      occupancy,
		Guests:         guests,
		PricePerPerson: pricePerPerson,
		TotalPrice:     req.TotalPrice,
	}, nil
}

func (s *bookingService) GetBooking(ctx context.Context, caller utils.Caller, bookingID string) (*response.BookingResponse, error) {
	if caller.Subject == "" {
		return nil, ErrUnauthorized
	}

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}

	// Other callers' bookings are reported as missing
	if booking == nil || (booking.UserID != caller.Subject && caller.Role != "admin") {
		return nil, ErrBookingNotFound
	}

	return response.BookingToResponse(booking), nil
}

func bookingNote(d *bookingDraft) string {
	return fmt.Sprintf("Package: %s\nNights: %d\nOccupancy: %s\nGuests: %d\nTotal: %s",
		d.PackageName,
		d.Nights,
		d.Occupancy,
		d.Guests,
		strconv.FormatFloat(d.TotalPrice, 'f', 2, 64),
	)
}

func replayKey(idempotencyKey string) string {
	return "booking:" + idempotencyKey
}
