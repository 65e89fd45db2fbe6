package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"retreat-booking/internal/data/entity"
	"retreat-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)

	// FindByExternalID filters bookings by provider reference, oldest first.
	FindByExternalID(ctx context.Context, externalID string) ([]*entity.Booking, error)

	// UpdateStatus sets status and payment_status together; there is no way
	// to change one without the other.
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus, paymentStatus entity.PaymentStatus) error
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, user_id, name, email, phone, package, nights, occupancy, guests,
	price_per_person, total_price, external_booking_id, checkout_url, payment_status, status,
	created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.Name,
		&booking.Email,
		&booking.Phone,
		&booking.Package,
		&booking.Nights,
		&booking.Occupancy,
		&booking.Guests,
		&booking.PricePerPerson,
		&booking.TotalPrice,
		&booking.ExternalBookingID,
		&booking.CheckoutURL,
		&booking.PaymentStatus,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	now := time.Now().UTC()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = booking.CreatedAt

	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.UserID,
		booking.Name,
		booking.Email,
		booking.Phone,
		booking.Package,
		booking.Nights,
		booking.Occupancy,
		booking.Guests,
		booking.PricePerPerson,
		booking.TotalPrice,
		booking.ExternalBookingID,
		booking.CheckoutURL,
		booking.PaymentStatus,
		booking.Status,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("external_booking_id", booking.ExternalBookingID),
			zap.String("user_id", booking.UserID),
		)
		return fmt.Errorf("create booking %s: %w", booking.ExternalBookingID, err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByExternalID(ctx context.Context, externalID string) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE external_booking_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, externalID)
	if err != nil {
		r.log.Error("Failed to find bookings by external ID",
			zap.Error(err),
			zap.String("external_booking_id", externalID),
		)
		return nil, fmt.Errorf("find bookings by external ID %s: %w", externalID, err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking rows: %w", err)
	}

	return bookings, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus, paymentStatus entity.PaymentStatus) error {
	query := `
		UPDATE bookings
		SET status = $1, payment_status = $2, updated_at = $3
		WHERE id = $4
	`

	tag, err := r.db.Exec(ctx, query, status, paymentStatus, time.Now().UTC(), id)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("status", string(status)),
			zap.String("payment_status", string(paymentStatus)),
		)
		return fmt.Errorf("update booking status %s: %w", id.String(), err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", id.String())
	}

	return nil
}
