package entity

import (
	"time"

	"github.com/google/uuid"
)

// BaseNoDelete carries the store-assigned identity of records that are never
// deleted.
type BaseNoDelete struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
