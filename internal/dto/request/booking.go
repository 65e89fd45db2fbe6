package request

import "strings"

type CreateBookingRequest struct {
	Name           string   `json:"name" validate:"required"`
	Email          string   `json:"email" validate:"required,email"`
	Phone          string   `json:"phone,omitempty"`
	Package        string   `json:"package" validate:"required"`
	Nights         FlexInt  `json:"nights" validate:"required,gt=0"`
	Occupancy      string   `json:"occupancy" validate:"required,oneof=single double"`
	Guests         *int     `json:"guests,omitempty"`
	PricePerPerson *float64 `json:"price_per_person,omitempty"`
	TotalPrice     float64  `json:"total_price" validate:"required,gt=0"`
}

// Normalize trims free-text fields so whitespace-only values count as absent.
func (r *CreateBookingRequest) Normalize() {
	r.Name = strings.Join(strings.Fields(r.Name), " ")
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Package = strings.TrimSpace(r.Package)
	r.Occupancy = strings.ToLower(strings.TrimSpace(r.Occupancy))
}
