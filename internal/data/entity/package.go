package entity

// RetreatPackage is one bookable retreat offering.
type RetreatPackage struct {
	ID     string
	Name   string
	Nights []int
	// Prices maps nights -> occupancy -> price per person.
	Prices map[int]map[Occupancy]float64
}

// OffersNights reports whether the package can be booked for n nights.
func (p RetreatPackage) OffersNights(n int) bool {
	for _, v := range p.Nights {
		if v == n {
			return true
		}
	}
	return false
}

// PricePerPerson returns the list price for the combination, if any.
func (p RetreatPackage) PricePerPerson(nights int, occ Occupancy) (float64, bool) {
	byOcc, ok := p.Prices[nights]
	if !ok {
		return 0, false
	}
	price, ok := byOcc[occ]
	return price, ok
}
