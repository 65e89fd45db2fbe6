package usecase

import "retreat-booking/internal/data/entity"

// Catalog indexes the bookable packages by id.
type Catalog map[string]entity.RetreatPackage

func (c Catalog) Lookup(id string) (entity.RetreatPackage, bool) {
	p, ok := c[id]
	return p, ok
}

// DefaultCatalog is the retreat price list, per person in USD.
func DefaultCatalog() Catalog {
	packages := []entity.RetreatPackage{
		{
			ID:     "luxury-suite",
			Name:   "Luxury Suite",
			Nights: []int{3, 4},
			Prices: map[int]map[entity.Occupancy]float64{
				3: {entity.OccupancySingle: 1455, entity.OccupancyDouble: 1100},
				4: {entity.OccupancySingle: 1825, entity.OccupancyDouble: 1350},
			},
		},
		{
			ID:     "diamond-club",
			Name:   "Luxury Suite Diamond Club",
			Nights: []int{3, 4},
			Prices: map[int]map[entity.Occupancy]float64{
				3: {entity.OccupancySingle: 1650, entity.OccupancyDouble: 1230},
				4: {entity.OccupancySingle: 2100, entity.OccupancyDouble: 1500},
			},
		},
		{
			ID:     "ocean-view-dc",
			Name:   "Luxury Ocean View Diamond Club",
			Nights: []int{3, 4},
			Prices: map[int]map[entity.Occupancy]float64{
				3: {entity.OccupancySingle: 1825, entity.OccupancyDouble: 1350},
				4: {entity.OccupancySingle: 2350, entity.OccupancyDouble: 1650},
			},
		},
	}

	c := make(Catalog, len(packages))
	for _, p := range packages {
		c[p.ID] = p
	}
	return c
}
