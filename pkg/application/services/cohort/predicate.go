package cohort

import "github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"

// shelfLife is the one shelf-life rule every index set is derived from
type shelfLife struct {
	products map[entities.ProductID]*entities.Product
}

// alive reports whether stock of the cohort may exist on the day
func (s shelfLife) alive(product entities.ProductID, state entities.State, cohort, day int) bool {
	p, ok := s.products[product]
	return ok && p.Alive(state, day-cohort)
}

// consumable reports whether stock of the cohort may be sold on the day
func (s shelfLife) consumable(product entities.ProductID, state entities.State, cohort, day int) bool {
	p, ok := s.products[product]
	return ok && p.Consumable(state, day-cohort)
}

// lastAlive is the final day offset the cohort is usable in the state
func (s shelfLife) lastAlive(product entities.ProductID, state entities.State, cohort int) int {
	p, ok := s.products[product]
	if !ok {
		return cohort - 1
	}
	return cohort + p.ShelfLife.For(state)
}
