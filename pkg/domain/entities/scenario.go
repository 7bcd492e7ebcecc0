package entities

// Scenario is the complete input data of one planning run
type Scenario struct {
	Nodes     []*Node            `json:"nodes" yaml:"nodes" validate:"min=1,dive"`
	Routes    []*Route           `json:"routes" yaml:"routes" validate:"dive"`
	Products  []*Product         `json:"products" yaml:"products" validate:"min=1,dive"`
	Forecast  []*ForecastEntry   `json:"forecast" yaml:"forecast" validate:"dive"`
	LaborDays []*LaborDay        `json:"labor_days" yaml:"labor_days" validate:"dive"`
	Costs     CostStructure      `json:"costs" yaml:"costs"`
	Inventory *InventorySnapshot `json:"inventory,omitempty" yaml:"inventory"`
	Trucks    []*TruckSchedule   `json:"trucks,omitempty" yaml:"trucks" validate:"dive"`
}

// NodeByID returns the node with the given id
func (s *Scenario) NodeByID(id NodeID) (*Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// ProductByID returns the product with the given id
func (s *Scenario) ProductByID(id ProductID) (*Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}
