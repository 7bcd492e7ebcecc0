package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
	"github.com/sverzijl/planning-latest-sub007/pkg/solver"
)

// Warning is a recoverable issue reported alongside a plan
type Warning struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

// SolveInfo is the solver termination metadata
type SolveInfo struct {
	Status    solver.Status `json:"status"`
	Backend   string        `json:"backend"`
	Objective float64       `json:"objective"`
	// Gap is nil when the backend did not report one
	Gap       *float64      `json:"gap,omitempty"`
	SolveTime time.Duration `json:"solve_time"`
	Message   string        `json:"message,omitempty"`
}

// ProductionEntry is planned production at a node on a date
type ProductionEntry struct {
	Node     entities.NodeID    `json:"node"`
	Product  entities.ProductID `json:"product"`
	Date     time.Time          `json:"date"`
	State    entities.State     `json:"state"`
	Quantity float64            `json:"quantity"`
	Mixes    float64            `json:"mixes,omitempty"`
}

// ShipmentEntry is one cohort moving along a route
type ShipmentEntry struct {
	Origin         entities.NodeID    `json:"origin"`
	Destination    entities.NodeID    `json:"destination"`
	Product        entities.ProductID `json:"product"`
	CohortDate     time.Time          `json:"cohort_date"`
	DepartureDate  time.Time          `json:"departure_date"`
	DeliveryDate   time.Time          `json:"delivery_date"`
	DepartureState entities.State     `json:"departure_state"`
	ArrivalState   entities.State     `json:"arrival_state"`
	// ArrivalCohortDate differs from CohortDate when frozen stock thaws on arrival
	ArrivalCohortDate time.Time `json:"arrival_cohort_date"`
	Quantity          float64   `json:"quantity"`
}

// ShipmentTotal aggregates shipments by route, product and delivery date
type ShipmentTotal struct {
	Origin       entities.NodeID    `json:"origin"`
	Destination  entities.NodeID    `json:"destination"`
	Product      entities.ProductID `json:"product"`
	DeliveryDate time.Time          `json:"delivery_date"`
	Quantity     float64            `json:"quantity"`
}

// CohortInventory is end-of-day stock of one cohort
type CohortInventory struct {
	Node       entities.NodeID    `json:"node"`
	Product    entities.ProductID `json:"product"`
	CohortDate time.Time          `json:"cohort_date"`
	Date       time.Time          `json:"date"`
	State      entities.State     `json:"state"`
	Quantity   float64            `json:"quantity"`
}

// DemandConsumption is demand served from one cohort
type DemandConsumption struct {
	Node       entities.NodeID    `json:"node"`
	Product    entities.ProductID `json:"product"`
	Date       time.Time          `json:"date"`
	CohortDate time.Time          `json:"cohort_date"`
	State      entities.State     `json:"state"`
	Quantity   float64            `json:"quantity"`
}

// DemandSummary reconciles one forecast entry
type DemandSummary struct {
	Node      entities.NodeID    `json:"node"`
	Product   entities.ProductID `json:"product"`
	Date      time.Time          `json:"date"`
	Demand    float64            `json:"demand"`
	Satisfied float64            `json:"satisfied"`
	Shortage  float64            `json:"shortage"`
}

// LaborEntry is the labor plan of a manufacturing node on one day
type LaborEntry struct {
	Node          entities.NodeID `json:"node"`
	Date          time.Time       `json:"date"`
	Fixed         bool            `json:"fixed"`
	Defaulted     bool            `json:"defaulted,omitempty"`
	HoursUsed     float64         `json:"hours_used"`
	FixedHours    float64         `json:"fixed_hours"`
	OvertimeHours float64         `json:"overtime_hours"`
	PaidHours     float64         `json:"paid_hours"`
	Cost          decimal.Decimal `json:"cost"`
}

// TruckEntry is the load of one scheduled truck departure
type TruckEntry struct {
	TruckID string             `json:"truck_id"`
	Lane    string             `json:"lane"`
	Date    time.Time          `json:"date"`
	Product entities.ProductID `json:"product"`
	Units   float64            `json:"units"`
	Pallets float64            `json:"pallets,omitempty"`
}

// CostBreakdown splits total cost by component
type CostBreakdown struct {
	Production decimal.Decimal `json:"production"`
	Labor      decimal.Decimal `json:"labor"`
	Transport  decimal.Decimal `json:"transport"`
	Holding    decimal.Decimal `json:"holding"`
	Shortage   decimal.Decimal `json:"shortage"`
	Waste      decimal.Decimal `json:"waste"`
	Total      decimal.Decimal `json:"total"`
}

// Totals are aggregate quantities summed over the plan
type Totals struct {
	Production   float64 `json:"production"`
	Shipped      float64 `json:"shipped"`
	Demand       float64 `json:"demand"`
	Satisfied    float64 `json:"satisfied"`
	Shortage     float64 `json:"shortage"`
	EndInventory float64 `json:"end_inventory"`
}

// FillRate is satisfied demand over total demand
func (t Totals) FillRate() float64 {
	if t.Demand == 0 {
		return 1
	}
	return t.Satisfied / t.Demand
}

// PlanningResult is the complete output of a planning run
type PlanningResult struct {
	RunID string    `json:"run_id"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Solve SolveInfo `json:"solve"`

	Production     []ProductionEntry   `json:"production"`
	Shipments      []ShipmentEntry     `json:"shipments"`
	ShipmentTotals []ShipmentTotal     `json:"shipment_totals"`
	Inventory      []CohortInventory   `json:"inventory"`
	Consumption    []DemandConsumption `json:"consumption"`
	Demand         []DemandSummary     `json:"demand"`
	Labor          []LaborEntry        `json:"labor"`
	Trucks         []TruckEntry        `json:"trucks,omitempty"`

	Costs    CostBreakdown `json:"costs"`
	Totals   Totals        `json:"totals"`
	Warnings []Warning     `json:"warnings"`
}

// HasPlan reports whether the solver returned usable values
func (r *PlanningResult) HasPlan() bool {
	return r != nil && r.Solve.Status.HasSolution()
}

// InventoryOn returns the cohort inventory held at the end of a date
func (r *PlanningResult) InventoryOn(date time.Time) []CohortInventory {
	day := entities.Day(date)
	var result []CohortInventory
	for _, inv := range r.Inventory {
		if inv.Date.Equal(day) {
			result = append(result, inv)
		}
	}
	return result
}
