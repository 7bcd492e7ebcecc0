package entities

import (
	"fmt"
	"time"
)

// ForecastEntry represents forecast demand for a product at a location on a date
type ForecastEntry struct {
	Node     NodeID    `json:"node" yaml:"node" validate:"required"`
	Product  ProductID `json:"product" yaml:"product" validate:"required"`
	Date     time.Time `json:"date" yaml:"date"`
	Quantity float64   `json:"quantity" yaml:"quantity" validate:"gte=0"`
}

// NewForecastEntry creates a validated ForecastEntry
func NewForecastEntry(node NodeID, product ProductID, date time.Time, quantity float64) (*ForecastEntry, error) {
	if node == "" {
		return nil, fmt.Errorf("forecast node cannot be empty")
	}
	if product == "" {
		return nil, fmt.Errorf("forecast product cannot be empty")
	}
	if quantity < 0 {
		return nil, fmt.Errorf("forecast quantity cannot be negative, got %g", quantity)
	}

	return &ForecastEntry{
		Node:     node,
		Product:  product,
		Date:     Day(date),
		Quantity: quantity,
	}, nil
}

// DemandKey identifies a (node, product, date) demand point
type DemandKey struct {
	Node    NodeID
	Product ProductID
	Date    time.Time
}

// Key returns the demand point the entry contributes to
func (f ForecastEntry) Key() DemandKey {
	return DemandKey{Node: f.Node, Product: f.Product, Date: Day(f.Date)}
}

// AggregateForecast sums duplicate forecast entries per demand point
func AggregateForecast(entries []*ForecastEntry) map[DemandKey]float64 {
	totals := make(map[DemandKey]float64, len(entries))
	for _, e := range entries {
		totals[e.Key()] += e.Quantity
	}
	return totals
}
