package services

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
)

// ValidationError reports one malformed input entity
type ValidationError struct {
	Entity string
	ID     string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Entity, e.ID, e.Reason)
}

// ValidationResult contains the results of scenario validation
type ValidationResult struct {
	Errors                 []*ValidationError
	Warnings               []string
	UnreachableDemandNodes []entities.NodeID
}

// Err joins every validation error, or returns nil when the scenario is valid
func (r *ValidationResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// ScenarioValidator checks network, calendar and inventory data integrity
type ScenarioValidator struct {
	validate *validator.Validate
}

// NewScenarioValidator creates a new scenario validator
func NewScenarioValidator() *ScenarioValidator {
	return &ScenarioValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate performs struct-level and referential validation of a scenario
func (v *ScenarioValidator) Validate(s *entities.Scenario) *ValidationResult {
	result := &ValidationResult{}
	if s == nil {
		result.add("scenario", "", "scenario is nil")
		return result
	}

	v.validateStructs(s, result)

	nodes := v.detectDuplicateNodes(s.Nodes, result)
	products := v.detectDuplicateProducts(s.Products, result)
	v.validateRoutes(s.Routes, nodes, result)
	v.validateForecast(s.Forecast, nodes, products, result)
	v.validateInventory(s.Inventory, nodes, products, result)
	v.validateTrucks(s.Trucks, s.Routes, result)

	if err := s.Costs.Validate(); err != nil {
		result.add("costs", "", err.Error())
	}

	// Build adjacency map for reachability
	adjacencyMap := v.buildAdjacencyMap(s.Routes)
	result.UnreachableDemandNodes = v.detectUnreachableDemand(s.Nodes, adjacencyMap, s.Inventory)
	for _, id := range result.UnreachableDemandNodes {
		result.Warnings = append(result.Warnings, fmt.Sprintf("demand node %s is not reachable from any manufacturing node", id))
	}

	return result
}

func (r *ValidationResult) add(entity, id, reason string) {
	r.Errors = append(r.Errors, &ValidationError{Entity: entity, ID: id, Reason: reason})
}

// validateStructs runs tag validation and reports the failing field
func (v *ScenarioValidator) validateStructs(s *entities.Scenario, result *ValidationResult) {
	err := v.validate.Struct(s)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		result.add("scenario", "", err.Error())
		return
	}
	for _, fe := range fieldErrs {
		result.add("field", fe.Namespace(), fmt.Sprintf("failed %q constraint (value %v)", fe.Tag(), fe.Value()))
	}
}

func (v *ScenarioValidator) detectDuplicateNodes(nodes []*entities.Node, result *ValidationResult) map[entities.NodeID]*entities.Node {
	seen := make(map[entities.NodeID]*entities.Node, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if _, exists := seen[n.ID]; exists {
			result.add("node", string(n.ID), "duplicate node id")
			continue
		}
		if n.Capabilities.CanManufacture && n.ProductionRate <= 0 {
			result.add("node", string(n.ID), "manufacturing node requires a positive production rate")
		}
		seen[n.ID] = n
	}
	return seen
}

func (v *ScenarioValidator) detectDuplicateProducts(products []*entities.Product, result *ValidationResult) map[entities.ProductID]*entities.Product {
	seen := make(map[entities.ProductID]*entities.Product, len(products))
	for _, p := range products {
		if p == nil {
			continue
		}
		if _, exists := seen[p.ID]; exists {
			result.add("product", string(p.ID), "duplicate product id")
			continue
		}
		seen[p.ID] = p
	}
	return seen
}

func (v *ScenarioValidator) validateRoutes(routes []*entities.Route, nodes map[entities.NodeID]*entities.Node, result *ValidationResult) {
	lanes := make(map[string]bool, len(routes))
	for _, r := range routes {
		if r == nil {
			continue
		}
		lane := r.Lane()
		if r.TransitDays <= 0 {
			result.add("route", lane, fmt.Sprintf("transit time must be positive, got %g", r.TransitDays))
		}
		if r.TransportState == entities.Thawed {
			result.add("route", lane, "transport state must be ambient or frozen")
		}
		if r.CostPerUnit.IsNegative() {
			result.add("route", lane, "cost per unit cannot be negative")
		}
		if _, ok := nodes[r.Origin]; !ok {
			result.add("route", lane, fmt.Sprintf("unknown origin node %s", r.Origin))
		}
		if _, ok := nodes[r.Destination]; !ok {
			result.add("route", lane, fmt.Sprintf("unknown destination node %s", r.Destination))
		}
		if lanes[lane] {
			result.add("route", lane, "duplicate route")
		}
		lanes[lane] = true
	}
}

func (v *ScenarioValidator) validateForecast(forecast []*entities.ForecastEntry, nodes map[entities.NodeID]*entities.Node, products map[entities.ProductID]*entities.Product, result *ValidationResult) {
	for _, f := range forecast {
		if f == nil {
			continue
		}
		id := fmt.Sprintf("%s/%s/%s", f.Node, f.Product, f.Date.Format(entities.DateLayout))
		node, ok := nodes[f.Node]
		if !ok {
			result.add("forecast", id, fmt.Sprintf("unknown node %s", f.Node))
		} else if !node.Capabilities.HasDemand {
			result.add("forecast", id, fmt.Sprintf("node %s has no demand capability", f.Node))
		}
		if _, ok := products[f.Product]; !ok {
			result.add("forecast", id, fmt.Sprintf("unknown product %s", f.Product))
		}
	}
}

func (v *ScenarioValidator) validateInventory(snapshot *entities.InventorySnapshot, nodes map[entities.NodeID]*entities.Node, products map[entities.ProductID]*entities.Product, result *ValidationResult) {
	if snapshot.IsEmpty() {
		return
	}
	if snapshot.SnapshotDate.IsZero() {
		result.add("inventory", "", "snapshot date is required")
	}
	for _, e := range snapshot.Entries {
		id := fmt.Sprintf("%s/%s/%s", e.Node, e.Product, e.State)
		node, ok := nodes[e.Node]
		if !ok {
			result.add("inventory", id, fmt.Sprintf("unknown node %s", e.Node))
		} else if !node.Supports(e.State) {
			result.add("inventory", id, fmt.Sprintf("node %s cannot hold %s stock", e.Node, e.State))
		}
		if _, ok := products[e.Product]; !ok {
			result.add("inventory", id, fmt.Sprintf("unknown product %s", e.Product))
		}
		if e.Quantity < 0 {
			result.add("inventory", id, "quantity cannot be negative")
		}
	}
	for _, t := range snapshot.InTransit {
		id := fmt.Sprintf("%s/%s/%s", t.Destination, t.Product, t.DeliveryDate.Format(entities.DateLayout))
		node, ok := nodes[t.Destination]
		if !ok {
			result.add("in_transit", id, fmt.Sprintf("unknown destination %s", t.Destination))
		} else if !node.Supports(t.ArrivalState) {
			result.add("in_transit", id, fmt.Sprintf("node %s cannot receive %s stock", t.Destination, t.ArrivalState))
		}
		if _, ok := products[t.Product]; !ok {
			result.add("in_transit", id, fmt.Sprintf("unknown product %s", t.Product))
		}
	}
}

func (v *ScenarioValidator) validateTrucks(trucks []*entities.TruckSchedule, routes []*entities.Route, result *ValidationResult) {
	lanes := make(map[string]bool, len(routes))
	for _, r := range routes {
		if r != nil {
			lanes[r.Lane()] = true
		}
	}
	seen := make(map[string]bool, len(trucks))
	for _, t := range trucks {
		if t == nil {
			continue
		}
		if seen[t.ID] {
			result.add("truck", t.ID, "duplicate truck id")
		}
		seen[t.ID] = true
		if !lanes[t.Lane()] {
			result.add("truck", t.ID, fmt.Sprintf("no route serves lane %s", t.Lane()))
		}
	}
}

// buildAdjacencyMap creates a map of origin -> destinations relationships
func (v *ScenarioValidator) buildAdjacencyMap(routes []*entities.Route) map[entities.NodeID][]entities.NodeID {
	adjacencyMap := make(map[entities.NodeID][]entities.NodeID)
	for _, r := range routes {
		if r == nil {
			continue
		}
		adjacencyMap[r.Origin] = append(adjacencyMap[r.Origin], r.Destination)
	}
	return adjacencyMap
}

// detectUnreachableDemand walks the network from every manufacturing node and
// from every node holding initial stock
func (v *ScenarioValidator) detectUnreachableDemand(nodes []*entities.Node, adjacencyMap map[entities.NodeID][]entities.NodeID, snapshot *entities.InventorySnapshot) []entities.NodeID {
	visited := make(map[entities.NodeID]bool)
	for _, n := range nodes {
		if n != nil && n.Capabilities.CanManufacture {
			v.dfsVisit(n.ID, adjacencyMap, visited)
		}
	}
	if snapshot != nil {
		for _, e := range snapshot.Entries {
			v.dfsVisit(e.Node, adjacencyMap, visited)
		}
		for _, t := range snapshot.InTransit {
			v.dfsVisit(t.Destination, adjacencyMap, visited)
		}
	}

	unreachable := make([]entities.NodeID, 0)
	for _, n := range nodes {
		if n != nil && n.Capabilities.HasDemand && !visited[n.ID] {
			unreachable = append(unreachable, n.ID)
		}
	}
	sort.Slice(unreachable, func(i, j int) bool { return unreachable[i] < unreachable[j] })
	return unreachable
}

// dfsVisit performs depth-first search marking every node reachable from current
func (v *ScenarioValidator) dfsVisit(current entities.NodeID, adjacencyMap map[entities.NodeID][]entities.NodeID, visited map[entities.NodeID]bool) {
	if visited[current] {
		return
	}
	visited[current] = true
	for _, next := range adjacencyMap[current] {
		v.dfsVisit(next, adjacencyMap, visited)
	}
}
