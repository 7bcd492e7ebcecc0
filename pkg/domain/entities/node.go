package entities

import "fmt"

// NodeID is the unique identifier of a network location
type NodeID string

// Capabilities are the roles a node plays in the network
type Capabilities struct {
	CanManufacture bool `json:"can_manufacture" yaml:"can_manufacture"`
	HasDemand      bool `json:"has_demand" yaml:"has_demand"`
	CanStore       bool `json:"can_store" yaml:"can_store"`
}

// Node is a location in the distribution network
type Node struct {
	ID           NodeID       `json:"id" yaml:"id" validate:"required"`
	Name         string       `json:"name,omitempty" yaml:"name"`
	Capabilities Capabilities `json:"capabilities" yaml:"capabilities"`
	StorageMode  StorageMode  `json:"storage_mode" yaml:"storage_mode"`

	// Manufacturing parameters, only meaningful when CanManufacture is set
	ProductionRate  float64 `json:"production_rate,omitempty" yaml:"production_rate" validate:"gte=0"` // units per labor hour
	StartupHours    float64 `json:"startup_hours,omitempty" yaml:"startup_hours" validate:"gte=0"`
	ShutdownHours   float64 `json:"shutdown_hours,omitempty" yaml:"shutdown_hours" validate:"gte=0"`
	ChangeoverHours float64 `json:"changeover_hours,omitempty" yaml:"changeover_hours" validate:"gte=0"`
}

// NewNode creates a validated Node
func NewNode(id NodeID, caps Capabilities, mode StorageMode, productionRate float64) (*Node, error) {
	if id == "" {
		return nil, fmt.Errorf("node id cannot be empty")
	}
	if mode < StorageAmbient || mode > StorageBoth {
		return nil, fmt.Errorf("node %s: invalid storage mode %d", id, mode)
	}
	if productionRate < 0 {
		return nil, fmt.Errorf("node %s: production rate cannot be negative, got %g", id, productionRate)
	}
	if caps.CanManufacture && productionRate == 0 {
		return nil, fmt.Errorf("node %s: manufacturing node requires a positive production rate", id)
	}

	return &Node{
		ID:             id,
		Capabilities:   caps,
		StorageMode:    mode,
		ProductionRate: productionRate,
	}, nil
}

// Supports reports whether the node can hold inventory in the given state
func (n Node) Supports(s State) bool {
	return n.StorageMode.Holds(s)
}

// CanTransition reports whether freeze and thaw can happen at the node
func (n Node) CanTransition() bool {
	return n.StorageMode == StorageBoth
}

// ProductionState is the state freshly manufactured product enters
func (n Node) ProductionState() State {
	if n.Supports(Ambient) {
		return Ambient
	}
	return Frozen
}

// ConsumableStates lists the states demand at this node may be served from
func (n Node) ConsumableStates() []State {
	if !n.Supports(Ambient) {
		return nil
	}
	return []State{Ambient, Thawed}
}

// DailyOverheadHours is the fixed startup plus shutdown time of a production day
func (n Node) DailyOverheadHours() float64 {
	return n.StartupHours + n.ShutdownHours
}
