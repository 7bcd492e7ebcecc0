package memory

import (
	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
	"github.com/sverzijl/planning-latest-sub007/pkg/domain/repositories"
)

// LaborRepository provides in-memory labor calendar storage
type LaborRepository struct {
	days []*entities.LaborDay
}

// NewLaborRepository creates a new in-memory labor repository
func NewLaborRepository() *LaborRepository {
	return &LaborRepository{}
}

var _ repositories.LaborRepository = (*LaborRepository)(nil)

// LoadLaborDays appends labor days
func (r *LaborRepository) LoadLaborDays(days []*entities.LaborDay) error {
	r.days = append(r.days, days...)
	return nil
}

// GetCalendar builds the calendar, rejecting duplicate dates
func (r *LaborRepository) GetCalendar() (*entities.LaborCalendar, error) {
	return entities.NewLaborCalendar(r.days)
}

// CostRepository provides in-memory cost structure storage
type CostRepository struct {
	costs entities.CostStructure
}

// NewCostRepository creates a new in-memory cost repository
func NewCostRepository() *CostRepository {
	return &CostRepository{}
}

var _ repositories.CostRepository = (*CostRepository)(nil)

// LoadCostStructure replaces the cost structure
func (r *CostRepository) LoadCostStructure(costs *entities.CostStructure) error {
	if err := costs.Validate(); err != nil {
		return err
	}
	r.costs = *costs
	return nil
}

// GetCostStructure returns a copy of the cost structure
func (r *CostRepository) GetCostStructure() (*entities.CostStructure, error) {
	costs := r.costs
	return &costs, nil
}

// TruckRepository provides in-memory truck schedule storage
type TruckRepository struct {
	trucks []entities.TruckSchedule
}

// NewTruckRepository creates a new in-memory truck repository
func NewTruckRepository() *TruckRepository {
	return &TruckRepository{}
}

var _ repositories.TruckRepository = (*TruckRepository)(nil)

// LoadTruckSchedules appends truck schedules
func (r *TruckRepository) LoadTruckSchedules(trucks []*entities.TruckSchedule) error {
	for _, truck := range trucks {
		r.trucks = append(r.trucks, *truck)
	}
	return nil
}

// GetTruckSchedules returns all truck schedules
func (r *TruckRepository) GetTruckSchedules() ([]*entities.TruckSchedule, error) {
	trucks := make([]*entities.TruckSchedule, 0, len(r.trucks))
	for i := range r.trucks {
		trucks = append(trucks, &r.trucks[i])
	}
	return trucks, nil
}
