package repositories

import "github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"

// LaborRepository provides access to the labor calendar
type LaborRepository interface {
	GetCalendar() (*entities.LaborCalendar, error)
	LoadLaborDays(days []*entities.LaborDay) error
}

// CostRepository provides access to the network cost structure
type CostRepository interface {
	GetCostStructure() (*entities.CostStructure, error)
	LoadCostStructure(costs *entities.CostStructure) error
}

// TruckRepository provides access to truck schedules
type TruckRepository interface {
	GetTruckSchedules() ([]*entities.TruckSchedule, error)
	LoadTruckSchedules(trucks []*entities.TruckSchedule) error
}
