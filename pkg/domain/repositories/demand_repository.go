package repositories

import "github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"

// ForecastRepository provides access to demand forecast data
type ForecastRepository interface {
	GetForecast() ([]*entities.ForecastEntry, error)
	LoadForecast(entries []*entities.ForecastEntry) error
}
