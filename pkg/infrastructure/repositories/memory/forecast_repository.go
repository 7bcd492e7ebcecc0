package memory

import (
	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
	"github.com/sverzijl/planning-latest-sub007/pkg/domain/repositories"
)

// ForecastRepository provides in-memory forecast storage
type ForecastRepository struct {
	entries []entities.ForecastEntry
}

// NewForecastRepository creates a new in-memory forecast repository
func NewForecastRepository() *ForecastRepository {
	return &ForecastRepository{
		entries: []entities.ForecastEntry{},
	}
}

// Verify interface compliance
var _ repositories.ForecastRepository = (*ForecastRepository)(nil)

// LoadForecast appends forecast entries. Duplicate keys are kept and summed
// by the planner.
func (r *ForecastRepository) LoadForecast(entries []*entities.ForecastEntry) error {
	for _, entry := range entries {
		r.entries = append(r.entries, *entry)
	}
	return nil
}

// GetForecast returns all forecast entries
func (r *ForecastRepository) GetForecast() ([]*entities.ForecastEntry, error) {
	entries := make([]*entities.ForecastEntry, 0, len(r.entries))
	for i := range r.entries {
		entries = append(entries, &r.entries[i])
	}
	return entries, nil
}
