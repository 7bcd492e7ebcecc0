package memory

import (
	"fmt"

	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
	"github.com/sverzijl/planning-latest-sub007/pkg/domain/repositories"
)

// InventoryRepository holds the initial inventory snapshot
type InventoryRepository struct {
	snapshot *entities.InventorySnapshot
}

// NewInventoryRepository creates a new in-memory inventory repository
func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{}
}

// Verify interface compliance
var _ repositories.InventoryRepository = (*InventoryRepository)(nil)

// LoadSnapshot stores a copy of the snapshot. Loading twice merges entries
// when both snapshots share a date.
func (r *InventoryRepository) LoadSnapshot(snapshot *entities.InventorySnapshot) error {
	if snapshot == nil {
		return nil
	}
	if r.snapshot == nil {
		r.snapshot = &entities.InventorySnapshot{SnapshotDate: entities.Day(snapshot.SnapshotDate)}
	} else if !r.snapshot.SnapshotDate.Equal(entities.Day(snapshot.SnapshotDate)) {
		return fmt.Errorf("snapshot date %s conflicts with loaded snapshot %s",
			snapshot.SnapshotDate.Format(entities.DateLayout), r.snapshot.SnapshotDate.Format(entities.DateLayout))
	}
	r.snapshot.Entries = append(r.snapshot.Entries, snapshot.Entries...)
	r.snapshot.InTransit = append(r.snapshot.InTransit, snapshot.InTransit...)
	return nil
}

// GetSnapshot returns the loaded snapshot, or nil when none was loaded
func (r *InventoryRepository) GetSnapshot() (*entities.InventorySnapshot, error) {
	if r.snapshot == nil {
		return nil, nil
	}
	snap := *r.snapshot
	snap.Entries = append([]entities.InventoryEntry(nil), r.snapshot.Entries...)
	snap.InTransit = append([]entities.InTransitEntry(nil), r.snapshot.InTransit...)
	return &snap, nil
}
