package repositories

import "github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"

// InventoryRepository provides access to the initial inventory snapshot
type InventoryRepository interface {
	// GetSnapshot returns nil when no initial inventory was supplied
	GetSnapshot() (*entities.InventorySnapshot, error)
	LoadSnapshot(snapshot *entities.InventorySnapshot) error
}
