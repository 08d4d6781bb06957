package store

import (
	"gorm.io/gorm"
)

// NewStores wires the gorm-backed repositories over one connection.
func NewStores(db *gorm.DB) *Stores {
	return &Stores{
		Documents: NewDocumentStore(db),
		Versions:  NewVersionStore(db),
		Grants:    NewGrantStore(db),
		NdaStatus: NewNdaStatusStore(db),
		Users:     NewUserStore(db),
		Activity:  NewActivityStore(db),
	}
}
