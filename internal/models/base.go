package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is embedded by every stored record.
// ID is an opaque UUID string assigned when the record is first written.
type Base struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey" bson:"_id"`
	CreatedAt time.Time `json:"created_at" gorm:"index"                    bson:"created_at"`
}

// GetID returns the record identity key.
func (b Base) GetID() string { return b.ID }

// EnsureIdentity assigns an ID and creation time to records that lack them.
// Stores without create hooks (MongoDB) call this before inserting.
func (b *Base) EnsureIdentity(now time.Time) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	b.EnsureIdentity(time.Now())
	return nil
}

// Record is satisfied by every entity type in this package.
type Record interface {
	GetID() string
}

// Identity returns the identity fields of the record.
func (b Base) Identity() Base { return b }

// Adopt copies another record's identity onto b. Used when a singleton is
// replaced wholesale and must keep its row.
func (b *Base) Adopt(from Base) {
	if from.ID == "" {
		return
	}
	b.ID = from.ID
	b.CreatedAt = from.CreatedAt
}
