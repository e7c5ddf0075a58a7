package models

import (
	"time"

	"gorm.io/gorm"
)

type BaseModel struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	CreatedAt time.Time `gorm:"default:now()"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type BaseModelWithDeleted struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// RecipientKind normalizes the two recipient directories' vocabulary
// into a single discriminator stored on every delivery row.
type RecipientKind string

const (
	RecipientKindIndividual RecipientKind = "individual"
	RecipientKindCompany    RecipientKind = "company"
)

func (k RecipientKind) Valid() bool {
	return k == RecipientKindIndividual || k == RecipientKindCompany
}
