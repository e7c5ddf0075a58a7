package models

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationTarget string

const (
	TargetAll       NotificationTarget = "all"
	TargetUsers     NotificationTarget = "users"
	TargetCompanies NotificationTarget = "companies"
	TargetCustom    NotificationTarget = "custom"
)

func (t NotificationTarget) Valid() bool {
	switch t {
	case TargetAll, TargetUsers, TargetCompanies, TargetCustom:
		return true
	}
	return false
}

// Notification is a single administrative broadcast. Created once by
// the fan-out engine, never mutated afterwards.
type Notification struct {
	BaseModel
	Message     string             `gorm:"not null"`
	Target      NotificationTarget `gorm:"type:varchar(20);not null"`
	TargetEmail string             `gorm:"index"` // set iff Target = custom
	CreatedBy   string
	Metadata    datatypes.JSON `gorm:"type:jsonb"`
}

// Delivery is one recipient's relationship to one Notification. The
// composite unique index enforces the one-delivery-per-recipient
// invariant even when fan-out is re-run.
type Delivery struct {
	BaseModel
	NotificationID string        `gorm:"type:uuid;not null;uniqueIndex:idx_deliveries_recipient_once"`
	RecipientID    string        `gorm:"type:uuid;not null;uniqueIndex:idx_deliveries_recipient_once;index:idx_deliveries_recipient"`
	RecipientKind  RecipientKind `gorm:"type:varchar(20);not null;uniqueIndex:idx_deliveries_recipient_once;index:idx_deliveries_recipient"`
	RecipientEmail string        `gorm:"index;not null"`
	IsRead         bool          `gorm:"default:false"`
	ReadAt         *time.Time

	Notification Notification `gorm:"foreignKey:NotificationID"`
}
