package models

// Company is a row of the company directory. Mutated by the admin
// screens only; read-only for the notification core.
type Company struct {
	BaseModel
	Email       string `gorm:"uniqueIndex;not null"`
	Name        string `gorm:"not null"`
	ContactName string
	City        string
	IsActive    bool `gorm:"default:true"`
}
