package models

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleMember UserRole = "member"
)

// User is a row of the individual-user directory. The directory's own
// CRUD lifecycle is owned by the admin screens; the notification core
// only ever reads id and email from it.
type User struct {
	BaseModel
	Email        string   `gorm:"uniqueIndex;not null"`
	Name         string   `gorm:"not null"`
	PasswordHash string   `gorm:"not null"`
	Role         UserRole `gorm:"type:varchar(20);default:'member'"`
	IsActive     bool     `gorm:"default:true"`
}
