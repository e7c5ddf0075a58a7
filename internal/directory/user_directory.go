package directory

import (
	"bizdir_backend/internal/models"

	"gorm.io/gorm"
)

// UserDirectory exposes the individual-user store. Reads only; the
// user CRUD lifecycle belongs to the admin screens.
type UserDirectory struct {
	db *gorm.DB
}

func NewUserDirectory(db *gorm.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

func (d *UserDirectory) Kind() models.RecipientKind {
	return models.RecipientKindIndividual
}

func (d *UserDirectory) ListAll() ([]Recipient, error) {
	var users []models.User
	if err := d.db.Select("id", "email").Find(&users).Error; err != nil {
		return nil, unavailable(d.Kind(), err)
	}

	recipients := make([]Recipient, 0, len(users))
	for _, u := range users {
		recipients = append(recipients, Recipient{ID: u.ID, Email: u.Email, Kind: d.Kind()})
	}
	return recipients, nil
}

func (d *UserDirectory) FindByEmail(email string) ([]Recipient, error) {
	var users []models.User
	if err := d.db.Select("id", "email").Where("email = ?", email).Find(&users).Error; err != nil {
		return nil, unavailable(d.Kind(), err)
	}

	recipients := make([]Recipient, 0, len(users))
	for _, u := range users {
		recipients = append(recipients, Recipient{ID: u.ID, Email: u.Email, Kind: d.Kind()})
	}
	return recipients, nil
}
