package directory

import (
	"bizdir_backend/internal/models"

	"gorm.io/gorm"
)

// CompanyDirectory exposes the company store. Reads only.
type CompanyDirectory struct {
	db *gorm.DB
}

func NewCompanyDirectory(db *gorm.DB) *CompanyDirectory {
	return &CompanyDirectory{db: db}
}

func (d *CompanyDirectory) Kind() models.RecipientKind {
	return models.RecipientKindCompany
}

func (d *CompanyDirectory) ListAll() ([]Recipient, error) {
	var companies []models.Company
	if err := d.db.Select("id", "email").Find(&companies).Error; err != nil {
		return nil, unavailable(d.Kind(), err)
	}

	recipients := make([]Recipient, 0, len(companies))
	for _, c := range companies {
		recipients = append(recipients, Recipient{ID: c.ID, Email: c.Email, Kind: d.Kind()})
	}
	return recipients, nil
}

func (d *CompanyDirectory) FindByEmail(email string) ([]Recipient, error) {
	var companies []models.Company
	if err := d.db.Select("id", "email").Where("email = ?", email).Find(&companies).Error; err != nil {
		return nil, unavailable(d.Kind(), err)
	}

	recipients := make([]Recipient, 0, len(companies))
	for _, c := range companies {
		recipients = append(recipients, Recipient{ID: c.ID, Email: c.Email, Kind: d.Kind()})
	}
	return recipients, nil
}
