package directory

import (
	"errors"
	"fmt"

	"bizdir_backend/internal/models"
)

// ErrUnavailable marks a directory read that failed at the store level.
// Fan-out treats it as a per-directory soft failure.
var ErrUnavailable = errors.New("recipient directory unavailable")

// Recipient is the only projection the notification core needs from
// either directory.
type Recipient struct {
	ID    string
	Email string
	Kind  models.RecipientKind
}

// Directory is a read-only view over one external recipient store.
type Directory interface {
	Kind() models.RecipientKind
	ListAll() ([]Recipient, error)
	FindByEmail(email string) ([]Recipient, error)
}

func unavailable(kind models.RecipientKind, err error) error {
	return fmt.Errorf("%w (%s): %v", ErrUnavailable, kind, err)
}
