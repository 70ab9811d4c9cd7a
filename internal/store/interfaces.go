package store

import (
	"context"

	"github.com/MKhiriev/go-collection-sync/models"
)

// AccountRepository stores sync accounts.
type AccountRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByLogin(ctx context.Context, login string) (models.User, error)
}
