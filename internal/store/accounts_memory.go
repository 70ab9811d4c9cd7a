package store

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-collection-sync/models"
)

// memoryAccountRepository keeps accounts in process memory. It backs servers
// configured with a static user list and no account database.
type memoryAccountRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[string]models.User
}

// NewMemoryAccountRepository returns an empty in-memory [AccountRepository].
func NewMemoryAccountRepository() AccountRepository {
	return &memoryAccountRepository{
		users: make(map[string]models.User),
	}
}

func (r *memoryAccountRepository) CreateUser(_ context.Context, user models.User) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Login]; ok {
		return models.User{}, ErrLoginAlreadyExists
	}

	r.nextID++
	user.UserID = r.nextID
	user.Password = ""
	user.CreatedAt = time.Now()
	r.users[user.Login] = user

	return user, nil
}

func (r *memoryAccountRepository) FindUserByLogin(_ context.Context, login string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[login]
	if !ok {
		return models.User{}, ErrNoUserWasFound
	}
	return user, nil
}
