//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"sync"
	"time"

	"duochat/errors"
)

type IUserRepository interface {
	CreateUser(username, passwordHash string) error
	GetUserByUsername(username string) (User, error)
	Exists(username string) bool
}

// User is the stored identity record. Only the hash of the password is
// kept; verification happens in the service layer.
type User struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// UserRepository is the in-memory identity store. All state lives in the
// process and is lost on restart; there is deliberately no persistence.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]User)}
}

// CreateUser persists a new identity record. Usernames are unique and
// immutable; a taken username yields ErrUserAlreadyExists.
func (r *UserRepository) CreateUser(username, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[username]; ok {
		return errors.ErrUserAlreadyExists
	}
	r.users[username] = User{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	return nil
}

func (r *UserRepository) GetUserByUsername(username string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[username]
	if !ok {
		return User{}, errors.ErrNotFound
	}
	return user, nil
}

func (r *UserRepository) Exists(username string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.users[username]
	return ok
}
