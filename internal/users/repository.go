package users

import (
	"context"
	"errors"
	"time"

	"github.com/mamacare/mamacare-api/internal/models"
	"github.com/mamacare/mamacare-api/internal/store"
)

// ErrEmailTaken is returned when a unique email is already registered.
var ErrEmailTaken = errors.New("email already registered")

// UserRepository defines persistence operations for users. Getters return
// (nil, nil) when no user matches.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id string) error
}

// StoreUserRepository implements UserRepository on a document collection.
type StoreUserRepository struct {
	col store.Collection
}

// NewStoreUserRepository creates a new repository for the given collection
func NewStoreUserRepository(col store.Collection) *StoreUserRepository {
	return &StoreUserRepository{col: col}
}

func (r *StoreUserRepository) Create(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	if u.ID == "" {
		u.ID = store.NewID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if err := r.col.Insert(ctx, u.ID, u); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *StoreUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.col.FindByID(ctx, id, &u); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *StoreUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, store.Filter{"email": email}, &u); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *StoreUserRepository) Update(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now().UTC()
	if err := r.col.Replace(ctx, u.ID, u); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *StoreUserRepository) Delete(ctx context.Context, id string) error {
	return r.col.Delete(ctx, id)
}
