package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/mamacare/mamacare-api/internal/store"
)

// Repository provides session persistence operations. Lookups of unknown
// tokens return (nil, nil).
type Repository interface {
	Create(ctx context.Context, s *Session) error
	GetByRefresh(ctx context.Context, refresh string) (*Session, error)
	DeleteByRefresh(ctx context.Context, refresh string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// StoreRepository implements Repository on a document collection
// (MongoDB in production, the in-memory store in tests).
type StoreRepository struct {
	col store.Collection
}

func NewStoreRepository(col store.Collection) *StoreRepository {
	return &StoreRepository{col: col}
}

func (r *StoreRepository) Create(ctx context.Context, s *Session) error {
	now := time.Now().UTC()
	if s.ID == "" {
		s.ID = store.NewID()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = now.Add(7 * 24 * time.Hour)
	}
	return r.col.Insert(ctx, s.ID, s)
}

func (r *StoreRepository) GetByRefresh(ctx context.Context, refresh string) (*Session, error) {
	var s Session
	if err := r.col.FindOne(ctx, store.Filter{"refreshToken": refresh}, &s); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *StoreRepository) DeleteByRefresh(ctx context.Context, refresh string) error {
	_, err := r.col.DeleteMany(ctx, store.Filter{"refreshToken": refresh})
	return err
}

func (r *StoreRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.col.DeleteMany(ctx, store.Filter{"userId": userID})
	return err
}
