// Package clinics maintains the public clinic directory.
package clinics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mamacare/mamacare-api/internal/apperr"
	"github.com/mamacare/mamacare-api/internal/models"
	"github.com/mamacare/mamacare-api/internal/store"
	"github.com/mamacare/mamacare-api/pkg/metrics"
)

const (
	msgRequired = "Please fill all required fields"
	msgNotFound = "Clinic not found"
	msgServer   = "Server error"
)

type Input struct {
	Name      string            `json:"name"`
	Address   string            `json:"address"`
	City      string            `json:"city"`
	Phone     string            `json:"phone"`
	Type      string            `json:"type"`
	Services  models.StringList `json:"services"`
	Latitude  *float64          `json:"latitude"`
	Longitude *float64          `json:"longitude"`
}

// Patch lists the fields an admin may change. Name cannot be cleared.
type Patch struct {
	Name      *string            `json:"name"`
	Address   *string            `json:"address"`
	City      *string            `json:"city"`
	Phone     *string            `json:"phone"`
	Type      *string            `json:"type"`
	Services  *models.StringList `json:"services"`
	Latitude  *float64           `json:"latitude"`
	Longitude *float64           `json:"longitude"`
}

// Filter narrows List; empty fields match everything.
type Filter struct {
	City string
	Type string
}

type Service struct {
	col store.Collection
	now func() time.Time
}

func NewService(col store.Collection) *Service {
	return &Service{col: col, now: time.Now}
}

// List is public and sorted by name.
func (s *Service) List(ctx context.Context, f Filter) ([]*models.Clinic, error) {
	filter := store.Filter{}
	if city := strings.TrimSpace(f.City); city != "" {
		filter["city"] = city
	}
	if typ := strings.TrimSpace(f.Type); typ != "" {
		filter["type"] = typ
	}
	out := []*models.Clinic{}
	q := store.Query{Filter: filter, Sort: []store.SortField{store.Asc("name")}}
	if err := s.col.Find(ctx, q, &out); err != nil {
		return nil, apperr.Server(err, msgServer)
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*models.Clinic, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation(msgRequired)
	}
	now := s.now().UTC()
	c := &models.Clinic{
		ID:        store.NewID(),
		Name:      name,
		Address:   strings.TrimSpace(in.Address),
		City:      strings.TrimSpace(in.City),
		Phone:     strings.TrimSpace(in.Phone),
		Type:      strings.TrimSpace(in.Type),
		Services:  in.Services.Clean(),
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.col.Insert(ctx, c.ID, c); err != nil {
		return nil, apperr.Server(err, msgServer)
	}
	metrics.RecordsCreated.WithLabelValues("clinic").Inc()
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Clinic, error) {
	var c models.Clinic
	if err := s.col.FindByID(ctx, id, &c); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound(msgNotFound)
		}
		return nil, apperr.Server(err, msgServer)
	}
	return &c, nil
}

func (s *Service) Update(ctx context.Context, id string, patch Patch) (*models.Clinic, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.Validation(msgRequired)
		}
		c.Name = name
	}
	for _, f := range []struct {
		src *string
		dst *string
	}{
		{patch.Address, &c.Address},
		{patch.City, &c.City},
		{patch.Phone, &c.Phone},
		{patch.Type, &c.Type},
	} {
		if f.src != nil {
			*f.dst = strings.TrimSpace(*f.src)
		}
	}
	if patch.Services != nil {
		c.Services = patch.Services.Clean()
	}
	if patch.Latitude != nil {
		c.Latitude = patch.Latitude
	}
	if patch.Longitude != nil {
		c.Longitude = patch.Longitude
	}
	c.UpdatedAt = s.now().UTC()
	if err := s.col.Replace(ctx, c.ID, c); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound(msgNotFound)
		}
		return nil, apperr.Server(err, msgServer)
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.col.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound(msgNotFound)
		}
		return apperr.Server(err, msgServer)
	}
	return nil
}
