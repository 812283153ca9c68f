// Package reminders manages medication, appointment and custom reminders.
package reminders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mamacare/mamacare-api/internal/access"
	"github.com/mamacare/mamacare-api/internal/apperr"
	"github.com/mamacare/mamacare-api/internal/models"
	"github.com/mamacare/mamacare-api/internal/store"
	"github.com/mamacare/mamacare-api/pkg/metrics"
)

const (
	msgRequired    = "Title and dateTime are required"
	msgNotFound    = "Reminder not found"
	msgForbidden   = "Forbidden"
	msgInvalidType = "reminderType must be one of medication, appointment, custom"
	msgInvalidTime = "Invalid dateTime"
	msgServer      = "Server error"
)

type Input struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	DateTime     string `json:"dateTime"`
	ReminderType string `json:"reminderType"`
}

// Patch lists the fields an owner may change.
type Patch struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	DateTime     *string `json:"dateTime"`
	ReminderType *string `json:"reminderType"`
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	Type models.ReminderType
}

type Service struct {
	col store.Collection
	now func() time.Time
}

func NewService(col store.Collection) *Service {
	return &Service{col: col, now: time.Now}
}

func parseType(raw string) (models.ReminderType, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.ReminderCustom, nil
	}
	t := models.ReminderType(strings.ToLower(raw))
	if !t.Valid() {
		return "", apperr.Validation(msgInvalidType)
	}
	return t, nil
}

func (s *Service) Create(ctx context.Context, owner *models.Identity, in Input) (*models.Reminder, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || strings.TrimSpace(in.DateTime) == "" {
		return nil, apperr.Validation(msgRequired)
	}
	at, err := models.ParseTime(in.DateTime)
	if err != nil {
		return nil, apperr.Validation(msgInvalidTime)
	}
	typ, err := parseType(in.ReminderType)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	r := &models.Reminder{
		ID:           store.NewID(),
		UserID:       owner.ID,
		Title:        title,
		Description:  strings.TrimSpace(in.Description),
		DateTime:     at,
		ReminderType: typ,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.col.Insert(ctx, r.ID, r); err != nil {
		return nil, apperr.Server(err, msgServer)
	}
	metrics.RecordsCreated.WithLabelValues("reminder").Inc()
	return r, nil
}

// List returns the owner's reminders, soonest first.
func (s *Service) List(ctx context.Context, owner *models.Identity, f Filter) ([]*models.Reminder, error) {
	filter := store.Filter{"userId": owner.ID}
	if f.Type != "" {
		filter["reminderType"] = string(f.Type)
	}
	out := []*models.Reminder{}
	q := store.Query{Filter: filter, Sort: []store.SortField{store.Asc("dateTime")}}
	if err := s.col.Find(ctx, q, &out); err != nil {
		return nil, apperr.Server(err, msgServer)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string, requester *models.Identity) (*models.Reminder, error) {
	var r models.Reminder
	if err := s.col.FindByID(ctx, id, &r); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound(msgNotFound)
		}
		return nil, apperr.Server(err, msgServer)
	}
	if !access.CanAccess(requester, &r) {
		return nil, apperr.Forbidden(msgForbidden)
	}
	return &r, nil
}

// Update applies patch; title and dateTime cannot be cleared.
func (s *Service) Update(ctx context.Context, id string, requester *models.Identity, patch Patch) (*models.Reminder, error) {
	r, err := s.Get(ctx, id, requester)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, apperr.Validation(msgRequired)
		}
		r.Title = title
	}
	if patch.DateTime != nil {
		if strings.TrimSpace(*patch.DateTime) == "" {
			return nil, apperr.Validation(msgRequired)
		}
		at, err := models.ParseTime(*patch.DateTime)
		if err != nil {
			return nil, apperr.Validation(msgInvalidTime)
		}
		r.DateTime = at
	}
	if patch.ReminderType != nil {
		typ, err := parseType(*patch.ReminderType)
		if err != nil {
			return nil, err
		}
		r.ReminderType = typ
	}
	if patch.Description != nil {
		r.Description = strings.TrimSpace(*patch.Description)
	}
	r.UpdatedAt = s.now().UTC()
	if err := s.col.Replace(ctx, r.ID, r); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound(msgNotFound)
		}
		return nil, apperr.Server(err, msgServer)
	}
	return r, nil
}

func (s *Service) Delete(ctx context.Context, id string, requester *models.Identity) error {
	if _, err := s.Get(ctx, id, requester); err != nil {
		return err
	}
	if err := s.col.Delete(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return apperr.Server(err, msgServer)
	}
	return nil
}

// DeleteByUser removes every reminder of userID.
func (s *Service) DeleteByUser(ctx context.Context, userID string) error {
	_, err := s.col.DeleteMany(ctx, store.Filter{"userId": userID})
	return err
}
