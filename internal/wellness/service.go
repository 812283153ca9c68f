// Package wellness stores the daily wellness logs of a user.
package wellness

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
	msgNotFound  = "Log not found"
	msgForbidden = "Forbidden"
	msgServer    = "Server error"
)

// Input is the create payload. Date defaults to now.
type Input struct {
	Date            string            `json:"date"`
	Mood            string            `json:"mood"`
	Symptoms        models.StringList `json:"symptoms"`
	SleepHours      *float64          `json:"sleepHours"`
	HydrationLiters *float64          `json:"hydrationLiters"`
	NutritionNotes  string            `json:"nutritionNotes"`
}

// Patch lists the fields an owner may change.
type Patch struct {
	Date            *string            `json:"date"`
	Mood            *string            `json:"mood"`
	Symptoms        *models.StringList `json:"symptoms"`
	SleepHours      *float64           `json:"sleepHours"`
	HydrationLiters *float64           `json:"hydrationLiters"`
	NutritionNotes  *string            `json:"nutritionNotes"`
}

type Service struct {
	col store.Collection
	now func() time.Time
}

func NewService(col store.Collection) *Service {
	return &Service{col: col, now: time.Now}
}

func validateAmounts(sleep, hydration *float64) error {
	if sleep != nil && (*sleep < 0 || *sleep > 24) {
		return apperr.Validation("sleepHours must be between 0 and 24")
	}
	if hydration != nil && *hydration < 0 {
		return apperr.Validation("hydrationLiters cannot be negative")
	}
	return nil
}

func parseDate(value string) (time.Time, error) {
	t, err := models.ParseTime(value)
	if err != nil {
		return time.Time{}, apperr.Validation("Invalid date")
	}
	return t, nil
}

func (s *Service) Create(ctx context.Context, owner *models.Identity, in Input) (*models.WellnessLog, error) {
	now := s.now().UTC()
	date := now
	if strings.TrimSpace(in.Date) != "" {
		d, err := parseDate(in.Date)
		if err != nil {
			return nil, err
		}
		date = d
	}
	if err := validateAmounts(in.SleepHours, in.HydrationLiters); err != nil {
		return nil, err
	}
	log := &models.WellnessLog{
		ID:              store.NewID(),
		UserID:          owner.ID,
		Date:            date,
		Mood:            strings.TrimSpace(in.Mood),
		Symptoms:        in.Symptoms.Clean(),
		SleepHours:      in.SleepHours,
		HydrationLiters: in.HydrationLiters,
		NutritionNotes:  strings.TrimSpace(in.NutritionNotes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.col.Insert(ctx, log.ID, log); err != nil {
		return nil, apperr.Server(err, msgServer)
	}
	metrics.RecordsCreated.WithLabelValues("wellness_log").Inc()
	return log, nil
}

// List returns the owner's logs, newest date first.
func (s *Service) List(ctx context.Context, owner *models.Identity) ([]*models.WellnessLog, error) {
	out := []*models.WellnessLog{}
	q := store.Query{Filter: store.Filter{"userId": owner.ID}, Sort: []store.SortField{store.Desc("date")}}
	if err := s.col.Find(ctx, q, &out); err != nil {
		return nil, apperr.Server(err, msgServer)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string, requester *models.Identity) (*models.WellnessLog, error) {
	var log models.WellnessLog
	if err := s.col.FindByID(ctx, id, &log); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound(msgNotFound)
		}
		return nil, apperr.Server(err, msgServer)
	}
	if !access.CanAccess(requester, &log) {
		return nil, apperr.Forbidden(msgForbidden)
	}
	return &log, nil
}

// Update applies patch onto the stored log. Concurrent updates are last
// write wins.
func (s *Service) Update(ctx context.Context, id string, requester *models.Identity, patch Patch) (*models.WellnessLog, error) {
	log, err := s.Get(ctx, id, requester)
	if err != nil {
		return nil, err
	}
	if patch.Date != nil && strings.TrimSpace(*patch.Date) != "" {
		d, err := parseDate(*patch.Date)
		if err != nil {
			return nil, err
		}
		log.Date = d
	}
	if err := validateAmounts(patch.SleepHours, patch.HydrationLiters); err != nil {
		return nil, err
	}
	if patch.Mood != nil {
		log.Mood = strings.TrimSpace(*patch.Mood)
	}
	if patch.Symptoms != nil {
		log.Symptoms = patch.Symptoms.Clean()
	}
	if patch.SleepHours != nil {
		log.SleepHours = patch.SleepHours
	}
	if patch.HydrationLiters != nil {
		log.HydrationLiters = patch.HydrationLiters
	}
	if patch.NutritionNotes != nil {
		log.NutritionNotes = strings.TrimSpace(*patch.NutritionNotes)
	}
	log.UpdatedAt = s.now().UTC()
	if err := s.col.Replace(ctx, log.ID, log); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound(msgNotFound)
		}
		return nil, apperr.Server(err, msgServer)
	}
	return log, nil
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

// DeleteByUser removes every log of userID.
func (s *Service) DeleteByUser(ctx context.Context, userID string) error {
	_, err := s.col.DeleteMany(ctx, store.Filter{"userId": userID})
	return err
}
