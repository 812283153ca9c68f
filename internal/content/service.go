// Package content serves the editorial pregnancy content: weekly milestones,
// guidance entries with their media, and the computed week guide.
package content

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/mamacare/mamacare-api/internal/apperr"
	"github.com/mamacare/mamacare-api/internal/models"
	"github.com/mamacare/mamacare-api/internal/pregnancy"
	"github.com/mamacare/mamacare-api/internal/storage"
	"github.com/mamacare/mamacare-api/internal/store"
	"github.com/mamacare/mamacare-api/pkg/logger"
	"github.com/mamacare/mamacare-api/pkg/metrics"
)

const (
	msgInvalidWeek       = "Invalid week"
	msgMilestoneNotFound = "Milestone not found"
	msgMilestoneRequired = "Week and title are required"
	msgGuidanceNotFound  = "Guidance not found"
	msgGuidanceRequired  = "Week, topic and content are required"
	msgMediaUnavailable  = "Media storage is not configured"
	msgServer            = "Server error"
)

type MilestoneInput struct {
	Week        *int              `json:"week"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Tips        models.StringList `json:"tips"`
}

type GuidanceInput struct {
	Week    *int              `json:"week"`
	Topic   string            `json:"topic"`
	Content string            `json:"content"`
	Tags    models.StringList `json:"tags"`
	Media   models.StringList `json:"media"`
}

// WeekGuide is the response of the week guide endpoint.
type WeekGuide struct {
	Week     int             `json:"week"`
	BabySize string          `json:"babySize"`
	Guide    pregnancy.Guide `json:"guide"`
}

type Service struct {
	milestones store.Collection
	guidance   store.Collection
	media      storage.MediaStore
}

// NewService wires the content collections. media may be nil, in which case
// uploads fail with a server error.
func NewService(milestones, guidance store.Collection, media storage.MediaStore) *Service {
	return &Service{milestones: milestones, guidance: guidance, media: media}
}

// ParseWeek accepts a non-negative integer week.
func ParseWeek(raw string) (int, error) {
	week, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || week < 0 {
		return 0, apperr.Validation(msgInvalidWeek)
	}
	return week, nil
}

func (s *Service) ListMilestones(ctx context.Context) ([]*models.PregnancyMilestone, error) {
	out := []*models.PregnancyMilestone{}
	if err := s.milestones.Find(ctx, store.Query{Sort: []store.SortField{store.Asc("week")}}, &out); err != nil {
		return nil, apperr.Server(err, msgServer)
	}
	return out, nil
}

func (s *Service) MilestoneByWeek(ctx context.Context, rawWeek string) (*models.PregnancyMilestone, error) {
	week, err := ParseWeek(rawWeek)
	if err != nil {
		return nil, err
	}
	var m models.PregnancyMilestone
	if err := s.milestones.FindOne(ctx, store.Filter{"week": week}, &m); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound(msgMilestoneNotFound)
		}
		return nil, apperr.Server(err, msgServer)
	}
	return &m, nil
}

func (s *Service) CreateMilestone(ctx context.Context, in MilestoneInput) (*models.PregnancyMilestone, error) {
	title := strings.TrimSpace(in.Title)
	if in.Week == nil || title == "" {
		return nil, apperr.Validation(msgMilestoneRequired)
	}
	if *in.Week < 0 || *in.Week > pregnancy.TermWeeks+2 {
		return nil, apperr.Validation(msgInvalidWeek)
	}
	m := &models.PregnancyMilestone{
		ID:          store.NewID(),
		Week:        *in.Week,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Tips:        in.Tips.Clean(),
	}
	if err := s.milestones.Insert(ctx, m.ID, m); err != nil {
		return nil, apperr.Server(err, msgServer)
	}
	metrics.RecordsCreated.WithLabelValues("milestone").Inc()
	return m, nil
}

// ListGuidance returns entries for rawWeek, or every entry when rawWeek is
// empty.
func (s *Service) ListGuidance(ctx context.Context, rawWeek string) ([]*models.GuidanceEntry, error) {
	filter := store.Filter{}
	if strings.TrimSpace(rawWeek) != "" {
		week, err := ParseWeek(rawWeek)
		if err != nil {
			return nil, err
		}
		filter["week"] = week
	}
	out := []*models.GuidanceEntry{}
	q := store.Query{Filter: filter, Sort: []store.SortField{store.Asc("week")}}
	if err := s.guidance.Find(ctx, q, &out); err != nil {
		return nil, apperr.Server(err, msgServer)
	}
	return out, nil
}

func (s *Service) CreateGuidance(ctx context.Context, in GuidanceInput) (*models.GuidanceEntry, error) {
	topic := strings.TrimSpace(in.Topic)
	body := strings.TrimSpace(in.Content)
	if in.Week == nil || topic == "" || body == "" {
		return nil, apperr.Validation(msgGuidanceRequired)
	}
	if *in.Week < 0 {
		return nil, apperr.Validation(msgInvalidWeek)
	}
	g := &models.GuidanceEntry{
		ID:      store.NewID(),
		Week:    *in.Week,
		Topic:   topic,
		Content: body,
		Tags:    in.Tags.Clean(),
		Media:   in.Media.Clean(),
	}
	if err := s.guidance.Insert(ctx, g.ID, g); err != nil {
		return nil, apperr.Server(err, msgServer)
	}
	metrics.RecordsCreated.WithLabelValues("guidance").Inc()
	return g, nil
}

// AddMedia uploads r to object storage and appends the resulting URL to the
// entry's media list.
func (s *Service) AddMedia(ctx context.Context, id, filename string, r io.Reader, size int64, contentType string) (*models.GuidanceEntry, error) {
	var g models.GuidanceEntry
	if err := s.guidance.FindByID(ctx, id, &g); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound(msgGuidanceNotFound)
		}
		return nil, apperr.Server(err, msgServer)
	}
	if s.media == nil {
		return nil, apperr.Server(nil, msgMediaUnavailable)
	}
	key := storage.ObjectKey("guidance/"+g.ID, filename)
	url, err := s.media.Upload(ctx, key, r, size, contentType)
	if err != nil {
		return nil, apperr.Server(err, msgServer)
	}
	g.Media = append(g.Media, url)
	if err := s.guidance.Set(ctx, g.ID, store.Filter{"media": g.Media}); err != nil {
		return nil, apperr.Server(err, msgServer)
	}
	logger.Infof("content: stored media %s for guidance %s", key, g.ID)
	return &g, nil
}

// WeekGuide computes the checklist for rawWeek; weeks past term are clamped.
func (s *Service) WeekGuide(rawWeek string) (*WeekGuide, error) {
	week, err := ParseWeek(rawWeek)
	if err != nil {
		return nil, err
	}
	w := pregnancy.ClampWeek(week)
	return &WeekGuide{Week: w, BabySize: pregnancy.BabySize(w), Guide: pregnancy.WeekGuide(w)}, nil
}

// ForSymptoms wraps the static symptom tips.
func (s *Service) ForSymptoms(symptoms []string) pregnancy.SymptomGuidance {
	return pregnancy.GuidanceForSymptoms(symptoms)
}
