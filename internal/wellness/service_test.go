package wellness

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mamacare/mamacare-api/internal/apperr"
	"github.com/mamacare/mamacare-api/internal/models"
	"github.com/mamacare/mamacare-api/internal/store"
)

var (
	alice = &models.Identity{ID: "alice", Name: "Alice"}
	bob   = &models.Identity{ID: "bob", Name: "Bob"}
)

func float(v float64) *float64 { return &v }

func TestCreateAndListNewestFirst(t *testing.T) {
	svc := NewService(store.NewMemoryCollection())
	ctx := context.Background()

	older, err := svc.Create(ctx, alice, Input{Date: "2025-05-01", Mood: "tired", Symptoms: models.StringList{"nausea"}})
	require.NoError(t, err)
	newer, err := svc.Create(ctx, alice, Input{Date: "2025-05-03", SleepHours: float(7.5)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob, Input{Date: "2025-05-02"})
	require.NoError(t, err)

	logs, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Equal(t, newer.ID, logs[0].ID)
	require.Equal(t, older.ID, logs[1].ID)
	require.Equal(t, []string{"nausea"}, logs[1].Symptoms)
	require.Equal(t, 7.5, *logs[0].SleepHours)

	empty, err := svc.List(ctx, &models.Identity{ID: "nobody"})
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)
}

func TestCreateDefaultsDateToNow(t *testing.T) {
	svc := NewService(store.NewMemoryCollection())
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	log, err := svc.Create(context.Background(), alice, Input{})
	require.NoError(t, err)
	require.Equal(t, fixed, log.Date)
	require.Equal(t, "alice", log.UserID)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(store.NewMemoryCollection())
	ctx := context.Background()

	_, err := svc.Create(ctx, alice, Input{Date: "someday"})
	require.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = svc.Create(ctx, alice, Input{SleepHours: float(25)})
	require.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = svc.Create(ctx, alice, Input{HydrationLiters: float(-1)})
	require.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestOwnership(t *testing.T) {
	svc := NewService(store.NewMemoryCollection())
	ctx := context.Background()
	log, err := svc.Create(ctx, alice, Input{Mood: "happy"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, log.ID, bob)
	require.True(t, apperr.Is(err, apperr.KindForbidden))
	mood := "sad"
	_, err = svc.Update(ctx, log.ID, bob, Patch{Mood: &mood})
	require.True(t, apperr.Is(err, apperr.KindForbidden))
	require.True(t, apperr.Is(svc.Delete(ctx, log.ID, bob), apperr.KindForbidden))

	got, err := svc.Get(ctx, log.ID, alice)
	require.NoError(t, err)
	require.Equal(t, "happy", got.Mood)

	_, err = svc.Get(ctx, "missing", alice)
	require.True(t, apperr.Is(err, apperr.KindNotFound))
	require.Equal(t, "Log not found", apperr.As(err).Message)
}

func TestUpdateIsAllowListed(t *testing.T) {
	svc := NewService(store.NewMemoryCollection())
	ctx := context.Background()
	log, err := svc.Create(ctx, alice, Input{Mood: "happy", NutritionNotes: "fruit"})
	require.NoError(t, err)

	mood := "calm"
	symptoms := models.StringList{"fatigue"}
	updated, err := svc.Update(ctx, log.ID, alice, Patch{Mood: &mood, Symptoms: &symptoms})
	require.NoError(t, err)
	require.Equal(t, "calm", updated.Mood)
	require.Equal(t, []string{"fatigue"}, updated.Symptoms)
	require.Equal(t, "fruit", updated.NutritionNotes)
	require.Equal(t, "alice", updated.UserID)

	stored, err := svc.Get(ctx, log.ID, alice)
	require.NoError(t, err)
	require.Equal(t, "calm", stored.Mood)

	require.NoError(t, svc.Delete(ctx, log.ID, alice))
	_, err = svc.Get(ctx, log.ID, alice)
	require.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDeleteByUser(t *testing.T) {
	col := store.NewMemoryCollection()
	svc := NewService(col)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, alice, Input{})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, bob, Input{})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteByUser(ctx, "alice"))
	n, err := col.Count(ctx, nil)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}
