package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type item struct {
	ID    string    `bson:"_id"`
	Owner string    `bson:"owner"`
	Week  int       `bson:"week"`
	At    time.Time `bson:"at"`
	Note  string    `bson:"note,omitempty"`
}

func TestMemoryCollectionCRUD(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCollection()
	id := NewID()
	require.NoError(t, c.Insert(ctx, id, &item{ID: id, Owner: "a", Week: 4, Note: "hello"}))
	require.ErrorIs(t, c.Insert(ctx, id, &item{ID: id}), ErrDuplicateKey)

	var got item
	require.NoError(t, c.FindByID(ctx, id, &got))
	require.Equal(t, "hello", got.Note)

	got.Note = "new"
	require.NoError(t, c.Replace(ctx, id, &got))
	var got2 item
	require.NoError(t, c.FindByID(ctx, id, &got2))
	require.Equal(t, "new", got2.Note)

	require.NoError(t, c.Set(ctx, id, bson.M{"note": "set"}))
	require.NoError(t, c.FindByID(ctx, id, &got2))
	require.Equal(t, "set", got2.Note)
	require.Equal(t, 4, got2.Week)

	require.NoError(t, c.Delete(ctx, id))
	require.ErrorIs(t, c.FindByID(ctx, id, &got2), ErrNotFound)
	require.ErrorIs(t, c.Delete(ctx, id), ErrNotFound)
	require.ErrorIs(t, c.Replace(ctx, id, &got2), ErrNotFound)
}

func TestMemoryCollectionFilterAndSort(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCollection()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	docs := []item{
		{ID: "1", Owner: "a", Week: 20, At: base.Add(2 * time.Hour)},
		{ID: "2", Owner: "b", Week: 8, At: base},
		{ID: "3", Owner: "a", Week: 8, At: base.Add(time.Hour)},
		{ID: "4", Owner: "a", Week: 36, At: base.Add(-time.Hour)},
	}
	for i := range docs {
		require.NoError(t, c.Insert(ctx, docs[i].ID, &docs[i]))
	}

	var asc []item
	require.NoError(t, c.Find(ctx, Query{Filter: Filter{"owner": "a"}, Sort: []SortField{Asc("at")}}, &asc))
	require.Equal(t, []string{"4", "3", "1"}, ids(asc))

	var desc []*item
	require.NoError(t, c.Find(ctx, Query{Filter: Filter{"owner": "a"}, Sort: []SortField{Desc("at")}}, &desc))
	require.Len(t, desc, 3)
	require.Equal(t, "1", desc[0].ID)

	var byWeek []item
	require.NoError(t, c.Find(ctx, Query{Filter: Filter{"week": 8}, Sort: []SortField{Asc("week")}}, &byWeek))
	require.Equal(t, []string{"2", "3"}, ids(byWeek), "ties keep insertion order")

	var one item
	require.NoError(t, c.FindOne(ctx, Filter{"week": 36}, &one))
	require.Equal(t, "4", one.ID)
	require.ErrorIs(t, c.FindOne(ctx, Filter{"week": 99}, &one), ErrNotFound)

	n, err := c.Count(ctx, Filter{"owner": "a"})
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	deleted, err := c.DeleteMany(ctx, Filter{"owner": "a"})
	require.NoError(t, err)
	require.EqualValues(t, 3, deleted)
	n, err = c.Count(ctx, nil)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestMemoryDatabaseReusesCollections(t *testing.T) {
	db := NewMemoryDatabase()
	ctx := context.Background()
	require.NoError(t, db.Collection(Reminders).Insert(ctx, "x", &item{ID: "x"}))
	n, err := db.Collection(Reminders).Count(ctx, nil)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	n, err = db.Collection(Clinics).Count(ctx, nil)
	require.NoError(t, err)
	require.Zero(t, n)
}

type account struct {
	ID    string `bson:"_id"`
	Email string `bson:"email,omitempty"`
}

func TestMemoryCollectionUniqueFields(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryDatabase().Collection(Users)
	require.NoError(t, c.Insert(ctx, "u1", &account{ID: "u1", Email: "a@example.com"}))
	require.NoError(t, c.Insert(ctx, "u2", &account{ID: "u2", Email: "b@example.com"}))
	require.ErrorIs(t, c.Insert(ctx, "u3", &account{ID: "u3", Email: "a@example.com"}), ErrDuplicateKey)

	// missing values are not constrained
	require.NoError(t, c.Insert(ctx, "u4", &account{ID: "u4"}))
	require.NoError(t, c.Insert(ctx, "u5", &account{ID: "u5"}))

	require.ErrorIs(t, c.Replace(ctx, "u2", &account{ID: "u2", Email: "a@example.com"}), ErrDuplicateKey)
	require.ErrorIs(t, c.Set(ctx, "u2", bson.M{"email": "a@example.com"}), ErrDuplicateKey)
	// rewriting a document's own value is fine
	require.NoError(t, c.Replace(ctx, "u1", &account{ID: "u1", Email: "a@example.com"}))

	var got account
	require.NoError(t, c.FindByID(ctx, "u2", &got))
	require.Equal(t, "b@example.com", got.Email)

	// collections without unique indexes accept repeats
	other := NewMemoryCollection()
	require.NoError(t, other.Insert(ctx, "x1", &account{ID: "x1", Email: "a@example.com"}))
	require.NoError(t, other.Insert(ctx, "x2", &account{ID: "x2", Email: "a@example.com"}))
}

func ids(items []item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
