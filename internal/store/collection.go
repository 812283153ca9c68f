// Package store is the document-collection layer. A Collection is backed
// either by MongoDB or by an in-memory map of BSON documents; both honour the
// same equality filters and sort specs so services behave identically.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// Filter is a conjunction of field equality matches, keyed by BSON field name.
type Filter = bson.M

// SortField orders results by a BSON field.
type SortField struct {
	Field string
	Desc  bool
}

func Asc(field string) SortField  { return SortField{Field: field} }
func Desc(field string) SortField { return SortField{Field: field, Desc: true} }

// Query selects documents for Find.
type Query struct {
	Filter Filter
	Sort   []SortField
}

// Collection is the persistence contract shared by the resource repositories.
// Documents must carry their id in the "_id" field.
type Collection interface {
	// Insert stores a new document; ErrDuplicateKey when the id or a unique
	// index value is taken.
	Insert(ctx context.Context, id string, doc interface{}) error
	InsertMany(ctx context.Context, docs map[string]interface{}) error
	// FindByID decodes the document into out; ErrNotFound when absent.
	FindByID(ctx context.Context, id string, out interface{}) error
	// FindOne decodes the first match into out; ErrNotFound when none.
	FindOne(ctx context.Context, filter Filter, out interface{}) error
	// Find decodes all matches into out, which must point to a slice.
	Find(ctx context.Context, q Query, out interface{}) error
	// Replace overwrites the stored document; ErrNotFound when absent,
	// ErrDuplicateKey when it would repeat a unique index value.
	Replace(ctx context.Context, id string, doc interface{}) error
	// Set updates individual fields; errors as Replace.
	Set(ctx context.Context, id string, fields bson.M) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, filter Filter) (int64, error)
	Count(ctx context.Context, filter Filter) (int64, error)
}

// Database hands out named collections.
type Database interface {
	Collection(name string) Collection
}

// Collection names.
const (
	Users        = "users"
	Sessions     = "sessions"
	WellnessLogs = "wellnesslogs"
	Reminders    = "reminders"
	ForumPosts   = "forumposts"
	Comments     = "comments"
	Clinics      = "clinics"
	Milestones   = "pregnancymilestones"
	Guidance     = "guidances"
)

// NewID returns a fresh document id.
func NewID() string {
	return uuid.NewString()
}
