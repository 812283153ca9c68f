package store

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// uniqueFields mirrors the unique indexes database.EnsureIndexes creates.
var uniqueFields = map[string][]string{
	Users:    {"email"},
	Sessions: {"refreshToken"},
}

// MemoryDatabase keeps collections in process. It backs unit tests and
// `serve --memory`.
type MemoryDatabase struct {
	mu   sync.Mutex
	cols map[string]*MemoryCollection
}

func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{cols: make(map[string]*MemoryCollection)}
}

func (d *MemoryDatabase) Collection(name string) Collection {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.cols[name]
	if !ok {
		c = NewMemoryCollection(uniqueFields[name]...)
		d.cols[name] = c
	}
	return c
}

type memoryDoc struct {
	seq uint64
	raw bson.Raw
}

// MemoryCollection stores documents as marshalled BSON so filters and sorts
// see exactly the field names and types the Mongo collection would.
type MemoryCollection struct {
	mu     sync.RWMutex
	seq    uint64
	store  map[string]memoryDoc
	unique []string
}

// NewMemoryCollection returns an empty collection. Each unique field behaves
// like a unique index: writes that repeat a stored value fail with
// ErrDuplicateKey. Documents without the field are not constrained.
func NewMemoryCollection(unique ...string) *MemoryCollection {
	return &MemoryCollection{store: make(map[string]memoryDoc), unique: unique}
}

// conflict reports the first unique field whose value in raw is held by a
// document other than id. Callers hold m.mu.
func (m *MemoryCollection) conflict(id string, raw bson.Raw) (string, bool) {
	for _, field := range m.unique {
		v, err := raw.LookupErr(field)
		if err != nil || v.Type == bsontype.Null {
			continue
		}
		for otherID, d := range m.store {
			if otherID == id {
				continue
			}
			if compareValues(d.raw.Lookup(field), v) == 0 {
				return field, true
			}
		}
	}
	return "", false
}

func (m *MemoryCollection) Insert(ctx context.Context, id string, doc interface{}) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.store[id]; exists {
		return fmt.Errorf("insert %s: %w", id, ErrDuplicateKey)
	}
	if field, taken := m.conflict(id, raw); taken {
		return fmt.Errorf("insert %s: %s: %w", id, field, ErrDuplicateKey)
	}
	m.seq++
	m.store[id] = memoryDoc{seq: m.seq, raw: raw}
	return nil
}

func (m *MemoryCollection) InsertMany(ctx context.Context, docs map[string]interface{}) error {
	for id, doc := range docs {
		if err := m.Insert(ctx, id, doc); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryCollection) FindByID(ctx context.Context, id string, out interface{}) error {
	m.mu.RLock()
	d, ok := m.store[id]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	return bson.Unmarshal(d.raw, out)
}

func (m *MemoryCollection) FindOne(ctx context.Context, filter Filter, out interface{}) error {
	matches, err := m.match(Query{Filter: filter})
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return ErrNotFound
	}
	return bson.Unmarshal(matches[0].raw, out)
}

func (m *MemoryCollection) Find(ctx context.Context, q Query, out interface{}) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("find: out must be a pointer to a slice, got %T", out)
	}
	matches, err := m.match(q)
	if err != nil {
		return err
	}
	slice := rv.Elem()
	elemType := slice.Type().Elem()
	result := reflect.MakeSlice(slice.Type(), 0, len(matches))
	for _, d := range matches {
		if elemType.Kind() == reflect.Ptr {
			item := reflect.New(elemType.Elem())
			if err := bson.Unmarshal(d.raw, item.Interface()); err != nil {
				return err
			}
			result = reflect.Append(result, item)
			continue
		}
		item := reflect.New(elemType)
		if err := bson.Unmarshal(d.raw, item.Interface()); err != nil {
			return err
		}
		result = reflect.Append(result, item.Elem())
	}
	slice.Set(result)
	return nil
}

func (m *MemoryCollection) Replace(ctx context.Context, id string, doc interface{}) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	if field, taken := m.conflict(id, raw); taken {
		return fmt.Errorf("replace %s: %s: %w", id, field, ErrDuplicateKey)
	}
	m.store[id] = memoryDoc{seq: d.seq, raw: raw}
	return nil
}

func (m *MemoryCollection) Set(ctx context.Context, id string, fields bson.M) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	var doc bson.D
	if err := bson.Unmarshal(d.raw, &doc); err != nil {
		return err
	}
	for k, v := range fields {
		replaced := false
		for i := range doc {
			if doc[i].Key == k {
				doc[i].Value = v
				replaced = true
				break
			}
		}
		if !replaced {
			doc = append(doc, bson.E{Key: k, Value: v})
		}
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	if field, taken := m.conflict(id, raw); taken {
		return fmt.Errorf("set %s: %s: %w", id, field, ErrDuplicateKey)
	}
	m.store[id] = memoryDoc{seq: d.seq, raw: raw}
	return nil
}

func (m *MemoryCollection) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *MemoryCollection) DeleteMany(ctx context.Context, filter Filter) (int64, error) {
	matches, err := m.match(Query{Filter: filter})
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, d := range matches {
		id, ok := d.raw.Lookup("_id").StringValueOK()
		if !ok {
			continue
		}
		if _, exists := m.store[id]; exists {
			delete(m.store, id)
			n++
		}
	}
	return n, nil
}

func (m *MemoryCollection) Count(ctx context.Context, filter Filter) (int64, error) {
	matches, err := m.match(Query{Filter: filter})
	if err != nil {
		return 0, err
	}
	return int64(len(matches)), nil
}

// match returns the documents satisfying q, sorted by q.Sort then insertion order.
func (m *MemoryCollection) match(q Query) ([]memoryDoc, error) {
	want, err := encodeFilter(q.Filter)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := make([]memoryDoc, 0, len(m.store))
	for _, d := range m.store {
		if matchesFilter(d.raw, want) {
			out = append(out, d)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		for _, s := range q.Sort {
			c := compareValues(out[i].raw.Lookup(s.Field), out[j].raw.Lookup(s.Field))
			if c == 0 {
				continue
			}
			if s.Desc {
				return c > 0
			}
			return c < 0
		}
		// ties follow insertion order in the direction of the primary sort
		if len(q.Sort) > 0 && q.Sort[0].Desc {
			return out[i].seq > out[j].seq
		}
		return out[i].seq < out[j].seq
	})
	return out, nil
}

func encodeFilter(f Filter) (bson.Raw, error) {
	if len(f) == 0 {
		return nil, nil
	}
	raw, err := bson.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal filter: %w", err)
	}
	return raw, nil
}

func matchesFilter(doc bson.Raw, want bson.Raw) bool {
	if want == nil {
		return true
	}
	elems, err := want.Elements()
	if err != nil {
		return false
	}
	for _, e := range elems {
		got, err := doc.LookupErr(e.Key())
		if err != nil {
			return false
		}
		if compareValues(got, e.Value()) != 0 {
			return false
		}
	}
	return true
}

// compareValues orders BSON values the way the queries in this service need:
// numbers numerically, strings lexically, datetimes chronologically, missing
// or null values first.
func compareValues(a, b bson.RawValue) int {
	aEmpty := a.Type == 0 || a.Type == bsontype.Null
	bEmpty := b.Type == 0 || b.Type == bsontype.Null
	switch {
	case aEmpty && bEmpty:
		return 0
	case aEmpty:
		return -1
	case bEmpty:
		return 1
	}
	if af, ok := numeric(a); ok {
		if bf, ok := numeric(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	if a.Type != b.Type {
		return int(a.Type) - int(b.Type)
	}
	switch a.Type {
	case bsontype.String:
		return bytes.Compare([]byte(a.StringValue()), []byte(b.StringValue()))
	case bsontype.DateTime:
		at, bt := a.DateTime(), b.DateTime()
		switch {
		case at < bt:
			return -1
		case at > bt:
			return 1
		}
		return 0
	case bsontype.Boolean:
		ab, bb := a.Boolean(), b.Boolean()
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		}
		return 1
	}
	return bytes.Compare(a.Value, b.Value)
}

func numeric(v bson.RawValue) (float64, bool) {
	switch v.Type {
	case bsontype.Int32:
		return float64(v.Int32()), true
	case bsontype.Int64:
		return float64(v.Int64()), true
	case bsontype.Double:
		return v.Double(), true
	}
	return 0, false
}
