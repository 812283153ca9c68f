package store

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDatabase adapts a *mongo.Database to Database.
type MongoDatabase struct {
	db *mongo.Database
}

func NewMongoDatabase(db *mongo.Database) *MongoDatabase {
	return &MongoDatabase{db: db}
}

func (d *MongoDatabase) Collection(name string) Collection {
	return NewMongoCollection(d.db.Collection(name))
}

// Ping checks the server is reachable; used by the readiness endpoint.
func (d *MongoDatabase) Ping(ctx context.Context) error {
	return errors.Wrap(d.db.Client().Ping(ctx, nil), "mongo ping")
}

// MongoCollection implements Collection on a MongoDB collection.
type MongoCollection struct {
	col *mongo.Collection
}

func NewMongoCollection(col *mongo.Collection) *MongoCollection {
	return &MongoCollection{col: col}
}

func (m *MongoCollection) Insert(ctx context.Context, id string, doc interface{}) error {
	if _, err := m.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.Wrapf(ErrDuplicateKey, "insert %s/%s", m.col.Name(), id)
		}
		return errors.Wrapf(err, "insert %s/%s", m.col.Name(), id)
	}
	return nil
}

func (m *MongoCollection) InsertMany(ctx context.Context, docs map[string]interface{}) error {
	if len(docs) == 0 {
		return nil
	}
	batch := make([]interface{}, 0, len(docs))
	for _, d := range docs {
		batch = append(batch, d)
	}
	if _, err := m.col.InsertMany(ctx, batch); err != nil {
		return errors.Wrapf(err, "insert many into %s", m.col.Name())
	}
	return nil
}

func (m *MongoCollection) FindByID(ctx context.Context, id string, out interface{}) error {
	return m.FindOne(ctx, Filter{"_id": id}, out)
}

func (m *MongoCollection) FindOne(ctx context.Context, filter Filter, out interface{}) error {
	if err := m.col.FindOne(ctx, orEmpty(filter)).Decode(out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return errors.Wrapf(err, "find one in %s", m.col.Name())
	}
	return nil
}

func (m *MongoCollection) Find(ctx context.Context, q Query, out interface{}) error {
	opts := options.Find()
	if len(q.Sort) > 0 {
		sortSpec := bson.D{}
		for _, s := range q.Sort {
			dir := 1
			if s.Desc {
				dir = -1
			}
			sortSpec = append(sortSpec, bson.E{Key: s.Field, Value: dir})
		}
		opts.SetSort(sortSpec)
	}
	cur, err := m.col.Find(ctx, orEmpty(q.Filter), opts)
	if err != nil {
		return errors.Wrapf(err, "find in %s", m.col.Name())
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, out); err != nil {
		return errors.Wrapf(err, "decode %s", m.col.Name())
	}
	return nil
}

func (m *MongoCollection) Replace(ctx context.Context, id string, doc interface{}) error {
	res, err := m.col.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.Wrapf(ErrDuplicateKey, "replace %s/%s", m.col.Name(), id)
		}
		return errors.Wrapf(err, "replace %s/%s", m.col.Name(), id)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoCollection) Set(ctx context.Context, id string, fields bson.M) error {
	res, err := m.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.Wrapf(ErrDuplicateKey, "update %s/%s", m.col.Name(), id)
		}
		return errors.Wrapf(err, "update %s/%s", m.col.Name(), id)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoCollection) Delete(ctx context.Context, id string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrapf(err, "delete %s/%s", m.col.Name(), id)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoCollection) DeleteMany(ctx context.Context, filter Filter) (int64, error) {
	res, err := m.col.DeleteMany(ctx, orEmpty(filter))
	if err != nil {
		return 0, errors.Wrapf(err, "delete many in %s", m.col.Name())
	}
	return res.DeletedCount, nil
}

func (m *MongoCollection) Count(ctx context.Context, filter Filter) (int64, error) {
	n, err := m.col.CountDocuments(ctx, orEmpty(filter))
	if err != nil {
		return 0, errors.Wrapf(err, "count %s", m.col.Name())
	}
	return n, nil
}

func orEmpty(f Filter) Filter {
	if f == nil {
		return Filter{}
	}
	return f
}
