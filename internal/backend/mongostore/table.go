package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/folio-space/folio/internal/backend"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type identifiable interface {
	GetID() string
	EnsureIdentity(now time.Time)
}

// Table is a backend.Table backed by one MongoDB collection.
// Column names double as document field names, except "id" which maps to "_id".
type Table[T any] struct {
	coll *mongo.Collection
	name string
}

func NewTable[T any](db *mongo.Database, name string) *Table[T] {
	return &Table[T]{coll: db.Collection(name), name: name}
}

func (t *Table[T]) Name() string { return t.name }

func (t *Table[T]) Select(ctx context.Context, q backend.Query) ([]T, error) {
	filter := bson.M{}
	for key, value := range q.Where {
		filter[fieldName(key)] = value
	}
	opts := options.Find()
	if q.Order.Column != "" {
		dir := 1
		if q.Order.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: fieldName(q.Order.Column), Value: dir}})
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := t.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", t.name, err)
	}
	rows := make([]T, 0)
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("select %s: %w", t.name, err)
	}
	return rows, nil
}

func (t *Table[T]) Get(ctx context.Context, id string) (*T, error) {
	var row T
	if err := t.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&row); err != nil {
		return nil, t.wrap("get", err)
	}
	return &row, nil
}

func (t *Table[T]) Insert(ctx context.Context, rec *T) error {
	if r, ok := any(rec).(identifiable); ok {
		r.EnsureIdentity(time.Now())
	}
	if _, err := t.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert %s: %w", t.name, err)
	}
	return nil
}

func (t *Table[T]) Update(ctx context.Context, id string, fields map[string]any) (*T, error) {
	set := bson.M{}
	for key, value := range fields {
		set[fieldName(key)] = value
	}
	if len(set) == 0 {
		return t.Get(ctx, id)
	}
	var row T
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := t.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&row); err != nil {
		return nil, t.wrap("update", err)
	}
	return &row, nil
}

func (t *Table[T]) Upsert(ctx context.Context, rec *T) error {
	r, ok := any(rec).(identifiable)
	if !ok {
		return fmt.Errorf("upsert %s: record has no identity", t.name)
	}
	r.EnsureIdentity(time.Now())

	opts := options.Replace().SetUpsert(true)
	if _, err := t.coll.ReplaceOne(ctx, bson.M{"_id": r.GetID()}, rec, opts); err != nil {
		return fmt.Errorf("upsert %s: %w", t.name, err)
	}
	return nil
}

func (t *Table[T]) Delete(ctx context.Context, id string) error {
	res, err := t.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s: %w", t.name, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete %s %s: %w", t.name, id, backend.ErrNotFound)
	}
	return nil
}

func (t *Table[T]) wrap(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s %s: %w", op, t.name, backend.ErrNotFound)
	}
	return fmt.Errorf("%s %s: %w", op, t.name, err)
}

func fieldName(column string) string {
	if column == "id" {
		return "_id"
	}
	return column
}
