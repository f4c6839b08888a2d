package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/folio-space/folio/internal/backend"
)

// memTable is an in-memory backend.Table that keeps rows as JSON documents,
// so tests can seed the loosely typed shapes older rows were written in.
type memTable[T any] struct {
	name string

	mu   sync.Mutex
	docs []map[string]any
	fail error
}

func newMemTable[T any](name string) *memTable[T] {
	return &memTable[T]{name: name}
}

func (m *memTable[T]) Name() string { return m.name }

func (m *memTable[T]) failWith(err error) {
	m.mu.Lock()
	m.fail = err
	m.mu.Unlock()
}

// seed stores a raw document as is.
func (m *memTable[T]) seed(doc map[string]any) {
	m.mu.Lock()
	m.docs = append(m.docs, doc)
	m.mu.Unlock()
}

func toDoc(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	doc := map[string]any{}
	return doc, json.Unmarshal(b, &doc)
}

func fromDoc[T any](doc map[string]any) (T, error) {
	var out T
	b, err := json.Marshal(doc)
	if err != nil {
		return out, err
	}
	return out, json.Unmarshal(b, &out)
}

func (m *memTable[T]) indexOf(id string) int {
	for i, d := range m.docs {
		if d["id"] == id {
			return i
		}
	}
	return -1
}

func (m *memTable[T]) Select(_ context.Context, q backend.Query) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	docs := make([]map[string]any, 0, len(m.docs))
	for _, d := range m.docs {
		match := true
		for k, v := range q.Where {
			if fmt.Sprint(d[k]) != fmt.Sprint(v) {
				match = false
			}
		}
		if match {
			docs = append(docs, d)
		}
	}
	if col := q.Order.Column; col != "" {
		sort.SliceStable(docs, func(i, j int) bool {
			if q.Order.Desc {
				return less(docs[j][col], docs[i][col])
			}
			return less(docs[i][col], docs[j][col])
		})
	}
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		rec, err := fromDoc[T](d)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func less(a, b any) bool {
	if x, ok := a.(float64); ok {
		if y, ok := b.(float64); ok {
			return x < y
		}
	}
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	if ta, err := time.Parse(time.RFC3339Nano, as); err == nil {
		if tb, err := time.Parse(time.RFC3339Nano, bs); err == nil {
			return ta.Before(tb)
		}
	}
	return as < bs
}

func (m *memTable[T]) Get(_ context.Context, id string) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	i := m.indexOf(id)
	if i < 0 {
		return nil, backend.ErrNotFound
	}
	rec, err := fromDoc[T](m.docs[i])
	return &rec, err
}

func (m *memTable[T]) Insert(_ context.Context, rec *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if r, ok := any(rec).(interface{ EnsureIdentity(time.Time) }); ok {
		r.EnsureIdentity(time.Now())
	}
	doc, err := toDoc(rec)
	if err != nil {
		return err
	}
	m.docs = append(m.docs, doc)
	return nil
}

func (m *memTable[T]) Update(_ context.Context, id string, fields map[string]any) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	i := m.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("update %s: %w", m.name, backend.ErrNotFound)
	}
	patch, err := toDoc(fields)
	if err != nil {
		return nil, err
	}
	for k, v := range patch {
		m.docs[i][k] = v
	}
	rec, err := fromDoc[T](m.docs[i])
	return &rec, err
}

func (m *memTable[T]) Upsert(_ context.Context, rec *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if r, ok := any(rec).(interface{ EnsureIdentity(time.Time) }); ok {
		r.EnsureIdentity(time.Now())
	}
	doc, err := toDoc(rec)
	if err != nil {
		return err
	}
	if i := m.indexOf(fmt.Sprint(doc["id"])); i >= 0 {
		m.docs[i] = doc
		return nil
	}
	m.docs = append(m.docs, doc)
	return nil
}

func (m *memTable[T]) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	i := m.indexOf(id)
	if i < 0 {
		return fmt.Errorf("delete %s %s: %w", m.name, id, backend.ErrNotFound)
	}
	m.docs = append(m.docs[:i], m.docs[i+1:]...)
	return nil
}

var errBackendDown = errors.New("backend unavailable")
