package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/folio-space/folio/internal/backend"
	"github.com/folio-space/folio/internal/models"
	"go.uber.org/zap"
)

type singletonRecord interface {
	models.Record
	Identity() models.Base
}

type adoptable interface {
	Adopt(from models.Base)
	Touch(now time.Time)
}

// Singleton mirrors a table that holds at most one row. An empty table is a
// valid state, not an error.
type Singleton[T singletonRecord] struct {
	table backend.Table[T]
	opts  Options
	now   func() time.Time

	mu        sync.RWMutex
	item      *T
	loading   bool
	loadErr   string
	changeErr string
}

func NewSingleton[T singletonRecord](table backend.Table[T], opts Options) *Singleton[T] {
	return &Singleton[T]{table: table, opts: opts.withDefaults(), now: time.Now}
}

func (s *Singleton[T]) Name() string { return s.table.Name() }

// Get returns the mirrored row, if any.
func (s *Singleton[T]) Get() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.item == nil {
		var zero T
		return zero, false
	}
	return *s.item, true
}

func (s *Singleton[T]) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the message of the last failed Load, or "".
func (s *Singleton[T]) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// ChangeErr returns the message of the last failed Save, or "".
func (s *Singleton[T]) ChangeErr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.changeErr
}

func (s *Singleton[T]) fail(op string, err error, into *string) error {
	s.opts.Logger.Warn("repository operation failed",
		zap.String("collection", s.Name()),
		zap.String("op", op),
		zap.Error(err),
	)
	s.mu.Lock()
	*into = err.Error()
	s.mu.Unlock()
	return err
}

// Load reads the row. A missing row clears the mirror without error.
func (s *Singleton[T]) Load(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	start := time.Now()
	rows, err := s.table.Select(ctx, backend.Query{
		Order: backend.Order{Column: "created_at"},
		Limit: 1,
	})
	s.opts.Observe(s.Name(), "select", time.Since(start), err)

	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
	if err != nil {
		return s.fail("select", err, &s.loadErr)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = ""
	if len(rows) == 0 {
		s.item = nil
		return nil
	}
	row := rows[0]
	s.item = &row
	return nil
}

// Save replaces the row with rec, keeping the existing identity and
// stamping the modification time.
func (s *Singleton[T]) Save(ctx context.Context, rec T) (T, error) {
	var zero T
	a, ok := any(&rec).(adoptable)
	if !ok {
		return zero, errors.New("singleton record cannot be stamped")
	}
	if cur, exists := s.Get(); exists {
		a.Adopt(cur.Identity())
	}
	a.Touch(s.now())

	start := time.Now()
	err := s.table.Upsert(ctx, &rec)
	s.opts.Observe(s.Name(), "upsert", time.Since(start), err)
	if err != nil {
		return zero, s.fail("upsert", err, &s.changeErr)
	}

	s.mu.Lock()
	s.item = &rec
	s.changeErr = ""
	s.mu.Unlock()
	s.opts.OnChange(s.Name())
	return rec, nil
}
