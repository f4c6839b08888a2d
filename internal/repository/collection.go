// Package repository keeps an in-process mirror of each backend collection.
// Reads are served from the mirror; writes go to the backend first and are
// applied to the mirror only when the backend accepts them.
package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/folio-space/folio/internal/backend"
	"github.com/folio-space/folio/internal/models"
	"go.uber.org/zap"
)

// ErrNotSupported is returned for operations a collection does not expose.
var ErrNotSupported = errors.New("operation not supported")

// Observer receives the outcome of every backend call.
type Observer func(collection, op string, took time.Duration, err error)

// Options are shared by every collection of a catalog.
type Options struct {
	Logger *zap.Logger
	// Observe is called after each backend call, typically to record metrics.
	Observe Observer
	// OnChange runs after a successful mutation.
	OnChange func(collection string)
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Observe == nil {
		o.Observe = func(string, string, time.Duration, error) {}
	}
	if o.OnChange == nil {
		o.OnChange = func(string) {}
	}
	return o
}

// Capabilities lists the mutations a collection exposes besides Add.
type Capabilities struct {
	Update bool
	Delete bool
}

// FullAccess exposes every mutation.
var FullAccess = Capabilities{Update: true, Delete: true}

// Collection mirrors one ordered backend table. It performs no validation of
// its own; whatever the caller hands over is forwarded to the backend.
type Collection[T models.Record] struct {
	table backend.Table[T]
	order backend.Order
	caps  Capabilities
	opts  Options
	limit int

	mu      sync.RWMutex
	items   []T
	loading bool
	// loadErr is owned by Load. changeErr holds the last failed mutation and
	// never reaches read paths.
	loadErr   string
	changeErr string
}

func NewCollection[T models.Record](table backend.Table[T], order backend.Order, caps Capabilities, opts Options) *Collection[T] {
	return &Collection[T]{
		table: table,
		order: order,
		caps:  caps,
		opts:  opts.withDefaults(),
		items: []T{},
	}
}

// WithLimit keeps only the first n records of the natural order mirrored.
// Records past the window stay in the backend and can still be deleted.
func (c *Collection[T]) WithLimit(n int) *Collection[T] {
	c.limit = n
	return c
}

func (c *Collection[T]) Name() string               { return c.table.Name() }
func (c *Collection[T]) Capabilities() Capabilities { return c.caps }

// Items returns a copy of the mirrored list in its natural order.
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of mirrored records.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Find returns the mirrored record with the given id.
func (c *Collection[T]) Find(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if it.GetID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Loading reports whether a Load is in flight.
func (c *Collection[T]) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Err returns the message of the last failed Load, or "". Mutation failures
// do not affect it.
func (c *Collection[T]) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadErr
}

// ChangeErr returns the message of the last failed Add, Update or Delete, or
// "" once a later mutation succeeds.
func (c *Collection[T]) ChangeErr() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.changeErr
}

// mutate runs a backend write and records its outcome in changeErr.
func (c *Collection[T]) mutate(op string, fn func() error) error {
	err := c.observe(op, fn)
	c.mu.Lock()
	if err != nil {
		c.changeErr = err.Error()
	} else {
		c.changeErr = ""
	}
	c.mu.Unlock()
	return err
}

func (c *Collection[T]) observe(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	c.opts.Observe(c.Name(), op, time.Since(start), err)
	if err != nil && !errors.Is(err, backend.ErrNotFound) {
		c.opts.Logger.Warn("repository operation failed",
			zap.String("collection", c.Name()),
			zap.String("op", op),
			zap.Error(err),
		)
	}
	return err
}

// Load reads the whole table in natural order and replaces the mirror. On
// failure the previous list is kept and the error is recorded.
func (c *Collection[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	var rows []T
	err := c.observe("select", func() error {
		var err error
		rows, err = c.table.Select(ctx, backend.Query{Order: c.order, Limit: c.limit})
		return err
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.loadErr = err.Error()
		return err
	}
	if rows == nil {
		rows = []T{}
	}
	c.items = rows
	c.loadErr = ""
	return nil
}

// Add inserts rec and prepends the stored record to the mirror.
func (c *Collection[T]) Add(ctx context.Context, rec T) (T, error) {
	err := c.mutate("insert", func() error {
		return c.table.Insert(ctx, &rec)
	})
	if err != nil {
		var zero T
		return zero, err
	}

	c.mu.Lock()
	c.items = append([]T{rec}, c.items...)
	if c.limit > 0 && len(c.items) > c.limit {
		c.items = c.items[:c.limit]
	}
	c.mu.Unlock()
	c.opts.OnChange(c.Name())
	return rec, nil
}

// Update applies fields to the record with id and swaps in the stored result.
func (c *Collection[T]) Update(ctx context.Context, id string, fields map[string]any) (T, error) {
	var zero T
	if !c.caps.Update {
		return zero, fmt.Errorf("update %s: %w", c.Name(), ErrNotSupported)
	}
	var updated *T
	err := c.mutate("update", func() error {
		var err error
		updated, err = c.table.Update(ctx, id, fields)
		return err
	})
	if err != nil {
		return zero, err
	}

	c.mu.Lock()
	for i := range c.items {
		if c.items[i].GetID() == id {
			c.items[i] = *updated
			break
		}
	}
	c.mu.Unlock()
	c.opts.OnChange(c.Name())
	return *updated, nil
}

// Delete removes the record with id from the backend and then the mirror.
// A missing id surfaces backend.ErrNotFound and leaves the mirror as is.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if !c.caps.Delete {
		return fmt.Errorf("delete %s: %w", c.Name(), ErrNotSupported)
	}
	err := c.mutate("delete", func() error {
		return c.table.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.items {
		if c.items[i].GetID() == id {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	c.opts.OnChange(c.Name())
	return nil
}

// Get reads one record straight from the backend. Failures are returned but
// not recorded as the collection error.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var rec *T
	err := c.observe("get", func() error {
		var err error
		rec, err = c.table.Get(ctx, id)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return *rec, nil
}
