// Package backend defines the contracts of the three collaborators the site
// depends on: an identity provider, a record store and a blob store.
package backend

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrNotFound is returned when an update or delete targets no record.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidCredentials is returned by SignIn for any bad email/password pair.
	ErrInvalidCredentials = errors.New("invalid login credentials")
	// ErrNoSession is returned by GetSession when the token is missing, expired or revoked.
	ErrNoSession = errors.New("no active session")
)

// Order sorts a select by one column.
type Order struct {
	Column string
	Desc   bool
}

// Query narrows a select. Where holds equality filters keyed by column name.
type Query struct {
	Order Order
	Where map[string]any
	Limit int
}

// Table is one named collection of records of type T.
// Insert fills the record's identity and timestamps in place.
type Table[T any] interface {
	Name() string
	Select(ctx context.Context, q Query) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Insert(ctx context.Context, rec *T) error
	Update(ctx context.Context, id string, fields map[string]any) (*T, error)
	Upsert(ctx context.Context, rec *T) error
	Delete(ctx context.Context, id string) error
}

// Session is an authenticated admin session.
type Session struct {
	Token     string
	SessionID string
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// Identity signs admins in and out.
type Identity interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token string) error
	GetSession(ctx context.Context, token string) (*Session, error)
}

// BlobStore holds uploaded files and hands out public URLs for them.
type BlobStore interface {
	Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) error
	PublicURL(path string) string
}

// ClientInfo describes the caller of an identity operation.
type ClientInfo struct {
	IP        string
	UserAgent string
}

type clientKey struct{}

// WithClient attaches caller details to ctx for session bookkeeping.
func WithClient(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, clientKey{}, info)
}

// ClientFrom returns the caller details attached by WithClient.
func ClientFrom(ctx context.Context) ClientInfo {
	info, _ := ctx.Value(clientKey{}).(ClientInfo)
	return info
}
