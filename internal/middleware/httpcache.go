package middleware

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/folio-space/folio/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	APICachePrefix    = "folio-api-cache:"
	CacheStatusHeader = "X-Folio-Cache"

	defaultHTTPCacheTTL     = 15 * time.Second
	defaultHTTPCacheMaxBody = 1 << 20
)

// cacheBustParams force a live response when any of them carries a value.
var cacheBustParams = []string{"ts", "timestamp", "_t"}

type HTTPCacheOptions struct {
	TTL     time.Duration
	Disable bool
	// SkipPaths holds exact paths and "prefix*" patterns that are never cached.
	SkipPaths    []string
	MaxBodyBytes int
}

// cachePolicy is HTTPCacheOptions compiled once per middleware.
type cachePolicy struct {
	ttl      time.Duration
	maxAge   string
	maxBody  int
	exact    map[string]struct{}
	prefixes []string
}

func newCachePolicy(opts HTTPCacheOptions) cachePolicy {
	p := cachePolicy{
		ttl:     opts.TTL,
		maxBody: opts.MaxBodyBytes,
		exact:   make(map[string]struct{}),
	}
	if p.ttl <= 0 {
		p.ttl = defaultHTTPCacheTTL
	}
	if p.maxBody <= 0 {
		p.maxBody = defaultHTTPCacheMaxBody
	}
	p.maxAge = "public, max-age=" + strconv.Itoa(int(p.ttl/time.Second))

	for _, raw := range opts.SkipPaths {
		pattern := strings.TrimSpace(raw)
		switch {
		case pattern == "":
		case strings.HasSuffix(pattern, "*"):
			p.prefixes = append(p.prefixes, strings.TrimSuffix(pattern, "*"))
		default:
			p.exact[pattern] = struct{}{}
		}
	}
	return p
}

func (p cachePolicy) skips(path string) bool {
	if _, ok := p.exact[path]; ok {
		return true
	}
	for _, prefix := range p.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// HTTPCache serves anonymous GET responses from redis. Authenticated callers
// always see live data. Entries live for TTL or until PurgeHTTPCache.
func HTTPCache(rdb *redis.Client, opts HTTPCacheOptions) gin.HandlerFunc {
	policy := newCachePolicy(opts)
	return func(c *gin.Context) {
		req := c.Request
		if opts.Disable || rdb == nil || req.Method != http.MethodGet ||
			policy.skips(req.URL.Path) || bypassesCache(req) {
			c.Next()
			return
		}
		if auth.FromContext(c).Authenticated() {
			c.Header("Cache-Control", "private, no-store")
			c.Next()
			return
		}

		ctx := req.Context()
		key := APICachePrefix + req.URL.RequestURI()
		if entry, ok := loadCacheEntry(ctx, rdb, key); ok {
			c.Header(CacheStatusHeader, "hit")
			c.Header("Cache-Control", policy.maxAge)
			c.Data(entry.status, entry.contentType, entry.body)
			c.Abort()
			return
		}

		c.Header(CacheStatusHeader, "miss")
		tee := &teeWriter{ResponseWriter: c.Writer, limit: policy.maxBody}
		c.Writer = tee
		c.Next()

		if tee.dropped || tee.buf.Len() == 0 || !storable(tee.Status(), tee.Header()) {
			return
		}
		storeCacheEntry(ctx, rdb, key, cacheEntry{
			status:      tee.Status(),
			contentType: tee.Header().Get("Content-Type"),
			body:        tee.buf.Bytes(),
		}, policy.ttl)
	}
}

// teeWriter copies the response body into buf until it passes limit, after
// which the copy is discarded and the response is not cached.
type teeWriter struct {
	gin.ResponseWriter
	buf     bytes.Buffer
	limit   int
	dropped bool
}

func (w *teeWriter) Write(p []byte) (int, error) {
	w.keep(p)
	return w.ResponseWriter.Write(p)
}

func (w *teeWriter) WriteString(s string) (int, error) {
	w.keep([]byte(s))
	return w.ResponseWriter.WriteString(s)
}

func (w *teeWriter) keep(p []byte) {
	if w.dropped {
		return
	}
	if w.buf.Len()+len(p) > w.limit {
		w.dropped = true
		w.buf = bytes.Buffer{}
		return
	}
	w.buf.Write(p)
}

// cacheEntry is stored as a redis hash with status, type and body fields.
type cacheEntry struct {
	status      int
	contentType string
	body        []byte
}

func loadCacheEntry(ctx context.Context, rdb *redis.Client, key string) (cacheEntry, bool) {
	fields, err := rdb.HGetAll(ctx, key).Result()
	if err != nil || len(fields) == 0 {
		return cacheEntry{}, false
	}
	status, err := strconv.Atoi(fields["status"])
	if err != nil || status <= 0 {
		status = http.StatusOK
	}
	entry := cacheEntry{status: status, contentType: fields["type"], body: []byte(fields["body"])}
	if entry.contentType == "" {
		entry.contentType = gin.MIMEJSON + "; charset=utf-8"
	}
	return entry, len(entry.body) > 0
}

func storeCacheEntry(ctx context.Context, rdb *redis.Client, key string, e cacheEntry, ttl time.Duration) {
	_, _ = rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "status", e.status, "type", e.contentType, "body", e.body)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
}

// PurgeHTTPCache drops every cached response and returns how many were removed.
func PurgeHTTPCache(ctx context.Context, rdb *redis.Client) (int64, error) {
	if rdb == nil {
		return 0, nil
	}
	const batch = 200
	var (
		removed int64
		keys    = make([]string, 0, batch)
	)
	flush := func() error {
		if len(keys) == 0 {
			return nil
		}
		n, err := rdb.Unlink(ctx, keys...).Result()
		removed += n
		keys = keys[:0]
		return err
	}

	iter := rdb.Scan(ctx, 0, APICachePrefix+"*", batch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == batch {
			if err := flush(); err != nil {
				return removed, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, err
	}
	return removed, flush()
}

// bypassesCache reports whether the client asked for a fresh response, either
// with a cache-busting query parameter or a no-cache request header.
func bypassesCache(r *http.Request) bool {
	query := r.URL.Query()
	for _, name := range cacheBustParams {
		if strings.TrimSpace(query.Get(name)) != "" {
			return true
		}
	}
	return hasDirective(r.Header, "no-cache")
}

// storable reports whether a handler response may be shared with other
// anonymous callers.
func storable(status int, h http.Header) bool {
	return status == http.StatusOK && !hasDirective(h, "no-cache", "no-store", "private")
}

func hasDirective(h http.Header, names ...string) bool {
	for _, part := range strings.Split(h.Get("Cache-Control"), ",") {
		directive, _, _ := strings.Cut(strings.TrimSpace(part), "=")
		for _, name := range names {
			if strings.EqualFold(directive, name) {
				return true
			}
		}
	}
	return false
}
