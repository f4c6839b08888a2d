package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(Logger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(http.ErrHandlerTimeout)
		c.Status(http.StatusInternalServerError)
	})

	for _, path := range []string{"/ok", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("entries = %d", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel || entries[0].ContextMap()["path"] != "/ok" {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[1].Level != zapcore.ErrorLevel {
		t.Errorf("server error logged at %s", entries[1].Level)
	}
	if _, ok := entries[1].ContextMap()["errors"]; !ok {
		t.Error("handler errors not attached")
	}
}

// Without redis every limiter and cache passes requests through untouched.
func TestNilRedisPassThrough(t *testing.T) {
	var limited bool
	r := gin.New()
	r.Use(
		RateLimit(nil, 1, func(string, string) { limited = true }),
		HTTPCache(nil, HTTPCacheOptions{}),
		Idempotence(nil),
	)
	hits := 0
	r.Any("/x", func(c *gin.Context) {
		hits++
		c.String(http.StatusOK, "ok")
	})

	for i := 0; i < 3; i++ {
		for _, method := range []string{http.MethodGet, http.MethodPost} {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(method, "/x", bytes.NewBufferString(`{"a":1}`)))
			if w.Code != http.StatusOK {
				t.Fatalf("%s status = %d", method, w.Code)
			}
			if w.Header().Get(CacheStatusHeader) != "" {
				t.Fatal("cache header set without redis")
			}
		}
	}
	if hits != 6 || limited {
		t.Fatalf("hits = %d, limited = %v", hits, limited)
	}
}

func TestCachePolicySkips(t *testing.T) {
	policy := newCachePolicy(HTTPCacheOptions{SkipPaths: []string{"/api/v1/auth/*", "/api/v1/ping", " "}})
	cases := map[string]bool{
		"/api/v1/auth/session": true,
		"/api/v1/auth":         false,
		"/api/v1/ping":         true,
		"/api/v1/pingx":        false,
		"/api/v1/projects":     false,
		"":                     false,
	}
	for path, want := range cases {
		if got := policy.skips(path); got != want {
			t.Errorf("skips(%q) = %v, want %v", path, got, want)
		}
	}
	if policy.ttl != defaultHTTPCacheTTL || policy.maxAge != "public, max-age=15" {
		t.Errorf("defaults = %v %q", policy.ttl, policy.maxAge)
	}
}

func TestStorable(t *testing.T) {
	cases := []struct {
		status int
		cc     string
		want   bool
	}{
		{http.StatusOK, "", true},
		{http.StatusOK, "public, max-age=30", true},
		{http.StatusOK, "private, no-store", false},
		{http.StatusOK, "No-Cache", false},
		{http.StatusOK, "max-age=0, no-store", false},
		{http.StatusNotFound, "", false},
	}
	for _, tc := range cases {
		h := http.Header{}
		if tc.cc != "" {
			h.Set("Cache-Control", tc.cc)
		}
		if got := storable(tc.status, h); got != tc.want {
			t.Errorf("storable(%d, %q) = %v", tc.status, tc.cc, got)
		}
	}
}

func TestTeeWriterDropsOversizedBody(t *testing.T) {
	cases := []struct {
		name    string
		writes  []string
		want    string
		dropped bool
	}{
		{"fits", []string{"ab", "cd"}, "abcd", false},
		{"exact limit", []string{"abcde"}, "abcde", false},
		{"overflow", []string{"abc", "def"}, "", true},
		{"stays dropped", []string{"abcdef", "g"}, "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			w := &teeWriter{ResponseWriter: c.Writer, limit: 5}
			for i, chunk := range tc.writes {
				if i%2 == 0 {
					_, _ = w.Write([]byte(chunk))
				} else {
					_, _ = w.WriteString(chunk)
				}
			}
			if w.buf.String() != tc.want || w.dropped != tc.dropped {
				t.Fatalf("buf = %q dropped = %v", w.buf.String(), w.dropped)
			}
		})
	}
}

func TestResolveIdempotenceKey(t *testing.T) {
	newCtx := func(body, header string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(body))
		if header != "" {
			c.Request.Header.Set(idempotenceHeader, header)
		}
		return c
	}

	if key, _ := resolveIdempotenceKey(newCtx("body", "abc")); key != "abc" {
		t.Errorf("header key = %q", key)
	}
	if key, _ := resolveIdempotenceKey(newCtx("", "")); key != "" {
		t.Errorf("empty body key = %q", key)
	}

	c := newCtx("name=Ada", "")
	first, err := resolveIdempotenceKey(c)
	if err != nil || len(first) != 64 {
		t.Fatalf("digest = %q, %v", first, err)
	}
	rest := new(bytes.Buffer)
	_, _ = rest.ReadFrom(c.Request.Body)
	if rest.String() != "name=Ada" {
		t.Errorf("body not restored: %q", rest.String())
	}
	if second, _ := resolveIdempotenceKey(newCtx("name=Ada", "")); second != first {
		t.Error("digest not stable across identical requests")
	}
}

func TestBypassesCache(t *testing.T) {
	cases := []struct {
		target string
		cc     string
		want   bool
	}{
		{"/api/v1/projects?ts=1", "", true},
		{"/api/v1/projects?_t=x", "", true},
		{"/api/v1/projects", "", false},
		{"/api/v1/projects?ts=", "", false},
		{"/api/v1/projects", "no-cache", true},
		{"/api/v1/projects", "max-age=0", false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.target, nil)
		if tc.cc != "" {
			req.Header.Set("Cache-Control", tc.cc)
		}
		if got := bypassesCache(req); got != tc.want {
			t.Errorf("bypass(%q, %q) = %v", tc.target, tc.cc, got)
		}
	}
}
