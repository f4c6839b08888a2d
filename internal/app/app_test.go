package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/folio-space/folio/internal/config"
)

func testConfig(t *testing.T) *config.AppConfig {
	return &config.AppConfig{
		Server:   config.ServerConfig{Port: 8080, Env: "production", CacheTTL: time.Second},
		Database: config.DatabaseConfig{Driver: config.DriverSQLite, DSN: ":memory:"},
		Auth:     config.AuthConfig{JWTSecret: "test-secret", SessionTTL: time.Hour},
		Storage:  config.StorageConfig{Driver: config.StorageLocal, LocalDir: t.TempDir(), MaxSizeMB: 1},
		Catalog:  config.CatalogConfig{RefreshInterval: time.Minute},
		Site:     config.SiteConfig{Title: "Portfolio"},
	}
}

func TestAppRoutes(t *testing.T) {
	a, err := New(nil, testConfig(t))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(a.Shutdown)

	cases := []struct {
		method string
		path   string
		want   int
		body   string
	}{
		{http.MethodGet, "/", http.StatusOK, "No Projects Yet"},
		{http.MethodGet, "/static/site.css", http.StatusOK, ".hero"},
		{http.MethodGet, "/admin", http.StatusFound, ""},
		{http.MethodGet, "/admin/login", http.StatusOK, "Create Owner Account"},
		{http.MethodGet, "/metrics", http.StatusOK, "folio_http_request_duration_seconds"},
		{http.MethodGet, "/api/v1/ping", http.StatusOK, "pong"},
		{http.MethodGet, "/api/v1/projects", http.StatusOK, `"data":[]`},
		{http.MethodGet, "/api/v1/auth/session", http.StatusOK, `"setup_required":true`},
		{http.MethodPost, "/api/v1/projects", http.StatusUnauthorized, ""},
		{http.MethodGet, "/api/v1/jobs", http.StatusUnauthorized, ""},
		{http.MethodGet, "/nowhere", http.StatusNotFound, ""},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			a.Router().ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, strings.NewReader("{}")))
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
			if tc.body != "" && !strings.Contains(w.Body.String(), tc.body) {
				t.Errorf("body missing %q", tc.body)
			}
		})
	}
}

func TestCronJobsRegistered(t *testing.T) {
	a, err := New(nil, testConfig(t))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(a.Shutdown)

	var names []string
	for _, job := range a.sched.List() {
		names = append(names, job.Name)
	}
	if got := strings.Join(names, ","); got != "cache.purge,catalog.refresh,sessions.cleanup" {
		t.Fatalf("jobs = %s", got)
	}
	if err := a.refresh(t.Context()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if err := a.sched.Run(t.Context(), jobCachePurge); err != nil {
		t.Fatalf("cache purge without redis: %v", err)
	}
}

func TestMatchOriginPattern(t *testing.T) {
	cases := []struct {
		pattern, origin string
		want            bool
	}{
		{"example.com", "https://example.com", true},
		{"*.example.com", "https://blog.example.com", true},
		{"*.example.com", "https://example.org", false},
		{"localhost:*", "http://localhost:5173", true},
		{"localhost:*", "http://127.0.0.1:5173", false},
	}
	for _, tc := range cases {
		if got := matchOriginPattern(tc.pattern, extractOriginHost(tc.origin)); got != tc.want {
			t.Errorf("match(%q, %q) = %v, want %v", tc.pattern, tc.origin, got, tc.want)
		}
	}
}

func TestParseTimezoneLocation(t *testing.T) {
	loc, err := parseTimezoneLocation("+05:30")
	if err != nil {
		t.Fatal(err)
	}
	if _, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone(); offset != 5*3600+30*60 {
		t.Errorf("offset = %d", offset)
	}
	if _, err := parseTimezoneLocation("Mars/Olympus"); err == nil {
		t.Error("expected error for unknown zone")
	}
}

func TestHumanizeDuration(t *testing.T) {
	for d, want := range map[time.Duration]string{
		42 * time.Second:              "42s",
		90 * time.Minute:              "1h0m0s",
		26*time.Hour + 20*time.Minute: "1d2h0m0s",
		48 * time.Hour:                "2d",
	} {
		if got := humanizeDuration(d); got != want {
			t.Errorf("humanizeDuration(%s) = %q, want %q", d, got, want)
		}
	}
}
