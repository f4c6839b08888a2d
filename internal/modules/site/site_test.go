package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/folio-space/folio/internal/backend/gormstore"
	"github.com/folio-space/folio/internal/config"
	"github.com/folio-space/folio/internal/models"
	"github.com/folio-space/folio/internal/modules/content"
	"github.com/folio-space/folio/internal/repository"
	"github.com/folio-space/folio/internal/web"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newSite(t *testing.T) (*gin.Engine, *repository.Catalog, *gorm.DB) {
	t.Helper()
	db, err := gormstore.Connect(config.DatabaseConfig{Driver: config.DriverSQLite, DSN: ":memory:"}, false)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	catalog := repository.NewCatalog(gormstore.CatalogTables(db), repository.Options{})
	if err := catalog.LoadAll(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	contact := content.NewContactService(catalog.Messages, nil, "Portfolio", nil)

	r := gin.New()
	r.SetHTMLTemplate(web.MustTemplates())
	NewHandler(catalog, contact, config.SiteConfig{Title: "Portfolio", Footer: "Built with Go"}, nil).RegisterRoutes(r)
	return r, catalog, db
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestEmptyPage(t *testing.T) {
	r, _, _ := newSite(t)
	w := get(r, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		"No Projects Yet",
		"Projects will appear here once added to the database.",
		"No Certificates Yet",
		"No Skills Yet",
		"No Languages Yet",
		"No Timeline Entries Yet",
		"Built with Go",
		`action="/contact"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestPageSections(t *testing.T) {
	r, catalog, _ := newSite(t)
	ctx := context.Background()

	if _, err := catalog.PersonalInfo.Save(ctx, models.PersonalInfo{Name: "Ada Lovelace", Title: "Engineer", Summary: "Writes **Go**."}); err != nil {
		t.Fatal(err)
	}
	for _, p := range []models.Project{
		{Title: "Pocket Planner", Category: models.ProjectMobile, TechStack: models.StringArray{"Swift", "Kotlin"}},
		{Title: "Status Board", Category: models.ProjectWeb, Featured: true},
	} {
		if _, err := catalog.Projects.Add(ctx, p); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := catalog.Skills.Add(ctx, models.Skill{Name: "Rust", Level: 80, Category: models.SkillBackend}); err != nil {
		t.Fatal(err)
	}
	if _, err := catalog.Timeline.Add(ctx, models.TimelineItem{Type: models.TimelineEducation, Title: "BSc Computer Science"}); err != nil {
		t.Fatal(err)
	}

	body := get(r, "/").Body.String()
	for _, want := range []string{"Ada Lovelace", "<strong>Go</strong>", "Pocket Planner", "Status Board", "Rust", "80%", "BSc Computer Science", "Featured</span>"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}

	cases := []struct {
		query   string
		present string
		absent  string
	}{
		{"?category=web", "Status Board", "Pocket Planner"},
		{"?category=mobile", "Pocket Planner", "Status Board"},
		{"?category=all", "Status Board", ""},
		{"?category=bogus", "Pocket Planner", ""},
	}
	for _, tc := range cases {
		body := get(r, "/"+tc.query).Body.String()
		if !strings.Contains(body, tc.present) {
			t.Errorf("%s: missing %q", tc.query, tc.present)
		}
		if tc.absent != "" && strings.Contains(body, tc.absent) {
			t.Errorf("%s: unexpected %q", tc.query, tc.absent)
		}
	}
}

func TestSectionErrorsDoNotFailPage(t *testing.T) {
	r, catalog, db := newSite(t)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	_ = sqlDB.Close()
	if err := catalog.LoadAll(context.Background()); err == nil {
		t.Fatal("expected load errors")
	}

	w := get(r, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if n := strings.Count(w.Body.String(), `class="section-error"`); n < 5 {
		t.Errorf("section errors = %d, want at least 5", n)
	}
}

func TestFailedMutationKeepsSectionVisible(t *testing.T) {
	r, catalog, _ := newSite(t)
	ctx := context.Background()
	if _, err := catalog.Languages.Add(ctx, models.Language{Name: "Arabic", Proficiency: "Native"}); err != nil {
		t.Fatal(err)
	}
	if err := catalog.Languages.Delete(ctx, "does-not-exist"); err == nil {
		t.Fatal("expected delete of a missing id to fail")
	}

	body := get(r, "/").Body.String()
	if !strings.Contains(body, "Arabic") {
		t.Error("language dropped from the page after a failed delete")
	}
	if strings.Contains(body, `class="section-error"`) {
		t.Error("failed mutation rendered as a section error")
	}
}

func TestNoticeRendered(t *testing.T) {
	r, _, _ := newSite(t)
	body := get(r, "/?kind=error&notice=Boom").Body.String()
	if !strings.Contains(body, `notice-error`) || !strings.Contains(body, "Boom") {
		t.Fatalf("notice not rendered")
	}
	if !strings.Contains(body, "alert(") {
		t.Errorf("notice alert script missing")
	}
}

func TestContactForm(t *testing.T) {
	cases := []struct {
		name     string
		form     url.Values
		wantKind string
		stored   int
	}{
		{"valid", url.Values{"name": {"Grace"}, "email": {"grace@example.com"}, "message": {"Hello there"}}, web.NoticeSuccess, 1},
		{"bad email", url.Values{"name": {"Grace"}, "email": {"nope"}, "message": {"Hello"}}, web.NoticeError, 0},
		{"missing message", url.Values{"name": {"Grace"}, "email": {"grace@example.com"}}, web.NoticeError, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, catalog, _ := newSite(t)
			req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(tc.form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusSeeOther {
				t.Fatalf("status = %d", w.Code)
			}
			loc := w.Header().Get("Location")
			if !strings.HasPrefix(loc, "/?kind="+tc.wantKind+"&notice=") || !strings.HasSuffix(loc, "#contact") {
				t.Errorf("location = %q", loc)
			}
			if got := catalog.Messages.Len(); got != tc.stored {
				t.Errorf("stored = %d, want %d", got, tc.stored)
			}
		})
	}
}

func TestGroupSkills(t *testing.T) {
	groups := GroupSkills([]models.Skill{
		{Name: "Figma", Category: models.SkillDesign},
		{Name: "Go", Category: models.SkillBackend},
		{Name: "Swift", Category: models.SkillMobile},
		{Name: "SQL", Category: models.SkillBackend},
	})
	var got []string
	for _, g := range groups {
		names := make([]string, 0, len(g.Skills))
		for _, s := range g.Skills {
			names = append(names, s.Name)
		}
		got = append(got, string(g.Category)+":"+strings.Join(names, ","))
	}
	want := "mobile:Swift|backend:Go,SQL|design:Figma"
	if strings.Join(got, "|") != want {
		t.Fatalf("groups = %q, want %q", strings.Join(got, "|"), want)
	}
}

func TestSplitTimeline(t *testing.T) {
	exp, edu := SplitTimeline([]models.TimelineItem{
		{Title: "A", Type: models.TimelineExperience},
		{Title: "B", Type: models.TimelineEducation},
		{Title: "C", Type: models.TimelineExperience},
	})
	if len(exp) != 2 || exp[0].Title != "A" || exp[1].Title != "C" {
		t.Errorf("experience = %+v", exp)
	}
	if len(edu) != 1 || edu[0].Title != "B" {
		t.Errorf("education = %+v", edu)
	}
}
