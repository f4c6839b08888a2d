package admin

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/folio-space/folio/internal/auth"
	"github.com/folio-space/folio/internal/backend/blob"
	"github.com/folio-space/folio/internal/backend/gormstore"
	"github.com/folio-space/folio/internal/backend/identity"
	"github.com/folio-space/folio/internal/config"
	"github.com/folio-space/folio/internal/models"
	"github.com/folio-space/folio/internal/modules/files"
	"github.com/folio-space/folio/internal/pkg/jwt"
	"github.com/folio-space/folio/internal/repository"
	"github.com/folio-space/folio/internal/web"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const (
	ownerEmail    = "owner@example.com"
	ownerPassword = "correct-horse"
)

type shell struct {
	router   *gin.Engine
	catalog  *repository.Catalog
	provider *identity.Provider
	cookie   *http.Cookie
}

func newShell(t *testing.T) *shell {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := gormstore.Connect(config.DatabaseConfig{Driver: config.DriverSQLite, DSN: ":memory:"}, false)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	signer, err := jwt.New("test-secret")
	if err != nil {
		t.Fatal(err)
	}
	users, sessions := gormstore.AccountTables(db)
	provider := identity.New(users, sessions, signer, identity.Options{SessionTTL: time.Hour, BcryptCost: bcrypt.MinCost})

	catalog := repository.NewCatalog(gormstore.CatalogTables(db), repository.Options{})
	if err := catalog.LoadAll(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	r := gin.New()
	r.SetHTMLTemplate(web.MustTemplates())
	r.Use(auth.Middleware(provider, nil))
	NewHandler(Deps{
		Catalog:  catalog,
		Accounts: provider,
		Uploader: files.NewUploader(blob.NewLocal(t.TempDir(), ""), 1<<20),
		Site:     config.SiteConfig{Title: "Portfolio"},
	}).RegisterRoutes(r)
	return &shell{router: r, catalog: catalog, provider: provider}
}

func (s *shell) serve(req *http.Request) *httptest.ResponseRecorder {
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *shell) get(path string) *httptest.ResponseRecorder {
	return s.serve(httptest.NewRequest(http.MethodGet, path, nil))
}

func (s *shell) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.serve(req)
}

// signIn creates the owner through the setup form and keeps its cookie.
func (s *shell) signIn(t *testing.T) {
	t.Helper()
	w := s.post("/admin/setup", url.Values{"email": {ownerEmail}, "password": {ownerPassword}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("setup = %d %s", w.Code, w.Body)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName && c.Value != "" {
			s.cookie = c
		}
	}
	if s.cookie == nil {
		t.Fatal("setup did not set the session cookie")
	}
}

// notice decodes the notice carried by a redirect.
func notice(t *testing.T, w *httptest.ResponseRecorder) (kind, text string) {
	t.Helper()
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303 (%s)", w.Code, w.Body)
	}
	u, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	return u.Query().Get("kind"), u.Query().Get("notice")
}

func TestDashboardRequiresSession(t *testing.T) {
	s := newShell(t)
	w := s.get("/admin?tab=skills")
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/admin/login?next=%2Fadmin%3Ftab%3Dskills" {
		t.Errorf("location = %q", loc)
	}
	w = s.post("/admin/skills", url.Values{"name": {"Go"}})
	if w.Code != http.StatusFound || s.catalog.Skills.Len() != 0 {
		t.Errorf("unauthenticated add: status %d, skills %d", w.Code, s.catalog.Skills.Len())
	}
}

func TestSetupAndLogin(t *testing.T) {
	s := newShell(t)
	if body := s.get("/admin/login").Body.String(); !strings.Contains(body, `action="/admin/setup"`) {
		t.Fatal("login page should offer owner setup")
	}
	s.signIn(t)
	s.cookie = nil

	if body := s.get("/admin/login").Body.String(); !strings.Contains(body, `action="/admin/login"`) {
		t.Fatal("login page should offer sign in once the owner exists")
	}
	w := s.post("/admin/setup", url.Values{"email": {"second@example.com"}, "password": {ownerPassword}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("second setup = %d", w.Code)
	}

	w = s.post("/admin/login", url.Values{"email": {ownerEmail}, "password": {"wrong"}})
	if w.Code != http.StatusUnauthorized || !strings.Contains(w.Body.String(), "Invalid email or password") {
		t.Fatalf("bad login = %d", w.Code)
	}

	w = s.post("/admin/login", url.Values{"email": {ownerEmail}, "password": {ownerPassword}, "next": {"/admin?tab=skills"}})
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/admin?tab=skills" {
		t.Fatalf("login = %d %q", w.Code, w.Header().Get("Location"))
	}
	w = s.post("/admin/login", url.Values{"email": {ownerEmail}, "password": {ownerPassword}, "next": {"//evil.example.com"}})
	if loc := w.Header().Get("Location"); loc != "/admin" {
		t.Errorf("open redirect: %q", loc)
	}
}

func TestLogout(t *testing.T) {
	s := newShell(t)
	s.signIn(t)
	if w := s.get("/admin"); w.Code != http.StatusOK {
		t.Fatalf("dashboard = %d", w.Code)
	}
	w := s.post("/admin/logout", nil)
	if kind, _ := notice(t, w); kind != web.NoticeSuccess {
		t.Errorf("logout notice kind = %q", kind)
	}
	if w := s.get("/admin"); w.Code != http.StatusFound {
		t.Errorf("dashboard after logout = %d", w.Code)
	}
}

func TestSectionMutations(t *testing.T) {
	s := newShell(t)
	s.signIn(t)

	cases := []struct {
		name     string
		path     string
		form     url.Values
		wantKind string
		wantText string
	}{
		{"add project", "/admin/projects",
			url.Values{"title": {"Pocket Planner"}, "tech_stack": {"Swift, Kotlin"}, "category": {"mobile"}, "featured": {"on"}},
			web.NoticeSuccess, "Project added successfully!"},
		{"add project without title", "/admin/projects", url.Values{"description": {"x"}},
			web.NoticeError, "Failed to add project: title: is required"},
		{"add certificate", "/admin/certificates", url.Values{"name": {"CKA"}, "issuer": {"CNCF"}, "date": {"2024-05-01"}},
			web.NoticeSuccess, "Certificate added successfully!"},
		{"add skill", "/admin/skills", url.Values{"name": {"Rust"}, "level": {"80"}, "category": {"backend"}},
			web.NoticeSuccess, "Skill added successfully!"},
		{"skill level not a number", "/admin/skills", url.Values{"name": {"Rust"}, "level": {"high"}, "category": {"backend"}},
			web.NoticeError, "Failed to add skill: level: must be a number"},
		{"skill level out of range", "/admin/skills", url.Values{"name": {"Rust"}, "level": {"120"}, "category": {"backend"}},
			web.NoticeError, "Failed to add skill: level: must be between 0 and 100"},
		{"add timeline", "/admin/timeline",
			url.Values{"type": {"experience"}, "title": {"Engineer"}, "description": {"Built apps\r\nShipped releases\n"}, "technologies": {"Go,  SQL"}},
			web.NoticeSuccess, "Timeline entry added successfully!"},
		{"add language", "/admin/languages", url.Values{"name": {"German"}, "proficiency": {"Fluent"}},
			web.NoticeSuccess, "Language added successfully!"},
		{"messages cannot be added", "/admin/messages", url.Values{"name": {"x"}},
			web.NoticeError, "Failed to add message: operation not supported"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, text := notice(t, s.post(tc.path, tc.form))
			if kind != tc.wantKind || text != tc.wantText {
				t.Errorf("notice = %s %q, want %s %q", kind, text, tc.wantKind, tc.wantText)
			}
		})
	}

	projects := s.catalog.Projects.Items()
	if len(projects) != 1 || !reflect.DeepEqual(projects[0].TechStack, models.StringArray{"Swift", "Kotlin"}) || !projects[0].Featured {
		t.Errorf("projects = %+v", projects)
	}
	if skills := s.catalog.Skills.Items(); len(skills) != 1 || skills[0].Level != 80 {
		t.Errorf("skills = %+v", skills)
	}
	timeline := s.catalog.Timeline.Items()
	if len(timeline) != 1 ||
		!reflect.DeepEqual(timeline[0].Description, models.StringArray{"Built apps", "Shipped releases"}) ||
		!reflect.DeepEqual(timeline[0].Technologies, models.StringArray{"Go", "SQL"}) {
		t.Errorf("timeline = %+v", timeline)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	s := newShell(t)
	s.signIn(t)
	ctx := context.Background()
	lang, err := s.catalog.Languages.Add(ctx, models.Language{Name: "German", Proficiency: "Basic"})
	if err != nil {
		t.Fatal(err)
	}
	other, err := s.catalog.Languages.Add(ctx, models.Language{Name: "French", Proficiency: "Basic"})
	if err != nil {
		t.Fatal(err)
	}

	kind, text := notice(t, s.post("/admin/languages/"+lang.ID, url.Values{"name": {"German"}, "proficiency": {"Business Fluent"}}))
	if kind != web.NoticeSuccess || text != "Language updated successfully!" {
		t.Fatalf("update notice = %s %q", kind, text)
	}
	if got, _ := s.catalog.Languages.Find(lang.ID); got.Proficiency != "Business Fluent" {
		t.Errorf("proficiency = %q", got.Proficiency)
	}

	kind, _ = notice(t, s.post("/admin/languages/missing-id/delete", nil))
	if kind != web.NoticeError || s.catalog.Languages.Len() != 2 {
		t.Errorf("delete missing: kind %q, len %d", kind, s.catalog.Languages.Len())
	}
	tab := s.get("/admin?tab=languages").Body.String()
	if !strings.Contains(tab, "Last change failed:") || strings.Contains(tab, `class="section-error"`) {
		t.Errorf("languages tab after failed delete:\n%s", tab)
	}

	kind, text = notice(t, s.post("/admin/languages/"+lang.ID+"/delete", nil))
	if kind != web.NoticeSuccess || text != "Language deleted successfully!" {
		t.Fatalf("delete notice = %s %q", kind, text)
	}
	items := s.catalog.Languages.Items()
	if len(items) != 1 || items[0].ID != other.ID {
		t.Errorf("languages after delete = %+v", items)
	}

	kind, _ = notice(t, s.post("/admin/widgets", nil))
	if kind != web.NoticeError {
		t.Errorf("unknown section kind = %q", kind)
	}
}

func TestDashboardTabs(t *testing.T) {
	s := newShell(t)
	s.signIn(t)
	skill, err := s.catalog.Skills.Add(context.Background(), models.Skill{Name: "Kotlin", Level: 70, Category: models.SkillMobile})
	if err != nil {
		t.Fatal(err)
	}

	for _, tab := range Tabs {
		w := s.get("/admin?tab=" + tab.Key)
		if w.Code != http.StatusOK {
			t.Errorf("tab %s = %d", tab.Key, w.Code)
		}
	}

	body := s.get("/admin?tab=skills&edit=" + skill.ID).Body.String()
	for _, want := range []string{`action="/admin/skills/` + skill.ID + `"`, `value="Kotlin"`, `value="mobile" selected`, ownerEmail} {
		if !strings.Contains(body, want) {
			t.Errorf("edit form missing %q", want)
		}
	}
	overview := s.get("/admin?tab=bogus").Body.String()
	if !strings.Contains(overview, "Reload all data") {
		t.Error("unknown tab should fall back to overview")
	}
}

func TestProfileWithUpload(t *testing.T) {
	s := newShell(t)
	s.signIn(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("name", "Ada Lovelace")
	_ = mw.WriteField("email", "ada@example.com")
	_ = mw.WriteField("profile_image", "https://example.com/old.png")
	fw, err := mw.CreateFormFile("profile_image_file", "me.png")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/admin/profile", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	kind, text := notice(t, s.serve(req))
	if kind != web.NoticeSuccess || text != "Profile updated successfully!" {
		t.Fatalf("notice = %s %q", kind, text)
	}
	info, ok := s.catalog.PersonalInfo.Get()
	if !ok || info.Name != "Ada Lovelace" || !strings.HasPrefix(info.ProfileImage, "/uploads/") {
		t.Fatalf("profile = %+v", info)
	}

	kind, _ = notice(t, s.post("/admin/profile", url.Values{"name": {""}}))
	if kind != web.NoticeError {
		t.Errorf("empty name kind = %q", kind)
	}
}

func TestRefresh(t *testing.T) {
	s := newShell(t)
	s.signIn(t)
	kind, text := notice(t, s.post("/admin/refresh", nil))
	if kind != web.NoticeSuccess || text != "Data reloaded successfully!" {
		t.Errorf("notice = %s %q", kind, text)
	}
}
