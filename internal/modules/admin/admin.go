// Package admin serves the server-rendered admin shell: sign-in, owner
// setup and the tabbed dashboard that edits every portfolio collection.
package admin

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/folio-space/folio/internal/auth"
	"github.com/folio-space/folio/internal/config"
	"github.com/folio-space/folio/internal/models"
	"github.com/folio-space/folio/internal/modules/content"
	"github.com/folio-space/folio/internal/modules/files"
	"github.com/folio-space/folio/internal/pkg/cron"
	"github.com/folio-space/folio/internal/repository"
	"github.com/folio-space/folio/internal/web"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	basePath  = "/admin"
	loginPath = "/admin/login"
)

// Accounts is the owner account store. *identity.Provider implements it.
type Accounts interface {
	HasOwner(ctx context.Context) (bool, error)
	Register(ctx context.Context, email, password string) (*models.AdminUser, error)
}

// Jobs lists the background jobs shown on the overview tab.
type Jobs interface {
	List() []cron.ListItem
}

// Deps are the collaborators of the admin shell. Uploader, Jobs and Refresh
// are optional.
type Deps struct {
	Catalog      *repository.Catalog
	Accounts     Accounts
	Uploader     *files.Uploader
	Jobs         Jobs
	Refresh      func(ctx context.Context) error
	Site         config.SiteConfig
	SecureCookie bool
	Logger       *zap.Logger
}

type Handler struct {
	Deps
	sections map[string]section
}

func NewHandler(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Refresh == nil {
		d.Refresh = d.Catalog.LoadAll
	}
	cat := d.Catalog
	return &Handler{
		Deps: d,
		sections: map[string]section{
			"projects":     &collectionSection[models.Project]{name: "project", col: cat.Projects, parse: projectForm},
			"certificates": &collectionSection[models.Certificate]{name: "certificate", col: cat.Certificates, parse: certificateForm},
			"skills":       &collectionSection[models.Skill]{name: "skill", col: cat.Skills, parse: skillForm},
			"timeline":     &collectionSection[models.TimelineItem]{name: "timeline entry", col: cat.Timeline, parse: timelineForm},
			"languages":    &collectionSection[models.Language]{name: "language", col: cat.Languages, parse: languageForm},
			"messages":     &collectionSection[models.ContactMessage]{name: "message", col: cat.Messages},
		},
	}
}

// RegisterRoutes mounts the shell under /admin. Everything but sign-in and
// setup is gated by the session.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	g := r.Group(basePath)
	g.GET("/login", h.loginPage)
	g.POST("/login", h.login)
	g.POST("/setup", h.setup)
	g.POST("/logout", h.logout)

	p := g.Group("", auth.RequirePage(loginPath))
	p.GET("", h.dashboard)
	p.POST("/refresh", h.refresh)
	p.POST("/profile", h.saveProfile)
	p.POST("/:collection", h.add)
	p.POST("/:collection/:id", h.update)
	p.POST("/:collection/:id/delete", h.remove)
}

// Tab is one entry of the dashboard navigation.
type Tab struct {
	Key   string
	Label string
}

var Tabs = []Tab{
	{"overview", "Overview"},
	{"projects", "Projects"},
	{"certificates", "Certificates"},
	{"skills", "Skills"},
	{"timeline", "Timeline"},
	{"languages", "Languages"},
	{"profile", "Profile"},
	{"messages", "Messages"},
}

func validTab(key string) bool {
	for _, t := range Tabs {
		if t.Key == key {
			return true
		}
	}
	return false
}

func tabPath(key string) string { return basePath + "?tab=" + key }

// LoginPage is the data of login.html.
type LoginPage struct {
	Title         string
	Notice        *web.Notice
	Error         string
	Email         string
	Next          string
	SetupRequired bool
}

// DashboardPage is the data of admin.html.
type DashboardPage struct {
	Title  string
	Tab    string
	Tabs   []Tab
	Notice *web.Notice
	Email  string
	// Err is the last load error of the collection behind the current tab,
	// ChangeErr its last failed mutation.
	Err       string
	ChangeErr string

	Overview     repository.Overview
	Jobs         []cron.ListItem
	Projects     []models.Project
	Certificates []models.Certificate
	Skills       []models.Skill
	Timeline     []models.TimelineItem
	Languages    []models.Language
	Messages     []models.ContactMessage
	Profile      models.PersonalInfo

	EditProject     *models.Project
	EditCertificate *models.Certificate
	EditSkill       *models.Skill
	EditTimeline    *models.TimelineItem
	EditLanguage    *models.Language

	ProjectCategories []models.ProjectCategory
	SkillCategories   []models.SkillCategory
	Proficiencies     []string
}

func (h *Handler) setupRequired(ctx context.Context) bool {
	has, err := h.Accounts.HasOwner(ctx)
	if err != nil {
		h.Logger.Warn("owner lookup failed", zap.Error(err))
		return false
	}
	return !has
}

func (h *Handler) renderLogin(c *gin.Context, status int, page LoginPage) {
	page.Title = h.Site.Title
	page.SetupRequired = h.setupRequired(c.Request.Context())
	c.HTML(status, "login.html", page)
}

func (h *Handler) loginPage(c *gin.Context) {
	next := web.SafeNext(c.Query("next"), basePath)
	if auth.FromContext(c).Authenticated() {
		c.Redirect(http.StatusSeeOther, next)
		return
	}
	h.renderLogin(c, http.StatusOK, LoginPage{Notice: web.NoticeFrom(c), Next: next})
}

func (h *Handler) login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	next := web.SafeNext(c.PostForm("next"), basePath)
	state := auth.FromContext(c)
	if !state.Login(c.Request.Context(), email, c.PostForm("password")) {
		h.renderLogin(c, http.StatusUnauthorized, LoginPage{Error: "Invalid email or password", Email: email, Next: next})
		return
	}
	auth.SetCookie(c, state.Session(), h.SecureCookie)
	c.Redirect(http.StatusSeeOther, next)
}

func (h *Handler) setup(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	if _, err := h.Accounts.Register(c.Request.Context(), email, password); err != nil {
		h.renderLogin(c, http.StatusBadRequest, LoginPage{Error: "Failed to create account: " + err.Error(), Email: email})
		return
	}
	h.Logger.Info("owner account created", zap.String("email", email))

	state := auth.FromContext(c)
	if !state.Login(c.Request.Context(), email, password) {
		web.RedirectNotice(c, loginPath, web.NoticeSuccess, "Account created, please sign in.")
		return
	}
	auth.SetCookie(c, state.Session(), h.SecureCookie)
	web.RedirectNotice(c, basePath, web.NoticeSuccess, "Account created successfully!")
}

func (h *Handler) logout(c *gin.Context) {
	auth.FromContext(c).Logout(c.Request.Context())
	auth.ClearCookie(c, h.SecureCookie)
	web.RedirectNotice(c, loginPath, web.NoticeSuccess, "Signed out.")
}

func (h *Handler) dashboard(c *gin.Context) {
	tab := c.DefaultQuery("tab", "overview")
	if !validTab(tab) {
		tab = "overview"
	}
	cat := h.Catalog
	page := DashboardPage{
		Title:             h.Site.Title,
		Tab:               tab,
		Tabs:              Tabs,
		Notice:            web.NoticeFrom(c),
		Overview:          cat.Overview(),
		Projects:          cat.Projects.Items(),
		Certificates:      cat.Certificates.Items(),
		Skills:            cat.Skills.Items(),
		Timeline:          cat.Timeline.Items(),
		Languages:         cat.Languages.Items(),
		Messages:          cat.Messages.Items(),
		ProjectCategories: models.ProjectCategories,
		SkillCategories:   models.SkillCategories,
		Proficiencies:     models.Proficiencies,
	}
	if sess := auth.FromContext(c).Session(); sess != nil {
		page.Email = sess.Email
	}
	if h.Jobs != nil {
		page.Jobs = h.Jobs.List()
	}
	if info, ok := cat.PersonalInfo.Get(); ok {
		page.Profile = info
	}

	edit := c.Query("edit")
	switch tab {
	case "projects":
		page.Err, page.ChangeErr = cat.Projects.Err(), cat.Projects.ChangeErr()
		page.EditProject = find(cat.Projects, edit)
	case "certificates":
		page.Err, page.ChangeErr = cat.Certificates.Err(), cat.Certificates.ChangeErr()
		page.EditCertificate = find(cat.Certificates, edit)
	case "skills":
		page.Err, page.ChangeErr = cat.Skills.Err(), cat.Skills.ChangeErr()
		page.EditSkill = find(cat.Skills, edit)
	case "timeline":
		page.Err, page.ChangeErr = cat.Timeline.Err(), cat.Timeline.ChangeErr()
		page.EditTimeline = find(cat.Timeline, edit)
	case "languages":
		page.Err, page.ChangeErr = cat.Languages.Err(), cat.Languages.ChangeErr()
		page.EditLanguage = find(cat.Languages, edit)
	case "messages":
		page.Err, page.ChangeErr = cat.Messages.Err(), cat.Messages.ChangeErr()
	case "profile":
		page.Err, page.ChangeErr = cat.PersonalInfo.Err(), cat.PersonalInfo.ChangeErr()
	}
	c.HTML(http.StatusOK, "admin.html", page)
}

func find[T models.Record](col *repository.Collection[T], id string) *T {
	if id == "" {
		return nil
	}
	if rec, ok := col.Find(id); ok {
		return &rec
	}
	return nil
}

func (h *Handler) section(c *gin.Context) (string, section, bool) {
	key := c.Param("collection")
	s, ok := h.sections[key]
	if !ok {
		web.RedirectNotice(c, basePath, web.NoticeError, "Unknown section "+key)
	}
	return key, s, ok
}

func (h *Handler) add(c *gin.Context) {
	key, s, ok := h.section(c)
	if !ok {
		return
	}
	h.finish(c, key, s.noun(), "add", "added", s.add(c, h.Uploader))
}

func (h *Handler) update(c *gin.Context) {
	key, s, ok := h.section(c)
	if !ok {
		return
	}
	h.finish(c, key, s.noun(), "update", "updated", s.update(c, h.Uploader, c.Param("id")))
}

func (h *Handler) remove(c *gin.Context) {
	key, s, ok := h.section(c)
	if !ok {
		return
	}
	h.finish(c, key, s.noun(), "delete", "deleted", s.remove(c.Request.Context(), c.Param("id")))
}

// finish redirects back to the tab with the outcome of a mutation.
func (h *Handler) finish(c *gin.Context, tab, noun, verb, past string, err error) {
	if err != nil {
		if !IsUserError(err) {
			h.Logger.Error("admin "+verb+" failed", zap.String("collection", tab), zap.Error(err))
		}
		web.RedirectNotice(c, tabPath(tab), web.NoticeError, "Failed to "+verb+" "+noun+": "+err.Error())
		return
	}
	web.RedirectNotice(c, tabPath(tab), web.NoticeSuccess, capitalize(noun)+" "+past+" successfully!")
}

func (h *Handler) saveProfile(c *gin.Context) {
	in, err := profileForm(c, h.Uploader)
	if err == nil {
		var rec models.PersonalInfo
		if rec, err = in.Record(); err == nil {
			_, err = h.Catalog.PersonalInfo.Save(c.Request.Context(), rec)
		}
	}
	h.finish(c, "profile", "profile", "update", "updated", err)
}

func (h *Handler) refresh(c *gin.Context) {
	if err := h.Refresh(c.Request.Context()); err != nil {
		h.Logger.Error("catalog refresh failed", zap.Error(err))
		web.RedirectNotice(c, tabPath("overview"), web.NoticeError, "Failed to reload data: "+err.Error())
		return
	}
	web.RedirectNotice(c, tabPath("overview"), web.NoticeSuccess, "Data reloaded successfully!")
}

// IsUserError reports whether err was caused by the submitted form rather
// than a backend failure.
func IsUserError(err error) bool {
	return content.IsValidation(err) || files.IsClientError(err) || errors.Is(err, repository.ErrNotSupported) || errors.Is(err, errUploadsDisabled)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
