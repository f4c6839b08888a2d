// Package site renders the public portfolio page and accepts the contact form.
package site

import (
	"net/http"

	"github.com/folio-space/folio/internal/config"
	"github.com/folio-space/folio/internal/models"
	"github.com/folio-space/folio/internal/modules/content"
	"github.com/folio-space/folio/internal/repository"
	"github.com/folio-space/folio/internal/web"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const contactAnchor = "/#contact"

type Handler struct {
	catalog *repository.Catalog
	contact *content.ContactService
	site    config.SiteConfig
	logger  *zap.Logger
}

func NewHandler(catalog *repository.Catalog, contact *content.ContactService, site config.SiteConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{catalog: catalog, contact: contact, site: site, logger: logger}
}

// RegisterRoutes mounts the page and the contact form. contactMW runs in
// front of POST /contact.
func (h *Handler) RegisterRoutes(r gin.IRoutes, contactMW ...gin.HandlerFunc) {
	r.GET("/", h.index)
	r.POST("/contact", append(contactMW, h.submitContact)...)
}

// SkillGroup is the skills of one category, in mirror order.
type SkillGroup struct {
	Category models.SkillCategory
	Skills   []models.Skill
}

// Page is the data of index.html. Every section carries the error of its
// collection; a failed section never hides the others.
type Page struct {
	Title  string
	Footer string
	Notice *web.Notice

	Info    *models.PersonalInfo
	InfoErr string

	SkillGroups  []SkillGroup
	SkillsErr    string
	Languages    []models.Language
	LanguagesErr string

	Experience  []models.TimelineItem
	Education   []models.TimelineItem
	TimelineErr string

	Projects    []models.Project
	ProjectsErr string
	Category    string
	Categories  []models.ProjectCategory

	Certificates    []models.Certificate
	CertificatesErr string
}

// BuildPage assembles the page from the catalog mirrors. category filters the
// projects section; unknown values show every project.
func BuildPage(cat *repository.Catalog, site config.SiteConfig, category string) Page {
	p := Page{
		Title:      site.Title,
		Footer:     site.Footer,
		InfoErr:    cat.PersonalInfo.Err(),
		Categories: models.ProjectCategories,

		SkillGroups:  GroupSkills(cat.Skills.Items()),
		SkillsErr:    cat.Skills.Err(),
		Languages:    cat.Languages.Items(),
		LanguagesErr: cat.Languages.Err(),
		TimelineErr:  cat.Timeline.Err(),

		ProjectsErr:     cat.Projects.Err(),
		Certificates:    cat.Certificates.Items(),
		CertificatesErr: cat.Certificates.Err(),
	}
	if info, ok := cat.PersonalInfo.Get(); ok {
		p.Info = &info
	}
	p.Experience, p.Education = SplitTimeline(cat.Timeline.Items())

	projects := cat.Projects.Items()
	if c, err := models.ParseProjectCategory(category); err == nil && category != "" {
		p.Category = string(c)
		projects = content.FilterProjects(projects, p.Category)
	}
	p.Projects = projects
	return p
}

// GroupSkills buckets skills by category in display order and drops empty
// buckets.
func GroupSkills(skills []models.Skill) []SkillGroup {
	byCategory := make(map[models.SkillCategory][]models.Skill, len(models.SkillCategories))
	for _, s := range skills {
		byCategory[s.Category] = append(byCategory[s.Category], s)
	}
	groups := make([]SkillGroup, 0, len(byCategory))
	for _, c := range models.SkillCategories {
		if items := byCategory[c]; len(items) > 0 {
			groups = append(groups, SkillGroup{Category: c, Skills: items})
		}
	}
	return groups
}

// SplitTimeline separates work entries from education entries, keeping order.
func SplitTimeline(items []models.TimelineItem) (experience, education []models.TimelineItem) {
	for _, it := range items {
		switch it.Type {
		case models.TimelineExperience:
			experience = append(experience, it)
		case models.TimelineEducation:
			education = append(education, it)
		}
	}
	return experience, education
}

func (h *Handler) index(c *gin.Context) {
	page := BuildPage(h.catalog, h.site, c.Query("category"))
	page.Notice = web.NoticeFrom(c)
	c.HTML(http.StatusOK, "index.html", page)
}

func (h *Handler) submitContact(c *gin.Context) {
	in := content.ContactInput{
		Name:    c.PostForm("name"),
		Email:   c.PostForm("email"),
		Message: c.PostForm("message"),
	}
	if _, err := h.contact.Submit(c.Request.Context(), in, c.ClientIP()); err != nil {
		if !content.IsValidation(err) {
			h.logger.Error("contact submission failed", zap.Error(err))
		}
		web.RedirectNotice(c, contactAnchor, web.NoticeError, "Failed to send message: "+err.Error())
		return
	}
	web.RedirectNotice(c, contactAnchor, web.NoticeSuccess, "Thank you for your message! I'll get back to you soon.")
}
