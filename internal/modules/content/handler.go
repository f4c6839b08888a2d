// Package content serves the portfolio collections over the JSON API.
package content

import (
	"context"
	"errors"

	"github.com/folio-space/folio/internal/models"
	"github.com/folio-space/folio/internal/pkg/response"
	"github.com/folio-space/folio/internal/repository"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	catalog *repository.Catalog
	contact *ContactService
	refresh func(ctx context.Context) error

	projects     *Resource[models.Project]
	certificates *Resource[models.Certificate]
	skills       *Resource[models.Skill]
	timeline     *Resource[models.TimelineItem]
	languages    *Resource[models.Language]
	messages     *Resource[models.ContactMessage]
}

// NewHandler wires a resource per collection. refresh reloads the catalog;
// nil selects catalog.LoadAll.
func NewHandler(catalog *repository.Catalog, contact *ContactService, refresh func(ctx context.Context) error) *Handler {
	if refresh == nil {
		refresh = catalog.LoadAll
	}
	return &Handler{
		catalog: catalog,
		contact: contact,
		refresh: refresh,

		projects: NewResource(catalog.Projects, "/projects", true,
			func() Input[models.Project] { return &ProjectInput{} }, projectFilter),
		certificates: NewResource(catalog.Certificates, "/certificates", true,
			func() Input[models.Certificate] { return &CertificateInput{} }, nil),
		skills: NewResource(catalog.Skills, "/skills", true,
			func() Input[models.Skill] { return &SkillInput{} }, nil),
		timeline: NewResource(catalog.Timeline, "/timeline", true,
			func() Input[models.TimelineItem] { return &TimelineInput{} }, nil),
		languages: NewResource(catalog.Languages, "/languages", true,
			func() Input[models.Language] { return &LanguageInput{} }, nil),
		messages: NewResource[models.ContactMessage](catalog.Messages, "/messages", false, nil, nil),
	}
}

// RegisterRoutes mounts reads and the contact form on public and every
// mutation on admin. contactMW runs in front of POST /contact.
func (h *Handler) RegisterRoutes(public, admin *gin.RouterGroup, contactMW ...gin.HandlerFunc) {
	h.projects.RegisterRoutes(public, admin)
	h.certificates.RegisterRoutes(public, admin)
	h.skills.RegisterRoutes(public, admin)
	h.timeline.RegisterRoutes(public, admin)
	h.languages.RegisterRoutes(public, admin)
	h.messages.RegisterRoutes(public, admin)

	public.GET("/personal-info", h.getPersonalInfo)
	admin.PUT("/personal-info", h.putPersonalInfo)

	public.GET("/aggregate", h.aggregate)
	admin.GET("/overview", h.overview)
	admin.POST("/catalog/refresh", h.refreshCatalog)

	public.POST("/contact", append(contactMW, h.submitContact)...)
}

func (h *Handler) getPersonalInfo(c *gin.Context) {
	info, ok := h.catalog.PersonalInfo.Get()
	if !ok {
		if msg := h.catalog.PersonalInfo.Err(); msg != "" {
			response.InternalError(c, errors.New(msg))
			return
		}
		response.NotFound(c)
		return
	}
	response.OK(c, info)
}

func (h *Handler) putPersonalInfo(c *gin.Context) {
	var in PersonalInfoInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	rec, err := in.Record()
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	saved, err := h.catalog.PersonalInfo.Save(c.Request.Context(), rec)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, saved)
}

type aggregateResponse struct {
	PersonalInfo *models.PersonalInfo  `json:"personal_info"`
	Projects     []models.Project      `json:"projects"`
	Certificates []models.Certificate  `json:"certificates"`
	Skills       []models.Skill        `json:"skills"`
	Timeline     []models.TimelineItem `json:"timeline"`
	Languages    []models.Language     `json:"languages"`
	// Errors maps a collection name to the message of its last failed load.
	Errors map[string]string `json:"errors,omitempty"`
}

func (h *Handler) aggregate(c *gin.Context) {
	cat := h.catalog
	out := aggregateResponse{
		Projects:     cat.Projects.Items(),
		Certificates: cat.Certificates.Items(),
		Skills:       cat.Skills.Items(),
		Timeline:     cat.Timeline.Items(),
		Languages:    cat.Languages.Items(),
	}
	if info, ok := cat.PersonalInfo.Get(); ok {
		out.PersonalInfo = &info
	}

	errs := map[string]string{}
	for name, msg := range map[string]string{
		cat.Projects.Name():     cat.Projects.Err(),
		cat.Certificates.Name(): cat.Certificates.Err(),
		cat.Skills.Name():       cat.Skills.Err(),
		cat.Timeline.Name():     cat.Timeline.Err(),
		cat.Languages.Name():    cat.Languages.Err(),
		cat.PersonalInfo.Name(): cat.PersonalInfo.Err(),
	} {
		if msg != "" {
			errs[name] = msg
		}
	}
	if len(errs) > 0 {
		out.Errors = errs
	}
	response.OK(c, out)
}

func (h *Handler) overview(c *gin.Context) {
	response.OK(c, h.catalog.Overview())
}

func (h *Handler) refreshCatalog(c *gin.Context) {
	if err := h.refresh(c.Request.Context()); err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, h.catalog.Overview())
}

func (h *Handler) submitContact(c *gin.Context) {
	var in ContactInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	saved, err := h.contact.Submit(c.Request.Context(), in, c.ClientIP())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, gin.H{"id": saved.ID, "created_at": saved.CreatedAt})
}
