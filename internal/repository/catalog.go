package repository

import (
	"context"
	"errors"

	"github.com/folio-space/folio/internal/backend"
	"github.com/folio-space/folio/internal/models"
)

// Tables are the backend tables a Catalog mirrors.
type Tables struct {
	Projects     backend.Table[models.Project]
	Certificates backend.Table[models.Certificate]
	Skills       backend.Table[models.Skill]
	Timeline     backend.Table[models.TimelineItem]
	Languages    backend.Table[models.Language]
	Messages     backend.Table[models.ContactMessage]
	PersonalInfo backend.Table[models.PersonalInfo]
}

// Natural orderings of each collection.
var (
	ProjectOrder     = backend.Order{Column: "created_at", Desc: true}
	CertificateOrder = backend.Order{Column: "date", Desc: true}
	SkillOrder       = backend.Order{Column: "level", Desc: true}
	TimelineOrder    = backend.Order{Column: "period", Desc: true}
	LanguageOrder    = backend.Order{Column: "created_at", Desc: true}
	MessageOrder     = backend.Order{Column: "created_at", Desc: true}
)

// MessageWindow is how many of the newest contact messages stay mirrored.
const MessageWindow = 500

// Catalog groups the mirrors of every portfolio collection.
type Catalog struct {
	Projects     *Collection[models.Project]
	Certificates *Collection[models.Certificate]
	Skills       *Collection[models.Skill]
	Timeline     *Collection[models.TimelineItem]
	Languages    *Collection[models.Language]
	Messages     *Collection[models.ContactMessage]
	PersonalInfo *Singleton[models.PersonalInfo]
}

func NewCatalog(t Tables, opts Options) *Catalog {
	return &Catalog{
		Projects:     NewCollection(t.Projects, ProjectOrder, FullAccess, opts),
		Certificates: NewCollection(t.Certificates, CertificateOrder, FullAccess, opts),
		Skills:       NewCollection(t.Skills, SkillOrder, FullAccess, opts),
		Timeline:     NewCollection(t.Timeline, TimelineOrder, FullAccess, opts),
		Languages:    NewCollection(t.Languages, LanguageOrder, FullAccess, opts),
		Messages:     NewCollection(t.Messages, MessageOrder, Capabilities{Delete: true}, opts).WithLimit(MessageWindow),
		PersonalInfo: NewSingleton(t.PersonalInfo, opts),
	}
}

// LoadAll reloads every collection. Each one loads independently; the
// returned error joins every failure.
func (c *Catalog) LoadAll(ctx context.Context) error {
	loaders := []func(context.Context) error{
		c.PersonalInfo.Load,
		c.Projects.Load,
		c.Certificates.Load,
		c.Skills.Load,
		c.Timeline.Load,
		c.Languages.Load,
		c.Messages.Load,
	}
	var errs []error
	for _, load := range loaders {
		if err := load(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Overview are the counters shown on the admin landing tab.
type Overview struct {
	Projects     int `json:"projects"`
	Featured     int `json:"featured"`
	Certificates int `json:"certificates"`
	Skills       int `json:"skills"`
	Timeline     int `json:"timeline"`
	Languages    int `json:"languages"`
	Messages     int `json:"messages"`
}

func (c *Catalog) Overview() Overview {
	featured := 0
	for _, p := range c.Projects.Items() {
		if p.Featured {
			featured++
		}
	}
	return Overview{
		Projects:     c.Projects.Len(),
		Featured:     featured,
		Certificates: c.Certificates.Len(),
		Skills:       c.Skills.Len(),
		Timeline:     c.Timeline.Len(),
		Languages:    c.Languages.Len(),
		Messages:     c.Messages.Len(),
	}
}
