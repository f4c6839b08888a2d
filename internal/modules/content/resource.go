package content

import (
	"errors"
	"strings"

	"github.com/folio-space/folio/internal/backend"
	"github.com/folio-space/folio/internal/models"
	"github.com/folio-space/folio/internal/pkg/response"
	"github.com/folio-space/folio/internal/repository"
	"github.com/gin-gonic/gin"
)

// Filter narrows a list read by query parameters. An error answers 400.
type Filter[T any] func(c *gin.Context, items []T) ([]T, error)

// Resource exposes one Collection over REST. Reads come from the mirror;
// writes go through the collection so the mirror stays in step.
type Resource[T models.Record] struct {
	Path string
	// Public mounts the reads on the public group instead of the admin one.
	Public   bool
	NewInput func() Input[T]
	Filter   Filter[T]

	col *repository.Collection[T]
}

func NewResource[T models.Record](col *repository.Collection[T], path string, public bool, newInput func() Input[T], filter Filter[T]) *Resource[T] {
	return &Resource[T]{Path: path, Public: public, NewInput: newInput, Filter: filter, col: col}
}

// RegisterRoutes mounts list/get on read and create/update/delete on admin,
// as far as the collection's capabilities allow.
func (r *Resource[T]) RegisterRoutes(public, admin *gin.RouterGroup) {
	read := admin
	if r.Public {
		read = public
	}
	read.GET(r.Path, r.list)
	read.GET(r.Path+"/:id", r.get)

	caps := r.col.Capabilities()
	if r.NewInput != nil {
		admin.POST(r.Path, r.create)
		if caps.Update {
			admin.PUT(r.Path+"/:id", r.update)
			admin.PATCH(r.Path+"/:id", r.update)
		}
	}
	if caps.Delete {
		admin.DELETE(r.Path+"/:id", r.delete)
	}
}

func (r *Resource[T]) list(c *gin.Context) {
	items := r.col.Items()
	if r.Filter != nil {
		var err error
		if items, err = r.Filter(c, items); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}
	response.List(c, items, r.col.Err())
}

func (r *Resource[T]) get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if rec, ok := r.col.Find(id); ok {
		response.OK(c, rec)
		return
	}
	rec, err := r.col.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rec)
}

func (r *Resource[T]) create(c *gin.Context) {
	in := r.NewInput()
	if err := c.ShouldBindJSON(in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	rec, err := in.Record()
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	saved, err := r.col.Add(c.Request.Context(), rec)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, saved)
}

func (r *Resource[T]) update(c *gin.Context) {
	in := r.NewInput()
	if err := c.ShouldBindJSON(in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	fields, err := in.Fields()
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	saved, err := r.col.Update(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, saved)
}

func (r *Resource[T]) delete(c *gin.Context) {
	if err := r.col.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.NoContent(c)
}

func writeError(c *gin.Context, err error) {
	switch {
	case IsValidation(err):
		response.BadRequest(c, err.Error())
	case errors.Is(err, repository.ErrNotSupported):
		response.MethodNotAllowed(c, err.Error())
	case errors.Is(err, backend.ErrNotFound):
		response.NotFound(c)
	default:
		response.Error(c, err)
	}
}

// projectFilter applies ?category= and ?featured=.
func projectFilter(c *gin.Context, items []models.Project) ([]models.Project, error) {
	rawCategory := strings.TrimSpace(c.Query("category"))
	rawFeatured := strings.TrimSpace(c.Query("featured"))
	if rawCategory == "" && rawFeatured == "" {
		return items, nil
	}

	var category models.ProjectCategory
	if rawCategory != "" && rawCategory != "all" {
		parsed, err := models.ParseProjectCategory(rawCategory)
		if err != nil {
			return nil, invalid("category", "must be one of mobile, web, game")
		}
		category = parsed
	}
	var featured *bool
	switch strings.ToLower(rawFeatured) {
	case "":
	case "1", "true", "yes":
		v := true
		featured = &v
	case "0", "false", "no":
		v := false
		featured = &v
	default:
		return nil, invalid("featured", "must be true or false")
	}

	out := make([]models.Project, 0, len(items))
	for _, p := range items {
		if category != "" && p.Category != category {
			continue
		}
		if featured != nil && p.Featured != *featured {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// FilterProjects keeps the projects of one category. "" and "all" keep everything.
func FilterProjects(items []models.Project, category string) []models.Project {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" || category == "all" {
		return items
	}
	out := make([]models.Project, 0, len(items))
	for _, p := range items {
		if string(p.Category) == category {
			out = append(out, p)
		}
	}
	return out
}
