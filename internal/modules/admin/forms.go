package admin

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/folio-space/folio/internal/models"
	"github.com/folio-space/folio/internal/modules/content"
	"github.com/folio-space/folio/internal/modules/files"
	"github.com/folio-space/folio/internal/repository"
	"github.com/gin-gonic/gin"
)

var errUploadsDisabled = errors.New("file uploads are not configured")

// field returns the posted value of key, or nil when the form lacks it.
func field(c *gin.Context, key string) *string {
	if v, ok := c.GetPostForm(key); ok {
		return &v
	}
	return nil
}

// listField splits a posted value into an ordered list.
func listField(c *gin.Context, key string, split func(string) models.StringArray) *models.StringArray {
	v, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	items := split(v)
	return &items
}

func commaList(s string) models.StringArray { return models.SplitList(s, ",") }

// imageField prefers an uploaded file over the URL typed into urlKey.
func imageField(c *gin.Context, uploader *files.Uploader, urlKey, fileKey string) (*string, error) {
	if fh, err := c.FormFile(fileKey); err == nil && fh.Size > 0 {
		if uploader == nil {
			return nil, errUploadsDisabled
		}
		url, err := uploader.Save(c.Request.Context(), fh)
		if err != nil {
			return nil, err
		}
		return &url, nil
	}
	return field(c, urlKey), nil
}

// formParser turns a posted form into the collection input.
type formParser[T any] func(c *gin.Context, uploader *files.Uploader) (content.Input[T], error)

func projectForm(c *gin.Context, uploader *files.Uploader) (content.Input[models.Project], error) {
	image, err := imageField(c, uploader, "image_url", "image_file")
	if err != nil {
		return nil, err
	}
	featured := c.PostForm("featured") != ""
	return &content.ProjectInput{
		Title:        field(c, "title"),
		Description:  field(c, "description"),
		TechStack:    listField(c, "tech_stack", commaList),
		GithubURL:    field(c, "github_url"),
		DemoURL:      field(c, "demo_url"),
		AppStoreURL:  field(c, "app_store_url"),
		PlayStoreURL: field(c, "play_store_url"),
		ImageURL:     image,
		Featured:     &featured,
		Category:     field(c, "category"),
	}, nil
}

func certificateForm(c *gin.Context, uploader *files.Uploader) (content.Input[models.Certificate], error) {
	image, err := imageField(c, uploader, "image_url", "image_file")
	if err != nil {
		return nil, err
	}
	return &content.CertificateInput{
		Name:          field(c, "name"),
		Issuer:        field(c, "issuer"),
		Date:          field(c, "date"),
		CredentialURL: field(c, "credential_url"),
		ImageURL:      image,
	}, nil
}

func skillForm(c *gin.Context, _ *files.Uploader) (content.Input[models.Skill], error) {
	in := &content.SkillInput{
		Name:     field(c, "name"),
		Category: field(c, "category"),
	}
	if raw, ok := c.GetPostForm("level"); ok {
		level, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, &content.ValidationError{Field: "level", Msg: "must be a number"}
		}
		in.Level = &level
	}
	return in, nil
}

func timelineForm(c *gin.Context, _ *files.Uploader) (content.Input[models.TimelineItem], error) {
	return &content.TimelineInput{
		Type:         field(c, "type"),
		Title:        field(c, "title"),
		Organization: field(c, "organization"),
		Location:     field(c, "location"),
		Period:       field(c, "period"),
		Description:  listField(c, "description", models.SplitLines),
		Technologies: listField(c, "technologies", commaList),
	}, nil
}

func languageForm(c *gin.Context, _ *files.Uploader) (content.Input[models.Language], error) {
	return &content.LanguageInput{
		Name:        field(c, "name"),
		Proficiency: field(c, "proficiency"),
	}, nil
}

func profileForm(c *gin.Context, uploader *files.Uploader) (content.PersonalInfoInput, error) {
	image, err := imageField(c, uploader, "profile_image", "profile_image_file")
	if err != nil {
		return content.PersonalInfoInput{}, err
	}
	in := content.PersonalInfoInput{
		Name:         c.PostForm("name"),
		Title:        c.PostForm("title"),
		Location:     c.PostForm("location"),
		Phone:        c.PostForm("phone"),
		Email:        c.PostForm("email"),
		Summary:      c.PostForm("summary"),
		LinkedinURL:  c.PostForm("linkedin_url"),
		GithubURL:    c.PostForm("github_url"),
		PortfolioURL: c.PostForm("portfolio_url"),
	}
	if image != nil {
		in.ProfileImage = *image
	}
	return in, nil
}

// section is one editable admin tab.
type section interface {
	noun() string
	add(c *gin.Context, uploader *files.Uploader) error
	update(c *gin.Context, uploader *files.Uploader, id string) error
	remove(ctx context.Context, id string) error
}

type collectionSection[T models.Record] struct {
	name  string
	col   *repository.Collection[T]
	parse formParser[T]
}

func (s *collectionSection[T]) noun() string { return s.name }

func (s *collectionSection[T]) add(c *gin.Context, uploader *files.Uploader) error {
	if s.parse == nil {
		return repository.ErrNotSupported
	}
	in, err := s.parse(c, uploader)
	if err != nil {
		return err
	}
	rec, err := in.Record()
	if err != nil {
		return err
	}
	_, err = s.col.Add(c.Request.Context(), rec)
	return err
}

func (s *collectionSection[T]) update(c *gin.Context, uploader *files.Uploader, id string) error {
	if s.parse == nil {
		return repository.ErrNotSupported
	}
	in, err := s.parse(c, uploader)
	if err != nil {
		return err
	}
	fields, err := in.Fields()
	if err != nil {
		return err
	}
	_, err = s.col.Update(c.Request.Context(), id, fields)
	return err
}

func (s *collectionSection[T]) remove(ctx context.Context, id string) error {
	return s.col.Delete(ctx, id)
}
