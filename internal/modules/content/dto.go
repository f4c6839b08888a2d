package content

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/folio-space/folio/internal/models"
)

// ValidationError is a rejected request field. Handlers answer 400.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Msg
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

var errNoFields = &ValidationError{Field: "body", Msg: "no fields to update"}

// Input is a decoded request body for one collection. Record builds a new
// record for create; Fields builds the column patch for update.
type Input[T any] interface {
	Record() (T, error)
	Fields() (map[string]any, error)
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func list(p *models.StringArray) models.StringArray {
	if p == nil {
		return models.StringArray{}
	}
	return *p
}

func required(field string, p *string) (string, error) {
	v := str(p)
	if v == "" {
		return "", invalid(field, "is required")
	}
	return v, nil
}

// patch collects the non-nil fields of an update body.
type patch map[string]any

func (p patch) str(column string, v *string) {
	if v != nil {
		p[column] = strings.TrimSpace(*v)
	}
}

func (p patch) nonEmpty(column string, v *string) error {
	if v == nil {
		return nil
	}
	if strings.TrimSpace(*v) == "" {
		return invalid(column, "must not be empty")
	}
	p[column] = strings.TrimSpace(*v)
	return nil
}

func (p patch) list(column string, v *models.StringArray) {
	if v != nil {
		p[column] = *v
	}
}

func (p patch) done() (map[string]any, error) {
	if len(p) == 0 {
		return nil, errNoFields
	}
	return map[string]any(p), nil
}

// ProjectInput is the create/update body of a project. tech_stack accepts a
// JSON array or a comma separated string.
type ProjectInput struct {
	Title        *string             `json:"title"`
	Description  *string             `json:"description"`
	TechStack    *models.StringArray `json:"tech_stack"`
	GithubURL    *string             `json:"github_url"`
	DemoURL      *string             `json:"demo_url"`
	AppStoreURL  *string             `json:"app_store_url"`
	PlayStoreURL *string             `json:"play_store_url"`
	ImageURL     *string             `json:"image_url"`
	Featured     *bool               `json:"featured"`
	Category     *string             `json:"category"`
}

func (in *ProjectInput) Record() (models.Project, error) {
	title, err := required("title", in.Title)
	if err != nil {
		return models.Project{}, err
	}
	category, err := models.ParseProjectCategory(str(in.Category))
	if err != nil {
		return models.Project{}, invalid("category", "must be one of mobile, web, game")
	}
	return models.Project{
		Title:        title,
		Description:  str(in.Description),
		TechStack:    list(in.TechStack),
		GithubURL:    str(in.GithubURL),
		DemoURL:      str(in.DemoURL),
		AppStoreURL:  str(in.AppStoreURL),
		PlayStoreURL: str(in.PlayStoreURL),
		ImageURL:     str(in.ImageURL),
		Featured:     in.Featured != nil && *in.Featured,
		Category:     category,
	}, nil
}

func (in *ProjectInput) Fields() (map[string]any, error) {
	p := patch{}
	if err := p.nonEmpty("title", in.Title); err != nil {
		return nil, err
	}
	p.str("description", in.Description)
	p.list("tech_stack", in.TechStack)
	p.str("github_url", in.GithubURL)
	p.str("demo_url", in.DemoURL)
	p.str("app_store_url", in.AppStoreURL)
	p.str("play_store_url", in.PlayStoreURL)
	p.str("image_url", in.ImageURL)
	if in.Featured != nil {
		p["featured"] = *in.Featured
	}
	if in.Category != nil {
		category, err := models.ParseProjectCategory(*in.Category)
		if err != nil {
			return nil, invalid("category", "must be one of mobile, web, game")
		}
		p["category"] = category
	}
	return p.done()
}

type CertificateInput struct {
	Name          *string `json:"name"`
	Issuer        *string `json:"issuer"`
	Date          *string `json:"date"`
	CredentialURL *string `json:"credential_url"`
	ImageURL      *string `json:"image_url"`
}

func (in *CertificateInput) Record() (models.Certificate, error) {
	name, err := required("name", in.Name)
	if err != nil {
		return models.Certificate{}, err
	}
	issuer, err := required("issuer", in.Issuer)
	if err != nil {
		return models.Certificate{}, err
	}
	return models.Certificate{
		Name:          name,
		Issuer:        issuer,
		Date:          str(in.Date),
		CredentialURL: str(in.CredentialURL),
		ImageURL:      str(in.ImageURL),
	}, nil
}

func (in *CertificateInput) Fields() (map[string]any, error) {
	p := patch{}
	if err := p.nonEmpty("name", in.Name); err != nil {
		return nil, err
	}
	if err := p.nonEmpty("issuer", in.Issuer); err != nil {
		return nil, err
	}
	p.str("date", in.Date)
	p.str("credential_url", in.CredentialURL)
	p.str("image_url", in.ImageURL)
	return p.done()
}

type SkillInput struct {
	Name     *string `json:"name"`
	Level    *int    `json:"level"`
	Category *string `json:"category"`
}

const skillCategoryMsg = "must be one of mobile, backend, frontend, tools, design"

func (in *SkillInput) Record() (models.Skill, error) {
	name, err := required("name", in.Name)
	if err != nil {
		return models.Skill{}, err
	}
	if in.Level == nil {
		return models.Skill{}, invalid("level", "is required")
	}
	if err := models.ValidateSkillLevel(*in.Level); err != nil {
		return models.Skill{}, invalid("level", "must be between 0 and 100")
	}
	category, err := models.ParseSkillCategory(str(in.Category))
	if err != nil {
		return models.Skill{}, invalid("category", skillCategoryMsg)
	}
	return models.Skill{Name: name, Level: *in.Level, Category: category}, nil
}

func (in *SkillInput) Fields() (map[string]any, error) {
	p := patch{}
	if err := p.nonEmpty("name", in.Name); err != nil {
		return nil, err
	}
	if in.Level != nil {
		if err := models.ValidateSkillLevel(*in.Level); err != nil {
			return nil, invalid("level", "must be between 0 and 100")
		}
		p["level"] = *in.Level
	}
	if in.Category != nil {
		category, err := models.ParseSkillCategory(*in.Category)
		if err != nil {
			return nil, invalid("category", skillCategoryMsg)
		}
		p["category"] = category
	}
	return p.done()
}

// TimelineInput is the body of a timeline entry. description is one item per
// line of the entry.
type TimelineInput struct {
	Type         *string             `json:"type"`
	Title        *string             `json:"title"`
	Organization *string             `json:"organization"`
	Location     *string             `json:"location"`
	Period       *string             `json:"period"`
	Description  *models.StringArray `json:"description"`
	Technologies *models.StringArray `json:"technologies"`
}

func (in *TimelineInput) Record() (models.TimelineItem, error) {
	kind, err := models.ParseTimelineType(str(in.Type))
	if err != nil {
		return models.TimelineItem{}, invalid("type", "must be education or experience")
	}
	title, err := required("title", in.Title)
	if err != nil {
		return models.TimelineItem{}, err
	}
	return models.TimelineItem{
		Type:         kind,
		Title:        title,
		Organization: str(in.Organization),
		Location:     str(in.Location),
		Period:       str(in.Period),
		Description:  list(in.Description),
		Technologies: list(in.Technologies),
	}, nil
}

func (in *TimelineInput) Fields() (map[string]any, error) {
	p := patch{}
	if in.Type != nil {
		kind, err := models.ParseTimelineType(*in.Type)
		if err != nil {
			return nil, invalid("type", "must be education or experience")
		}
		p["type"] = kind
	}
	if err := p.nonEmpty("title", in.Title); err != nil {
		return nil, err
	}
	p.str("organization", in.Organization)
	p.str("location", in.Location)
	p.str("period", in.Period)
	p.list("description", in.Description)
	p.list("technologies", in.Technologies)
	return p.done()
}

type LanguageInput struct {
	Name        *string `json:"name"`
	Proficiency *string `json:"proficiency"`
}

const proficiencyMsg = "must be one of Native, Business Fluent, Fluent, Intermediate, Basic"

func (in *LanguageInput) Record() (models.Language, error) {
	name, err := required("name", in.Name)
	if err != nil {
		return models.Language{}, err
	}
	proficiency := str(in.Proficiency)
	if err := models.ValidateProficiency(proficiency); err != nil {
		return models.Language{}, invalid("proficiency", proficiencyMsg)
	}
	return models.Language{Name: name, Proficiency: proficiency}, nil
}

func (in *LanguageInput) Fields() (map[string]any, error) {
	p := patch{}
	if err := p.nonEmpty("name", in.Name); err != nil {
		return nil, err
	}
	if in.Proficiency != nil {
		proficiency := str(in.Proficiency)
		if err := models.ValidateProficiency(proficiency); err != nil {
			return nil, invalid("proficiency", proficiencyMsg)
		}
		p["proficiency"] = proficiency
	}
	return p.done()
}

// PersonalInfoInput replaces the profile wholesale.
type PersonalInfoInput struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	Location     string `json:"location"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Summary      string `json:"summary"`
	LinkedinURL  string `json:"linkedin_url"`
	GithubURL    string `json:"github_url"`
	PortfolioURL string `json:"portfolio_url"`
	ProfileImage string `json:"profile_image"`
}

func (in *PersonalInfoInput) Record() (models.PersonalInfo, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.PersonalInfo{}, invalid("name", "is required")
	}
	email := strings.TrimSpace(in.Email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return models.PersonalInfo{}, invalid("email", "is not a valid address")
		}
	}
	return models.PersonalInfo{
		Name:         name,
		Title:        strings.TrimSpace(in.Title),
		Location:     strings.TrimSpace(in.Location),
		Phone:        strings.TrimSpace(in.Phone),
		Email:        email,
		Summary:      strings.TrimSpace(in.Summary),
		LinkedinURL:  strings.TrimSpace(in.LinkedinURL),
		GithubURL:    strings.TrimSpace(in.GithubURL),
		PortfolioURL: strings.TrimSpace(in.PortfolioURL),
		ProfileImage: strings.TrimSpace(in.ProfileImage),
	}, nil
}

// ContactInput is a contact form submission.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

const (
	maxContactName    = 120
	maxContactMessage = 5000
)

func (in *ContactInput) Record() (models.ContactMessage, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	message := strings.TrimSpace(in.Message)
	switch {
	case name == "":
		return models.ContactMessage{}, invalid("name", "is required")
	case len([]rune(name)) > maxContactName:
		return models.ContactMessage{}, invalid("name", "is too long")
	case message == "":
		return models.ContactMessage{}, invalid("message", "is required")
	case len([]rune(message)) > maxContactMessage:
		return models.ContactMessage{}, invalid("message", "is too long")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return models.ContactMessage{}, invalid("email", "is not a valid address")
	}
	return models.ContactMessage{Name: name, Email: addr.Address, Message: message}, nil
}
