package models

import (
	"fmt"
	"strings"
)

// ProjectCategory tags a project for the public filter.
type ProjectCategory string

const (
	ProjectMobile ProjectCategory = "mobile"
	ProjectWeb    ProjectCategory = "web"
	ProjectGame   ProjectCategory = "game"
)

// ProjectCategories lists the accepted categories in display order.
var ProjectCategories = []ProjectCategory{ProjectMobile, ProjectWeb, ProjectGame}

// Project is a portfolio entry.
type Project struct {
	Base         `bson:",inline"`
	Title        string          `json:"title"          gorm:"not null"                    bson:"title"`
	Description  string          `json:"description"    gorm:"type:text"                   bson:"description"`
	TechStack    StringArray     `json:"tech_stack"     gorm:"type:text"                   bson:"tech_stack"`
	GithubURL    string          `json:"github_url"     gorm:"column:github_url"           bson:"github_url,omitempty"`
	DemoURL      string          `json:"demo_url"       gorm:"column:demo_url"             bson:"demo_url,omitempty"`
	AppStoreURL  string          `json:"app_store_url"  gorm:"column:app_store_url"        bson:"app_store_url,omitempty"`
	PlayStoreURL string          `json:"play_store_url" gorm:"column:play_store_url"       bson:"play_store_url,omitempty"`
	ImageURL     string          `json:"image_url"      gorm:"column:image_url"            bson:"image_url"`
	Featured     bool            `json:"featured"       gorm:"not null;default:false;index" bson:"featured"`
	Category     ProjectCategory `json:"category"       gorm:"size:16;index"               bson:"category"`
}

func (Project) TableName() string { return "projects" }

// ParseProjectCategory validates raw against ProjectCategories.
// An empty value defaults to mobile, the original site's focus.
func ParseProjectCategory(raw string) (ProjectCategory, error) {
	v := ProjectCategory(strings.ToLower(strings.TrimSpace(raw)))
	if v == "" {
		return ProjectMobile, nil
	}
	for _, c := range ProjectCategories {
		if c == v {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid project category %q", raw)
}

// HasStoreLinks reports whether the project links to an app store.
func (p Project) HasStoreLinks() bool {
	return p.AppStoreURL != "" || p.PlayStoreURL != ""
}
