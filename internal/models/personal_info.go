package models

import "time"

// PersonalInfo is the singleton owner profile rendered in the hero and contact sections.
type PersonalInfo struct {
	Base         `bson:",inline"`
	Name         string    `json:"name"                    bson:"name"`
	Title        string    `json:"title"                   bson:"title"`
	Location     string    `json:"location"                bson:"location"`
	Phone        string    `json:"phone"                   bson:"phone"`
	Email        string    `json:"email"                   bson:"email"`
	Summary      string    `json:"summary"       gorm:"type:text" bson:"summary"`
	LinkedinURL  string    `json:"linkedin_url"  gorm:"column:linkedin_url"  bson:"linkedin_url,omitempty"`
	GithubURL    string    `json:"github_url"    gorm:"column:github_url"    bson:"github_url,omitempty"`
	PortfolioURL string    `json:"portfolio_url" gorm:"column:portfolio_url" bson:"portfolio_url,omitempty"`
	ProfileImage string    `json:"profile_image" gorm:"column:profile_image" bson:"profile_image,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"                bson:"updated_at"`
}

func (PersonalInfo) TableName() string { return "personal_info" }

// Touch stamps the modification time.
func (p *PersonalInfo) Touch(now time.Time) { p.UpdatedAt = now }
