package models

import (
	"fmt"
	"strings"
)

type SkillCategory string

const (
	SkillMobile   SkillCategory = "mobile"
	SkillBackend  SkillCategory = "backend"
	SkillFrontend SkillCategory = "frontend"
	SkillTools    SkillCategory = "tools"
	SkillDesign   SkillCategory = "design"
)

var SkillCategories = []SkillCategory{SkillMobile, SkillBackend, SkillFrontend, SkillTools, SkillDesign}

// Skill is a named proficiency bar in the about section.
type Skill struct {
	Base     `bson:",inline"`
	Name     string        `json:"name"     gorm:"not null"      bson:"name"`
	Level    int           `json:"level"    gorm:"not null;index" bson:"level"`
	Category SkillCategory `json:"category" gorm:"size:16"       bson:"category"`
}

func (Skill) TableName() string { return "skills" }

func ParseSkillCategory(raw string) (SkillCategory, error) {
	v := SkillCategory(strings.ToLower(strings.TrimSpace(raw)))
	for _, c := range SkillCategories {
		if c == v {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid skill category %q", raw)
}

// ValidateSkillLevel checks the 0-100 proficiency range.
func ValidateSkillLevel(level int) error {
	if level < 0 || level > 100 {
		return fmt.Errorf("skill level %d out of range 0-100", level)
	}
	return nil
}
