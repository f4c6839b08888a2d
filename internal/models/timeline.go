package models

import (
	"fmt"
	"strings"
)

type TimelineType string

const (
	TimelineEducation  TimelineType = "education"
	TimelineExperience TimelineType = "experience"
)

// TimelineItem is one education or work entry.
type TimelineItem struct {
	Base         `bson:",inline"`
	Type         TimelineType `json:"type"                   gorm:"size:16;not null;index" bson:"type"`
	Title        string       `json:"title"                  gorm:"not null"               bson:"title"`
	Organization string       `json:"organization"                                         bson:"organization"`
	Location     string       `json:"location"                                             bson:"location"`
	Period       string       `json:"period"                 gorm:"size:64;index"          bson:"period"`
	Description  StringArray  `json:"description"            gorm:"type:text"              bson:"description"`
	Technologies StringArray  `json:"technologies,omitempty" gorm:"type:text"              bson:"technologies,omitempty"`
}

func (TimelineItem) TableName() string { return "timeline" }

func ParseTimelineType(raw string) (TimelineType, error) {
	switch v := TimelineType(strings.ToLower(strings.TrimSpace(raw))); v {
	case TimelineEducation, TimelineExperience:
		return v, nil
	}
	return "", fmt.Errorf("invalid timeline type %q", raw)
}
