package models

import "fmt"

// Proficiency labels accepted for spoken languages.
var Proficiencies = []string{"Native", "Business Fluent", "Fluent", "Intermediate", "Basic"}

// Language is a spoken language with a proficiency label.
type Language struct {
	Base        `bson:",inline"`
	Name        string `json:"name"        gorm:"not null" bson:"name"`
	Proficiency string `json:"proficiency" gorm:"size:32"  bson:"proficiency"`
}

func (Language) TableName() string { return "languages" }

func ValidateProficiency(p string) error {
	for _, v := range Proficiencies {
		if v == p {
			return nil
		}
	}
	return fmt.Errorf("invalid proficiency %q", p)
}
