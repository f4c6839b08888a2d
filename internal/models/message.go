package models

// ContactMessage is a submission of the public contact form.
type ContactMessage struct {
	Base    `bson:",inline"`
	Name    string `json:"name"    gorm:"not null"  bson:"name"`
	Email   string `json:"email"   gorm:"not null"  bson:"email"`
	Message string `json:"message" gorm:"type:text" bson:"message"`
	IP      string `json:"ip"      gorm:"size:64"   bson:"ip"`
}

func (ContactMessage) TableName() string { return "messages" }
