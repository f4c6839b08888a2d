package models

// Certificate is a credential shown in the certificates section.
type Certificate struct {
	Base          `bson:",inline"`
	Name          string `json:"name"           gorm:"not null"               bson:"name"`
	Issuer        string `json:"issuer"         gorm:"not null"               bson:"issuer"`
	Date          string `json:"date"           gorm:"size:32;index"          bson:"date"`
	CredentialURL string `json:"credential_url" gorm:"column:credential_url"  bson:"credential_url,omitempty"`
	ImageURL      string `json:"image_url"      gorm:"column:image_url"       bson:"image_url"`
}

func (Certificate) TableName() string { return "certificates" }
