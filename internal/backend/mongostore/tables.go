package mongostore

import (
	"github.com/folio-space/folio/internal/models"
	"github.com/folio-space/folio/internal/repository"
	"go.mongodb.org/mongo-driver/mongo"
)

// CatalogTables returns every portfolio collection of db.
func CatalogTables(db *mongo.Database) repository.Tables {
	return repository.Tables{
		Projects:     NewTable[models.Project](db, models.Project{}.TableName()),
		Certificates: NewTable[models.Certificate](db, models.Certificate{}.TableName()),
		Skills:       NewTable[models.Skill](db, models.Skill{}.TableName()),
		Timeline:     NewTable[models.TimelineItem](db, models.TimelineItem{}.TableName()),
		Languages:    NewTable[models.Language](db, models.Language{}.TableName()),
		Messages:     NewTable[models.ContactMessage](db, models.ContactMessage{}.TableName()),
		PersonalInfo: NewTable[models.PersonalInfo](db, models.PersonalInfo{}.TableName()),
	}
}

// AccountTables returns the admin user and session collections of db.
func AccountTables(db *mongo.Database) (*Table[models.AdminUser], *Table[models.AdminSession]) {
	return NewTable[models.AdminUser](db, models.AdminUser{}.TableName()),
		NewTable[models.AdminSession](db, models.AdminSession{}.TableName())
}
