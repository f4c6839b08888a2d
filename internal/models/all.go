package models

// All returns one zero value of every persisted model, for schema migration.
func All() []interface{} {
	return []interface{}{
		&AdminUser{},
		&AdminSession{},
		&Project{},
		&Certificate{},
		&Skill{},
		&TimelineItem{},
		&PersonalInfo{},
		&Language{},
		&ContactMessage{},
	}
}
