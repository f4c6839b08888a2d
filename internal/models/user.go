package models

import "time"

// AdminUser is the site owner allowed into the admin shell.
type AdminUser struct {
	Base         `bson:",inline"`
	Email        string     `json:"email"         gorm:"uniqueIndex;size:191;not null" bson:"email"`
	PasswordHash string     `json:"-"             gorm:"not null"                      bson:"password_hash"`
	LastLoginAt  *time.Time `json:"last_login_at"                                      bson:"last_login_at,omitempty"`
	LastLoginIP  string     `json:"last_login_ip" gorm:"size:64"                       bson:"last_login_ip,omitempty"`
}

func (AdminUser) TableName() string { return "admin_users" }

// AdminSession backs one issued token. Revoking the row invalidates the token.
type AdminSession struct {
	Base      `bson:",inline"`
	UserID    string     `json:"user_id"    gorm:"type:char(36);index;not null" bson:"user_id"`
	IP        string     `json:"ip"         gorm:"size:64"                      bson:"ip"`
	UA        string     `json:"ua"         gorm:"size:512"                     bson:"ua"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"index"                        bson:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at"                                     bson:"revoked_at,omitempty"`
}

func (AdminSession) TableName() string { return "admin_sessions" }

// Active reports whether the session can still authenticate requests.
func (s AdminSession) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
