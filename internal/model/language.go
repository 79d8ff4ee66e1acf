package model

import "time"

// Role values for a user/language association.
const (
	RoleLearner = "learner"
	RoleTeacher = "teacher"
)

// ValidRole reports whether role is one of the recognized association roles.
func ValidRole(role string) bool {
	return role == RoleLearner || role == RoleTeacher
}

// Language is an entry of the language catalog.
type Language struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Code      string    `json:"code" gorm:"uniqueIndex;size:8;not null"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserLanguage associates a user with a language in a given role. The
// composite unique index is the ultimate arbiter against duplicate triples;
// in-process existence checks are advisory only.
type UserLanguage struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"userId" gorm:"not null;uniqueIndex:idx_user_language_role"`
	LanguageID uint      `json:"languageId" gorm:"not null;uniqueIndex:idx_user_language_role"`
	Role       string    `json:"role" gorm:"size:16;not null;uniqueIndex:idx_user_language_role"`
	CreatedAt  time.Time `json:"createdAt"`

	Language *Language `json:"language,omitempty" gorm:"foreignKey:LanguageID"`
}
