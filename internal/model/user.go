package model

import "time"

// User represents a registered member of the platform.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Firstname    string    `json:"firstname" gorm:"size:255;not null"`
	Lastname     string    `json:"lastname" gorm:"size:255;not null"`
	Slug         string    `json:"slug" gorm:"uniqueIndex;size:255;not null"`
	Bio          string    `json:"bio,omitempty" gorm:"type:text"`
	AvatarURL    string    `json:"avatarUrl,omitempty" gorm:"size:255"`
	IsAdmin      bool      `json:"isAdmin" gorm:"default:false"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Languages []UserLanguage `json:"languages,omitempty" gorm:"foreignKey:UserID"`
}
