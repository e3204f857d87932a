package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type AccountModel struct {
	ID           string    `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Provider     string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

type ProfileModel struct {
	UserID         string `gorm:"primaryKey"`
	Name           string `gorm:"not null"`
	UserType       string `gorm:"not null"`
	Subscription   string `gorm:"not null"`
	MaterialsCount int    `gorm:"not null"`
	MaterialsLimit int    `gorm:"not null"`
	AvatarURL      string
	Provider       string
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

type UserRoleModel struct {
	UserID    string    `gorm:"primaryKey"`
	Role      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type MaterialModel struct {
	ID          string         `gorm:"primaryKey"`
	UserID      string         `gorm:"not null;index"`
	Title       string         `gorm:"not null"`
	Kind        string         `gorm:"column:material_type;not null"`
	Subject     string         `gorm:"not null"`
	GradeLevel  string         `gorm:"not null"`
	Difficulty  string         `gorm:"not null"`
	Content     datatypes.JSON `gorm:"not null"`
	DownloadURL string
	CreatedAt   time.Time `gorm:"not null;index"`
}
