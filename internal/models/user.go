// internal/models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email     string    `json:"email" gorm:"type:text;uniqueIndex;not null"`
	Name      *string   `json:"name,omitempty" gorm:"type:text"`
	AvatarURL *string   `json:"avatar_url,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"default:CURRENT_TIMESTAMP"`
}

type SavedItem struct {
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey"`
	ProductID string    `json:"product_id" gorm:"type:text;primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"default:CURRENT_TIMESTAMP"`

	// Relationships
	User    User    `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Product Product `json:"-" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

type UserPreferences struct {
	UserID          uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey"`
	DefaultCategory *string   `json:"default_category" gorm:"type:text"`
	PriceMax        *float64  `json:"price_max" gorm:"type:numeric(10,2)"`
	PageLimit       *int      `json:"page_limit"`
	Theme           *string   `json:"theme" gorm:"type:text"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"default:CURRENT_TIMESTAMP"`

	// Relationships
	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (UserPreferences) TableName() string {
	return "user_preferences"
}
