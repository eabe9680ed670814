package models

import (
	"time"
)

// Issue is the relational row. Nested collections are JSON text columns.
type Issue struct {
	ID               string    `json:"id" gorm:"primaryKey;type:text"`
	Title            string    `json:"title" gorm:"type:text;not null"`
	Description      string    `json:"description" gorm:"type:text;not null"`
	Category         string    `json:"category" gorm:"type:text;index"`
	Severity         string    `json:"severity" gorm:"type:text"`
	Status           string    `json:"status" gorm:"type:text;index"`
	ModerationStatus string    `json:"moderation_status" gorm:"type:text;index"`
	Location         string    `json:"location" gorm:"type:json;default:'{}'"`
	AuthorID         string    `json:"author_id" gorm:"type:text;index"`
	AuthorName       string    `json:"author_name" gorm:"type:text"`
	AuthorAvatar     string    `json:"author_avatar" gorm:"type:text"`
	IsAnonymous      bool      `json:"is_anonymous" gorm:"type:boolean;not null;default:false"`
	AIAnalysis       string    `json:"ai_analysis" gorm:"type:text"`
	Attachments      string    `json:"attachments" gorm:"type:json;default:'[]'"`
	Comments         string    `json:"comments" gorm:"type:json;default:'[]'"`
	SupportedBy      string    `json:"supported_by" gorm:"type:json;default:'[]'"`
	FlaggedBy        string    `json:"flagged_by" gorm:"type:json;default:'[]'"`
	Votes            int       `json:"votes" gorm:"type:integer;not null;default:0"`
	CreatedAt        time.Time `json:"created_at" gorm:"type:timestamp with time zone;not null;index"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"type:timestamp with time zone;not null"`
}
