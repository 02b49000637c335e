package model

import "time"

// Document is one saved generation result or one uploaded file.
// Content holds the generated text, or a "路径:" marker for uploads.
type Document struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Employee  string    `gorm:"size:64;not null" json:"employee"`
	Title     string    `gorm:"size:256;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Preview   string    `gorm:"type:text" json:"preview,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
