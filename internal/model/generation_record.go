package model

import "time"

// GenerationRecord is an audit row for one relay dispatch. Rows are written
// asynchronously by the audit worker; prompt and result text are not stored.
type GenerationRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index" json:"user_id"`
	Employee    string    `gorm:"size:64" json:"employee"`
	Provider    string    `gorm:"size:16;not null;index" json:"provider"`
	Model       string    `gorm:"size:64;not null" json:"model"`
	PromptChars int       `gorm:"not null" json:"prompt_chars"`
	ResultChars int       `gorm:"not null" json:"result_chars"`
	DurationMS  int64     `gorm:"not null" json:"duration_ms"`
	OK          bool      `gorm:"not null" json:"ok"`
	CreatedAt   time.Time `json:"created_at"`
}
