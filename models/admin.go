package models

import "time"

// Admin is an account allowed into the dashboard.
type Admin struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Username  string    `json:"username" gorm:"type:varchar(50);not null;uniqueIndex"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never exposed
	Email     *string   `json:"email,omitempty" gorm:"type:varchar(100)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
