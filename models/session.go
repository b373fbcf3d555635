package models

import "time"

// Session stores an authenticated admin login.
type Session struct {
	ID        string    `json:"-" gorm:"type:varchar(64);primaryKey"`
	AdminID   int64     `json:"admin_id" gorm:"not null;index"`
	Username  string    `json:"username" gorm:"type:varchar(50);not null"`
	LoginAt   time.Time `json:"login_at" gorm:"not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
