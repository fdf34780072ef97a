// Package domain defines the persistent and ephemeral data models shared by
// every layer of the service.
package domain

import "time"

// User is an authenticated identity. Campaign-level authorization never reads
// from here; it is governed by the campaign's member map.
type User struct {
	ID          string    `gorm:"type:char(36);primaryKey"`
	Username    string    `gorm:"type:varchar(191);uniqueIndex:idx_username;not null"`
	DisplayName string    `gorm:"type:varchar(191);not null"`
	Password    string    `gorm:"type:text;not null"` // bcrypt hash
	Email       string    `gorm:"type:varchar(191);uniqueIndex:idx_email"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}
