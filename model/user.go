package model

import "gorm.io/gorm"

// User is an account able to log into the clinic backend.
// @Description User information
type User struct {
	gorm.Model
	Name           string `json:"name" gorm:"type:varchar(191)" example:"Jane Roe"`
	Email          string `json:"email" gorm:"type:varchar(191);uniqueIndex" example:"jane@example.com"`
	Password       string `json:"-"`
	PasswordSalt   string `json:"-"`
	RoleID         uint32 `json:"role_id" gorm:"not null;default:3" example:"3"`
	FailedAttempts int    `json:"-" gorm:"not null;default:0"`
	LockedUntil    *int64 `json:"-"`
}
