package model

import "gorm.io/gorm"

// Therapist is a clinician that therapy sessions can be assigned to.
// @Description Therapist information
type Therapist struct {
	gorm.Model
	FullName    string `json:"full_name" gorm:"column:full_name" example:"Dr. John Smith"`
	Email       string `json:"email" gorm:"column:email;type:varchar(191);index" example:"dr.john@example.com"`
	PhoneNumber string `json:"phone_number" gorm:"column:phone_number" example:"081234567890"`
	Address     string `json:"address" gorm:"column:address" example:"123 Main St"`
	Role        string `json:"role" gorm:"column:role" example:"Physical Therapist"`
	IsApproved  bool   `json:"is_approved" gorm:"column:is_approved;default:false" example:"false"`
}
