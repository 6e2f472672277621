package model

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// TherapyType is a catalogue entry for a kind of treatment.
// @Description Therapy type information
type TherapyType struct {
	gorm.Model
	Code            string `json:"code" gorm:"type:varchar(32);uniqueIndex;not null" example:"TECAR"`
	Name            string `json:"name" gorm:"type:varchar(191);not null" example:"Tecar therapy"`
	DefaultDuration int    `json:"default_duration" gorm:"not null;default:30" example:"30"`
	DefaultSessions int    `json:"default_sessions" gorm:"not null;default:10" example:"10"`
}

// DefaultTherapyTypes is the catalogue seeded on startup.
var DefaultTherapyTypes = []TherapyType{
	{Code: "MANUAL", Name: "Manual therapy", DefaultDuration: 45, DefaultSessions: 8},
	{Code: "TECAR", Name: "Tecar therapy", DefaultDuration: 30, DefaultSessions: 10},
	{Code: "LASER", Name: "High intensity laser", DefaultDuration: 20, DefaultSessions: 10},
	{Code: "SHOCKWAVE", Name: "Shockwave therapy", DefaultDuration: 20, DefaultSessions: 5},
	{Code: "KINESIO", Name: "Therapeutic exercise", DefaultDuration: 60, DefaultSessions: 12},
}

// SeedTherapyTypes inserts the default catalogue entries that are missing.
func SeedTherapyTypes(db *gorm.DB) error {
	for _, tt := range DefaultTherapyTypes {
		var existing TherapyType
		err := db.Where("code = ?", tt.Code).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Create(&tt).Error; err != nil {
			return fmt.Errorf("failed to seed therapy type %s: %w", tt.Code, err)
		}
	}
	return nil
}
