package model

import (
	"time"

	"gorm.io/gorm"
)

// ClinicalRecord is a patient's case file grouping a diagnosis and the
// therapies prescribed for it.
// @Description Clinical record information
type ClinicalRecord struct {
	gorm.Model
	PatientID uint       `json:"patient_id" gorm:"not null;index" example:"1"`
	Diagnosis string     `json:"diagnosis" gorm:"type:varchar(255);not null" example:"Lumbar disc herniation"`
	Notes     string     `json:"notes" gorm:"type:text" example:"Pain radiating to the left leg"`
	IsActive  bool       `json:"is_active" gorm:"not null;default:true;index" example:"true"`
	OpenedAt  time.Time  `json:"opened_at" example:"2025-01-15T09:00:00Z"`
	ClosedAt  *time.Time `json:"closed_at" example:"2025-03-01T09:00:00Z"`

	Patient   *Patient  `json:"patient,omitempty"`
	Therapies []Therapy `json:"therapies,omitempty"`
}

// Close marks the record closed at the given time.
func (r *ClinicalRecord) Close(at time.Time) {
	r.IsActive = false
	r.ClosedAt = &at
}
