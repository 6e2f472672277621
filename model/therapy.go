package model

import (
	"time"

	"gorm.io/gorm"
)

// TherapyStatus is the lifecycle state of a prescribed therapy.
type TherapyStatus string

const (
	TherapyScheduled  TherapyStatus = "SCHEDULED"
	TherapyInProgress TherapyStatus = "IN_PROGRESS"
	TherapyCompleted  TherapyStatus = "COMPLETED"
	TherapySuspended  TherapyStatus = "SUSPENDED"
)

// IsValid checks if the status is a known TherapyStatus.
func (s TherapyStatus) IsValid() bool {
	switch s {
	case TherapyScheduled, TherapyInProgress, TherapyCompleted, TherapySuspended:
		return true
	}
	return false
}

// Therapy is a treatment prescribed in a clinical record, delivered as a
// numbered sequence of sessions.
// @Description Therapy information
type Therapy struct {
	gorm.Model
	ClinicalRecordID   uint          `json:"clinical_record_id" gorm:"not null;index" example:"1"`
	TherapyTypeID      uint          `json:"therapy_type_id" gorm:"not null;index" example:"2"`
	PrescribedSessions int           `json:"prescribed_sessions" gorm:"not null" example:"10"`
	CompletedSessions  int           `json:"completed_sessions" gorm:"not null;default:0" example:"3"`
	Status             TherapyStatus `json:"status" gorm:"type:varchar(16);not null;default:'SCHEDULED';index" example:"IN_PROGRESS"`
	Frequency          string        `json:"frequency" gorm:"type:varchar(64)" example:"2x/week"`
	District           string        `json:"district" gorm:"type:varchar(64)" example:"lumbar"`
	Notes              string        `json:"notes" gorm:"type:text" example:"Avoid heat on the left knee"`
	StartDate          *time.Time    `json:"start_date" example:"2025-01-20T09:00:00Z"`
	Version            int           `json:"version" gorm:"not null;default:1" example:"4"`

	TherapyType    *TherapyType     `json:"therapy_type,omitempty"`
	ClinicalRecord *ClinicalRecord  `json:"clinical_record,omitempty"`
	Sessions       []TherapySession `json:"sessions,omitempty"`
}

// Remaining returns how many prescribed sessions are still to be completed.
func (t *Therapy) Remaining() int {
	if r := t.PrescribedSessions - t.CompletedSessions; r > 0 {
		return r
	}
	return 0
}

// ProgressStatus is the status implied by the completion counter, ignoring
// suspension.
func (t *Therapy) ProgressStatus() TherapyStatus {
	switch {
	case t.PrescribedSessions > 0 && t.CompletedSessions >= t.PrescribedSessions:
		return TherapyCompleted
	case t.CompletedSessions > 0:
		return TherapyInProgress
	default:
		return TherapyScheduled
	}
}
