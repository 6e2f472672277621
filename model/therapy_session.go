package model

import (
	"time"

	"gorm.io/gorm"
)

// SessionStatus is the state of a single therapy session.
type SessionStatus string

const (
	SessionScheduled SessionStatus = "SCHEDULED"
	SessionCompleted SessionStatus = "COMPLETED"
	SessionCancelled SessionStatus = "CANCELLED"
)

// IsValid checks if the status is a known SessionStatus.
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionScheduled, SessionCompleted, SessionCancelled:
		return true
	}
	return false
}

// VAS pain scale bounds.
const (
	VASMin = 0
	VASMax = 10
)

// TherapySession is one numbered occurrence of a therapy.
// SessionNumber is unique within a therapy.
// @Description Therapy session information
type TherapySession struct {
	gorm.Model
	TherapyID       uint          `json:"therapy_id" gorm:"not null;uniqueIndex:idx_therapy_session_number" example:"1"`
	SessionNumber   int           `json:"session_number" gorm:"not null;uniqueIndex:idx_therapy_session_number" example:"3"`
	SessionDate     time.Time     `json:"session_date" gorm:"not null;index" example:"2025-01-22T09:00:00Z"`
	DurationMinutes int           `json:"duration_minutes" gorm:"not null" example:"30"`
	Status          SessionStatus `json:"status" gorm:"type:varchar(16);not null;default:'SCHEDULED';index" example:"COMPLETED"`
	VasScoreBefore  *int          `json:"vas_score_before" example:"7"`
	VasScoreAfter   *int          `json:"vas_score_after" example:"4"`
	Notes           string        `json:"notes" gorm:"type:text" example:"Good tolerance"`
	TherapistID     *uint         `json:"therapist_id" gorm:"index" example:"1"`
	CompletedAt     *time.Time    `json:"completed_at"`
	CancelledAt     *time.Time    `json:"cancelled_at"`

	Therapist *Therapist `json:"therapist,omitempty"`
}

// VasImprovement returns before-after when the session is completed and both
// scores are present.
func (s *TherapySession) VasImprovement() (int, bool) {
	if s.Status != SessionCompleted || s.VasScoreBefore == nil || s.VasScoreAfter == nil {
		return 0, false
	}
	return *s.VasScoreBefore - *s.VasScoreAfter, true
}
