package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestTherapy_ProgressStatus(t *testing.T) {
	cases := []struct {
		name       string
		prescribed int
		completed  int
		want       TherapyStatus
	}{
		{"nothing done", 10, 0, TherapyScheduled},
		{"partially done", 10, 4, TherapyInProgress},
		{"all done", 10, 10, TherapyCompleted},
		{"empty prescription", 0, 0, TherapyScheduled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			th := Therapy{PrescribedSessions: tc.prescribed, CompletedSessions: tc.completed}
			assert.Equal(t, tc.want, th.ProgressStatus())
		})
	}
}

func TestTherapy_Remaining(t *testing.T) {
	assert.Equal(t, 7, (&Therapy{PrescribedSessions: 10, CompletedSessions: 3}).Remaining())
	assert.Equal(t, 0, (&Therapy{PrescribedSessions: 2, CompletedSessions: 3}).Remaining())
}

func TestStatusValidity(t *testing.T) {
	assert.True(t, TherapySuspended.IsValid())
	assert.False(t, TherapyStatus("PAUSED").IsValid())
	assert.True(t, SessionCancelled.IsValid())
	assert.False(t, SessionStatus("NO_SHOW").IsValid())
}

func TestTherapySession_VasImprovement(t *testing.T) {
	s := TherapySession{Status: SessionCompleted, VasScoreBefore: intPtr(7), VasScoreAfter: intPtr(4)}
	d, ok := s.VasImprovement()
	assert.True(t, ok)
	assert.Equal(t, 3, d)

	s.VasScoreAfter = nil
	_, ok = s.VasImprovement()
	assert.False(t, ok)

	scheduled := TherapySession{Status: SessionScheduled, VasScoreBefore: intPtr(7), VasScoreAfter: intPtr(4)}
	_, ok = scheduled.VasImprovement()
	assert.False(t, ok)
}

func TestTherapySession_NumberUniquePerTherapy(t *testing.T) {
	db := setupTestDB(t, "therapy_session", &TherapySession{})
	at := time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC)

	require.NoError(t, db.Create(&TherapySession{TherapyID: 1, SessionNumber: 1, SessionDate: at, DurationMinutes: 30, Status: SessionScheduled}).Error)
	require.NoError(t, db.Create(&TherapySession{TherapyID: 2, SessionNumber: 1, SessionDate: at, DurationMinutes: 30, Status: SessionScheduled}).Error)

	err := db.Create(&TherapySession{TherapyID: 1, SessionNumber: 1, SessionDate: at, DurationMinutes: 30, Status: SessionScheduled}).Error
	assert.Error(t, err)
}

func TestTherapy_DefaultsOnInsert(t *testing.T) {
	db := setupTestDB(t, "therapy_defaults", &Therapy{})

	th := Therapy{ClinicalRecordID: 1, TherapyTypeID: 1, PrescribedSessions: 5}
	require.NoError(t, db.Create(&th).Error)

	var found Therapy
	require.NoError(t, db.First(&found, th.ID).Error)
	assert.Equal(t, TherapyScheduled, found.Status)
	assert.Equal(t, 1, found.Version)
	assert.Equal(t, 0, found.CompletedSessions)
}

func TestClinicalRecord_Close(t *testing.T) {
	r := ClinicalRecord{IsActive: true}
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	r.Close(at)
	assert.False(t, r.IsActive)
	require.NotNil(t, r.ClosedAt)
	assert.Equal(t, at, *r.ClosedAt)
}
