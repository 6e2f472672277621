package tracker

import (
	"testing"

	"github.com/ariebrainware/clinic-therapy/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPrescribe_UsesTypeDefault(t *testing.T) {
	f := newFixture(t)

	th := f.prescribe(t, 0)

	assert.Equal(t, f.tecar.DefaultSessions, th.PrescribedSessions)
	assert.Equal(t, model.TherapyScheduled, th.Status)
	assert.Equal(t, 1, th.Version)
}

func TestPrescribe_ClosedRecord(t *testing.T) {
	f := newFixture(t)
	_, err := f.tracker.CloseRecord(t.Context(), f.record.ID)
	require.NoError(t, err)

	_, err = f.tracker.Prescribe(t.Context(), PrescribeRequest{ClinicalRecordID: f.record.ID, TherapyTypeID: f.tecar.ID})

	assert.ErrorIs(t, err, ErrConflict)
}

func TestPrescribe_UnknownReferences(t *testing.T) {
	f := newFixture(t)

	_, err := f.tracker.Prescribe(t.Context(), PrescribeRequest{ClinicalRecordID: 404, TherapyTypeID: f.tecar.ID})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.tracker.Prescribe(t.Context(), PrescribeRequest{ClinicalRecordID: f.record.ID, TherapyTypeID: 404})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.tracker.Prescribe(t.Context(), PrescribeRequest{ClinicalRecordID: f.record.ID, TherapyTypeID: f.tecar.ID, PrescribedSessions: -2})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetTherapy_OrdersSessions(t *testing.T) {
	f := newFixture(t)
	th := f.prescribe(t, 4)
	f.schedule(t, th.ID, 4)

	got, err := f.tracker.GetTherapy(t.Context(), th.ID)

	require.NoError(t, err)
	require.NotNil(t, got.TherapyType)
	assert.Equal(t, "TECAR", got.TherapyType.Code)
	require.Len(t, got.Sessions, 4)
	for i, s := range got.Sessions {
		assert.Equal(t, i+1, s.SessionNumber)
	}

	_, err = f.tracker.GetTherapy(t.Context(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePrescription(t *testing.T) {
	f := newFixture(t)
	th := f.prescribe(t, 5)
	sessions := f.schedule(t, th.ID, 3)
	for _, s := range sessions[:2] {
		_, err := f.tracker.CompleteSession(t.Context(), s.ID, nil, nil)
		require.NoError(t, err)
	}

	t.Run("below active sessions", func(t *testing.T) {
		_, err := f.tracker.UpdatePrescription(t.Context(), th.ID, 2)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("zero", func(t *testing.T) {
		_, err := f.tracker.UpdatePrescription(t.Context(), th.ID, 0)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("raise", func(t *testing.T) {
		updated, err := f.tracker.UpdatePrescription(t.Context(), th.ID, 8)
		require.NoError(t, err)
		assert.Equal(t, 8, updated.PrescribedSessions)
		assert.Equal(t, model.TherapyInProgress, updated.Status)
	})

	t.Run("lower to completed count after cancelling", func(t *testing.T) {
		_, err := f.tracker.CancelSession(t.Context(), sessions[2].ID)
		require.NoError(t, err)

		updated, err := f.tracker.UpdatePrescription(t.Context(), th.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, model.TherapyCompleted, updated.Status)
		assert.Equal(t, model.TherapyCompleted, f.reloadTherapy(t, th.ID).Status)
	})

	assert.Contains(t, f.eventTypes(), EventPrescriptionChanged)
}

func TestUpdateTherapy_SingleTransaction(t *testing.T) {
	f := newFixture(t)
	th := f.prescribe(t, 4)
	f.schedule(t, th.ID, 3)
	strPtr := func(s string) *string { return &s }

	t.Run("rejected prescription leaves descriptive fields untouched", func(t *testing.T) {
		_, err := f.tracker.UpdateTherapy(t.Context(), th.ID, TherapyUpdate{
			PrescribedSessions: intPtr(2),
			District:           strPtr("cervical"),
			Notes:              strPtr("should not be saved"),
		})
		assert.ErrorIs(t, err, ErrValidation)

		stored := f.reloadTherapy(t, th.ID)
		assert.Equal(t, 4, stored.PrescribedSessions)
		assert.Empty(t, stored.District)
		assert.Empty(t, stored.Notes)
		assert.Equal(t, th.Version+1, stored.Version)
	})

	t.Run("all fields land with one version bump", func(t *testing.T) {
		before := f.reloadTherapy(t, th.ID)
		updated, err := f.tracker.UpdateTherapy(t.Context(), th.ID, TherapyUpdate{
			PrescribedSessions: intPtr(6),
			Frequency:          strPtr("3x/week"),
			District:           strPtr("lumbar"),
		})
		require.NoError(t, err)
		assert.Equal(t, 6, updated.PrescribedSessions)

		stored := f.reloadTherapy(t, th.ID)
		assert.Equal(t, 6, stored.PrescribedSessions)
		assert.Equal(t, "3x/week", stored.Frequency)
		assert.Equal(t, "lumbar", stored.District)
		assert.Equal(t, before.Version+1, stored.Version)
	})

	t.Run("descriptive fields only emit no prescription event", func(t *testing.T) {
		f.events = nil
		_, err := f.tracker.UpdateTherapy(t.Context(), th.ID, TherapyUpdate{Notes: strPtr("progressing")})
		require.NoError(t, err)
		assert.Equal(t, "progressing", f.reloadTherapy(t, th.ID).Notes)
		assert.Empty(t, f.events)
	})

	t.Run("missing therapy", func(t *testing.T) {
		_, err := f.tracker.UpdateTherapy(t.Context(), 999, TherapyUpdate{Notes: strPtr("x")})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSuspendResume(t *testing.T) {
	f := newFixture(t)
	th := f.prescribe(t, 3)
	sessions := f.schedule(t, th.ID, 3)
	_, err := f.tracker.CompleteSession(t.Context(), sessions[0].ID, nil, nil)
	require.NoError(t, err)

	suspended, err := f.tracker.Suspend(t.Context(), th.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TherapySuspended, suspended.Status)

	_, err = f.tracker.Suspend(t.Context(), th.ID)
	assert.ErrorIs(t, err, ErrConflict)

	resumed, err := f.tracker.Resume(t.Context(), th.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TherapyInProgress, resumed.Status)

	_, err = f.tracker.Resume(t.Context(), th.ID)
	assert.ErrorIs(t, err, ErrConflict)

	assert.Equal(t, []EventType{
		EventTherapyPrescribed, EventSessionsScheduled, EventSessionCompleted, EventTherapySuspended, EventTherapyResumed,
	}, f.eventTypes())
}

func TestCloseRecord_SuspendsOpenTherapies(t *testing.T) {
	f := newFixture(t)
	open := f.prescribe(t, 2)
	done := f.prescribe(t, 1)
	s := f.schedule(t, done.ID, 1)
	_, err := f.tracker.CompleteSession(t.Context(), s[0].ID, nil, nil)
	require.NoError(t, err)

	record, err := f.tracker.CloseRecord(t.Context(), f.record.ID)
	require.NoError(t, err)
	assert.False(t, record.IsActive)
	require.NotNil(t, record.ClosedAt)

	assert.Equal(t, model.TherapySuspended, f.reloadTherapy(t, open.ID).Status)
	assert.Equal(t, model.TherapyCompleted, f.reloadTherapy(t, done.ID).Status)

	_, err = f.tracker.CloseRecord(t.Context(), f.record.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSaveTherapy_StaleVersion(t *testing.T) {
	f := newFixture(t)
	th := f.prescribe(t, 4)
	stale := *th
	f.schedule(t, th.ID, 1) // bumps the stored version

	err := f.db.Transaction(func(tx *gorm.DB) error {
		return saveTherapy(tx, &stale, map[string]interface{}{"completed_sessions": 1})
	})

	assert.ErrorIs(t, err, ErrConflict)
	reloaded := f.reloadTherapy(t, th.ID)
	assert.Equal(t, 0, reloaded.CompletedSessions)
	assert.Equal(t, 2, reloaded.Version)
}
