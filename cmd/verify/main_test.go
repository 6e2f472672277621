package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/ariebrainware/clinic-therapy/config"
	"github.com/ariebrainware/clinic-therapy/model"
	"github.com/ariebrainware/clinic-therapy/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, 0, report(&buf, nil))
	assert.Contains(t, buf.String(), "no violations")

	buf.Reset()
	code := report(&buf, []tracker.Violation{
		{TherapyID: 3, Rule: tracker.RuleCounter, Detail: "completed_sessions is 2 but 1 sessions are COMPLETED"},
	})
	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "therapy 3: COUNTER")
	assert.Contains(t, buf.String(), "1 violation(s)")
}

func TestCollect_FindsTamperedCounter(t *testing.T) {
	t.Setenv("APPENV", "test")
	db, err := config.ConnectMySQL()
	require.NoError(t, err)
	require.NoError(t, model.Migrate(db))

	patient := model.Patient{FullName: "Jane Roe", PatientCode: "J1"}
	require.NoError(t, db.Create(&patient).Error)
	record := model.ClinicalRecord{PatientID: patient.ID, Diagnosis: "Knee osteoarthritis", IsActive: true}
	require.NoError(t, db.Create(&record).Error)

	var tt model.TherapyType
	require.NoError(t, db.Where("code = ?", "LASER").First(&tt).Error)

	ctx := context.Background()
	tr := tracker.New(db)
	th, err := tr.Prescribe(ctx, tracker.PrescribeRequest{ClinicalRecordID: record.ID, TherapyTypeID: tt.ID, PrescribedSessions: 3})
	require.NoError(t, err)

	violations, err := collect(ctx, tr, 0)
	require.NoError(t, err)
	assert.Empty(t, violations)

	require.NoError(t, db.Model(&model.Therapy{}).Where("id = ?", th.ID).Update("completed_sessions", 2).Error)

	violations, err = collect(ctx, tr, th.ID)
	require.NoError(t, err)
	require.NotEmpty(t, violations)
	assert.Equal(t, tracker.RuleCounter, violations[0].Rule)
}
