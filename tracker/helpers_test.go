package tracker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ariebrainware/clinic-therapy/model"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var baseDate = time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC)

func setupTrackerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb_tracker_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Patient{},
		&model.ClinicalRecord{},
		&model.TherapyType{},
		&model.Therapy{},
		&model.TherapySession{},
		&model.Therapist{},
	))
	require.NoError(t, model.SeedTherapyTypes(db))
	return db
}

type fixture struct {
	db      *gorm.DB
	tracker *Tracker
	record  model.ClinicalRecord
	tecar   model.TherapyType
	events  []Event
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{db: setupTrackerDB(t)}

	patient := model.Patient{FullName: "Jane Doe", PatientCode: "J1"}
	require.NoError(t, f.db.Create(&patient).Error)
	f.record = model.ClinicalRecord{PatientID: patient.ID, Diagnosis: "Lumbar pain", IsActive: true, OpenedAt: baseDate}
	require.NoError(t, f.db.Create(&f.record).Error)
	require.NoError(t, f.db.Where("code = ?", "TECAR").First(&f.tecar).Error)

	clock := baseDate
	opts = append([]Option{
		WithClock(func() time.Time { return clock }),
		WithAuditor(AuditorFunc(func(_ context.Context, ev Event) { f.events = append(f.events, ev) })),
	}, opts...)
	f.tracker = New(f.db, opts...)
	return f
}

func (f *fixture) prescribe(t *testing.T, sessions int) *model.Therapy {
	t.Helper()
	th, err := f.tracker.Prescribe(t.Context(), PrescribeRequest{
		ClinicalRecordID:   f.record.ID,
		TherapyTypeID:      f.tecar.ID,
		PrescribedSessions: sessions,
		Frequency:          "2x/week",
	})
	require.NoError(t, err)
	return th
}

func (f *fixture) schedule(t *testing.T, therapyID uint, count int) []model.TherapySession {
	t.Helper()
	sessions, err := f.tracker.ScheduleSessions(t.Context(), ScheduleRequest{
		TherapyID:   therapyID,
		Count:       count,
		StartDate:   baseDate,
		CadenceDays: 3,
	})
	require.NoError(t, err)
	return sessions
}

func (f *fixture) reloadTherapy(t *testing.T, id uint) model.Therapy {
	t.Helper()
	var th model.Therapy
	require.NoError(t, f.db.First(&th, id).Error)
	return th
}

func (f *fixture) eventTypes() []EventType {
	out := make([]EventType, 0, len(f.events))
	for _, ev := range f.events {
		out = append(out, ev.Type)
	}
	return out
}

func intPtr(v int) *int { return &v }
