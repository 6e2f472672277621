package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ariebrainware/clinic-therapy/model"
	"github.com/ariebrainware/clinic-therapy/tracker"
	"github.com/ariebrainware/clinic-therapy/util"
	"github.com/brianvoe/gofakeit/v7"
	"gorm.io/gorm"
)

var diagnoses = []string{
	"Lumbar disc herniation",
	"Cervical spondylosis",
	"Rotator cuff tendinopathy",
	"Knee osteoarthritis",
	"Plantar fasciitis",
	"Lateral epicondylitis",
	"Ankle sprain",
}

var districts = []string{"lumbar", "cervical", "shoulder", "knee", "foot", "elbow", "ankle"}

type demoStats struct {
	Patients  int
	Therapies int
	Sessions  int
	Completed int
}

// seedDemo creates n fake patients, each with one open clinical record and a
// therapy of a random type. Sessions are scheduled and partly completed
// through the tracker so counters and statuses stay consistent.
func seedDemo(ctx context.Context, db *gorm.DB, tr *tracker.Tracker, f *gofakeit.Faker, n int) (demoStats, error) {
	var stats demoStats

	var types []model.TherapyType
	if err := db.Find(&types).Error; err != nil {
		return stats, err
	}
	if len(types) == 0 {
		return stats, fmt.Errorf("no therapy types seeded")
	}

	therapists, err := seedTherapists(db, f, 3)
	if err != nil {
		return stats, err
	}

	for i := 0; i < n; i++ {
		patient, err := createDemoPatient(db, f)
		if err != nil {
			return stats, err
		}
		stats.Patients++

		opened := f.DateRange(time.Now().AddDate(0, -3, 0), time.Now().AddDate(0, 0, -7))
		pick := f.IntRange(0, len(diagnoses)-1)
		record := model.ClinicalRecord{
			PatientID: patient.ID,
			Diagnosis: diagnoses[pick],
			Notes:     "Referred by " + f.Name(),
			IsActive:  true,
			OpenedAt:  opened,
		}
		if err := db.Create(&record).Error; err != nil {
			return stats, fmt.Errorf("create record for %s: %w", patient.PatientCode, err)
		}

		tt := types[f.IntRange(0, len(types)-1)]
		th, err := tr.Prescribe(ctx, tracker.PrescribeRequest{
			ClinicalRecordID: record.ID,
			TherapyTypeID:    tt.ID,
			Frequency:        fmt.Sprintf("%dx/week", f.IntRange(1, 3)),
			District:         districts[pick],
		})
		if err != nil {
			return stats, err
		}
		stats.Therapies++

		therapist := therapists[f.IntRange(0, len(therapists)-1)].ID
		sessions, err := tr.ScheduleSessions(ctx, tracker.ScheduleRequest{
			TherapyID:   th.ID,
			Count:       th.PrescribedSessions,
			StartDate:   opened.AddDate(0, 0, 1),
			CadenceDays: f.IntRange(2, 4),
			TherapistID: &therapist,
		})
		if err != nil {
			return stats, err
		}
		stats.Sessions += len(sessions)

		// Pain decreases as the therapy progresses.
		vas := f.IntRange(6, model.VASMax)
		for _, s := range sessions[:f.IntRange(0, len(sessions))] {
			before := vas
			after := before - f.IntRange(0, 2)
			if after < model.VASMin {
				after = model.VASMin
			}
			if _, err := tr.CompleteSession(ctx, s.ID, &before, &after); err != nil {
				return stats, err
			}
			stats.Completed++
			vas = after
		}
	}
	return stats, nil
}

func seedTherapists(db *gorm.DB, f *gofakeit.Faker, n int) ([]model.Therapist, error) {
	therapists := make([]model.Therapist, 0, n)
	for i := 0; i < n; i++ {
		th := model.Therapist{
			FullName:    util.NormalizeName(f.Name()),
			Email:       f.Email(),
			PhoneNumber: f.Phone(),
			Address:     f.Address().Address,
			Role:        "Physiotherapist",
			IsApproved:  true,
		}
		if err := db.Create(&th).Error; err != nil {
			return nil, err
		}
		therapists = append(therapists, th)
	}
	return therapists, nil
}

func createDemoPatient(db *gorm.DB, f *gofakeit.Faker) (model.Patient, error) {
	p := model.Patient{
		FullName:    util.NormalizeName(f.Name()),
		Gender:      f.RandomString([]string{"Male", "Female"}),
		Age:         f.IntRange(18, 85),
		Job:         f.JobTitle(),
		Address:     f.Address().Address,
		PhoneNumber: util.JoinPhoneNumbers([]string{f.Phone()}),
		Email:       f.Email(),
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		code, err := model.NextPatientCode(tx, p.FullName)
		if err != nil {
			return err
		}
		p.PatientCode = code
		return tx.Create(&p).Error
	})
	return p, err
}
