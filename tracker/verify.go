package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariebrainware/clinic-therapy/model"
	"gorm.io/gorm"
)

// Rule identifies a consistency rule checked by Verify.
type Rule string

const (
	RuleNumbering      Rule = "NUMBERING"
	RuleCounter        Rule = "COUNTER"
	RuleOverPrescribed Rule = "OVER_PRESCRIBED"
	RuleStatus         Rule = "STATUS"
	RuleVAS            Rule = "VAS"
)

// Violation is a broken consistency rule on a therapy.
type Violation struct {
	TherapyID uint   `json:"therapy_id"`
	Rule      Rule   `json:"rule"`
	Detail    string `json:"detail"`
}

func (v Violation) String() string {
	return fmt.Sprintf("therapy %d: %s: %s", v.TherapyID, v.Rule, v.Detail)
}

// Verify checks a therapy against its sessions: numbers are exactly 1..N,
// the completed counter matches the COMPLETED sessions, status agrees with
// the counter, and VAS scores only sit on completed sessions.
func (t *Tracker) Verify(ctx context.Context, therapyID uint) ([]Violation, error) {
	var th model.Therapy
	err := t.db.WithContext(ctx).
		Preload("Sessions", func(db *gorm.DB) *gorm.DB {
			return db.Order("session_number ASC")
		}).
		First(&th, therapyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("therapy", therapyID)
		}
		return nil, err
	}
	return checkTherapy(&th), nil
}

// VerifyAll runs Verify over every therapy, in id order, in batches.
func (t *Tracker) VerifyAll(ctx context.Context) ([]Violation, error) {
	var out []Violation
	var batch []model.Therapy
	res := t.db.WithContext(ctx).
		Preload("Sessions", func(db *gorm.DB) *gorm.DB {
			return db.Order("session_number ASC")
		}).
		Order("id ASC").
		FindInBatches(&batch, 100, func(_ *gorm.DB, _ int) error {
			for i := range batch {
				out = append(out, checkTherapy(&batch[i])...)
			}
			return nil
		})
	if res.Error != nil {
		return nil, res.Error
	}
	return out, nil
}

func checkTherapy(th *model.Therapy) []Violation {
	var out []Violation
	add := func(rule Rule, format string, args ...any) {
		out = append(out, Violation{TherapyID: th.ID, Rule: rule, Detail: fmt.Sprintf(format, args...)})
	}

	completed, active := 0, 0
	for i, s := range th.Sessions {
		if s.SessionNumber != i+1 {
			add(RuleNumbering, "session %d has number %d, expected %d", s.ID, s.SessionNumber, i+1)
		}
		switch s.Status {
		case model.SessionCompleted:
			completed++
			active++
		case model.SessionScheduled:
			active++
		}
		if s.Status != model.SessionCompleted && (s.VasScoreBefore != nil || s.VasScoreAfter != nil) {
			add(RuleVAS, "session #%d is %s but carries VAS scores", s.SessionNumber, s.Status)
		}
		for _, v := range []*int{s.VasScoreBefore, s.VasScoreAfter} {
			if v != nil && (*v < model.VASMin || *v > model.VASMax) {
				add(RuleVAS, "session #%d has VAS %d outside %d..%d", s.SessionNumber, *v, model.VASMin, model.VASMax)
			}
		}
	}

	if completed != th.CompletedSessions {
		add(RuleCounter, "completed_sessions is %d but %d sessions are COMPLETED", th.CompletedSessions, completed)
	}
	if th.CompletedSessions > th.PrescribedSessions {
		add(RuleOverPrescribed, "completed_sessions %d exceeds prescribed %d", th.CompletedSessions, th.PrescribedSessions)
	}
	if active > th.PrescribedSessions {
		add(RuleOverPrescribed, "%d active sessions exceed prescribed %d", active, th.PrescribedSessions)
	}
	if th.Status != model.TherapySuspended && th.Status != th.ProgressStatus() {
		add(RuleStatus, "status is %s, counters imply %s", th.Status, th.ProgressStatus())
	}
	if th.Status == model.TherapySuspended && th.ProgressStatus() == model.TherapyCompleted {
		add(RuleStatus, "therapy is SUSPENDED but all prescribed sessions are completed")
	}
	return out
}
