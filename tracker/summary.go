package tracker

import (
	"context"

	"github.com/ariebrainware/clinic-therapy/model"
	"gorm.io/gorm"
)

// Summary is the derived progress of one therapy.
// @Description Therapy progress summary
type Summary struct {
	TherapyID             uint                `json:"therapy_id" example:"1"`
	Status                model.TherapyStatus `json:"status" example:"IN_PROGRESS"`
	Prescribed            int                 `json:"prescribed" example:"10"`
	Completed             int                 `json:"completed" example:"3"`
	Scheduled             int                 `json:"scheduled" example:"7"`
	Cancelled             int                 `json:"cancelled" example:"0"`
	Remaining             int                 `json:"remaining" example:"7"`
	AverageVasImprovement *float64            `json:"average_vas_improvement" example:"2.5"`
	ScoredSessions        int                 `json:"scored_sessions" example:"2"`
}

type statusCount struct {
	Status model.SessionStatus
	Total  int
}

// ProgressSummary aggregates the sessions of a therapy. The average VAS
// improvement only considers completed sessions carrying both scores and is
// nil when there are none.
func (t *Tracker) ProgressSummary(ctx context.Context, therapyID uint) (*Summary, error) {
	var sum *Summary
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		th, err := findTherapy(tx, therapyID)
		if err != nil {
			return err
		}
		sum = &Summary{
			TherapyID:  th.ID,
			Status:     th.Status,
			Prescribed: th.PrescribedSessions,
			Completed:  th.CompletedSessions,
			Remaining:  th.Remaining(),
		}

		var counts []statusCount
		if err := tx.Model(&model.TherapySession{}).
			Select("status, COUNT(*) AS total").
			Where("therapy_id = ?", th.ID).
			Group("status").
			Scan(&counts).Error; err != nil {
			return err
		}
		for _, c := range counts {
			switch c.Status {
			case model.SessionScheduled:
				sum.Scheduled = c.Total
			case model.SessionCancelled:
				sum.Cancelled = c.Total
			}
		}

		var scored []model.TherapySession
		if err := tx.Select("id", "status", "vas_score_before", "vas_score_after").
			Where("therapy_id = ? AND status = ? AND vas_score_before IS NOT NULL AND vas_score_after IS NOT NULL",
				th.ID, model.SessionCompleted).
			Find(&scored).Error; err != nil {
			return err
		}
		sum.AverageVasImprovement, sum.ScoredSessions = averageImprovement(scored)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sum, nil
}

func averageImprovement(sessions []model.TherapySession) (*float64, int) {
	var total, n int
	for i := range sessions {
		if d, ok := sessions[i].VasImprovement(); ok {
			total += d
			n++
		}
	}
	if n == 0 {
		return nil, 0
	}
	avg := float64(total) / float64(n)
	return &avg, n
}
