package service

import (
	"edu_consult_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ts(offsetHours int) *time.Time {
	t := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(offsetHours) * time.Hour)
	return &t
}

func TestCounselorStatsFromLog(t *testing.T) {
	log := []model.Assignment{
		{Status: model.AssignmentPending},
		{Status: model.AssignmentApproved, ApprovedAt: ts(0)},
		{Status: model.AssignmentCompleted, ApprovedAt: ts(1), CompletedAt: ts(2)},
		{Status: model.AssignmentCompleted, ApprovedAt: ts(3), CompletedAt: ts(4)},
		{Status: model.AssignmentRejected},
		{Status: model.AssignmentCancelled, ApprovedAt: ts(5)},
	}

	stats := CounselorStatsFromLog(log)

	assert.Equal(t, 4, stats.Total, "rejected and cancelled do not count toward total")
	assert.Equal(t, 1, stats.Active)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 50, stats.SuccessRate)

	// 面板之间必须自洽
	assert.Equal(t, stats.Total, stats.Active+stats.Pending+stats.Completed)
}

func TestCounselorStatsEmptyLog(t *testing.T) {
	stats := CounselorStatsFromLog(nil)
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.SuccessRate, "no assignments means 0%, not NaN")
}

func TestCounselorStatsSuccessRateRounding(t *testing.T) {
	log := []model.Assignment{
		{Status: model.AssignmentCompleted, CompletedAt: ts(0)},
		{Status: model.AssignmentApproved, ApprovedAt: ts(1)},
		{Status: model.AssignmentPending},
	}
	// 1/3 = 33.33… → 33
	assert.Equal(t, 33, CounselorStatsFromLog(log).SuccessRate)

	log = append(log, model.Assignment{Status: model.AssignmentCompleted, CompletedAt: ts(2)},
		model.Assignment{Status: model.AssignmentCompleted, CompletedAt: ts(3)},
		model.Assignment{Status: model.AssignmentCompleted, CompletedAt: ts(4)})
	// 4/6 = 66.67 → 67
	assert.Equal(t, 67, CounselorStatsFromLog(log).SuccessRate)
}

func TestActiveCounselorIDLatestApprovedWins(t *testing.T) {
	log := []model.Assignment{
		{CounselorID: 1, Status: model.AssignmentApproved, ApprovedAt: ts(0)},
		{CounselorID: 2, Status: model.AssignmentApproved, ApprovedAt: ts(5)},
		{CounselorID: 3, Status: model.AssignmentCompleted, ApprovedAt: ts(10), CompletedAt: ts(11)},
	}

	id, ok := ActiveCounselorID(log)
	assert.True(t, ok)
	assert.Equal(t, uint(2), id, "completed engagements are no longer active; latest approved wins")
}

func TestActiveCounselorIDNoneActive(t *testing.T) {
	log := []model.Assignment{
		{CounselorID: 1, Status: model.AssignmentPending},
		{CounselorID: 2, Status: model.AssignmentRejected},
		{CounselorID: 3, Status: model.AssignmentCompleted, ApprovedAt: ts(0), CompletedAt: ts(1)},
		{CounselorID: 4, Status: model.AssignmentCancelled, ApprovedAt: ts(2)},
	}

	_, ok := ActiveCounselorID(log)
	assert.False(t, ok)

	_, ok = ActiveCounselorID(nil)
	assert.False(t, ok)
}
