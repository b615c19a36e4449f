package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/KrishnaBabuLaveti/Student-Project-Management/models"
)

// reviewFixture is the usual cast: one supervisor, a guided batch of two
// students and a three-member panel.
type reviewFixture struct {
	db           *gorm.DB
	svc          *ReviewService
	supervisorID uint
	guideID      uint
	panelIDs     []uint
	studentIDs   []uint
	batchID      uint
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	db := newTestDB(t)

	f := &reviewFixture{
		db:           db,
		svc:          NewReviewService(db, NopNotifier{}),
		supervisorID: seedUser(t, db, "Supervisor", models.RoleSupervisor),
		guideID:      seedFaculty(t, db, "Guide", "CSE"),
	}
	for _, name := range []string{"Panel One", "Panel Two", "Panel Three"} {
		f.panelIDs = append(f.panelIDs, seedFaculty(t, db, name, "CSE"))
	}
	f.studentIDs = []uint{
		seedStudent(t, db, "Student One", "CSE", 9.0),
		seedStudent(t, db, "Student Two", "CSE", 8.0),
	}
	f.batchID = seedBatch(t, db, "CSE-2025-A", &f.guideID, f.studentIDs...)
	return f
}

func (f *reviewFixture) scheduleGlobal(t *testing.T) models.Review {
	t.Helper()
	reviews, err := f.svc.ScheduleGlobalReview(f.supervisorID, []uint{f.batchID}, ReviewPayload{
		Title: "Review 1",
		Date:  time.Now().Add(24 * time.Hour),
	}, f.panelIDs)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	return reviews[0]
}

func (f *reviewFixture) scheduleLocal(t *testing.T) models.Review {
	t.Helper()
	review, err := f.svc.ScheduleLocalReview(f.guideID, f.batchID, ReviewPayload{
		Title: "Weekly Sync",
		Date:  time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	return *review
}

func TestScheduleGlobalReviewValidation(t *testing.T) {
	f := newReviewFixture(t)
	date := time.Now().Add(24 * time.Hour)
	var verr *ValidationError

	_, err := f.svc.ScheduleGlobalReview(f.supervisorID, []uint{f.batchID}, ReviewPayload{Date: date}, f.panelIDs)
	require.ErrorAs(t, err, &verr)

	_, err = f.svc.ScheduleGlobalReview(f.supervisorID, nil, ReviewPayload{Title: "R1", Date: date}, f.panelIDs)
	require.ErrorAs(t, err, &verr)

	_, err = f.svc.ScheduleGlobalReview(f.supervisorID, []uint{f.batchID}, ReviewPayload{Title: "R1", Date: date}, f.panelIDs[:2])
	require.ErrorAs(t, err, &verr)

	// Three ids but only two distinct members.
	_, err = f.svc.ScheduleGlobalReview(f.supervisorID, []uint{f.batchID}, ReviewPayload{Title: "R1", Date: date},
		[]uint{f.panelIDs[0], f.panelIDs[0], f.panelIDs[1]})
	require.ErrorAs(t, err, &verr)

	// Students cannot sit on a panel.
	_, err = f.svc.ScheduleGlobalReview(f.supervisorID, []uint{f.batchID}, ReviewPayload{Title: "R1", Date: date},
		[]uint{f.panelIDs[0], f.panelIDs[1], f.studentIDs[0]})
	require.ErrorAs(t, err, &verr)
}

func TestScheduleGlobalReviewFansOutPerBatch(t *testing.T) {
	f := newReviewFixture(t)
	otherStudent := seedStudent(t, f.db, "Student Three", "CSE", 7.5)
	otherBatch := seedBatch(t, f.db, "CSE-2025-B", &f.guideID, otherStudent)

	reviews, err := f.svc.ScheduleGlobalReview(f.supervisorID, []uint{f.batchID, otherBatch}, ReviewPayload{
		Title: "Mid Review",
		Date:  time.Now().Add(48 * time.Hour),
	}, f.panelIDs)
	require.NoError(t, err)
	require.Len(t, reviews, 2)

	for _, review := range reviews {
		assert.True(t, review.IsGlobal)
		assert.False(t, review.Completed)

		var panel []models.PanelMember
		require.NoError(t, f.db.Where("review_id = ?", review.ID).Find(&panel).Error)
		require.Len(t, panel, PanelSize)
		for _, pm := range panel {
			assert.Nil(t, pm.Score)
		}
	}
	// Same payload, independent rows.
	assert.NotEqual(t, reviews[0].ID, reviews[1].ID)
	assert.Equal(t, reviews[0].Title, reviews[1].Title)
}

func TestScheduleLocalReviewOwnership(t *testing.T) {
	f := newReviewFixture(t)

	var ferr *ForbiddenError
	_, err := f.svc.ScheduleLocalReview(f.panelIDs[0], f.batchID, ReviewPayload{
		Title: "Weekly Sync",
		Date:  time.Now().Add(24 * time.Hour),
	})
	require.ErrorAs(t, err, &ferr)

	review := f.scheduleLocal(t)
	assert.False(t, review.IsGlobal)

	var panelCount int64
	require.NoError(t, f.db.Model(&models.PanelMember{}).
		Where("review_id = ?", review.ID).Count(&panelCount).Error)
	assert.Zero(t, panelCount)
}

func TestAggregateScoreSupervisorLast(t *testing.T) {
	f := newReviewFixture(t)
	review := f.scheduleGlobal(t)

	for i, score := range []float64{80, 90, 70} {
		updated, err := f.svc.SubmitPanelScore(f.batchID, review.ID, f.panelIDs[i], score, "ok")
		require.NoError(t, err)
		assert.False(t, updated.Completed)
		assert.Nil(t, updated.AggregateScore)
	}

	final, err := f.svc.SubmitSupervisorScore(f.batchID, review.ID, f.supervisorID, 75, "good progress")
	require.NoError(t, err)
	require.True(t, final.Completed)
	require.NotNil(t, final.AggregateScore)
	// 75*0.4 + mean(80,90,70)*0.6 = 30 + 48
	assert.InDelta(t, 78.0, *final.AggregateScore, 1e-9)
}

func TestAggregateScorePanelLast(t *testing.T) {
	f := newReviewFixture(t)
	review := f.scheduleGlobal(t)

	partial, err := f.svc.SubmitSupervisorScore(f.batchID, review.ID, f.supervisorID, 75, "good progress")
	require.NoError(t, err)
	assert.False(t, partial.Completed)
	assert.Nil(t, partial.AggregateScore)

	for i, score := range []float64{80, 90} {
		partial, err = f.svc.SubmitPanelScore(f.batchID, review.ID, f.panelIDs[i], score, "ok")
		require.NoError(t, err)
		assert.False(t, partial.Completed)
	}

	final, err := f.svc.SubmitPanelScore(f.batchID, review.ID, f.panelIDs[2], 70, "ok")
	require.NoError(t, err)
	require.True(t, final.Completed)
	require.NotNil(t, final.AggregateScore)
	assert.InDelta(t, 78.0, *final.AggregateScore, 1e-9)
}

func TestSubmitPanelScoreValidation(t *testing.T) {
	f := newReviewFixture(t)
	review := f.scheduleGlobal(t)

	var verr *ValidationError
	_, err := f.svc.SubmitPanelScore(f.batchID, review.ID, f.panelIDs[0], 101, "")
	require.ErrorAs(t, err, &verr)
	_, err = f.svc.SubmitPanelScore(f.batchID, review.ID, f.panelIDs[0], -1, "")
	require.ErrorAs(t, err, &verr)
}

func TestSubmitPanelScoreNonMember(t *testing.T) {
	f := newReviewFixture(t)
	review := f.scheduleGlobal(t)

	var ferr *ForbiddenError
	_, err := f.svc.SubmitPanelScore(f.batchID, review.ID, f.guideID, 85, "looks fine")
	require.ErrorAs(t, err, &ferr)
}

func TestSubmitPanelScoreTargetsOwnRow(t *testing.T) {
	f := newReviewFixture(t)
	review := f.scheduleGlobal(t)

	_, err := f.svc.SubmitPanelScore(f.batchID, review.ID, f.panelIDs[0], 80, "first")
	require.NoError(t, err)
	_, err = f.svc.SubmitPanelScore(f.batchID, review.ID, f.panelIDs[1], 90, "second")
	require.NoError(t, err)

	var first models.PanelMember
	require.NoError(t, f.db.Where("review_id = ? AND member_id = ?", review.ID, f.panelIDs[0]).
		First(&first).Error)
	require.NotNil(t, first.Score)
	assert.InDelta(t, 80.0, *first.Score, 1e-9)
	assert.Equal(t, "first", first.Feedback)

	var third models.PanelMember
	require.NoError(t, f.db.Where("review_id = ? AND member_id = ?", review.ID, f.panelIDs[2]).
		First(&third).Error)
	assert.Nil(t, third.Score)
}

func TestSubmitPanelScoreOnLocalReview(t *testing.T) {
	f := newReviewFixture(t)
	review := f.scheduleLocal(t)

	var nferr *NotFoundError
	_, err := f.svc.SubmitPanelScore(f.batchID, review.ID, f.panelIDs[0], 80, "")
	require.ErrorAs(t, err, &nferr)
}

func TestSubmitSupervisorScoreValidation(t *testing.T) {
	f := newReviewFixture(t)
	review := f.scheduleGlobal(t)

	var verr *ValidationError
	_, err := f.svc.SubmitSupervisorScore(f.batchID, review.ID, f.supervisorID, 75, "")
	require.ErrorAs(t, err, &verr)
	_, err = f.svc.SubmitSupervisorScore(f.batchID, review.ID, f.supervisorID, 120, "too generous")
	require.ErrorAs(t, err, &verr)
}

func TestSubmitSupervisorScoreOnLocalReview(t *testing.T) {
	f := newReviewFixture(t)
	review := f.scheduleLocal(t)

	var ferr *ForbiddenError
	_, err := f.svc.SubmitSupervisorScore(f.batchID, review.ID, f.supervisorID, 75, "fine")
	require.ErrorAs(t, err, &ferr)
}

func TestCompletedReviewIsImmutable(t *testing.T) {
	f := newReviewFixture(t)
	review := f.scheduleGlobal(t)

	for i, score := range []float64{80, 90, 70} {
		_, err := f.svc.SubmitPanelScore(f.batchID, review.ID, f.panelIDs[i], score, "ok")
		require.NoError(t, err)
	}
	final, err := f.svc.SubmitSupervisorScore(f.batchID, review.ID, f.supervisorID, 75, "done")
	require.NoError(t, err)
	require.True(t, final.Completed)

	var iserr *InvalidStateError
	_, err = f.svc.SubmitPanelScore(f.batchID, review.ID, f.panelIDs[0], 95, "again")
	require.ErrorAs(t, err, &iserr)
	_, err = f.svc.SubmitSupervisorScore(f.batchID, review.ID, f.supervisorID, 60, "again")
	require.ErrorAs(t, err, &iserr)
	_, err = f.svc.EditReview(f.batchID, review.ID, f.supervisorID, ReviewPayload{
		Title: "Renamed", Date: time.Now().Add(time.Hour),
	})
	require.ErrorAs(t, err, &iserr)
	err = f.svc.DeleteReview(f.batchID, review.ID, f.supervisorID)
	require.ErrorAs(t, err, &iserr)

	// Nothing moved.
	reloaded, err := f.svc.GetReview(f.batchID, review.ID)
	require.NoError(t, err)
	assert.InDelta(t, 78.0, *reloaded.AggregateScore, 1e-9)
}

func TestCompleteLocalReview(t *testing.T) {
	f := newReviewFixture(t)
	review := f.scheduleLocal(t)

	var ferr *ForbiddenError
	_, err := f.svc.CompleteLocalReview(f.batchID, review.ID, f.panelIDs[0], "not my batch")
	require.ErrorAs(t, err, &ferr)

	completed, err := f.svc.CompleteLocalReview(f.batchID, review.ID, f.guideID, "all milestones met")
	require.NoError(t, err)
	assert.True(t, completed.Completed)
	assert.Nil(t, completed.AggregateScore)
	require.Len(t, completed.Feedback, 1)
	assert.Equal(t, "all milestones met", completed.Feedback[0].Comment)
}

func TestCompleteLocalReviewRejectsGlobal(t *testing.T) {
	f := newReviewFixture(t)
	review := f.scheduleGlobal(t)

	var ferr *ForbiddenError
	_, err := f.svc.CompleteLocalReview(f.batchID, review.ID, f.guideID, "trying anyway")
	require.ErrorAs(t, err, &ferr)
}

func TestEditReviewUpdatesPendingOnly(t *testing.T) {
	f := newReviewFixture(t)
	review := f.scheduleGlobal(t)

	newDate := time.Now().Add(72 * time.Hour)
	updated, err := f.svc.EditReview(f.batchID, review.ID, f.supervisorID, ReviewPayload{
		Title:       "Rescheduled Review",
		Date:        newDate,
		Description: "moved to next week",
	})
	require.NoError(t, err)
	assert.Equal(t, "Rescheduled Review", updated.Title)
	assert.Equal(t, "moved to next week", updated.Description)

	// Panel rows survive an edit untouched.
	var panelCount int64
	require.NoError(t, f.db.Model(&models.PanelMember{}).
		Where("review_id = ?", review.ID).Count(&panelCount).Error)
	assert.EqualValues(t, PanelSize, panelCount)
}

func TestDeleteReviewCascades(t *testing.T) {
	f := newReviewFixture(t)
	review := f.scheduleGlobal(t)

	_, err := f.svc.SubmitPanelScore(f.batchID, review.ID, f.panelIDs[0], 80, "ok")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteReview(f.batchID, review.ID, f.supervisorID))

	var nferr *NotFoundError
	_, err = f.svc.GetReview(f.batchID, review.ID)
	require.ErrorAs(t, err, &nferr)

	var panelCount int64
	require.NoError(t, f.db.Model(&models.PanelMember{}).
		Where("review_id = ?", review.ID).Count(&panelCount).Error)
	assert.Zero(t, panelCount)
}
