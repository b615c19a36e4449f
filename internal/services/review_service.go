package services

import (
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/KrishnaBabuLaveti/Student-Project-Management/models"
)

// Aggregate score weights. Fixed by contract for compatibility with
// historical data; never configurable.
const (
	supervisorWeight = 0.4
	panelWeight      = 0.6
)

// PanelSize is the exact number of faculty on a global review panel.
const PanelSize = 3

// ReviewPayload carries the editable fields of a review.
type ReviewPayload struct {
	Title       string
	Date        time.Time
	Description string
}

// ReviewService implements the review lifecycle: scheduling, panel and
// supervisor scoring, aggregation and completion.
type ReviewService struct {
	db       *gorm.DB
	notifier Notifier
}

func NewReviewService(db *gorm.DB, notifier Notifier) *ReviewService {
	return &ReviewService{db: db, notifier: notifier}
}

func validScore(score float64) bool {
	return !math.IsNaN(score) && !math.IsInf(score, 0) && score >= 0 && score <= 100
}

// ScheduleGlobalReview fans one review payload out to every selected batch.
// Each batch gets its own review row with the shared title, date, description
// and panel, and independent scores. Requires exactly three distinct faculty
// panel members and at least one batch.
func (s *ReviewService) ScheduleGlobalReview(supervisorID uint, batchIDs []uint, payload ReviewPayload, panelMemberIDs []uint) ([]models.Review, error) {
	if payload.Title == "" || payload.Date.IsZero() {
		return nil, &ValidationError{Msg: "title and date are required"}
	}
	if len(batchIDs) == 0 {
		return nil, &ValidationError{Msg: "please select at least one batch"}
	}

	distinct := make(map[uint]bool, len(panelMemberIDs))
	for _, id := range panelMemberIDs {
		distinct[id] = true
	}
	if len(panelMemberIDs) != PanelSize || len(distinct) != PanelSize {
		return nil, &ValidationError{Msg: fmt.Sprintf("exactly %d distinct panel members are required", PanelSize)}
	}

	var reviews []models.Review
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var facultyCount int64
		if err := tx.Model(&models.User{}).
			Where("id IN ? AND role = ?", panelMemberIDs, models.RoleFaculty).
			Count(&facultyCount).Error; err != nil {
			return err
		}
		if facultyCount != PanelSize {
			return &ValidationError{Msg: "every panel member must be a faculty user"}
		}

		var batches []models.Batch
		if err := tx.Where("id IN ?", batchIDs).Find(&batches).Error; err != nil {
			return err
		}
		if len(batches) == 0 {
			return &NotFoundError{Entity: "batch"}
		}

		for _, batch := range batches {
			review := models.Review{
				BatchID:       batch.ID,
				Title:         payload.Title,
				Date:          payload.Date,
				Description:   payload.Description,
				IsGlobal:      true,
				ScheduledByID: supervisorID,
			}
			for _, memberID := range panelMemberIDs {
				review.PanelMembers = append(review.PanelMembers, models.PanelMember{MemberID: memberID})
			}
			if err := tx.Create(&review).Error; err != nil {
				return err
			}
			reviews = append(reviews, review)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fanOut(s.db, s.notifier, panelMemberIDs, models.Notification{
		Type:           models.NotificationReview,
		Title:          "Panel Member Assignment",
		Message:        fmt.Sprintf("You have been assigned as a panel member for the global review: %s", payload.Title),
		RelatedToModel: "Batch",
		RelatedToID:    reviews[0].BatchID,
		FromID:         &supervisorID,
	})

	return reviews, nil
}

// ScheduleLocalReview schedules a batch-only review. Only the batch's
// assigned faculty guide may do this; local reviews carry no panel.
func (s *ReviewService) ScheduleLocalReview(facultyID, batchID uint, payload ReviewPayload) (*models.Review, error) {
	if payload.Title == "" || payload.Date.IsZero() {
		return nil, &ValidationError{Msg: "title and date are required"}
	}

	var review models.Review
	var studentIDs []uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var batch models.Batch
		if err := tx.First(&batch, batchID).Error; err != nil {
			return &NotFoundError{Entity: "batch", ID: batchID}
		}
		if batch.FacultyID == nil || *batch.FacultyID != facultyID {
			return &ForbiddenError{Msg: "you are not authorized to schedule reviews for this batch"}
		}

		review = models.Review{
			BatchID:       batch.ID,
			Title:         payload.Title,
			Date:          payload.Date,
			Description:   payload.Description,
			IsGlobal:      false,
			ScheduledByID: facultyID,
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}

		return tx.Model(&models.BatchStudent{}).
			Where("batch_id = ?", batch.ID).
			Pluck("student_id", &studentIDs).Error
	})
	if err != nil {
		return nil, err
	}

	fanOut(s.db, s.notifier, studentIDs, models.Notification{
		Type:           models.NotificationReview,
		Title:          "Review Scheduled",
		Message:        fmt.Sprintf("A new review %q has been scheduled for your batch", payload.Title),
		RelatedToModel: "Batch",
		RelatedToID:    batchID,
		FromID:         &facultyID,
	})

	return &review, nil
}

// SubmitPanelScore records one panel member's score and feedback. The write
// targets only that member's panel row, so concurrent submissions from other
// panel members are never clobbered. Whichever of the last panel score and
// the supervisor score arrives later also performs the aggregation.
func (s *ReviewService) SubmitPanelScore(batchID, reviewID, facultyID uint, score float64, feedback string) (*models.Review, error) {
	if !validScore(score) {
		return nil, &ValidationError{Msg: "score must be a number between 0 and 100"}
	}

	var scheduledByID uint
	var title string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		review, err := loadReview(tx, batchID, reviewID)
		if err != nil {
			return err
		}
		if !review.IsGlobal {
			return &NotFoundError{Entity: "global review", ID: reviewID}
		}
		if review.Completed {
			return &InvalidStateError{Msg: "review is already completed"}
		}

		result := tx.Model(&models.PanelMember{}).
			Where("review_id = ? AND member_id = ?", reviewID, facultyID).
			Updates(map[string]interface{}{"score": score, "feedback": feedback})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return &ForbiddenError{Msg: "not authorized as panel member"}
		}

		scheduledByID = review.ScheduledByID
		title = review.Title
		return s.finalizeIfComplete(tx, reviewID)
	})
	if err != nil {
		return nil, err
	}

	fanOut(s.db, s.notifier, []uint{scheduledByID}, models.Notification{
		Type:           models.NotificationReview,
		Title:          "Panel Score Submitted",
		Message:        fmt.Sprintf("A panel score has been submitted for review %q", title),
		RelatedToModel: "Batch",
		RelatedToID:    batchID,
		FromID:         &facultyID,
	})

	return s.GetReview(batchID, reviewID)
}

// SubmitSupervisorScore records the supervisor's score with mandatory
// feedback and runs the same aggregation check as the panel path.
func (s *ReviewService) SubmitSupervisorScore(batchID, reviewID, supervisorID uint, score float64, feedback string) (*models.Review, error) {
	if feedback == "" {
		return nil, &ValidationError{Msg: "both feedback and score are required"}
	}
	if !validScore(score) {
		return nil, &ValidationError{Msg: "score must be a number between 0 and 100"}
	}

	var facultyID *uint
	var title string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		review, err := loadReview(tx, batchID, reviewID)
		if err != nil {
			return err
		}
		if !review.IsGlobal {
			return &ForbiddenError{Msg: "not authorized to complete this review"}
		}
		if review.Completed {
			return &InvalidStateError{Msg: "review is already completed"}
		}

		if err := tx.Model(&models.Review{}).
			Where("id = ? AND batch_id = ?", reviewID, batchID).
			Update("supervisor_score", score).Error; err != nil {
			return err
		}
		entry := models.ReviewFeedback{ReviewID: reviewID, FromID: supervisorID, Comment: feedback}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		var batch models.Batch
		if err := tx.First(&batch, batchID).Error; err != nil {
			return err
		}
		facultyID = batch.FacultyID
		title = review.Title
		return s.finalizeIfComplete(tx, reviewID)
	})
	if err != nil {
		return nil, err
	}

	if facultyID != nil {
		fanOut(s.db, s.notifier, []uint{*facultyID}, models.Notification{
			Type:           models.NotificationFeedback,
			Title:          "Review Feedback Added",
			Message:        fmt.Sprintf("Supervisor has added feedback to the review %q", title),
			RelatedToModel: "Batch",
			RelatedToID:    batchID,
			FromID:         &supervisorID,
		})
	}

	return s.GetReview(batchID, reviewID)
}

// CompleteLocalReview marks a faculty-scheduled review as done with closing
// feedback. Global reviews can never be completed through this path.
func (s *ReviewService) CompleteLocalReview(batchID, reviewID, facultyID uint, feedback string) (*models.Review, error) {
	var studentIDs []uint
	var title string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var batch models.Batch
		if err := tx.First(&batch, batchID).Error; err != nil {
			return &NotFoundError{Entity: "batch", ID: batchID}
		}
		if batch.FacultyID == nil || *batch.FacultyID != facultyID {
			return &ForbiddenError{Msg: "you are not authorized to complete reviews for this batch"}
		}

		review, err := loadReview(tx, batchID, reviewID)
		if err != nil {
			return err
		}
		if review.IsGlobal {
			return &ForbiddenError{Msg: "faculty cannot complete global reviews scheduled by supervisors"}
		}

		if err := tx.Model(&models.Review{}).
			Where("id = ? AND batch_id = ?", reviewID, batchID).
			Update("completed", true).Error; err != nil {
			return err
		}
		entry := models.ReviewFeedback{ReviewID: reviewID, FromID: facultyID, Comment: feedback}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		title = review.Title
		return tx.Model(&models.BatchStudent{}).
			Where("batch_id = ?", batchID).
			Pluck("student_id", &studentIDs).Error
	})
	if err != nil {
		return nil, err
	}

	fanOut(s.db, s.notifier, studentIDs, models.Notification{
		Type:           models.NotificationReview,
		Title:          "Review Completed",
		Message:        fmt.Sprintf("The review %q has been completed with feedback", title),
		RelatedToModel: "Batch",
		RelatedToID:    batchID,
		FromID:         &facultyID,
	})

	return s.GetReview(batchID, reviewID)
}

// EditReview updates title, date and description of a pending review. Panel
// composition and scores are never editable.
func (s *ReviewService) EditReview(batchID, reviewID, editorID uint, payload ReviewPayload) (*models.Review, error) {
	if payload.Title == "" || payload.Date.IsZero() {
		return nil, &ValidationError{Msg: "title and date are required"}
	}

	var facultyID *uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		review, err := loadReview(tx, batchID, reviewID)
		if err != nil {
			return err
		}
		if review.Completed {
			return &InvalidStateError{Msg: "cannot update completed reviews"}
		}

		if err := tx.Model(&models.Review{}).
			Where("id = ? AND batch_id = ?", reviewID, batchID).
			Updates(map[string]interface{}{
				"title":       payload.Title,
				"date":        payload.Date,
				"description": payload.Description,
			}).Error; err != nil {
			return err
		}

		var batch models.Batch
		if err := tx.First(&batch, batchID).Error; err != nil {
			return err
		}
		facultyID = batch.FacultyID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if facultyID != nil {
		fanOut(s.db, s.notifier, []uint{*facultyID}, models.Notification{
			Type:           models.NotificationReview,
			Title:          "Review Updated",
			Message:        fmt.Sprintf("Review %q has been updated", payload.Title),
			RelatedToModel: "Batch",
			RelatedToID:    batchID,
			FromID:         &editorID,
		})
	}

	return s.GetReview(batchID, reviewID)
}

// DeleteReview hard-deletes a pending review along with its panel and
// feedback rows. Completed reviews are immutable.
func (s *ReviewService) DeleteReview(batchID, reviewID, deleterID uint) error {
	var facultyID *uint
	var title string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		review, err := loadReview(tx, batchID, reviewID)
		if err != nil {
			return err
		}
		if review.Completed {
			return &InvalidStateError{Msg: "cannot delete completed reviews"}
		}

		if err := tx.Where("review_id = ?", reviewID).Delete(&models.PanelMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("review_id = ?", reviewID).Delete(&models.ReviewFeedback{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Review{}, reviewID).Error; err != nil {
			return err
		}

		var batch models.Batch
		if err := tx.First(&batch, batchID).Error; err != nil {
			return err
		}
		facultyID = batch.FacultyID
		title = review.Title
		return nil
	})
	if err != nil {
		return err
	}

	if facultyID != nil {
		fanOut(s.db, s.notifier, []uint{*facultyID}, models.Notification{
			Type:           models.NotificationReview,
			Title:          "Review Cancelled",
			Message:        fmt.Sprintf("Review %q has been cancelled", title),
			RelatedToModel: "Batch",
			RelatedToID:    batchID,
			FromID:         &deleterID,
		})
	}

	return nil
}

// GetReview loads one review with its panel and feedback entries.
func (s *ReviewService) GetReview(batchID, reviewID uint) (*models.Review, error) {
	var review models.Review
	err := s.db.Preload("PanelMembers").Preload("Feedback").
		Where("id = ? AND batch_id = ?", reviewID, batchID).
		First(&review).Error
	if err != nil {
		return nil, &NotFoundError{Entity: "review", ID: reviewID}
	}
	return &review, nil
}

// finalizeIfComplete recomputes the aggregate from the current rows and marks
// the review completed once every panel score and the supervisor score are
// present. Recomputing from state (rather than incrementing) keeps the check
// idempotent, so the panel-last and supervisor-last paths may both trigger it
// in any order.
func (s *ReviewService) finalizeIfComplete(tx *gorm.DB, reviewID uint) error {
	var review models.Review
	if err := tx.First(&review, reviewID).Error; err != nil {
		return err
	}
	if review.Completed || review.SupervisorScore == nil {
		return nil
	}

	var panel []models.PanelMember
	if err := tx.Where("review_id = ?", reviewID).Find(&panel).Error; err != nil {
		return err
	}
	if len(panel) != PanelSize {
		return nil
	}

	var sum float64
	for _, pm := range panel {
		if pm.Score == nil {
			return nil
		}
		sum += *pm.Score
	}

	aggregate := *review.SupervisorScore*supervisorWeight + (sum/float64(len(panel)))*panelWeight
	return tx.Model(&models.Review{}).
		Where("id = ?", reviewID).
		Updates(map[string]interface{}{"aggregate_score": aggregate, "completed": true}).Error
}

func loadReview(tx *gorm.DB, batchID, reviewID uint) (*models.Review, error) {
	var batch models.Batch
	if err := tx.First(&batch, batchID).Error; err != nil {
		return nil, &NotFoundError{Entity: "batch", ID: batchID}
	}
	var review models.Review
	if err := tx.Where("id = ? AND batch_id = ?", reviewID, batchID).First(&review).Error; err != nil {
		return nil, &NotFoundError{Entity: "review", ID: reviewID}
	}
	return &review, nil
}
