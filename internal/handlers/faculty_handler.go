package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KrishnaBabuLaveti/Student-Project-Management/config"
	"github.com/KrishnaBabuLaveti/Student-Project-Management/internal/services"
	"github.com/KrishnaBabuLaveti/Student-Project-Management/models"
)

// FacultyDashboardHandler returns the batches assigned to the authenticated
// faculty member, with rosters and reviews.
func FacultyDashboardHandler(c *gin.Context) {
	facultyID := currentUserID(c)

	var totalRows int64
	if err := config.DB.Model(&models.Batch{}).
		Where("faculty_id = ?", facultyID).
		Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not count batches"})
		return
	}

	var batches []models.Batch
	if err := config.DB.
		Preload("Students").
		Preload("Reviews").
		Where("faculty_id = ?", facultyID).
		Order("created_at desc").
		Scopes(Paginate(c)).
		Find(&batches).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch batches"})
		return
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, batches, totalRows))
}

// FacultyBatchHandler returns one of the faculty's batches with every
// submission from its students, newest first.
func FacultyBatchHandler(c *gin.Context) {
	facultyID := currentUserID(c)
	batchID, err := parseID(c, "batchId")
	if err != nil {
		return
	}

	var batch models.Batch
	if err := config.DB.
		Preload("Students").
		Preload("Reviews.PanelMembers").
		Preload("Reviews.Feedback").
		Where("id = ? AND faculty_id = ?", batchID, facultyID).
		First(&batch).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found or access denied"})
		return
	}

	var studentIDs []uint
	for _, bs := range batch.Students {
		studentIDs = append(studentIDs, bs.StudentID)
	}
	var submissions []models.Submission
	if len(studentIDs) > 0 {
		config.DB.Preload("Feedback.From").
			Where("student_id IN ?", studentIDs).
			Order("submitted_at desc").
			Find(&submissions)
	}

	c.JSON(http.StatusOK, gin.H{"batch": batch, "submissions": submissions})
}

// ScheduleLocalReviewHandler schedules a batch-only review; the caller must
// be that batch's guide.
func ScheduleLocalReviewHandler(c *gin.Context) {
	batchID, err := parseID(c, "batchId")
	if err != nil {
		return
	}
	var input struct {
		Title       string    `json:"title" binding:"required"`
		Date        time.Time `json:"date" binding:"required"`
		Description string    `json:"description"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := reviewSvc.ScheduleLocalReview(currentUserID(c), batchID, services.ReviewPayload{
		Title:       input.Title,
		Date:        input.Date,
		Description: input.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// CompleteLocalReviewHandler closes a local review with feedback.
func CompleteLocalReviewHandler(c *gin.Context) {
	batchID, err := parseID(c, "batchId")
	if err != nil {
		return
	}
	reviewID, err := parseID(c, "reviewId")
	if err != nil {
		return
	}
	var input struct {
		Feedback string `json:"feedback" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := reviewSvc.CompleteLocalReview(batchID, reviewID, currentUserID(c), input.Feedback)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// SubmitPanelScoreHandler records the authenticated panel member's score on a
// global review.
func SubmitPanelScoreHandler(c *gin.Context) {
	batchID, err := parseID(c, "batchId")
	if err != nil {
		return
	}
	reviewID, err := parseID(c, "reviewId")
	if err != nil {
		return
	}
	var input struct {
		Score    float64 `json:"score"`
		Feedback string  `json:"feedback"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := reviewSvc.SubmitPanelScore(batchID, reviewID, currentUserID(c), input.Score, input.Feedback)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// SubmissionFeedbackHandler adds faculty feedback to one student submission.
// The caller must be the guide of the student's batch.
func SubmissionFeedbackHandler(c *gin.Context) {
	facultyID := currentUserID(c)
	studentID, err := parseID(c, "studentId")
	if err != nil {
		return
	}
	submissionID, err := parseID(c, "submissionId")
	if err != nil {
		return
	}
	var input struct {
		Comment string `json:"comment" binding:"required"`
		Rating  int    `json:"rating" binding:"min=0,max=10"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Faculty may only comment on students in their own batches.
	var count int64
	config.DB.Model(&models.BatchStudent{}).
		Joins("JOIN batches ON batches.id = batch_students.batch_id").
		Where("batch_students.student_id = ? AND batches.faculty_id = ?", studentID, facultyID).
		Count(&count)
	if count == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied - you are not assigned to this student's batch"})
		return
	}

	var submission models.Submission
	if err := config.DB.Where("id = ? AND student_id = ?", submissionID, studentID).
		First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	feedback := models.SubmissionFeedback{
		SubmissionID: submission.ID,
		FromID:       facultyID,
		Rating:       input.Rating,
		Comment:      input.Comment,
	}
	if err := config.DB.Create(&feedback).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save feedback"})
		return
	}

	notifyFeedback(facultyID, studentID, submission.ID)
	c.JSON(http.StatusCreated, feedback)
}

func notifyFeedback(facultyID, studentID, submissionID uint) {
	n := models.Notification{
		RecipientID:    studentID,
		Type:           models.NotificationFeedback,
		Title:          "New Feedback Received",
		Message:        "Your guide has added feedback to one of your submissions",
		RelatedToModel: "Submission",
		RelatedToID:    submissionID,
		FromID:         &facultyID,
	}
	if err := config.DB.Create(&n).Error; err != nil {
		return
	}
	GlobalHub.Notify(studentID, &n)
}
