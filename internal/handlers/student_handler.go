package handlers

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/KrishnaBabuLaveti/Student-Project-Management/config"
	"github.com/KrishnaBabuLaveti/Student-Project-Management/models"
)

var allowedSubmissionTypes = map[string]bool{
	models.SubmissionReport:        true,
	models.SubmissionPresentation:  true,
	models.SubmissionDocumentation: true,
}

var allowedUploadExts = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".ppt": true, ".pptx": true,
}

// StudentDashboardHandler returns the student's profile with their batch,
// guide, batchmates and reviews.
func StudentDashboardHandler(c *gin.Context) {
	studentID := currentUserID(c)

	var profile models.StudentProfile
	if err := config.DB.
		Preload("Submissions.Feedback.From").
		Preload("Milestones").
		Where("user_id = ?", studentID).
		First(&profile).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student profile not found"})
		return
	}

	response := gin.H{"profile": profile}
	if profile.BatchID != nil {
		batch, err := batchSvc.GetBatch(*profile.BatchID)
		if err == nil {
			response["batch"] = batch
			if batch.FacultyID != nil {
				var guide models.User
				if err := config.DB.Select("id", "name", "email").First(&guide, *batch.FacultyID).Error; err == nil {
					response["faculty"] = guide
				}
			}
		}
	}
	c.JSON(http.StatusOK, response)
}

// SubmitFileHandler stores an uploaded project artifact and records the
// submission. Students without a batch cannot submit.
func SubmitFileHandler(c *gin.Context) {
	studentID := currentUserID(c)

	var profile models.StudentProfile
	if err := config.DB.Where("user_id = ?", studentID).First(&profile).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student profile not found"})
		return
	}
	if profile.BatchID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You must be assigned to a batch before submitting files"})
		return
	}

	submissionType := c.PostForm("type")
	if !allowedSubmissionTypes[submissionType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission type"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please select a file to upload"})
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedUploadExts[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type. Only PDF, DOC, DOCX, PPT, and PPTX files are allowed."})
		return
	}

	dir := config.UploadDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare upload directory"})
		return
	}
	dst := filepath.Join(dir, uuid.NewString()+ext)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	submission := models.Submission{
		StudentID:   studentID,
		Type:        submissionType,
		FileURL:     dst,
		SubmittedAt: time.Now(),
	}
	if err := config.DB.Create(&submission).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record submission"})
		return
	}

	// Tell the guide; best effort.
	var batch models.Batch
	if err := config.DB.First(&batch, *profile.BatchID).Error; err == nil && batch.FacultyID != nil {
		n := models.Notification{
			RecipientID:    *batch.FacultyID,
			Type:           models.NotificationSubmission,
			Title:          "New Submission",
			Message:        "A student in batch " + batch.Name + " has uploaded a " + submissionType,
			RelatedToModel: "Submission",
			RelatedToID:    submission.ID,
			FromID:         &studentID,
			Priority:       models.PriorityLow,
		}
		if err := config.DB.Create(&n).Error; err == nil {
			GlobalHub.Notify(*batch.FacultyID, &n)
		} else {
			slog.Warn("Failed to create submission notification", "error", err)
		}
	}

	c.JSON(http.StatusCreated, submission)
}

// ListSubmissionsHandler returns the student's own submissions with feedback.
func ListSubmissionsHandler(c *gin.Context) {
	var submissions []models.Submission
	if err := config.DB.Preload("Feedback.From").
		Where("student_id = ?", currentUserID(c)).
		Order("submitted_at desc").
		Find(&submissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch submissions"})
		return
	}
	c.JSON(http.StatusOK, submissions)
}

// AddMilestoneHandler creates a progress milestone.
func AddMilestoneHandler(c *gin.Context) {
	var input struct {
		Title       string     `json:"title" binding:"required"`
		Description string     `json:"description"`
		DueDate     *time.Time `json:"dueDate"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	milestone := models.Milestone{
		StudentID:   currentUserID(c),
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
	}
	if err := config.DB.Create(&milestone).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add milestone"})
		return
	}
	c.JSON(http.StatusCreated, milestone)
}

// UpdateMilestoneHandler edits one of the student's own milestones.
func UpdateMilestoneHandler(c *gin.Context) {
	milestoneID, err := parseID(c, "id")
	if err != nil {
		return
	}
	var input struct {
		Title       string     `json:"title" binding:"required"`
		Description string     `json:"description"`
		DueDate     *time.Time `json:"dueDate"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := config.DB.Model(&models.Milestone{}).
		Where("id = ? AND student_id = ?", milestoneID, currentUserID(c)).
		Updates(map[string]interface{}{
			"title":       input.Title,
			"description": input.Description,
			"due_date":    input.DueDate,
		})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update milestone"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Milestone not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Milestone updated"})
}

// CompleteMilestoneHandler marks one of the student's milestones done.
func CompleteMilestoneHandler(c *gin.Context) {
	milestoneID, err := parseID(c, "id")
	if err != nil {
		return
	}
	now := time.Now()
	result := config.DB.Model(&models.Milestone{}).
		Where("id = ? AND student_id = ?", milestoneID, currentUserID(c)).
		Updates(map[string]interface{}{"completed": true, "completed_at": now})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete milestone"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Milestone not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Milestone completed"})
}
