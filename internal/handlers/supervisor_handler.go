package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KrishnaBabuLaveti/Student-Project-Management/config"
	"github.com/KrishnaBabuLaveti/Student-Project-Management/internal/services"
	"github.com/KrishnaBabuLaveti/Student-Project-Management/models"
)

// SupervisorDashboardHandler returns every batch with its roster plus the
// faculty list with their workload.
func SupervisorDashboardHandler(c *gin.Context) {
	var batches []models.Batch
	if err := config.DB.
		Preload("Students").
		Preload("Reviews").
		Order("created_at desc").
		Find(&batches).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch batches"})
		return
	}

	var faculty []models.User
	if err := config.DB.Preload("FacultyProfile.AssignedBatches").
		Where("role = ?", models.RoleFaculty).
		Order("name").
		Find(&faculty).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch faculty"})
		return
	}

	type facultyLoad struct {
		ID              uint   `json:"id"`
		Name            string `json:"name"`
		Email           string `json:"email"`
		Department      string `json:"department"`
		AssignedBatches int    `json:"assignedBatches"`
		TotalStudents   int64  `json:"totalStudents"`
	}
	loads := make([]facultyLoad, 0, len(faculty))
	for _, f := range faculty {
		load := facultyLoad{ID: f.ID, Name: f.Name, Email: f.Email}
		if f.FacultyProfile != nil {
			load.Department = f.FacultyProfile.Department
			load.AssignedBatches = len(f.FacultyProfile.AssignedBatches)
		}
		if err := config.DB.Model(&models.StudentProfile{}).
			Joins("JOIN batches ON batches.id = student_profiles.batch_id").
			Where("batches.faculty_id = ?", f.ID).
			Count(&load.TotalStudents).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch faculty"})
			return
		}
		loads = append(loads, load)
	}

	c.JSON(http.StatusOK, gin.H{"batches": batches, "faculty": loads})
}

// CreateBatchHandler creates a batch by hand.
func CreateBatchHandler(c *gin.Context) {
	var input struct {
		Name               string `json:"name" binding:"required"`
		Department         string `json:"department" binding:"required"`
		AcademicYear       string `json:"academicYear" binding:"required"`
		FacultyID          *uint  `json:"facultyId"`
		ProjectTitle       string `json:"projectTitle"`
		ProjectDescription string `json:"projectDescription"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	batch, err := batchSvc.CreateBatch(currentUserID(c), services.CreateBatchInput{
		Name:               input.Name,
		Department:         input.Department,
		AcademicYear:       input.AcademicYear,
		FacultyID:          input.FacultyID,
		ProjectTitle:       input.ProjectTitle,
		ProjectDescription: input.ProjectDescription,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, batch)
}

// AssignStudentsHandler replaces a batch roster.
func AssignStudentsHandler(c *gin.Context) {
	batchID, err := parseID(c, "batchId")
	if err != nil {
		return
	}
	var input struct {
		StudentIDs []uint `json:"studentIds" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	batch, err := batchSvc.AssignStudents(batchID, input.StudentIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

// ReassignFacultyHandler moves a batch to a new guide.
func ReassignFacultyHandler(c *gin.Context) {
	batchID, err := parseID(c, "batchId")
	if err != nil {
		return
	}
	var input struct {
		NewFacultyID uint `json:"newFacultyId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please select a faculty member"})
		return
	}

	batch, err := batchSvc.ReassignFaculty(batchID, input.NewFacultyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

// DeleteBatchHandler deletes a batch and its dependents.
func DeleteBatchHandler(c *gin.Context) {
	batchID, err := parseID(c, "batchId")
	if err != nil {
		return
	}
	if err := batchSvc.DeleteBatch(batchID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ScheduleGlobalReviewHandler schedules one global review across the selected
// batches with a three-member faculty panel.
func ScheduleGlobalReviewHandler(c *gin.Context) {
	var input struct {
		Title        string    `json:"title" binding:"required"`
		Date         time.Time `json:"date" binding:"required"`
		Description  string    `json:"description"`
		BatchIDs     []uint    `json:"batchIds"`
		PanelMembers []uint    `json:"panelMembers"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reviews, err := reviewSvc.ScheduleGlobalReview(currentUserID(c), input.BatchIDs, services.ReviewPayload{
		Title:       input.Title,
		Date:        input.Date,
		Description: input.Description,
	}, input.PanelMembers)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reviews": reviews, "scheduled": len(reviews)})
}

// SubmitSupervisorScoreHandler records the supervisor's score and feedback on
// a global review.
func SubmitSupervisorScoreHandler(c *gin.Context) {
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

	review, err := reviewSvc.SubmitSupervisorScore(batchID, reviewID, currentUserID(c), input.Score, input.Feedback)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// UpdateReviewHandler edits title, date and description of a pending review.
func UpdateReviewHandler(c *gin.Context) {
	batchID, err := parseID(c, "batchId")
	if err != nil {
		return
	}
	reviewID, err := parseID(c, "reviewId")
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

	review, err := reviewSvc.EditReview(batchID, reviewID, currentUserID(c), services.ReviewPayload{
		Title:       input.Title,
		Date:        input.Date,
		Description: input.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// DeleteReviewHandler hard-deletes a pending review.
func DeleteReviewHandler(c *gin.Context) {
	batchID, err := parseID(c, "batchId")
	if err != nil {
		return
	}
	reviewID, err := parseID(c, "reviewId")
	if err != nil {
		return
	}
	if err := reviewSvc.DeleteReview(batchID, reviewID, currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully"})
}

// BatchReviewsHandler lists a batch's reviews with panel and feedback.
func BatchReviewsHandler(c *gin.Context) {
	batchID, err := parseID(c, "batchId")
	if err != nil {
		return
	}
	batch, err := batchSvc.GetBatch(batchID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": batch.Reviews})
}

// ReconcileHandler runs the idempotent cross-reference repair pass.
func ReconcileHandler(c *gin.Context) {
	report, err := reconcileSvc.Run()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reconciliation failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// ListStudentsHandler returns a paginated student directory.
func ListStudentsHandler(c *gin.Context) {
	var students []models.StudentProfile
	query := config.DB.Model(&models.StudentProfile{}).Order("jntu_number")

	var totalRows int64
	query.Count(&totalRows)
	if err := query.Scopes(Paginate(c)).Find(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch students"})
		return
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, students, totalRows))
}

// GetStudentHandler returns one student with submissions and milestones.
func GetStudentHandler(c *gin.Context) {
	studentID, err := parseID(c, "studentId")
	if err != nil {
		return
	}
	var profile models.StudentProfile
	if err := config.DB.
		Preload("Submissions.Feedback").
		Preload("Milestones").
		Where("user_id = ?", studentID).
		First(&profile).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// parseID reads a positive numeric path parameter, answering 400 on failure.
func parseID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return uint(id), nil
}
