package services

import (
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/KrishnaBabuLaveti/Student-Project-Management/models"
)

// BatchService owns batch lifecycle and the two-sided reference updates
// between batches, students and faculty. Those updates are not a single
// transaction end to end with the caller's other writes; partial failures are
// recoverable via the reconciliation pass.
type BatchService struct {
	db *gorm.DB
}

func NewBatchService(db *gorm.DB) *BatchService {
	return &BatchService{db: db}
}

// CreateBatchInput carries the fields for a manually created batch.
type CreateBatchInput struct {
	Name               string
	Department         string
	AcademicYear       string
	FacultyID          *uint
	ProjectTitle       string
	ProjectDescription string
}

// CreateBatch creates a batch by hand (outside the formation algorithm) and
// records the faculty assignment on both sides.
func (s *BatchService) CreateBatch(creatorID uint, input CreateBatchInput) (*models.Batch, error) {
	if input.Name == "" || input.AcademicYear == "" {
		return nil, &ValidationError{Msg: "name and academic year are required"}
	}
	if !models.IsValidDepartment(input.Department) {
		return nil, &ValidationError{Msg: "invalid department"}
	}

	if input.FacultyID != nil {
		var count int64
		if err := s.db.Model(&models.User{}).
			Where("id = ? AND role = ?", *input.FacultyID, models.RoleFaculty).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, &NotFoundError{Entity: "faculty", ID: *input.FacultyID}
		}
	}

	batch := models.Batch{
		Name:               input.Name,
		Department:         input.Department,
		AcademicYear:       input.AcademicYear,
		FacultyID:          input.FacultyID,
		Status:             models.BatchActive,
		ProjectTitle:       input.ProjectTitle,
		ProjectDescription: input.ProjectDescription,
		CreatedByID:        creatorID,
	}
	if err := s.db.Create(&batch).Error; err != nil {
		return nil, err
	}

	if input.FacultyID != nil {
		if err := addFacultyAssignment(s.db, *input.FacultyID, batch.ID); err != nil {
			slog.Error("Failed to record faculty assignment", "error", err, "batch_id", batch.ID)
			return nil, err
		}
	}
	return &batch, nil
}

// AssignStudents replaces the batch roster. Rejected when the batch is
// already at capacity or more than MaxBatchStudents ids are given. Writes
// both sides: the roster rows and each student's batch back-reference;
// students removed from the roster get their back-reference cleared.
func (s *BatchService) AssignStudents(batchID uint, studentIDs []uint) (*models.Batch, error) {
	if len(studentIDs) > models.MaxBatchStudents {
		return nil, &CapacityError{BatchID: batchID}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var batch models.Batch
		if err := tx.Preload("Students").First(&batch, batchID).Error; err != nil {
			return &NotFoundError{Entity: "batch", ID: batchID}
		}
		if batch.IsFull() {
			return &CapacityError{BatchID: batchID}
		}

		var students []models.StudentProfile
		if err := tx.Where("user_id IN ?", studentIDs).Find(&students).Error; err != nil {
			return err
		}
		if len(students) != len(studentIDs) {
			return &NotFoundError{Entity: "student"}
		}

		// Clear back-references of students leaving the roster.
		var oldIDs []uint
		for _, bs := range batch.Students {
			oldIDs = append(oldIDs, bs.StudentID)
		}
		if len(oldIDs) > 0 {
			if err := tx.Model(&models.StudentProfile{}).
				Where("user_id IN ? AND batch_id = ?", oldIDs, batchID).
				Update("batch_id", nil).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("batch_id = ?", batchID).Delete(&models.BatchStudent{}).Error; err != nil {
			return err
		}

		for i, id := range studentIDs {
			entry := models.BatchStudent{BatchID: batchID, StudentID: id, Position: i}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.StudentProfile{}).
			Where("user_id IN ?", studentIDs).
			Update("batch_id", batchID).Error
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Assigned students to batch", "batch_id", batchID, "count", len(studentIDs))
	return s.GetBatch(batchID)
}

// ReassignFaculty moves the batch from its current guide to a new one: the
// batch id leaves the old faculty's assignment set, joins the new one's, and
// the batch's faculty reference is updated. The three writes are sequential;
// a failure in between leaves a state the reconciliation pass repairs.
func (s *BatchService) ReassignFaculty(batchID, newFacultyID uint) (*models.Batch, error) {
	var batch models.Batch
	if err := s.db.First(&batch, batchID).Error; err != nil {
		return nil, &NotFoundError{Entity: "batch", ID: batchID}
	}

	var count int64
	if err := s.db.Model(&models.User{}).
		Where("id = ? AND role = ?", newFacultyID, models.RoleFaculty).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, &NotFoundError{Entity: "faculty", ID: newFacultyID}
	}

	if err := s.db.Where("batch_id = ?", batchID).Delete(&models.FacultyBatchAssignment{}).Error; err != nil {
		return nil, err
	}
	if err := addFacultyAssignment(s.db, newFacultyID, batchID); err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Batch{}).
		Where("id = ?", batchID).
		Update("faculty_id", newFacultyID).Error; err != nil {
		return nil, err
	}

	slog.Info("Reassigned batch to new faculty", "batch_id", batchID, "faculty_id", newFacultyID)
	return s.GetBatch(batchID)
}

// DeleteBatch removes a batch and cascades: the faculty's assignment entry,
// the roster rows and the student back-references, and every review with its
// panel and feedback rows.
func (s *BatchService) DeleteBatch(batchID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var batch models.Batch
		if err := tx.First(&batch, batchID).Error; err != nil {
			return &NotFoundError{Entity: "batch", ID: batchID}
		}

		if err := tx.Where("batch_id = ?", batchID).Delete(&models.FacultyBatchAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.StudentProfile{}).
			Where("batch_id = ?", batchID).
			Update("batch_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("batch_id = ?", batchID).Delete(&models.BatchStudent{}).Error; err != nil {
			return err
		}

		var reviewIDs []uint
		if err := tx.Model(&models.Review{}).Where("batch_id = ?", batchID).Pluck("id", &reviewIDs).Error; err != nil {
			return err
		}
		if len(reviewIDs) > 0 {
			if err := tx.Where("review_id IN ?", reviewIDs).Delete(&models.PanelMember{}).Error; err != nil {
				return err
			}
			if err := tx.Where("review_id IN ?", reviewIDs).Delete(&models.ReviewFeedback{}).Error; err != nil {
				return err
			}
			if err := tx.Where("batch_id = ?", batchID).Delete(&models.Review{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Batch{}, batchID).Error
	})
}

// GetBatch loads a batch with its roster and reviews.
func (s *BatchService) GetBatch(batchID uint) (*models.Batch, error) {
	var batch models.Batch
	err := s.db.
		Preload("Students", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Reviews").
		Preload("Reviews.PanelMembers").
		First(&batch, batchID).Error
	if err != nil {
		return nil, &NotFoundError{Entity: "batch", ID: batchID}
	}
	return &batch, nil
}

// addFacultyAssignment inserts an assignment entry, ignoring duplicates.
func addFacultyAssignment(db *gorm.DB, facultyID, batchID uint) error {
	entry := models.FacultyBatchAssignment{FacultyID: facultyID, BatchID: batchID}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error
}
