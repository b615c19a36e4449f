package services

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/KrishnaBabuLaveti/Student-Project-Management/models"
)

// ReconcileReport summarizes what a repair pass changed. All zeros on
// already-consistent data.
type ReconcileReport struct {
	StudentsBackfilled int `json:"studentsBackfilled"`
	AssignmentsAdded   int `json:"assignmentsAdded"`
	AssignmentsRemoved int `json:"assignmentsRemoved"`
}

// ReconcileService repairs the denormalized cross-references left
// inconsistent by a partial multi-write failure: student<->batch roster
// references and faculty<->batch assignment sets. The pass is idempotent and
// safe to run repeatedly.
type ReconcileService struct {
	db *gorm.DB
}

func NewReconcileService(db *gorm.DB) *ReconcileService {
	return &ReconcileService{db: db}
}

// Run executes one full repair pass.
func (s *ReconcileService) Run() (*ReconcileReport, error) {
	report := &ReconcileReport{}

	// Every student listed on a batch roster must reference that batch back.
	var batches []models.Batch
	if err := s.db.Preload("Students").Find(&batches).Error; err != nil {
		return nil, err
	}
	for _, batch := range batches {
		if len(batch.Students) == 0 {
			continue
		}
		var ids []uint
		for _, bs := range batch.Students {
			ids = append(ids, bs.StudentID)
		}
		result := s.db.Model(&models.StudentProfile{}).
			Where("user_id IN ? AND (batch_id IS NULL OR batch_id <> ?)", ids, batch.ID).
			Update("batch_id", batch.ID)
		if result.Error != nil {
			return nil, result.Error
		}
		report.StudentsBackfilled += int(result.RowsAffected)
	}

	// Students with no batch reference but present on some roster.
	var orphans []models.StudentProfile
	if err := s.db.Where("batch_id IS NULL").Find(&orphans).Error; err != nil {
		return nil, err
	}
	for _, student := range orphans {
		var entry models.BatchStudent
		err := s.db.Where("student_id = ?", student.UserID).First(&entry).Error
		if err == gorm.ErrRecordNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := s.db.Model(&models.StudentProfile{}).
			Where("user_id = ?", student.UserID).
			Update("batch_id", entry.BatchID).Error; err != nil {
			return nil, err
		}
		report.StudentsBackfilled++
	}

	// Faculty assignment sets must mirror batches.faculty_id in both
	// directions.
	for _, batch := range batches {
		if batch.FacultyID == nil {
			continue
		}
		var count int64
		if err := s.db.Model(&models.FacultyBatchAssignment{}).
			Where("faculty_id = ? AND batch_id = ?", *batch.FacultyID, batch.ID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			if err := addFacultyAssignment(s.db, *batch.FacultyID, batch.ID); err != nil {
				return nil, err
			}
			report.AssignmentsAdded++
		}
	}

	var assignments []models.FacultyBatchAssignment
	if err := s.db.Find(&assignments).Error; err != nil {
		return nil, err
	}
	for _, a := range assignments {
		var count int64
		if err := s.db.Model(&models.Batch{}).
			Where("id = ? AND faculty_id = ?", a.BatchID, a.FacultyID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			if err := s.db.
				Where("faculty_id = ? AND batch_id = ?", a.FacultyID, a.BatchID).
				Delete(&models.FacultyBatchAssignment{}).Error; err != nil {
				return nil, err
			}
			report.AssignmentsRemoved++
		}
	}

	if report.StudentsBackfilled+report.AssignmentsAdded+report.AssignmentsRemoved > 0 {
		slog.Info("Reconciliation pass repaired references",
			"students_backfilled", report.StudentsBackfilled,
			"assignments_added", report.AssignmentsAdded,
			"assignments_removed", report.AssignmentsRemoved)
	}
	return report, nil
}
