package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KrishnaBabuLaveti/Student-Project-Management/models"
)

func TestReconcileConsistentDataIsNoop(t *testing.T) {
	db := newTestDB(t)
	svc := NewReconcileService(db)

	guide := seedFaculty(t, db, "Guide", "CSE")
	s1 := seedStudent(t, db, "Student One", "CSE", 9.0)
	s2 := seedStudent(t, db, "Student Two", "CSE", 8.0)
	seedBatch(t, db, "CSE-2025-A", &guide, s1, s2)

	report, err := svc.Run()
	require.NoError(t, err)
	assert.Zero(t, report.StudentsBackfilled)
	assert.Zero(t, report.AssignmentsAdded)
	assert.Zero(t, report.AssignmentsRemoved)
}

func TestReconcileRepairsPartialFailure(t *testing.T) {
	db := newTestDB(t)
	svc := NewReconcileService(db)

	guide := seedFaculty(t, db, "Guide", "CSE")
	otherGuide := seedFaculty(t, db, "Other Guide", "CSE")
	s1 := seedStudent(t, db, "Student One", "CSE", 9.0)
	s2 := seedStudent(t, db, "Student Two", "CSE", 8.0)
	batchID := seedBatch(t, db, "CSE-2025-A", &guide, s1, s2)

	// Simulate a multi-write sequence dying halfway: one student lost the
	// back-reference, the guide's assignment entry is missing, and a stale
	// entry points a different faculty at the batch.
	require.NoError(t, db.Model(&models.StudentProfile{}).
		Where("user_id = ?", s2).Update("batch_id", nil).Error)
	require.NoError(t, db.
		Where("faculty_id = ? AND batch_id = ?", guide, batchID).
		Delete(&models.FacultyBatchAssignment{}).Error)
	require.NoError(t, db.Create(&models.FacultyBatchAssignment{
		FacultyID: otherGuide, BatchID: batchID,
	}).Error)

	report, err := svc.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, report.StudentsBackfilled)
	assert.Equal(t, 1, report.AssignmentsAdded)
	assert.Equal(t, 1, report.AssignmentsRemoved)

	var profile models.StudentProfile
	require.NoError(t, db.Where("user_id = ?", s2).First(&profile).Error)
	require.NotNil(t, profile.BatchID)
	assert.Equal(t, batchID, *profile.BatchID)

	var assignments []models.FacultyBatchAssignment
	require.NoError(t, db.Find(&assignments).Error)
	require.Len(t, assignments, 1)
	assert.Equal(t, guide, assignments[0].FacultyID)
	assert.Equal(t, batchID, assignments[0].BatchID)
}

func TestReconcileIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewReconcileService(db)

	guide := seedFaculty(t, db, "Guide", "CSE")
	s1 := seedStudent(t, db, "Student One", "CSE", 9.0)
	batchID := seedBatch(t, db, "CSE-2025-A", &guide, s1)

	require.NoError(t, db.Model(&models.StudentProfile{}).
		Where("user_id = ?", s1).Update("batch_id", nil).Error)
	require.NoError(t, db.
		Where("faculty_id = ? AND batch_id = ?", guide, batchID).
		Delete(&models.FacultyBatchAssignment{}).Error)

	first, err := svc.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, first.StudentsBackfilled)
	assert.Equal(t, 1, first.AssignmentsAdded)

	second, err := svc.Run()
	require.NoError(t, err)
	assert.Zero(t, second.StudentsBackfilled)
	assert.Zero(t, second.AssignmentsAdded)
	assert.Zero(t, second.AssignmentsRemoved)
}

func TestReconcileBackfillsOrphanRosterEntry(t *testing.T) {
	db := newTestDB(t)
	svc := NewReconcileService(db)

	s1 := seedStudent(t, db, "Student One", "CSE", 9.0)
	batch := models.Batch{
		Name: "CSE-2025-A", Department: "CSE", AcademicYear: "2025",
		Status: models.BatchActive, CreatedByID: 1,
	}
	require.NoError(t, db.Create(&batch).Error)
	require.NoError(t, db.Create(&models.BatchStudent{
		BatchID: batch.ID, StudentID: s1, Position: 0,
	}).Error)

	report, err := svc.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, report.StudentsBackfilled)

	var profile models.StudentProfile
	require.NoError(t, db.Where("user_id = ?", s1).First(&profile).Error)
	require.NotNil(t, profile.BatchID)
	assert.Equal(t, batch.ID, *profile.BatchID)
}
