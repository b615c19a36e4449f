package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/KrishnaBabuLaveti/Student-Project-Management/models"
)

var userSeq int

// newTestDB opens a fresh in-memory database with the full schema. A single
// connection is forced so every query sees the same memory-backed store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, role string) uint {
	t.Helper()
	userSeq++
	user := models.User{
		Name:     name,
		Email:    fmt.Sprintf("%s%d@test.local", role, userSeq),
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func seedStudent(t *testing.T, db *gorm.DB, name, dept string, cgpa float64) uint {
	t.Helper()
	id := seedUser(t, db, name, models.RoleStudent)
	profile := models.StudentProfile{
		UserID:     id,
		JNTUNumber: fmt.Sprintf("20B81A%04d", id),
		Department: dept,
		Branch:     dept,
		CGPA:       cgpa,
	}
	require.NoError(t, db.Create(&profile).Error)
	return id
}

func seedFaculty(t *testing.T, db *gorm.DB, name, dept string) uint {
	t.Helper()
	id := seedUser(t, db, name, models.RoleFaculty)
	profile := models.FacultyProfile{UserID: id, Department: dept}
	require.NoError(t, db.Create(&profile).Error)
	return id
}

// seedBatch creates a batch with the given guide and roster, writing both
// sides of the references the way the formation service does.
func seedBatch(t *testing.T, db *gorm.DB, name string, facultyID *uint, studentIDs ...uint) uint {
	t.Helper()
	batch := models.Batch{
		Name:         name,
		Department:   "CSE",
		AcademicYear: "2025",
		FacultyID:    facultyID,
		Status:       models.BatchActive,
		CreatedByID:  1,
	}
	require.NoError(t, db.Create(&batch).Error)

	for i, id := range studentIDs {
		entry := models.BatchStudent{BatchID: batch.ID, StudentID: id, Position: i}
		require.NoError(t, db.Create(&entry).Error)
		require.NoError(t, db.Model(&models.StudentProfile{}).
			Where("user_id = ?", id).
			Update("batch_id", batch.ID).Error)
	}
	if facultyID != nil {
		require.NoError(t, addFacultyAssignment(db, *facultyID, batch.ID))
	}
	return batch.ID
}
