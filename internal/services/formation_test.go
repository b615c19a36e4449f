package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KrishnaBabuLaveti/Student-Project-Management/models"
)

func TestClampBatchSize(t *testing.T) {
	assert.Equal(t, DefaultBatchSize, ClampBatchSize(0))
	assert.Equal(t, DefaultBatchSize, ClampBatchSize(-3))
	assert.Equal(t, MaxFormationBatchSize, ClampBatchSize(25))
	assert.Equal(t, 3, ClampBatchSize(3))
	assert.Equal(t, MaxFormationBatchSize, ClampBatchSize(MaxFormationBatchSize))
}

func TestPlanBatchesSnakeOrder(t *testing.T) {
	// Seven students ranked 10 down to 4, batch size three. The draft fills
	// buckets A,B,C forward then C,B,A backward, so the strongest students
	// spread across buckets instead of stacking in the first one.
	candidates := []Candidate{
		{StudentID: 1, Department: "CSE", CGPA: 10},
		{StudentID: 2, Department: "CSE", CGPA: 9},
		{StudentID: 3, Department: "CSE", CGPA: 8},
		{StudentID: 4, Department: "CSE", CGPA: 7},
		{StudentID: 5, Department: "CSE", CGPA: 6},
		{StudentID: 6, Department: "CSE", CGPA: 5},
		{StudentID: 7, Department: "CSE", CGPA: 4},
	}

	plans := PlanBatches(candidates, 3, "2025")
	require.Len(t, plans, 3)

	assert.Equal(t, "CSE-2025-A", plans[0].Name)
	assert.Equal(t, "CSE-2025-B", plans[1].Name)
	assert.Equal(t, "CSE-2025-C", plans[2].Name)

	assert.Equal(t, []uint{1, 5}, plans[0].StudentIDs)
	assert.Equal(t, []uint{2, 4, 6}, plans[1].StudentIDs)
	assert.Equal(t, []uint{3, 7}, plans[2].StudentIDs)

	assert.InDelta(t, 8.0, plans[0].AverageCGPA, 1e-9)
	assert.InDelta(t, 7.0, plans[1].AverageCGPA, 1e-9)
	assert.InDelta(t, 6.0, plans[2].AverageCGPA, 1e-9)
}

func TestPlanBatchesUnsortedInput(t *testing.T) {
	// Rank comes from CGPA, not input order.
	candidates := []Candidate{
		{StudentID: 7, Department: "IT", CGPA: 4},
		{StudentID: 1, Department: "IT", CGPA: 10},
		{StudentID: 4, Department: "IT", CGPA: 7},
		{StudentID: 2, Department: "IT", CGPA: 9},
		{StudentID: 6, Department: "IT", CGPA: 5},
		{StudentID: 3, Department: "IT", CGPA: 8},
		{StudentID: 5, Department: "IT", CGPA: 6},
	}

	plans := PlanBatches(candidates, 3, "2025")
	require.Len(t, plans, 3)
	assert.Equal(t, []uint{1, 5}, plans[0].StudentIDs)
	assert.Equal(t, []uint{2, 4, 6}, plans[1].StudentIDs)
	assert.Equal(t, []uint{3, 7}, plans[2].StudentIDs)
}

func TestPlanBatchesPerDepartment(t *testing.T) {
	candidates := []Candidate{
		{StudentID: 1, Department: "CSE", CGPA: 9},
		{StudentID: 2, Department: "ECE", CGPA: 8},
		{StudentID: 3, Department: "CSE", CGPA: 7},
		{StudentID: 4, Department: "ECE", CGPA: 6},
	}

	plans := PlanBatches(candidates, 4, "2024")
	require.Len(t, plans, 2)

	assert.Equal(t, "CSE-2024-A", plans[0].Name)
	assert.Equal(t, []uint{1, 3}, plans[0].StudentIDs)
	assert.Equal(t, "ECE-2024-A", plans[1].Name)
	assert.Equal(t, []uint{2, 4}, plans[1].StudentIDs)
}

func TestPlanBatchesStableOnEqualCGPA(t *testing.T) {
	candidates := []Candidate{
		{StudentID: 11, Department: "CSE", CGPA: 8},
		{StudentID: 12, Department: "CSE", CGPA: 8},
		{StudentID: 13, Department: "CSE", CGPA: 8},
	}

	plans := PlanBatches(candidates, 4, "2025")
	require.Len(t, plans, 1)
	assert.Equal(t, []uint{11, 12, 13}, plans[0].StudentIDs)
}

func TestPlanBatchesDeterministic(t *testing.T) {
	candidates := []Candidate{
		{StudentID: 1, Department: "CSE", CGPA: 9.1},
		{StudentID: 2, Department: "CSE", CGPA: 8.4},
		{StudentID: 3, Department: "CSE", CGPA: 7.7},
		{StudentID: 4, Department: "CSE", CGPA: 6.2},
		{StudentID: 5, Department: "CSE", CGPA: 5.9},
	}

	first := PlanBatches(candidates, 2, "2025")
	second := PlanBatches(candidates, 2, "2025")
	assert.Equal(t, first, second)
}

func TestPlanBatchesEmptyInput(t *testing.T) {
	assert.Empty(t, PlanBatches(nil, 4, "2025"))
}

func TestFormBatchesPersistsBothSides(t *testing.T) {
	db := newTestDB(t)
	svc := NewFormationService(db)

	supervisorID := seedUser(t, db, "Supervisor", models.RoleSupervisor)
	facultyID := seedFaculty(t, db, "Guide", "CSE")

	var candidates []Candidate
	for _, cgpa := range []float64{9.5, 9.0, 8.5, 8.0, 7.5} {
		id := seedStudent(t, db, "Student", "CSE", cgpa)
		candidates = append(candidates, Candidate{StudentID: id, Department: "CSE", CGPA: cgpa})
	}

	batches, err := svc.FormBatches(supervisorID, candidates, 3, "2025")
	require.NoError(t, err)
	require.Len(t, batches, 2)

	// Only one CSE faculty exists, so the random pick is forced.
	for _, batch := range batches {
		require.NotNil(t, batch.FacultyID)
		assert.Equal(t, facultyID, *batch.FacultyID)

		var count int64
		require.NoError(t, db.Model(&models.FacultyBatchAssignment{}).
			Where("faculty_id = ? AND batch_id = ?", facultyID, batch.ID).
			Count(&count).Error)
		assert.EqualValues(t, 1, count)
	}

	// Every student references the batch that lists them.
	for _, c := range candidates {
		var entry models.BatchStudent
		require.NoError(t, db.Where("student_id = ?", c.StudentID).First(&entry).Error)

		var profile models.StudentProfile
		require.NoError(t, db.Where("user_id = ?", c.StudentID).First(&profile).Error)
		require.NotNil(t, profile.BatchID)
		assert.Equal(t, entry.BatchID, *profile.BatchID)
	}

	var rosterTotal int64
	require.NoError(t, db.Model(&models.BatchStudent{}).Count(&rosterTotal).Error)
	assert.EqualValues(t, len(candidates), rosterTotal)
}

func TestFormBatchesNoFacultyInDepartment(t *testing.T) {
	db := newTestDB(t)
	svc := NewFormationService(db)

	supervisorID := seedUser(t, db, "Supervisor", models.RoleSupervisor)
	id := seedStudent(t, db, "Student", "MECH", 8.0)

	batches, err := svc.FormBatches(supervisorID, []Candidate{
		{StudentID: id, Department: "MECH", CGPA: 8.0},
	}, 4, "2025")
	require.NoError(t, err)
	require.Len(t, batches, 1)

	// Batch forms anyway; it just stays unguided.
	assert.Nil(t, batches[0].FacultyID)
}
