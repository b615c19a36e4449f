package services

import (
	"fmt"
	"math/rand"
	"sort"

	"gorm.io/gorm"

	"github.com/KrishnaBabuLaveti/Student-Project-Management/models"
)

// DefaultBatchSize is used when the requested size is invalid.
const DefaultBatchSize = 4

// MaxFormationBatchSize caps the requested batch size.
const MaxFormationBatchSize = 10

// Candidate is one student entering batch formation.
type Candidate struct {
	StudentID  uint
	Department string
	CGPA       float64
}

// BatchPlan is one planned batch produced by the snake draft, before
// persistence and faculty assignment.
type BatchPlan struct {
	Name         string
	Department   string
	AcademicYear string
	StudentIDs   []uint
	AverageCGPA  float64
}

// ClampBatchSize normalizes a requested batch size: invalid values fall back
// to DefaultBatchSize, oversized ones are capped.
func ClampBatchSize(size int) int {
	if size < 1 {
		return DefaultBatchSize
	}
	if size > MaxFormationBatchSize {
		return MaxFormationBatchSize
	}
	return size
}

// PlanBatches distributes candidates into batches per department using snake
// (boustrophedon) order: students are ranked by CGPA descending (stable on
// ties), buckets are filled 0..N-1 forward then N-1..0 backward alternating,
// so top-ranked students spread evenly across batches instead of stacking up
// in the first one. Buckets are named {department}-{year}-{A,B,C,...} and
// empty buckets are dropped. The result is deterministic for a given input
// order.
func PlanBatches(candidates []Candidate, batchSize int, academicYear string) []BatchPlan {
	batchSize = ClampBatchSize(batchSize)

	// Partition by department, preserving first-appearance order.
	var deptOrder []string
	byDept := make(map[string][]Candidate)
	for _, c := range candidates {
		if _, seen := byDept[c.Department]; !seen {
			deptOrder = append(deptOrder, c.Department)
		}
		byDept[c.Department] = append(byDept[c.Department], c)
	}

	var plans []BatchPlan
	for _, dept := range deptOrder {
		students := byDept[dept]
		sort.SliceStable(students, func(i, j int) bool {
			return students[i].CGPA > students[j].CGPA
		})

		numBatches := (len(students) + batchSize - 1) / batchSize
		buckets := make([][]Candidate, numBatches)

		forward := true
		current := 0
		for _, student := range students {
			buckets[current] = append(buckets[current], student)
			if forward {
				if current == numBatches-1 {
					forward = false
					current--
				} else {
					current++
				}
			} else {
				if current == 0 {
					forward = true
					current++
				} else {
					current--
				}
			}
		}

		for i, bucket := range buckets {
			if len(bucket) == 0 {
				continue
			}
			plan := BatchPlan{
				Name:         fmt.Sprintf("%s-%s-%c", dept, academicYear, 'A'+i),
				Department:   dept,
				AcademicYear: academicYear,
			}
			var sum float64
			for _, c := range bucket {
				plan.StudentIDs = append(plan.StudentIDs, c.StudentID)
				sum += c.CGPA
			}
			plan.AverageCGPA = sum / float64(len(bucket))
			plans = append(plans, plan)
		}
	}
	return plans
}

// FormationService turns batch plans into persisted batches with faculty
// guides and consistent cross-references.
type FormationService struct {
	db *gorm.DB
}

func NewFormationService(db *gorm.DB) *FormationService {
	return &FormationService{db: db}
}

// FormBatches runs the snake draft over the candidates, persists the
// resulting batches, assigns a faculty guide to each and writes the roster
// references on both sides.
func (s *FormationService) FormBatches(creatorID uint, candidates []Candidate, batchSize int, academicYear string) ([]models.Batch, error) {
	plans := PlanBatches(candidates, batchSize, academicYear)

	var batches []models.Batch
	for _, plan := range plans {
		batch := models.Batch{
			Name:               plan.Name,
			Department:         plan.Department,
			AcademicYear:       plan.AcademicYear,
			Status:             models.BatchActive,
			ProjectTitle:       fmt.Sprintf("%s Project - %s", plan.Department, plan.Name),
			ProjectDescription: fmt.Sprintf("Project for batch %s in %s department", plan.Name, plan.Department),
			AverageCGPA:        plan.AverageCGPA,
			CreatedByID:        creatorID,
		}
		if err := s.db.Create(&batch).Error; err != nil {
			return nil, err
		}

		for i, studentID := range plan.StudentIDs {
			entry := models.BatchStudent{BatchID: batch.ID, StudentID: studentID, Position: i}
			if err := s.db.Create(&entry).Error; err != nil {
				return nil, err
			}
		}
		if err := s.db.Model(&models.StudentProfile{}).
			Where("user_id IN ?", plan.StudentIDs).
			Update("batch_id", batch.ID).Error; err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}

	if err := s.assignFacultyGuides(batches); err != nil {
		return nil, err
	}
	return batches, nil
}

// assignFacultyGuides picks a guide for each batch uniformly at random among
// faculty of the same department. All same-department faculty are equally
// eligible; there is no load balancing beyond the random pick per batch.
func (s *FormationService) assignFacultyGuides(batches []models.Batch) error {
	var profiles []models.FacultyProfile
	if err := s.db.Find(&profiles).Error; err != nil {
		return err
	}

	byDept := make(map[string][]models.FacultyProfile)
	for _, p := range profiles {
		byDept[p.Department] = append(byDept[p.Department], p)
	}

	for i := range batches {
		deptFaculty := byDept[batches[i].Department]
		if len(deptFaculty) == 0 {
			continue
		}
		pick := deptFaculty[rand.Intn(len(deptFaculty))]

		if err := s.db.Model(&models.Batch{}).
			Where("id = ?", batches[i].ID).
			Update("faculty_id", pick.UserID).Error; err != nil {
			return err
		}
		if err := addFacultyAssignment(s.db, pick.UserID, batches[i].ID); err != nil {
			return err
		}
		batches[i].FacultyID = &pick.UserID
	}
	return nil
}
