package models

import "gorm.io/gorm"

// Roles shared by every account. A user is exactly one of these; there is no
// role table, the discriminant lives on the user row itself.
const (
	RoleStudent    = "student"
	RoleFaculty    = "faculty"
	RoleSupervisor = "supervisor"
)

// Departments recognized by the college. Batch names and roster imports are
// validated against this list.
var Departments = []string{"CSE", "CSE-AIML", "CSE-AIDS", "IT", "ECE", "MECH", "CIVIL"}

// IsValidDepartment reports whether dept is one of the recognized departments.
func IsValidDepartment(dept string) bool {
	for _, d := range Departments {
		if d == dept {
			return true
		}
	}
	return false
}

// User is the shared identity for students, faculty and supervisors.
// Role-specific data lives in StudentProfile / FacultyProfile rows keyed by
// the user id; supervisors carry no extra fields.
type User struct {
	gorm.Model
	Name               string `json:"name" gorm:"not null"`
	Email              string `json:"email" gorm:"unique;not null"`
	Password           string `json:"-" gorm:"not null"`
	Role               string `json:"role" gorm:"type:varchar(20);not null;index"`
	MustChangePassword bool   `json:"mustChangePassword" gorm:"default:true"`

	StudentProfile *StudentProfile `json:"studentProfile,omitempty" gorm:"foreignKey:UserID"`
	FacultyProfile *FacultyProfile `json:"facultyProfile,omitempty" gorm:"foreignKey:UserID"`
}

// FacultyProfile holds the faculty-specific part of a user.
type FacultyProfile struct {
	gorm.Model
	UserID     uint   `json:"userId" gorm:"uniqueIndex;not null"`
	Department string `json:"department" gorm:"type:varchar(20);not null"`

	// Denormalized assignment set mirroring batches.faculty_id. Kept in sync
	// by the batch service and repaired by the reconciliation pass.
	AssignedBatches []FacultyBatchAssignment `json:"assignedBatches,omitempty" gorm:"foreignKey:FacultyID;references:UserID"`
}

// FacultyBatchAssignment is one entry of a faculty's assigned-batch set.
// FacultyID is the faculty user's id, not the profile id.
type FacultyBatchAssignment struct {
	FacultyID uint `json:"facultyId" gorm:"primaryKey;autoIncrement:false"`
	BatchID   uint `json:"batchId" gorm:"primaryKey;autoIncrement:false"`
}
