package models

import (
	"time"

	"gorm.io/gorm"
)

// Submission types a student may upload.
const (
	SubmissionReport        = "report"
	SubmissionPresentation  = "presentation"
	SubmissionDocumentation = "documentation"
)

// StudentProfile holds the student-specific part of a user. The JNTU number
// is immutable once created and doubles as the default initial password.
type StudentProfile struct {
	gorm.Model
	UserID     uint    `json:"userId" gorm:"uniqueIndex;not null"`
	JNTUNumber string  `json:"jntuNumber" gorm:"unique;not null"`
	Department string  `json:"department" gorm:"type:varchar(20);not null"`
	Branch     string  `json:"branch" gorm:"not null"`
	CGPA       float64 `json:"cgpa" gorm:"not null"`
	BatchID    *uint   `json:"batchId" gorm:"index"`

	Submissions []Submission `json:"submissions,omitempty" gorm:"foreignKey:StudentID;references:UserID"`
	Milestones  []Milestone  `json:"milestones,omitempty" gorm:"foreignKey:StudentID;references:UserID"`
}

// Submission is one uploaded project artifact. StudentID is the student
// user's id.
type Submission struct {
	gorm.Model
	StudentID   uint      `json:"studentId" gorm:"not null;index"`
	Type        string    `json:"type" gorm:"type:varchar(20);not null"`
	FileURL     string    `json:"fileUrl" gorm:"not null"`
	SubmittedAt time.Time `json:"submittedAt"`

	Feedback []SubmissionFeedback `json:"feedback,omitempty" gorm:"foreignKey:SubmissionID"`
}

// SubmissionFeedback is a single faculty comment on a submission.
type SubmissionFeedback struct {
	gorm.Model
	SubmissionID uint   `json:"submissionId" gorm:"not null;index"`
	FromID       uint   `json:"fromId" gorm:"not null"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`

	From User `json:"from,omitempty" gorm:"foreignKey:FromID"`
}

// Milestone is a self-managed progress marker on a student's project.
type Milestone struct {
	gorm.Model
	StudentID   uint       `json:"studentId" gorm:"not null;index"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Completed   bool       `json:"completed" gorm:"default:false"`
	CompletedAt *time.Time `json:"completedAt"`
}
