package models

import (
	"time"

	"gorm.io/gorm"
)

// Batch statuses.
const (
	BatchActive    = "active"
	BatchCompleted = "completed"
	BatchPending   = "pending"
)

// MaxBatchStudents is the hard roster capacity of a batch.
const MaxBatchStudents = 4

// Batch is a group of up to four students working on one project under one
// faculty guide. FacultyID and CreatedByID are user ids.
type Batch struct {
	gorm.Model
	Name               string  `json:"name" gorm:"unique;not null"`
	Department         string  `json:"department" gorm:"type:varchar(20);not null"`
	AcademicYear       string  `json:"academicYear" gorm:"not null"`
	FacultyID          *uint   `json:"facultyId" gorm:"index"`
	Status             string  `json:"status" gorm:"type:varchar(20);default:'active'"`
	ProjectTitle       string  `json:"projectTitle" gorm:"default:''"`
	ProjectDescription string  `json:"projectDescription" gorm:"default:''"`
	AverageCGPA        float64 `json:"averageCGPA"`
	CreatedByID        uint    `json:"createdById" gorm:"not null"`

	Students []BatchStudent `json:"students,omitempty" gorm:"foreignKey:BatchID"`
	Reviews  []Review       `json:"reviews,omitempty" gorm:"foreignKey:BatchID"`
	Remarks  []Remark       `json:"remarks,omitempty" gorm:"foreignKey:BatchID"`
}

// IsFull reports whether the batch roster is at capacity.
func (b *Batch) IsFull() bool {
	return len(b.Students) >= MaxBatchStudents
}

// BatchStudent is one ordered roster entry. StudentID is the student user's
// id; Position preserves roster order.
type BatchStudent struct {
	BatchID   uint `json:"batchId" gorm:"primaryKey;autoIncrement:false"`
	StudentID uint `json:"studentId" gorm:"primaryKey;autoIncrement:false"`
	Position  int  `json:"position" gorm:"not null"`
}

// Review is one evaluation event scheduled for a batch. Global reviews are
// supervisor-scheduled and carry exactly three panel members; local reviews
// are faculty-scheduled and carry none.
type Review struct {
	gorm.Model
	BatchID         uint      `json:"batchId" gorm:"not null;index"`
	Title           string    `json:"title" gorm:"not null"`
	Date            time.Time `json:"date" gorm:"not null"`
	Description     string    `json:"description"`
	Completed       bool      `json:"completed" gorm:"default:false"`
	IsGlobal        bool      `json:"isGlobal" gorm:"default:false"`
	ScheduledByID   uint      `json:"scheduledById" gorm:"not null"`
	SupervisorScore *float64  `json:"supervisorScore"`
	AggregateScore  *float64  `json:"aggregateScore"`

	PanelMembers []PanelMember    `json:"panelMembers,omitempty" gorm:"foreignKey:ReviewID"`
	Feedback     []ReviewFeedback `json:"feedback,omitempty" gorm:"foreignKey:ReviewID"`
}

// PanelMember is one of the three faculty scoring a global review. Score
// stays nil until that member submits.
type PanelMember struct {
	gorm.Model
	ReviewID uint     `json:"reviewId" gorm:"not null;index:idx_panel_review_member,unique"`
	MemberID uint     `json:"memberId" gorm:"not null;index:idx_panel_review_member,unique"`
	Score    *float64 `json:"score"`
	Feedback string   `json:"feedback"`
}

// Remark types. Warnings are reserved for supervisors.
const (
	RemarkGeneral = "general"
	RemarkWarning = "warning"
)

// Remark is a persistent note on a batch, written by the supervisor or the
// batch's faculty guide.
type Remark struct {
	gorm.Model
	BatchID uint   `json:"batchId" gorm:"not null;index"`
	FromID  uint   `json:"fromId" gorm:"not null"`
	Type    string `json:"type" gorm:"type:varchar(20);not null;default:'general'"`
	Content string `json:"content" gorm:"not null"`

	From User `json:"from,omitempty" gorm:"foreignKey:FromID"`
}

// ReviewFeedback is a written remark attached to a review.
type ReviewFeedback struct {
	gorm.Model
	ReviewID uint   `json:"reviewId" gorm:"not null;index"`
	FromID   uint   `json:"fromId" gorm:"not null"`
	Comment  string `json:"comment" gorm:"not null"`

	From User `json:"from,omitempty" gorm:"foreignKey:FromID"`
}
