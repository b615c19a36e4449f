package models

import "gorm.io/gorm"

// Notification types.
const (
	NotificationReview       = "review"
	NotificationFeedback     = "feedback"
	NotificationWarning      = "warning"
	NotificationSubmission   = "submission"
	NotificationAnnouncement = "announcement"
	NotificationMessage      = "message"
)

// Notification priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Notification is created as a side effect of state transitions and is never
// mutated afterwards except for the Read and EmailSent flags.
type Notification struct {
	gorm.Model
	RecipientID    uint   `json:"recipientId" gorm:"not null;index"`
	Type           string `json:"type" gorm:"type:varchar(20);not null"`
	Title          string `json:"title" gorm:"not null"`
	Message        string `json:"message" gorm:"not null"`
	RelatedToModel string `json:"relatedToModel" gorm:"type:varchar(20);not null"`
	RelatedToID    uint   `json:"relatedToId" gorm:"not null"`
	FromID         *uint  `json:"fromId"`
	Read           bool   `json:"read" gorm:"default:false"`
	EmailSent      bool   `json:"emailSent" gorm:"default:false"`
	Priority       string `json:"priority" gorm:"type:varchar(10);default:'medium'"`

	From *User `json:"from,omitempty" gorm:"foreignKey:FromID"`
}
