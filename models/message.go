package models

import "gorm.io/gorm"

// Message kinds.
const (
	MessageDirect       = "direct"
	MessageBatch        = "group"
	MessageAnnouncement = "announcement"
)

// Message is one chat message, either direct (RecipientID set) or addressed
// to a batch room (BatchID set).
type Message struct {
	gorm.Model
	SenderID    uint   `json:"senderId" gorm:"not null;index"`
	RecipientID *uint  `json:"recipientId" gorm:"index"`
	BatchID     *uint  `json:"batchId" gorm:"index"`
	Type        string `json:"type" gorm:"type:varchar(20);not null;default:'direct'"`
	Content     string `json:"content" gorm:"not null"`
	Read        bool   `json:"read" gorm:"default:false"`

	Sender User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
}
