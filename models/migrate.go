package models

import "gorm.io/gorm"

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&StudentProfile{},
		&FacultyProfile{},
		&FacultyBatchAssignment{},
		&Batch{},
		&BatchStudent{},
		&Remark{},
		&Review{},
		&PanelMember{},
		&ReviewFeedback{},
		&Submission{},
		&SubmissionFeedback{},
		&Milestone{},
		&Notification{},
		&Message{},
	)
}
