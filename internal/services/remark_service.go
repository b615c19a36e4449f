package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/KrishnaBabuLaveti/Student-Project-Management/models"
)

// RemarkService owns the persistent batch remarks. Supervisors and the
// batch's guide write them; warnings are supervisor-only and notify the
// roster.
type RemarkService struct {
	db       *gorm.DB
	notifier Notifier
}

func NewRemarkService(db *gorm.DB, notifier Notifier) *RemarkService {
	return &RemarkService{db: db, notifier: notifier}
}

// AddRemark appends a remark to a batch. The caller must be a supervisor or
// the batch's assigned faculty guide; the warning type is reserved for
// supervisors.
func (s *RemarkService) AddRemark(userID uint, role string, batchID uint, remarkType, content string) (*models.Remark, error) {
	if content == "" {
		return nil, &ValidationError{Msg: "remark content is required"}
	}
	if remarkType == "" {
		remarkType = models.RemarkGeneral
	}
	if remarkType != models.RemarkGeneral && remarkType != models.RemarkWarning {
		return nil, &ValidationError{Msg: "invalid remark type"}
	}
	if remarkType == models.RemarkWarning && role != models.RoleSupervisor {
		return nil, &ForbiddenError{Msg: "only supervisors can add warning remarks"}
	}

	batch, err := s.loadBatch(batchID)
	if err != nil {
		return nil, err
	}
	if !canWriteRemarks(userID, role, batch) {
		return nil, &ForbiddenError{Msg: "not authorized to add remarks"}
	}

	remark := models.Remark{
		BatchID: batchID,
		FromID:  userID,
		Type:    remarkType,
		Content: content,
	}
	if err := s.db.Create(&remark).Error; err != nil {
		return nil, err
	}

	if remarkType == models.RemarkWarning {
		var studentIDs []uint
		for _, bs := range batch.Students {
			studentIDs = append(studentIDs, bs.StudentID)
		}
		fanOut(s.db, s.notifier, studentIDs, models.Notification{
			Type:           models.NotificationWarning,
			Title:          "Warning Issued",
			Message:        fmt.Sprintf("A warning has been issued for batch %s: %s", batch.Name, content),
			RelatedToModel: "Batch",
			RelatedToID:    batchID,
			FromID:         &userID,
			Priority:       models.PriorityHigh,
		})
	}
	return &remark, nil
}

// ListRemarks returns a batch's remarks, newest first. Readable by
// supervisors, the batch's guide and the batch's own students.
func (s *RemarkService) ListRemarks(userID uint, role string, batchID uint) ([]models.Remark, error) {
	batch, err := s.loadBatch(batchID)
	if err != nil {
		return nil, err
	}

	authorized := canWriteRemarks(userID, role, batch)
	if !authorized && role == models.RoleStudent {
		for _, bs := range batch.Students {
			if bs.StudentID == userID {
				authorized = true
				break
			}
		}
	}
	if !authorized {
		return nil, &ForbiddenError{Msg: "not authorized to view remarks"}
	}

	var remarks []models.Remark
	err = s.db.Preload("From", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "role") }).
		Where("batch_id = ?", batchID).
		Order("created_at desc").
		Find(&remarks).Error
	if err != nil {
		return nil, err
	}
	return remarks, nil
}

// DeleteRemark removes one remark. Supervisors may delete any remark; the
// batch's guide only their own.
func (s *RemarkService) DeleteRemark(userID uint, role string, batchID, remarkID uint) error {
	batch, err := s.loadBatch(batchID)
	if err != nil {
		return err
	}

	var remark models.Remark
	if err := s.db.Where("id = ? AND batch_id = ?", remarkID, batchID).First(&remark).Error; err != nil {
		return &NotFoundError{Entity: "remark", ID: remarkID}
	}

	isGuide := role == models.RoleFaculty && batch.FacultyID != nil && *batch.FacultyID == userID
	if role != models.RoleSupervisor && !(isGuide && remark.FromID == userID) {
		return &ForbiddenError{Msg: "not authorized to delete this remark"}
	}

	return s.db.Delete(&remark).Error
}

func (s *RemarkService) loadBatch(batchID uint) (*models.Batch, error) {
	var batch models.Batch
	if err := s.db.Preload("Students").First(&batch, batchID).Error; err != nil {
		return nil, &NotFoundError{Entity: "batch", ID: batchID}
	}
	return &batch, nil
}

// canWriteRemarks covers the add path: supervisor or the assigned guide.
func canWriteRemarks(userID uint, role string, batch *models.Batch) bool {
	if role == models.RoleSupervisor {
		return true
	}
	return role == models.RoleFaculty && batch.FacultyID != nil && *batch.FacultyID == userID
}
