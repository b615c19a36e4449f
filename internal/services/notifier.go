package services

import (
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"github.com/KrishnaBabuLaveti/Student-Project-Management/models"
)

// Notifier delivers an already-persisted notification to its recipient over
// a realtime channel (websocket push, e-mail). Delivery is best effort: the
// caller never rolls back on a delivery error.
type Notifier interface {
	Notify(recipientID uint, n *models.Notification) error
}

// NopNotifier discards every notification. Used in tests and as the default
// before the hub is wired in.
type NopNotifier struct{}

func (NopNotifier) Notify(uint, *models.Notification) error { return nil }

// EmailSender sends one plain-text message to a recipient.
type EmailSender interface {
	Send(toName, toAddr, subject, body string) error
}

// EmailNotifier mails the notification to its recipient and records the
// delivery on the row.
type EmailNotifier struct {
	DB     *gorm.DB
	Sender EmailSender
}

func (e *EmailNotifier) Notify(recipientID uint, n *models.Notification) error {
	var user models.User
	if err := e.DB.First(&user, recipientID).Error; err != nil {
		return err
	}
	if err := e.Sender.Send(user.Name, user.Email, n.Title, n.Message); err != nil {
		return err
	}
	return e.DB.Model(n).Update("email_sent", true).Error
}

// MultiNotifier fans a notification out to several delivery channels. Each
// channel is attempted regardless of earlier failures.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(recipientID uint, n *models.Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(recipientID, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// fanOut persists one notification per recipient and pushes each through the
// notifier. Persistence or delivery failures are logged and swallowed;
// notifications are not part of the invariant-preserving core.
func fanOut(db *gorm.DB, notifier Notifier, recipients []uint, template models.Notification) {
	for _, recipientID := range recipients {
		n := template
		n.ID = 0
		n.RecipientID = recipientID
		if err := db.Create(&n).Error; err != nil {
			slog.Error("Failed to persist notification", "error", err, "recipient_id", recipientID)
			continue
		}
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(recipientID, &n); err != nil {
			slog.Warn("Failed to deliver notification", "error", err, "recipient_id", recipientID, "notification_id", n.ID)
		}
	}
}
