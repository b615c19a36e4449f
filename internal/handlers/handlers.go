package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KrishnaBabuLaveti/Student-Project-Management/config"
	"github.com/KrishnaBabuLaveti/Student-Project-Management/internal/email"
	"github.com/KrishnaBabuLaveti/Student-Project-Management/internal/services"
)

var (
	reviewSvc    *services.ReviewService
	batchSvc     *services.BatchService
	formationSvc *services.FormationService
	reconcileSvc *services.ReconcileService
	remarkSvc    *services.RemarkService
)

// InitServices wires the domain services to the database, the websocket hub
// and the e-mail sender. Must run after config.ConnectDB.
func InitServices() {
	notifier := services.MultiNotifier{
		GlobalHub,
		&services.EmailNotifier{DB: config.DB, Sender: email.NewSenderFromEnv()},
	}
	reviewSvc = services.NewReviewService(config.DB, notifier)
	batchSvc = services.NewBatchService(config.DB)
	formationSvc = services.NewFormationService(config.DB)
	reconcileSvc = services.NewReconcileService(config.DB)
	remarkSvc = services.NewRemarkService(config.DB, notifier)
}

// respondError maps a domain error to its HTTP status.
func respondError(c *gin.Context, err error) {
	var (
		validationErr   *services.ValidationError
		forbiddenErr    *services.ForbiddenError
		notFoundErr     *services.NotFoundError
		capacityErr     *services.CapacityError
		invalidStateErr *services.InvalidStateError
	)
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &capacityErr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &invalidStateErr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &forbiddenErr):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// currentUserID returns the authenticated user's id from the context.
func currentUserID(c *gin.Context) uint {
	v, _ := c.Get("user_id")
	id, _ := v.(uint)
	return id
}
