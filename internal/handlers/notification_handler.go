package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/KrishnaBabuLaveti/Student-Project-Management/config"
	"github.com/KrishnaBabuLaveti/Student-Project-Management/models"
)

// ListNotificationsHandler returns the user's notifications, newest first,
// paginated.
func ListNotificationsHandler(c *gin.Context) {
	userID := currentUserID(c)

	var totalRows int64
	if err := config.DB.Model(&models.Notification{}).
		Where("recipient_id = ?", userID).
		Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not count notifications"})
		return
	}

	var notifications []models.Notification
	if err := config.DB.Preload("From").
		Where("recipient_id = ?", userID).
		Order("created_at desc").
		Scopes(Paginate(c)).
		Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch notifications"})
		return
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, notifications, totalRows))
}

// UnreadCountHandler returns the unread-notification count, cached briefly in
// redis to keep the badge polling cheap.
func UnreadCountHandler(c *gin.Context) {
	userID := currentUserID(c)
	cacheKey := fmt.Sprintf("user:%d:unread_count", userID)

	if config.RDB != nil {
		cached, err := config.RDB.Get(config.Ctx, cacheKey).Result()
		if err == nil {
			count, convErr := strconv.ParseInt(cached, 10, 64)
			if convErr == nil {
				c.JSON(http.StatusOK, gin.H{"count": count})
				return
			}
		} else if err != redis.Nil {
			slog.Error("Redis GET command failed", "error", err, "user_id", userID)
		}
	}

	var count int64
	if err := config.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", userID, false).
		Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not count notifications"})
		return
	}

	if config.RDB != nil {
		if err := config.RDB.Set(config.Ctx, cacheKey, count, 30*time.Second).Err(); err != nil {
			slog.Warn("Failed to cache unread count", "error", err, "user_id", userID)
		}
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkReadHandler marks one of the user's notifications as read.
func MarkReadHandler(c *gin.Context) {
	userID := currentUserID(c)
	notificationID, err := parseID(c, "id")
	if err != nil {
		return
	}

	result := config.DB.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, userID).
		Update("read", true)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification as read"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	invalidateUnreadCount(userID)
	c.JSON(http.StatusOK, gin.H{"message": "Marked as read"})
}

// MarkAllReadHandler marks every unread notification of the user as read.
func MarkAllReadHandler(c *gin.Context) {
	userID := currentUserID(c)
	if err := config.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", userID, false).
		Update("read", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications as read"})
		return
	}

	invalidateUnreadCount(userID)
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

func invalidateUnreadCount(userID uint) {
	if config.RDB == nil {
		return
	}
	cacheKey := fmt.Sprintf("user:%d:unread_count", userID)
	if err := config.RDB.Del(config.Ctx, cacheKey).Err(); err != nil {
		slog.Warn("Failed to invalidate unread-count cache", "error", err, "user_id", userID)
	}
}
