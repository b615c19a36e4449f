package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AddRemarkHandler appends a remark to a batch. Authorization lives in the
// service since both supervisors and faculty guides may post.
func AddRemarkHandler(c *gin.Context) {
	batchID, err := parseID(c, "batchId")
	if err != nil {
		return
	}

	var input struct {
		Type    string `json:"type"`
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	remark, err := remarkSvc.AddRemark(currentUserID(c), c.GetString("role"), batchID, input.Type, input.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, remark)
}

// ListRemarksHandler returns a batch's remarks, newest first.
func ListRemarksHandler(c *gin.Context) {
	batchID, err := parseID(c, "batchId")
	if err != nil {
		return
	}

	remarks, err := remarkSvc.ListRemarks(currentUserID(c), c.GetString("role"), batchID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"remarks": remarks})
}

// DeleteRemarkHandler removes a single remark from a batch.
func DeleteRemarkHandler(c *gin.Context) {
	batchID, err := parseID(c, "batchId")
	if err != nil {
		return
	}
	remarkID, err := parseID(c, "remarkId")
	if err != nil {
		return
	}

	if err := remarkSvc.DeleteRemark(currentUserID(c), c.GetString("role"), batchID, remarkID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Remark deleted"})
}
