package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-feed/pkg/response"
)

type markReadRequest struct {
	IDs []string `json:"ids"`
}

// Notifications 通知列表，最新在前
// @Summary 通知列表
// @Tags 通知
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/notifications [get]
func (h *Handler) Notifications(c *gin.Context) {
	viewer, err := h.viewerID(c)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if viewer == "" {
		response.Unauthorized(c, "sign in required")
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	list, err := h.notificationService.List(c.Request.Context(), viewer, page, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	unread, err := h.notificationService.CountUnread(c.Request.Context(), viewer)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "unread": unread, "list": list})
}

// MarkNotificationsRead 标记已读；ids 为空标记全部
// @Summary 标记通知已读
// @Tags 通知
// @Accept json
// @Produce json
// @Param request body markReadRequest true "通知ID集合，空为全部"
// @Success 200 {object} response.Result
// @Router /api/v1/notifications/read [post]
func (h *Handler) MarkNotificationsRead(c *gin.Context) {
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	viewer, err := h.viewerID(c)
	if err != nil {
		response.Fail(c, "Failed to mark notifications read")
		return
	}
	if viewer == "" {
		response.Unauthorized(c, "sign in required")
		return
	}
	if err := h.notificationService.MarkRead(c.Request.Context(), viewer, req.IDs); err != nil {
		failMutation(c, err, "Failed to mark notifications read")
		return
	}
	response.OK(c, "Notifications marked read", nil)
}
