package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-feed/internal/service"
	"github.com/d60-Lab/social-feed/pkg/middleware"
	"github.com/d60-Lab/social-feed/pkg/response"
)

type Handler struct {
	userService         service.UserService
	postService         service.PostService
	notificationService service.NotificationService
}

func New(userService service.UserService, postService service.PostService, notificationService service.NotificationService) *Handler {
	return &Handler{
		userService:         userService,
		postService:         postService,
		notificationService: notificationService,
	}
}

// viewerID 把请求里的外部身份解析为内部账号 ID；匿名或未同步返回 ""
func (h *Handler) viewerID(c *gin.Context) (string, error) {
	externalID := c.GetString(middleware.CtxExternalID)
	if externalID == "" {
		return "", nil
	}
	return h.userService.ResolveViewer(c.Request.Context(), externalID)
}

// failMutation 变更操作统一转成 {success:false, error} 包络，不向调用方抛 5xx
func failMutation(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		response.Unauthorized(c, "sign in required")
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrFollowSelf),
		errors.Is(err, service.ErrEmptyContent):
		response.Fail(c, err.Error())
	default:
		response.Fail(c, fallback)
	}
}
