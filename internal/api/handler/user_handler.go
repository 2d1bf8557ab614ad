package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/service"
	"github.com/d60-Lab/social-feed/pkg/middleware"
	"github.com/d60-Lab/social-feed/pkg/response"
)

// SyncUser 首次登录时按外部身份幂等建账号
// @Summary 同步外部账号
// @Tags 用户
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/users/sync [post]
func (h *Handler) SyncUser(c *gin.Context) {
	externalID := c.GetString(middleware.CtxExternalID)
	if externalID == "" {
		response.Unauthorized(c, "sign in required")
		return
	}
	u, err := h.userService.SyncUser(c.Request.Context(), service.ExternalProfile{
		ExternalID: externalID,
		FirstName:  c.GetString(middleware.CtxFirstName),
		LastName:   c.GetString(middleware.CtxLastName),
		Username:   c.GetString(middleware.CtxUsername),
		Email:      c.GetString(middleware.CtxEmail),
		Image:      c.GetString(middleware.CtxImage),
	})
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, u)
}

// Me 当前账号档案 + 计数
// @Summary 当前用户
// @Tags 用户
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/users/me [get]
func (h *Handler) Me(c *gin.Context) {
	externalID := c.GetString(middleware.CtxExternalID)
	if externalID == "" {
		response.Unauthorized(c, "sign in required")
		return
	}
	profile, err := h.userService.GetProfileByExternalID(c.Request.Context(), externalID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "account not synced")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, profile)
}

// Profile 按 username 查档案；附带当前 viewer 是否已关注
// @Summary 用户主页
// @Tags 用户
// @Param username path string true "用户名"
// @Produce json
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{username} [get]
func (h *Handler) Profile(c *gin.Context) {
	profile, err := h.userService.GetProfileByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.InternalError(c, err)
		return
	}

	viewer, err := h.viewerID(c)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	isFollowing, err := h.userService.IsFollowing(c.Request.Context(), viewer, profile.ID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"profile": profile, "is_following": isFollowing})
}

// UserPosts 某用户发布的帖子
// @Summary 用户帖子列表
// @Tags 用户
// @Param username path string true "用户名"
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/users/{username}/posts [get]
func (h *Handler) UserPosts(c *gin.Context) {
	profile, err := h.userService.GetProfileByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	posts, err := h.postService.GetUserPosts(c.Request.Context(), profile.ID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, posts)
}

// UserLikedPosts 某用户点过赞的帖子
// @Summary 用户点赞列表
// @Tags 用户
// @Param username path string true "用户名"
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/users/{username}/likes [get]
func (h *Handler) UserLikedPosts(c *gin.Context) {
	profile, err := h.userService.GetProfileByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	posts, err := h.postService.GetUserLikedPosts(c.Request.Context(), profile.ID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, posts)
}

// ToggleFollow 关注状态翻转
// @Summary 关注/取消关注
// @Tags 关系链
// @Param id path string true "目标用户ID"
// @Produce json
// @Success 200 {object} response.Result
// @Router /api/v1/follow/{id} [post]
func (h *Handler) ToggleFollow(c *gin.Context) {
	viewer, err := h.viewerID(c)
	if err != nil {
		response.Fail(c, "Failed to toggle follow")
		return
	}
	msg, err := h.userService.ToggleFollow(c.Request.Context(), viewer, c.Param("id"))
	if err != nil {
		failMutation(c, err, "Failed to toggle follow")
		return
	}
	response.OK(c, msg, nil)
}

// Following 查询关注列表
// @Summary 关注列表
// @Tags 关系链
// @Param username path string true "用户名"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/users/{username}/following [get]
func (h *Handler) Following(c *gin.Context) {
	h.listRelations(c, h.userService.ListFollowing)
}

// Followers 查询粉丝列表
// @Summary 粉丝列表
// @Tags 关系链
// @Param username path string true "用户名"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/users/{username}/followers [get]
func (h *Handler) Followers(c *gin.Context) {
	h.listRelations(c, h.userService.ListFollowers)
}

func (h *Handler) listRelations(c *gin.Context, list func(ctx context.Context, userID string, page, pageSize int) ([]model.UserSummary, error)) {
	profile, err := h.userService.GetProfileByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	res, err := list(c.Request.Context(), profile.ID, page, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": res})
}

// Suggestions 推荐关注（mode=recent|graph）
// @Summary 推荐关注
// @Tags 关系链
// @Param mode query string false "recent 或 graph" default(graph)
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/users/suggestions [get]
func (h *Handler) Suggestions(c *gin.Context) {
	viewer, err := h.viewerID(c)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if viewer == "" {
		response.Unauthorized(c, "sign in required")
		return
	}

	var res []service.Suggestion
	switch c.DefaultQuery("mode", "graph") {
	case "recent":
		res, err = h.userService.SuggestRecent(c.Request.Context(), viewer)
	case "graph":
		res, err = h.userService.SuggestFollowOfFollows(c.Request.Context(), viewer)
	default:
		response.BadRequest(c, "unknown mode")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, res)
}
