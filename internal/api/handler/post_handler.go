package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-feed/pkg/response"
)

type createPostRequest struct {
	Content string `json:"content" binding:"required,notblank,max=2000"`
	Image   string `json:"image" binding:"omitempty,url"`
}

type commentRequest struct {
	Content string `json:"content" binding:"required,notblank,max=1000"`
}

// Feed 当前 viewer 的首页 feed
// @Summary 首页 feed
// @Tags 帖子
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/feed [get]
func (h *Handler) Feed(c *gin.Context) {
	viewer, err := h.viewerID(c)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	// viewer 为空（匿名/未同步）时返回空 feed，不视为错误
	feed, err := h.postService.GetFeed(c.Request.Context(), viewer)
	if err != nil {
		// 读路径故障向上暴露
		response.InternalError(c, err)
		return
	}
	response.Success(c, feed)
}

// CreatePost 发帖
// @Summary 发帖
// @Tags 帖子
// @Accept json
// @Produce json
// @Param request body createPostRequest true "帖子内容"
// @Success 200 {object} response.Result
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	viewer, err := h.viewerID(c)
	if err != nil {
		response.Fail(c, "Failed to create post")
		return
	}
	post, err := h.postService.CreatePost(c.Request.Context(), viewer, req.Content, req.Image)
	if err != nil {
		failMutation(c, err, "Failed to create post")
		return
	}
	response.OK(c, "Post created", post)
}

// DeletePost 删帖（仅作者）
// @Summary 删帖
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Produce json
// @Success 200 {object} response.Result
// @Router /api/v1/posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	viewer, err := h.viewerID(c)
	if err != nil {
		response.Fail(c, "Failed to delete post")
		return
	}
	if err := h.postService.DeletePost(c.Request.Context(), viewer, c.Param("id")); err != nil {
		failMutation(c, err, "Failed to delete post")
		return
	}
	response.OK(c, "Post deleted", nil)
}

// ToggleLike 点赞状态翻转
// @Summary 点赞/取消点赞
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Produce json
// @Success 200 {object} response.Result
// @Router /api/v1/posts/{id}/like [post]
func (h *Handler) ToggleLike(c *gin.Context) {
	viewer, err := h.viewerID(c)
	if err != nil {
		response.Fail(c, "Failed to like post")
		return
	}
	liked, err := h.postService.ToggleLike(c.Request.Context(), viewer, c.Param("id"))
	if err != nil {
		failMutation(c, err, "Failed to like post")
		return
	}
	response.OK(c, "ok", gin.H{"liked": liked})
}

// CreateComment 评论
// @Summary 评论
// @Tags 帖子
// @Accept json
// @Produce json
// @Param id path string true "帖子ID"
// @Param request body commentRequest true "评论内容"
// @Success 200 {object} response.Result
// @Router /api/v1/posts/{id}/comments [post]
func (h *Handler) CreateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	viewer, err := h.viewerID(c)
	if err != nil {
		response.Fail(c, "Failed to add comment")
		return
	}
	comment, err := h.postService.CreateComment(c.Request.Context(), viewer, c.Param("id"), req.Content)
	if err != nil {
		failMutation(c, err, "Failed to add comment")
		return
	}
	response.OK(c, "Comment added", comment)
}

// UpdateComment 改评论（仅作者）
// @Summary 改评论
// @Tags 帖子
// @Accept json
// @Produce json
// @Param id path string true "评论ID"
// @Param request body commentRequest true "评论内容"
// @Success 200 {object} response.Result
// @Router /api/v1/comments/{id} [patch]
func (h *Handler) UpdateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	viewer, err := h.viewerID(c)
	if err != nil {
		response.Fail(c, "Failed to update comment")
		return
	}
	if err := h.postService.UpdateComment(c.Request.Context(), viewer, c.Param("id"), req.Content); err != nil {
		failMutation(c, err, "Failed to update comment")
		return
	}
	response.OK(c, "Comment updated", nil)
}
