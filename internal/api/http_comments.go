package api

import (
	"net/http"

	"github.com/anggol23/Be-Resonansi/internal/auth"
	"github.com/anggol23/Be-Resonansi/internal/entity/dto"

	"github.com/gin-gonic/gin"
)

// CreateComment 评论作者始终是当前用户，请求体中的 userId 会被忽略。
func (h *HTTPHandler) CreateComment(c *gin.Context, identity auth.Identity) {
	var req dto.CommentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	comment, err := h.comments.Create(ctx, identity, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *HTTPHandler) ListPostComments(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	comments, err := h.comments.ListByPostSlug(ctx, c.Param("slug"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *HTTPHandler) LikeComment(c *gin.Context, identity auth.Identity) {
	id, ok := parseID(c, "commentId")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	comment, err := h.comments.ToggleLike(ctx, identity, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *HTTPHandler) EditComment(c *gin.Context, identity auth.Identity) {
	id, ok := parseID(c, "commentId")
	if !ok {
		return
	}
	var req dto.CommentEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	comment, err := h.comments.Edit(ctx, identity, id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *HTTPHandler) DeleteComment(c *gin.Context, identity auth.Identity) {
	id, ok := parseID(c, "commentId")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.comments.Delete(ctx, identity, id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment has been deleted"})
}
