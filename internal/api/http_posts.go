package api

import (
	"net/http"

	"github.com/anggol23/Be-Resonansi/internal/auth"
	"github.com/anggol23/Be-Resonansi/internal/entity/converter"
	"github.com/anggol23/Be-Resonansi/internal/entity/dto"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) CreatePost(c *gin.Context, identity auth.Identity) {
	var req dto.PostCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := h.posts.Create(ctx, identity, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, converter.PostToSummary(post))
}

func (h *HTTPHandler) ListPosts(c *gin.Context) {
	var query dto.PostQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	response, err := h.posts.List(ctx, query)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *HTTPHandler) GetPost(c *gin.Context) {
	id, ok := parseID(c, "postId")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := h.posts.Get(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, converter.PostToSummary(post))
}

func (h *HTTPHandler) GetPostBySlug(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := h.posts.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, converter.PostToSummary(post))
}

func (h *HTTPHandler) UpdatePost(c *gin.Context, identity auth.Identity) {
	id, ok := parseID(c, "postId")
	if !ok {
		return
	}
	var req dto.PostUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := h.posts.Update(ctx, identity, id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, converter.PostToSummary(post))
}

func (h *HTTPHandler) DeletePost(c *gin.Context, identity auth.Identity) {
	id, ok := parseID(c, "postId")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.posts.Delete(ctx, identity, id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "The post has been deleted"})
}
