package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/anggol23/Be-Resonansi/internal/auth"
	"github.com/anggol23/Be-Resonansi/internal/entity/converter"
	"github.com/anggol23/Be-Resonansi/internal/entity/dto"

	"github.com/gin-gonic/gin"
)

// parseID reads a positive numeric path parameter, writing a 400 when it is
// malformed.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, ErrCodeInvalidID, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func (h *HTTPHandler) ListUsers(c *gin.Context) {
	var query dto.UserQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	response, err := h.users.List(ctx, query)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *HTTPHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.Get(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, converter.UserToSummary(user))
}

func (h *HTTPHandler) UpdateUser(c *gin.Context, identity auth.Identity) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.Update(ctx, identity, id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, converter.UserToSummary(user))
}

func (h *HTTPHandler) DeleteUser(c *gin.Context, identity auth.Identity) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.users.Delete(ctx, identity, id); err != nil {
		h.respondError(c, err)
		return
	}
	if id == identity.UserID {
		if err := h.auth.Signout(ctx, tokenFromRequest(c)); err != nil {
			h.respondError(c, err)
			return
		}
		h.clearAccessTokenCookie(c)
	}
	c.JSON(http.StatusOK, gin.H{"message": "User has been deleted"})
}

func (h *HTTPHandler) UpdateUserRole(c *gin.Context, identity auth.Identity) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.UpdateRole(ctx, identity, id, req.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User role has been updated", "user": converter.UserToSummary(user)})
}
