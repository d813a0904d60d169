package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/projectshelf/internal/domain/user"
)

// CreateUser is the public signup endpoint.
func (h *Handler) CreateUser(c *gin.Context) {
	var req user.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidBody(err))
		return
	}
	view, err := h.userSvc.Create(c.Request.Context(), req)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// ListUsers is restricted to admins.
func (h *Handler) ListUsers(c *gin.Context) {
	claims, ok := h.requireClaims(c)
	if !ok {
		return
	}
	views, err := h.userSvc.List(c.Request.Context(), claims.Actor())
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) GetUser(c *gin.Context) {
	claims, ok := h.requireClaims(c)
	if !ok {
		return
	}
	view, err := h.userSvc.Get(c.Request.Context(), claims.Actor(), c.Param("id"))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	claims, ok := h.requireClaims(c)
	if !ok {
		return
	}
	var req user.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidBody(err))
		return
	}
	view, err := h.userSvc.Update(c.Request.Context(), claims.Actor(), c.Param("id"), req)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DeleteUser removes the account and its portfolios. Deleting your own
// account also ends the session.
func (h *Handler) DeleteUser(c *gin.Context) {
	claims, ok := h.requireClaims(c)
	if !ok {
		return
	}
	id := c.Param("id")
	view, err := h.userSvc.Delete(c.Request.Context(), claims.Actor(), id)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	if claims.Subject == id {
		h.cookies.clear(c)
	}
	c.JSON(http.StatusOK, view)
}
