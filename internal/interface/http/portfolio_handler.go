package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/projectshelf/internal/domain/portfolio"
)

func (h *Handler) ListPortfolios(c *gin.Context) {
	claims, ok := h.requireClaims(c)
	if !ok {
		return
	}
	items, err := h.portfolioSvc.List(c.Request.Context(), claims.Subject)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) CreatePortfolio(c *gin.Context) {
	claims, ok := h.requireClaims(c)
	if !ok {
		return
	}
	var req portfolio.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidBody(err))
		return
	}
	p, err := h.portfolioSvc.Create(c.Request.Context(), claims.Subject, req)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPortfolio(c *gin.Context) {
	claims, ok := h.requireClaims(c)
	if !ok {
		return
	}
	p, err := h.portfolioSvc.Get(c.Request.Context(), claims.Subject, c.Param("id"))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdatePortfolio(c *gin.Context) {
	claims, ok := h.requireClaims(c)
	if !ok {
		return
	}
	var req portfolio.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidBody(err))
		return
	}
	p, err := h.portfolioSvc.Update(c.Request.Context(), claims.Subject, c.Param("id"), req)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePortfolio(c *gin.Context) {
	claims, ok := h.requireClaims(c)
	if !ok {
		return
	}
	if err := h.portfolioSvc.Delete(c.Request.Context(), claims.Subject, c.Param("id")); err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListCaseStudies(c *gin.Context) {
	claims, ok := h.requireClaims(c)
	if !ok {
		return
	}
	items, err := h.portfolioSvc.ListCaseStudies(c.Request.Context(), claims.Subject, c.Param("id"))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) AddCaseStudy(c *gin.Context) {
	claims, ok := h.requireClaims(c)
	if !ok {
		return
	}
	var input portfolio.CaseStudy
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, invalidBody(err))
		return
	}
	cs, err := h.portfolioSvc.AddCaseStudy(c.Request.Context(), claims.Subject, c.Param("id"), input)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cs)
}

func (h *Handler) GetCaseStudy(c *gin.Context) {
	claims, ok := h.requireClaims(c)
	if !ok {
		return
	}
	cs, err := h.portfolioSvc.GetCaseStudy(c.Request.Context(), claims.Subject, c.Param("id"), c.Param("caseStudyId"))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, cs)
}

func (h *Handler) ReplaceCaseStudy(c *gin.Context) {
	claims, ok := h.requireClaims(c)
	if !ok {
		return
	}
	var input portfolio.CaseStudy
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, invalidBody(err))
		return
	}
	cs, err := h.portfolioSvc.ReplaceCaseStudy(c.Request.Context(), claims.Subject, c.Param("id"), c.Param("caseStudyId"), input)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, cs)
}

func (h *Handler) RemoveCaseStudy(c *gin.Context) {
	claims, ok := h.requireClaims(c)
	if !ok {
		return
	}
	if err := h.portfolioSvc.RemoveCaseStudy(c.Request.Context(), claims.Subject, c.Param("id"), c.Param("caseStudyId")); err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
