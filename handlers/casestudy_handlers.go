package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"craftfolio/api/models"
	"craftfolio/api/store"
)

type CaseStudyHandlers struct {
	Portfolios  *store.PortfolioStore
	CaseStudies *store.CaseStudyStore
}

func NewCaseStudyHandlers(portfolios *store.PortfolioStore, caseStudies *store.CaseStudyStore) *CaseStudyHandlers {
	return &CaseStudyHandlers{Portfolios: portfolios, CaseStudies: caseStudies}
}

// callerPortfolio resolves the authenticated caller's portfolio, writing
// the 404/500 response itself when the lookup fails.
func (h *CaseStudyHandlers) callerPortfolio(c *gin.Context) (*models.Portfolio, bool) {
	userID := c.MustGet("user_id").(int)

	portfolio, err := h.Portfolios.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrPortfolioNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Portfolio not found"})
			return nil, false
		}
		log.Printf("Error fetching portfolio for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve portfolio"})
		return nil, false
	}
	return portfolio, true
}

func (h *CaseStudyHandlers) ListCaseStudies(c *gin.Context) {
	portfolio, ok := h.callerPortfolio(c)
	if !ok {
		return
	}

	caseStudies, err := h.CaseStudies.List(c.Request.Context(), portfolio.ID)
	if err != nil {
		log.Printf("Error listing case studies for portfolio %s: %v", portfolio.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list case studies"})
		return
	}
	if caseStudies == nil {
		caseStudies = []*models.CaseStudy{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(caseStudies),
		"data":    caseStudies,
	})
}

func (h *CaseStudyHandlers) GetCaseStudy(c *gin.Context) {
	portfolio, ok := h.callerPortfolio(c)
	if !ok {
		return
	}

	caseStudy, err := h.CaseStudies.GetByID(c.Request.Context(), c.Param("id"), portfolio.ID)
	if err != nil {
		if errors.Is(err, store.ErrCaseStudyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Case study not found"})
			return
		}
		log.Printf("Error fetching case study %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve case study"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": caseStudy})
}

func (h *CaseStudyHandlers) CreateCaseStudy(c *gin.Context) {
	portfolio, ok := h.callerPortfolio(c)
	if !ok {
		return
	}

	var req models.CaseStudyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	caseStudy, err := h.CaseStudies.Create(c.Request.Context(), portfolio.ID, &req)
	if err != nil {
		log.Printf("Error creating case study for portfolio %s: %v", portfolio.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create case study"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": caseStudy})
}

func (h *CaseStudyHandlers) UpdateCaseStudy(c *gin.Context) {
	portfolio, ok := h.callerPortfolio(c)
	if !ok {
		return
	}

	var req models.CaseStudyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	caseStudy, err := h.CaseStudies.Update(c.Request.Context(), c.Param("id"), portfolio.ID, &req)
	if err != nil {
		if errors.Is(err, store.ErrCaseStudyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Case study not found"})
			return
		}
		log.Printf("Error updating case study %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update case study"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": caseStudy})
}

// DeleteCaseStudy removes the case study. Visit events that reference it
// stay behind; the analytics report simply omits the dangling id.
func (h *CaseStudyHandlers) DeleteCaseStudy(c *gin.Context) {
	portfolio, ok := h.callerPortfolio(c)
	if !ok {
		return
	}

	err := h.CaseStudies.Delete(c.Request.Context(), c.Param("id"), portfolio.ID)
	if err != nil {
		if errors.Is(err, store.ErrCaseStudyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Case study not found"})
			return
		}
		log.Printf("Error deleting case study %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete case study"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{}})
}

func (h *CaseStudyHandlers) TogglePublish(c *gin.Context) {
	portfolio, ok := h.callerPortfolio(c)
	if !ok {
		return
	}

	caseStudy, err := h.CaseStudies.TogglePublish(c.Request.Context(), c.Param("id"), portfolio.ID)
	if err != nil {
		if errors.Is(err, store.ErrCaseStudyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Case study not found"})
			return
		}
		log.Printf("Error toggling publish for case study %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update case study"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": caseStudy})
}

func (h *CaseStudyHandlers) ToggleFeature(c *gin.Context) {
	portfolio, ok := h.callerPortfolio(c)
	if !ok {
		return
	}

	caseStudy, err := h.CaseStudies.ToggleFeature(c.Request.Context(), c.Param("id"), portfolio.ID)
	if err != nil {
		if errors.Is(err, store.ErrCaseStudyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Case study not found"})
			return
		}
		log.Printf("Error toggling feature for case study %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update case study"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": caseStudy})
}
