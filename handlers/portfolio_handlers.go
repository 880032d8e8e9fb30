package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"craftfolio/api/models"
	"craftfolio/api/store"
)

type PortfolioHandlers struct {
	Portfolios *store.PortfolioStore
}

func NewPortfolioHandlers(portfolios *store.PortfolioStore) *PortfolioHandlers {
	return &PortfolioHandlers{Portfolios: portfolios}
}

func (h *PortfolioHandlers) GetPortfolio(c *gin.Context) {
	userID := c.MustGet("user_id").(int)

	portfolio, err := h.Portfolios.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrPortfolioNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Portfolio not found"})
			return
		}
		log.Printf("Error fetching portfolio for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve portfolio"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": portfolio})
}

// CreateUpdatePortfolio creates the caller's portfolio when none exists
// (201), otherwise updates it in place (200).
func (h *PortfolioHandlers) CreateUpdatePortfolio(c *gin.Context) {
	userID := c.MustGet("user_id").(int)

	var req models.PortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	_, err := h.Portfolios.GetByUserID(c.Request.Context(), userID)
	if errors.Is(err, store.ErrPortfolioNotFound) {
		portfolio, err := h.Portfolios.Create(c.Request.Context(), userID, &req)
		if err != nil {
			log.Printf("Error creating portfolio for user %d: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create portfolio"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": portfolio})
		return
	}
	if err != nil {
		log.Printf("Error checking portfolio for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve portfolio"})
		return
	}

	portfolio, err := h.Portfolios.Update(c.Request.Context(), userID, &req)
	if err != nil {
		log.Printf("Error updating portfolio for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update portfolio"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": portfolio})
}

func (h *PortfolioHandlers) UpdateTheme(c *gin.Context) {
	userID := c.MustGet("user_id").(int)

	var req models.ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	portfolio, err := h.Portfolios.UpdateTheme(c.Request.Context(), userID, req.Theme)
	if err != nil {
		if errors.Is(err, store.ErrPortfolioNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Portfolio not found"})
			return
		}
		log.Printf("Error updating theme for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update theme"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": portfolio})
}

func (h *PortfolioHandlers) TogglePublish(c *gin.Context) {
	userID := c.MustGet("user_id").(int)

	portfolio, err := h.Portfolios.TogglePublish(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrPortfolioNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Portfolio not found"})
			return
		}
		log.Printf("Error toggling publish for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update portfolio"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": portfolio})
}
