package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"craftfolio/api/models"
	"craftfolio/api/store"
)

type PublicHandlers struct {
	Users       *store.UserStore
	Portfolios  *store.PortfolioStore
	CaseStudies *store.CaseStudyStore
}

func NewPublicHandlers(users *store.UserStore, portfolios *store.PortfolioStore, caseStudies *store.CaseStudyStore) *PublicHandlers {
	return &PublicHandlers{Users: users, Portfolios: portfolios, CaseStudies: caseStudies}
}

// publishedPortfolio resolves a username to its published portfolio,
// writing the 404/500 response itself on failure. Unpublished portfolios
// are indistinguishable from missing ones.
func (h *PublicHandlers) publishedPortfolio(c *gin.Context) (*models.User, *models.Portfolio, bool) {
	username := c.Param("username")

	user, err := h.Users.GetUserByUsername(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return nil, nil, false
		}
		log.Printf("Error fetching user %s: %v", username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve portfolio"})
		return nil, nil, false
	}

	portfolio, err := h.Portfolios.GetByUserID(c.Request.Context(), user.ID)
	if err != nil && !errors.Is(err, store.ErrPortfolioNotFound) {
		log.Printf("Error fetching portfolio for user %s: %v", username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve portfolio"})
		return nil, nil, false
	}
	if err != nil || !portfolio.Published {
		c.JSON(http.StatusNotFound, gin.H{"error": "Portfolio not found or not published"})
		return nil, nil, false
	}

	return user, portfolio, true
}

// GetPublicPortfolio serves the public portfolio page payload for a
// username: profile, portfolio, and published case studies featured-first.
func (h *PublicHandlers) GetPublicPortfolio(c *gin.Context) {
	user, portfolio, ok := h.publishedPortfolio(c)
	if !ok {
		return
	}

	caseStudies, err := h.CaseStudies.ListPublished(c.Request.Context(), portfolio.ID)
	if err != nil {
		log.Printf("Error listing published case studies for %s: %v", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve case studies"})
		return
	}
	if caseStudies == nil {
		caseStudies = []*models.CaseStudy{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"user": gin.H{
				"name":     user.Name,
				"username": user.Username,
			},
			"portfolio":   portfolio,
			"caseStudies": caseStudies,
		},
	})
}

// GetPublicCaseStudy serves a single published case study by slug.
func (h *PublicHandlers) GetPublicCaseStudy(c *gin.Context) {
	user, portfolio, ok := h.publishedPortfolio(c)
	if !ok {
		return
	}

	caseStudy, err := h.CaseStudies.GetPublishedBySlug(c.Request.Context(), portfolio.ID, c.Param("slug"))
	if err != nil {
		if errors.Is(err, store.ErrCaseStudyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Case study not found or not published"})
			return
		}
		log.Printf("Error fetching case study %s/%s: %v", user.Username, c.Param("slug"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve case study"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"user": gin.H{
				"name":     user.Name,
				"username": user.Username,
			},
			"portfolio": portfolio,
			"caseStudy": caseStudy,
		},
	})
}
