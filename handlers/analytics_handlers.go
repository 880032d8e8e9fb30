package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"craftfolio/api/models"
	"craftfolio/api/store"
)

// reportWindow is the trailing period every analytics report covers,
// recomputed from the handler clock on each request.
const reportWindowDays = 30

// VisitEventStore is the slice of the analytics store the reports need.
type VisitEventStore interface {
	InsertEvent(ctx context.Context, event *models.VisitEvent) error
	Summary(ctx context.Context, portfolioID, caseStudyID string, since time.Time) (*models.VisitSummary, error)
	TopCaseStudies(ctx context.Context, portfolioID string, since time.Time, limit uint64) ([]models.CaseStudyViews, error)
	ClickBreakdown(ctx context.Context, portfolioID, caseStudyID string, since time.Time) ([]models.ClickStat, error)
}

// PortfolioGetter resolves the caller's portfolio for the ownership chain.
type PortfolioGetter interface {
	GetByUserID(ctx context.Context, userID int) (*models.Portfolio, error)
}

// CaseStudyResolver checks case-study ownership and batch-resolves titles.
// Title resolution omits ids whose case study no longer exists.
type CaseStudyResolver interface {
	GetByID(ctx context.Context, id, portfolioID string) (*models.CaseStudy, error)
	ResolveTitles(ctx context.Context, ids []string) (map[string]string, error)
}

type AnalyticsHandlers struct {
	Events      VisitEventStore
	Portfolios  PortfolioGetter
	CaseStudies CaseStudyResolver

	// now is swapped out in tests to pin the report window.
	now func() time.Time
}

func NewAnalyticsHandlers(events VisitEventStore, portfolios PortfolioGetter, caseStudies CaseStudyResolver) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		Events:      events,
		Portfolios:  portfolios,
		CaseStudies: caseStudies,
		now:         time.Now,
	}
}

func (h *AnalyticsHandlers) windowStart() time.Time {
	return h.now().UTC().AddDate(0, 0, -reportWindowDays)
}

// TrackView records one public page visit. The portfolio id must parse as
// a UUID but is never checked for existence, so the response cannot reveal
// whether a portfolio exists.
func (h *AnalyticsHandlers) TrackView(c *gin.Context) {
	var req models.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	visitor := models.Visitor{}
	if req.Visitor != nil {
		visitor = *req.Visitor
	}
	if visitor.IP == "" {
		visitor.IP = c.ClientIP()
	}

	event := &models.VisitEvent{
		EventID:     uuid.New().String(),
		PortfolioID: req.PortfolioID,
		CaseStudyID: req.CaseStudyID,
		Visitor:     visitor,
		PageViews:   1,
		TimeSpent:   req.TimeSpent,
		OccurredAt:  h.now().UTC(),
	}
	if len(req.ClickEvents) > 0 {
		event.ClickEvents = req.ClickEvents
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	if err := h.Events.InsertEvent(ctx, event); err != nil {
		log.Printf("Error inserting visit event for portfolio %s: %v", req.PortfolioID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record visit"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{}})
}

// GetPortfolioAnalytics returns the caller's 30-day portfolio report:
// summary plus the top five case studies by views, titles resolved against
// the case-study collection (deleted ones are dropped).
func (h *AnalyticsHandlers) GetPortfolioAnalytics(c *gin.Context) {
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

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()
	since := h.windowStart()

	summary, err := h.Events.Summary(ctx, portfolio.ID, "", since)
	if err != nil {
		log.Printf("Error aggregating portfolio %s summary: %v", portfolio.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve analytics"})
		return
	}

	ranked, err := h.Events.TopCaseStudies(ctx, portfolio.ID, since, 5)
	if err != nil {
		log.Printf("Error aggregating portfolio %s top case studies: %v", portfolio.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve analytics"})
		return
	}

	ids := make([]string, 0, len(ranked))
	for _, entry := range ranked {
		ids = append(ids, entry.CaseStudyID)
	}
	titles, err := h.CaseStudies.ResolveTitles(ctx, ids)
	if err != nil {
		log.Printf("Error resolving case study titles for portfolio %s: %v", portfolio.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve analytics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    assemblePortfolioReport(summary, ranked, titles),
	})
}

// GetCaseStudyAnalytics returns the 30-day report for one of the caller's
// case studies: summary plus the full ranked click breakdown.
func (h *AnalyticsHandlers) GetCaseStudyAnalytics(c *gin.Context) {
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

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()
	since := h.windowStart()

	summary, err := h.Events.Summary(ctx, portfolio.ID, caseStudy.ID, since)
	if err != nil {
		log.Printf("Error aggregating case study %s summary: %v", caseStudy.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve analytics"})
		return
	}

	clicks, err := h.Events.ClickBreakdown(ctx, portfolio.ID, caseStudy.ID, since)
	if err != nil {
		log.Printf("Error aggregating case study %s clicks: %v", caseStudy.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve analytics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    assembleCaseStudyReport(summary, clicks),
	})
}

// assemblePortfolioReport joins the ranked views against the resolved
// titles, dropping entries whose case study has been deleted since the
// events were recorded. Empty inputs shape into zeros and empty lists.
func assemblePortfolioReport(summary *models.VisitSummary, ranked []models.CaseStudyViews, titles map[string]string) models.PortfolioReport {
	report := models.PortfolioReport{
		TopCaseStudies: make([]models.TopCaseStudy, 0, len(ranked)),
	}
	if summary != nil {
		report.Summary = *summary
	}
	for _, entry := range ranked {
		title, ok := titles[entry.CaseStudyID]
		if !ok {
			continue
		}
		report.TopCaseStudies = append(report.TopCaseStudies, models.TopCaseStudy{
			CaseStudy: title,
			Views:     entry.Views,
		})
	}
	return report
}

func assembleCaseStudyReport(summary *models.VisitSummary, clicks []models.ClickStat) models.CaseStudyReport {
	report := models.CaseStudyReport{
		ClickEvents: make([]models.ClickStat, 0, len(clicks)),
	}
	if summary != nil {
		report.Summary = *summary
	}
	report.ClickEvents = append(report.ClickEvents, clicks...)
	return report
}
