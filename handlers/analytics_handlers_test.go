package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"craftfolio/api/models"
	"craftfolio/api/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeEventStore struct {
	inserted  []*models.VisitEvent
	insertErr error

	summary *models.VisitSummary
	top     []models.CaseStudyViews
	clicks  []models.ClickStat
	readErr error

	lastSince time.Time
}

func (f *fakeEventStore) InsertEvent(ctx context.Context, event *models.VisitEvent) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, event)
	return nil
}

func (f *fakeEventStore) Summary(ctx context.Context, portfolioID, caseStudyID string, since time.Time) (*models.VisitSummary, error) {
	f.lastSince = since
	if f.readErr != nil {
		return nil, f.readErr
	}
	if f.summary == nil {
		return &models.VisitSummary{}, nil
	}
	return f.summary, nil
}

func (f *fakeEventStore) TopCaseStudies(ctx context.Context, portfolioID string, since time.Time, limit uint64) ([]models.CaseStudyViews, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	if uint64(len(f.top)) > limit {
		return f.top[:limit], nil
	}
	return f.top, nil
}

func (f *fakeEventStore) ClickBreakdown(ctx context.Context, portfolioID, caseStudyID string, since time.Time) ([]models.ClickStat, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.clicks, nil
}

type fakePortfolios struct {
	portfolio *models.Portfolio
}

func (f *fakePortfolios) GetByUserID(ctx context.Context, userID int) (*models.Portfolio, error) {
	if f.portfolio == nil {
		return nil, store.ErrPortfolioNotFound
	}
	return f.portfolio, nil
}

type fakeCaseStudies struct {
	caseStudy *models.CaseStudy
	titles    map[string]string
}

func (f *fakeCaseStudies) GetByID(ctx context.Context, id, portfolioID string) (*models.CaseStudy, error) {
	if f.caseStudy == nil || f.caseStudy.ID != id || f.caseStudy.PortfolioID != portfolioID {
		return nil, store.ErrCaseStudyNotFound
	}
	return f.caseStudy, nil
}

func (f *fakeCaseStudies) ResolveTitles(ctx context.Context, ids []string) (map[string]string, error) {
	resolved := make(map[string]string, len(ids))
	for _, id := range ids {
		if title, ok := f.titles[id]; ok {
			resolved[id] = title
		}
	}
	return resolved, nil
}

func newAnalyticsRouter(h *AnalyticsHandlers) *gin.Engine {
	r := gin.New()
	r.POST("/api/analytics/track", h.TrackView)

	authed := r.Group("/", func(c *gin.Context) {
		c.Set("user_id", 1)
		c.Next()
	})
	authed.GET("/api/analytics/portfolio", h.GetPortfolioAnalytics)
	authed.GET("/api/analytics/case-study/:id", h.GetCaseStudyAnalytics)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const portfolioID = "5bfcdf17-bd33-4b12-9b31-428034a720d2"
const caseStudyID = "0b26c671-1a9c-4b52-b864-0b41e0feea8d"

func TestTrackViewStoresOneEvent(t *testing.T) {
	events := &fakeEventStore{}
	h := NewAnalyticsHandlers(events, &fakePortfolios{}, &fakeCaseStudies{})
	fixed := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return fixed }
	r := newAnalyticsRouter(h)

	w := doJSON(t, r, http.MethodPost, "/api/analytics/track", gin.H{
		"portfolioId": portfolioID,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	if len(events.inserted) != 1 {
		t.Fatalf("inserted %d events, want 1", len(events.inserted))
	}
	ev := events.inserted[0]
	if ev.PageViews != 1 {
		t.Errorf("PageViews = %d, want 1", ev.PageViews)
	}
	if ev.TimeSpent != 0 {
		t.Errorf("TimeSpent = %v, want 0", ev.TimeSpent)
	}
	if ev.EventID == "" {
		t.Error("EventID should be generated")
	}
	if !ev.OccurredAt.Equal(fixed) {
		t.Errorf("OccurredAt = %v, want %v", ev.OccurredAt, fixed)
	}
	if ev.ClickEvents != nil {
		t.Errorf("ClickEvents should be nil when omitted, got %+v", ev.ClickEvents)
	}
	if ev.Visitor.IP == "" {
		t.Error("Visitor.IP should fall back to the request client IP")
	}
}

func TestTrackViewEmptyClickListStoredAsNoClickData(t *testing.T) {
	events := &fakeEventStore{}
	h := NewAnalyticsHandlers(events, &fakePortfolios{}, &fakeCaseStudies{})
	r := newAnalyticsRouter(h)

	w := doJSON(t, r, http.MethodPost, "/api/analytics/track", gin.H{
		"portfolioId": portfolioID,
		"clickEvents": []models.ClickEvent{},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if events.inserted[0].ClickEvents != nil {
		t.Errorf("empty clickEvents should store as nil, got %+v", events.inserted[0].ClickEvents)
	}
}

func TestTrackViewRejectsMissingPortfolioID(t *testing.T) {
	events := &fakeEventStore{}
	h := NewAnalyticsHandlers(events, &fakePortfolios{}, &fakeCaseStudies{})
	r := newAnalyticsRouter(h)

	w := doJSON(t, r, http.MethodPost, "/api/analytics/track", gin.H{
		"timeSpent": 12,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if len(events.inserted) != 0 {
		t.Error("no event should be stored for a rejected payload")
	}
}

func TestTrackViewRejectsMalformedPortfolioID(t *testing.T) {
	events := &fakeEventStore{}
	h := NewAnalyticsHandlers(events, &fakePortfolios{}, &fakeCaseStudies{})
	r := newAnalyticsRouter(h)

	w := doJSON(t, r, http.MethodPost, "/api/analytics/track", gin.H{
		"portfolioId": "not-a-uuid",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if len(events.inserted) != 0 {
		t.Error("no event should be stored for a rejected payload")
	}
}

func TestTrackViewStorageFailureIsGeneric(t *testing.T) {
	events := &fakeEventStore{insertErr: errors.New("clickhouse unreachable")}
	h := NewAnalyticsHandlers(events, &fakePortfolios{}, &fakeCaseStudies{})
	r := newAnalyticsRouter(h)

	w := doJSON(t, r, http.MethodPost, "/api/analytics/track", gin.H{
		"portfolioId": portfolioID,
	})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("clickhouse")) {
		t.Error("storage error details should not leak to the visitor")
	}
}

type portfolioReportResponse struct {
	Success bool                   `json:"success"`
	Data    models.PortfolioReport `json:"data"`
}

func TestPortfolioAnalyticsZeroEvents(t *testing.T) {
	events := &fakeEventStore{}
	portfolios := &fakePortfolios{portfolio: &models.Portfolio{ID: portfolioID, UserID: 1}}
	h := NewAnalyticsHandlers(events, portfolios, &fakeCaseStudies{})
	r := newAnalyticsRouter(h)

	w := doJSON(t, r, http.MethodGet, "/api/analytics/portfolio", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp portfolioReportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data.Summary != (models.VisitSummary{}) {
		t.Errorf("summary = %+v, want all zeros", resp.Data.Summary)
	}
	if resp.Data.TopCaseStudies == nil || len(resp.Data.TopCaseStudies) != 0 {
		t.Errorf("topCaseStudies = %v, want empty list", resp.Data.TopCaseStudies)
	}
	// The JSON must carry [] rather than null for the empty list.
	if !bytes.Contains(w.Body.Bytes(), []byte(`"topCaseStudies":[]`)) {
		t.Errorf("body = %s, want topCaseStudies:[]", w.Body.String())
	}
}

func TestPortfolioAnalyticsTopCaseStudies(t *testing.T) {
	events := &fakeEventStore{
		summary: &models.VisitSummary{TotalViews: 14, AvgTimeSpent: 33.5, UniqueVisitors: 3},
		top: []models.CaseStudyViews{
			{CaseStudyID: "cs-a", Views: 10},
			{CaseStudyID: "cs-b", Views: 4},
		},
	}
	portfolios := &fakePortfolios{portfolio: &models.Portfolio{ID: portfolioID, UserID: 1}}
	caseStudies := &fakeCaseStudies{titles: map[string]string{
		"cs-a": "Brand Refresh",
		"cs-b": "Mobile App",
	}}
	h := NewAnalyticsHandlers(events, portfolios, caseStudies)
	r := newAnalyticsRouter(h)

	w := doJSON(t, r, http.MethodGet, "/api/analytics/portfolio", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp portfolioReportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	want := []models.TopCaseStudy{
		{CaseStudy: "Brand Refresh", Views: 10},
		{CaseStudy: "Mobile App", Views: 4},
	}
	if len(resp.Data.TopCaseStudies) != len(want) {
		t.Fatalf("topCaseStudies = %+v, want %+v", resp.Data.TopCaseStudies, want)
	}
	for i := range want {
		if resp.Data.TopCaseStudies[i] != want[i] {
			t.Errorf("topCaseStudies[%d] = %+v, want %+v", i, resp.Data.TopCaseStudies[i], want[i])
		}
	}
	if resp.Data.Summary.TotalViews != 14 {
		t.Errorf("totalViews = %d, want 14", resp.Data.Summary.TotalViews)
	}
}

func TestPortfolioAnalyticsOmitsDeletedCaseStudies(t *testing.T) {
	events := &fakeEventStore{
		top: []models.CaseStudyViews{
			{CaseStudyID: "cs-a", Views: 10},
			{CaseStudyID: "cs-deleted", Views: 7},
			{CaseStudyID: "cs-b", Views: 4},
		},
	}
	portfolios := &fakePortfolios{portfolio: &models.Portfolio{ID: portfolioID, UserID: 1}}
	caseStudies := &fakeCaseStudies{titles: map[string]string{
		"cs-a": "Brand Refresh",
		"cs-b": "Mobile App",
	}}
	h := NewAnalyticsHandlers(events, portfolios, caseStudies)
	r := newAnalyticsRouter(h)

	w := doJSON(t, r, http.MethodGet, "/api/analytics/portfolio", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp portfolioReportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Data.TopCaseStudies) != 2 {
		t.Fatalf("topCaseStudies = %+v, want deleted entry omitted", resp.Data.TopCaseStudies)
	}
	for _, entry := range resp.Data.TopCaseStudies {
		if entry.CaseStudy == "" {
			t.Errorf("entry with empty title leaked: %+v", entry)
		}
	}
}

func TestPortfolioAnalyticsNoPortfolio(t *testing.T) {
	h := NewAnalyticsHandlers(&fakeEventStore{}, &fakePortfolios{}, &fakeCaseStudies{})
	r := newAnalyticsRouter(h)

	w := doJSON(t, r, http.MethodGet, "/api/analytics/portfolio", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestPortfolioAnalyticsWindowStart(t *testing.T) {
	events := &fakeEventStore{}
	portfolios := &fakePortfolios{portfolio: &models.Portfolio{ID: portfolioID, UserID: 1}}
	h := NewAnalyticsHandlers(events, portfolios, &fakeCaseStudies{})
	fixed := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return fixed }
	r := newAnalyticsRouter(h)

	w := doJSON(t, r, http.MethodGet, "/api/analytics/portfolio", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	want := fixed.AddDate(0, 0, -30)
	if !events.lastSince.Equal(want) {
		t.Errorf("window start = %v, want %v", events.lastSince, want)
	}
}

type caseStudyReportResponse struct {
	Success bool                   `json:"success"`
	Data    models.CaseStudyReport `json:"data"`
}

func TestCaseStudyAnalytics(t *testing.T) {
	events := &fakeEventStore{
		summary: &models.VisitSummary{TotalViews: 6, AvgTimeSpent: 20, UniqueVisitors: 2},
		clicks: []models.ClickStat{
			{Element: "cta-button", Clicks: 9},
			{Element: "gallery-next", Clicks: 3},
		},
	}
	portfolios := &fakePortfolios{portfolio: &models.Portfolio{ID: portfolioID, UserID: 1}}
	caseStudies := &fakeCaseStudies{caseStudy: &models.CaseStudy{ID: caseStudyID, PortfolioID: portfolioID}}
	h := NewAnalyticsHandlers(events, portfolios, caseStudies)
	r := newAnalyticsRouter(h)

	w := doJSON(t, r, http.MethodGet, "/api/analytics/case-study/"+caseStudyID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp caseStudyReportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data.Summary.TotalViews != 6 || resp.Data.Summary.UniqueVisitors != 2 {
		t.Errorf("summary = %+v", resp.Data.Summary)
	}
	if len(resp.Data.ClickEvents) != 2 || resp.Data.ClickEvents[0].Element != "cta-button" {
		t.Errorf("clickEvents = %+v", resp.Data.ClickEvents)
	}
}

func TestCaseStudyAnalyticsNotOwned(t *testing.T) {
	portfolios := &fakePortfolios{portfolio: &models.Portfolio{ID: portfolioID, UserID: 1}}
	caseStudies := &fakeCaseStudies{caseStudy: &models.CaseStudy{ID: caseStudyID, PortfolioID: "someone-else"}}
	h := NewAnalyticsHandlers(&fakeEventStore{}, portfolios, caseStudies)
	r := newAnalyticsRouter(h)

	w := doJSON(t, r, http.MethodGet, "/api/analytics/case-study/"+caseStudyID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestCaseStudyAnalyticsZeroEvents(t *testing.T) {
	portfolios := &fakePortfolios{portfolio: &models.Portfolio{ID: portfolioID, UserID: 1}}
	caseStudies := &fakeCaseStudies{caseStudy: &models.CaseStudy{ID: caseStudyID, PortfolioID: portfolioID}}
	h := NewAnalyticsHandlers(&fakeEventStore{}, portfolios, caseStudies)
	r := newAnalyticsRouter(h)

	w := doJSON(t, r, http.MethodGet, "/api/analytics/case-study/"+caseStudyID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp caseStudyReportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data.Summary != (models.VisitSummary{}) {
		t.Errorf("summary = %+v, want all zeros", resp.Data.Summary)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"clickEvents":[]`)) {
		t.Errorf("body = %s, want clickEvents:[]", w.Body.String())
	}
}

func TestAssemblePortfolioReportPreservesOrder(t *testing.T) {
	ranked := []models.CaseStudyViews{
		{CaseStudyID: "cs-1", Views: 9},
		{CaseStudyID: "cs-2", Views: 9},
		{CaseStudyID: "cs-3", Views: 1},
	}
	titles := map[string]string{"cs-1": "A", "cs-2": "B", "cs-3": "C"}

	report := assemblePortfolioReport(nil, ranked, titles)
	got := make([]string, 0, len(report.TopCaseStudies))
	for _, e := range report.TopCaseStudies {
		got = append(got, e.CaseStudy)
	}
	want := []string{"A", "B", "C"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
