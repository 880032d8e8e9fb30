package models

import "time"

// Visitor is a best-effort snapshot of the browser that triggered a visit.
// Every field may be empty; nothing here is validated for correctness.
type Visitor struct {
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
	Country   string `json:"country,omitempty"`
	City      string `json:"city,omitempty"`
}

type ClickEvent struct {
	Element string `json:"element"`
	Count   int64  `json:"count"`
}

// VisitEvent is one recorded visit to a portfolio root or a case study.
// Events are append-only: never updated or deleted once stored.
type VisitEvent struct {
	EventID     string       `json:"eventId"`
	PortfolioID string       `json:"portfolioId"`
	CaseStudyID string       `json:"caseStudyId,omitempty"`
	Visitor     Visitor      `json:"visitor"`
	PageViews   uint32       `json:"pageViews"`
	TimeSpent   float64      `json:"timeSpent"`
	ClickEvents []ClickEvent `json:"clickEvents,omitempty"`
	OccurredAt  time.Time    `json:"occurredAt"`
}

type TrackRequest struct {
	PortfolioID string       `json:"portfolioId" binding:"required,uuid"`
	CaseStudyID string       `json:"caseStudyId" binding:"omitempty,uuid"`
	TimeSpent   float64      `json:"timeSpent" binding:"omitempty,gte=0"`
	ClickEvents []ClickEvent `json:"clickEvents"`
	Visitor     *Visitor     `json:"visitor"`
}

// VisitSummary is the 30-day roll-up shared by both reports.
type VisitSummary struct {
	TotalViews     uint64  `json:"totalViews"`
	AvgTimeSpent   float64 `json:"avgTimeSpent"`
	UniqueVisitors uint64  `json:"uniqueVisitors"`
}

// CaseStudyViews pairs a case-study id with its summed in-window views.
type CaseStudyViews struct {
	CaseStudyID string `json:"caseStudyId"`
	Views       uint64 `json:"views"`
}

type TopCaseStudy struct {
	CaseStudy string `json:"caseStudy"`
	Views     uint64 `json:"views"`
}

type ClickStat struct {
	Element string `json:"element"`
	Clicks  int64  `json:"clicks"`
}

type PortfolioReport struct {
	Summary        VisitSummary   `json:"summary"`
	TopCaseStudies []TopCaseStudy `json:"topCaseStudies"`
}

type CaseStudyReport struct {
	Summary     VisitSummary `json:"summary"`
	ClickEvents []ClickStat  `json:"clickEvents"`
}
