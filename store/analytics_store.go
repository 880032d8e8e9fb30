package store

import (
	"context"
	"fmt"
	"math"
	"time"

	"craftfolio/api/database"
	"craftfolio/api/models"
)

// AnalyticsStore is the append-only visit event store plus the windowed
// aggregation queries behind the two analytics reports. All reads take the
// window start from the caller; nothing here touches the wall clock.
type AnalyticsStore struct {
	DB *database.ClickHouseClient
}

func NewAnalyticsStore(chClient *database.ClickHouseClient) *AnalyticsStore {
	return &AnalyticsStore{DB: chClient}
}

// InsertEvent records exactly one visit. Click events flatten into parallel
// element/count arrays; an event without click data stores empty arrays,
// which the breakdown query treats identically to an absent list.
func (s *AnalyticsStore) InsertEvent(ctx context.Context, event *models.VisitEvent) error {
	elements := make([]string, 0, len(event.ClickEvents))
	counts := make([]int64, 0, len(event.ClickEvents))
	for _, ce := range event.ClickEvents {
		elements = append(elements, ce.Element)
		counts = append(counts, ce.Count)
	}

	err := s.DB.Conn.Exec(ctx, `
		INSERT INTO visit_events (
			event_id, portfolio_id, case_study_id, visitor_ip, visitor_user_agent,
			visitor_referrer, visitor_country, visitor_city, page_views, time_spent,
			click_elements, click_counts, occurred_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		event.EventID,
		event.PortfolioID,
		event.CaseStudyID,
		event.Visitor.IP,
		event.Visitor.UserAgent,
		event.Visitor.Referrer,
		event.Visitor.Country,
		event.Visitor.City,
		event.PageViews,
		event.TimeSpent,
		elements,
		counts,
		event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert visit event: %w", err)
	}
	return nil
}

// Summary reduces in-window events to total views, mean time spent, and the
// count of distinct non-empty visitor ips. Pass an empty caseStudyID to
// cover the whole portfolio. The lower window bound is inclusive.
func (s *AnalyticsStore) Summary(ctx context.Context, portfolioID, caseStudyID string, since time.Time) (*models.VisitSummary, error) {
	query := `
		SELECT sum(page_views) AS total_views,
		       avg(time_spent) AS avg_time_spent,
		       uniqExactIf(visitor_ip, visitor_ip != '') AS unique_visitors
		FROM visit_events
		WHERE portfolio_id = ? AND occurred_at >= ?
	`
	args := []interface{}{portfolioID, since}

	if caseStudyID != "" {
		query += ` AND case_study_id = ?`
		args = append(args, caseStudyID)
	}

	summary := &models.VisitSummary{}
	err := s.DB.Conn.QueryRow(ctx, query, args...).Scan(
		&summary.TotalViews,
		&summary.AvgTimeSpent,
		&summary.UniqueVisitors,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query visit summary: %w", err)
	}

	// avg() over zero rows yields NaN, which JSON cannot carry; an empty
	// window must report a plain zero summary.
	if math.IsNaN(summary.AvgTimeSpent) {
		summary.AvgTimeSpent = 0
	}

	return summary, nil
}

// TopCaseStudies ranks in-window case-study views, highest first. Ties
// break by case-study id ascending so repeated calls return a stable order.
// Case studies with zero in-window views never appear.
func (s *AnalyticsStore) TopCaseStudies(ctx context.Context, portfolioID string, since time.Time, limit uint64) ([]models.CaseStudyViews, error) {
	if limit == 0 {
		limit = 5
	}

	query := `
		SELECT case_study_id, sum(page_views) AS views
		FROM visit_events
		WHERE portfolio_id = ? AND case_study_id != '' AND occurred_at >= ?
		GROUP BY case_study_id
		ORDER BY views DESC, case_study_id ASC
		LIMIT ?
	`
	rows, err := s.DB.Conn.Query(ctx, query, portfolioID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top case studies: %w", err)
	}
	defer rows.Close()

	var results []models.CaseStudyViews
	for rows.Next() {
		var entry models.CaseStudyViews
		if err := rows.Scan(&entry.CaseStudyID, &entry.Views); err != nil {
			return nil, fmt.Errorf("failed to scan top case study row: %w", err)
		}
		results = append(results, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error querying top case studies: %w", err)
	}

	return results, nil
}

// ClickBreakdown sums click counts per element across the case study's
// in-window events, most clicked first, no limit. The inner ARRAY JOIN
// skips events whose click arrays are empty, so events stored without
// click data contribute nothing.
func (s *AnalyticsStore) ClickBreakdown(ctx context.Context, portfolioID, caseStudyID string, since time.Time) ([]models.ClickStat, error) {
	query := `
		SELECT element, sum(clicks) AS total_clicks
		FROM visit_events
		ARRAY JOIN click_elements AS element, click_counts AS clicks
		WHERE portfolio_id = ? AND case_study_id = ? AND occurred_at >= ?
		GROUP BY element
		ORDER BY total_clicks DESC
	`
	rows, err := s.DB.Conn.Query(ctx, query, portfolioID, caseStudyID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query click breakdown: %w", err)
	}
	defer rows.Close()

	var results []models.ClickStat
	for rows.Next() {
		var stat models.ClickStat
		if err := rows.Scan(&stat.Element, &stat.Clicks); err != nil {
			return nil, fmt.Errorf("failed to scan click breakdown row: %w", err)
		}
		results = append(results, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error querying click breakdown: %w", err)
	}

	return results, nil
}
