package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"craftfolio/api/models"
	"craftfolio/api/utils"
)

var ErrCaseStudyNotFound = fmt.Errorf("case study not found")

type CaseStudyStore struct {
	db *sql.DB
}

func NewCaseStudyStore(db *sql.DB) *CaseStudyStore {
	return &CaseStudyStore{db: db}
}

const caseStudyColumns = `id, portfolio_id, title, slug, project_overview, media_gallery, timeline, technologies, outcomes, published, featured, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCaseStudy(row rowScanner) (*models.CaseStudy, error) {
	cs := &models.CaseStudy{}
	var media, timeline, technologies, outcomes []byte
	err := row.Scan(
		&cs.ID,
		&cs.PortfolioID,
		&cs.Title,
		&cs.Slug,
		&cs.ProjectOverview,
		&media,
		&timeline,
		&technologies,
		&outcomes,
		&cs.Published,
		&cs.Featured,
		&cs.CreatedAt,
		&cs.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCaseStudyNotFound
		}
		return nil, fmt.Errorf("failed to scan case study: %w", err)
	}

	for _, col := range []struct {
		data []byte
		dest interface{}
	}{
		{media, &cs.MediaGallery},
		{timeline, &cs.Timeline},
		{technologies, &cs.Technologies},
		{outcomes, &cs.Outcomes},
	} {
		if len(col.data) == 0 {
			continue
		}
		if err := json.Unmarshal(col.data, col.dest); err != nil {
			return nil, fmt.Errorf("failed to decode case study sub-list: %w", err)
		}
	}
	return cs, nil
}

// jsonbOrNull keeps absent sub-lists as SQL NULL so the stored row
// preserves the caller's absent-vs-present distinction.
func jsonbOrNull(v interface{}, absent bool) (interface{}, error) {
	if absent {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode case study sub-list: %w", err)
	}
	return data, nil
}

func caseStudyJSONB(req *models.CaseStudyRequest) (media, timeline, technologies, outcomes interface{}, err error) {
	if media, err = jsonbOrNull(req.MediaGallery, req.MediaGallery == nil); err != nil {
		return
	}
	if timeline, err = jsonbOrNull(req.Timeline, req.Timeline == nil); err != nil {
		return
	}
	if technologies, err = jsonbOrNull(req.Technologies, req.Technologies == nil); err != nil {
		return
	}
	outcomes, err = jsonbOrNull(req.Outcomes, req.Outcomes == nil)
	return
}

// List returns every case study in the portfolio, newest first.
func (s *CaseStudyStore) List(ctx context.Context, portfolioID string) ([]*models.CaseStudy, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM case_studies
		WHERE portfolio_id = $1
		ORDER BY created_at DESC;
	`, caseStudyColumns)

	rows, err := s.db.QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to list case studies: %w", err)
	}
	defer rows.Close()

	var results []*models.CaseStudy
	for rows.Next() {
		cs, err := scanCaseStudy(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error listing case studies: %w", err)
	}
	return results, nil
}

// GetByID fetches a case study only when it belongs to the given portfolio.
func (s *CaseStudyStore) GetByID(ctx context.Context, id, portfolioID string) (*models.CaseStudy, error) {
	query := fmt.Sprintf(`SELECT %s FROM case_studies WHERE id = $1 AND portfolio_id = $2;`, caseStudyColumns)
	return scanCaseStudy(s.db.QueryRowContext(ctx, query, id, portfolioID))
}

// Create inserts a case study with a slug derived from the title. On a slug
// collision the insert is retried with a random suffix.
func (s *CaseStudyStore) Create(ctx context.Context, portfolioID string, req *models.CaseStudyRequest) (*models.CaseStudy, error) {
	media, timeline, technologies, outcomes, err := caseStudyJSONB(req)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		INSERT INTO case_studies (id, portfolio_id, title, slug, project_overview, media_gallery, timeline, technologies, outcomes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s;
	`, caseStudyColumns)

	slug := utils.Slugify(req.Title)
	for attempt := 0; ; attempt++ {
		row := s.db.QueryRowContext(ctx, query,
			uuid.New().String(), portfolioID, req.Title, slug, req.ProjectOverview,
			media, timeline, technologies, outcomes,
		)
		cs, err := scanCaseStudy(row)
		if err == nil {
			return cs, nil
		}

		var pqErr *pq.Error
		if !errors.As(err, &pqErr) || pqErr.Code != "23505" || attempt >= 3 {
			return nil, fmt.Errorf("failed to create case study: %w", err)
		}

		suffix, serr := utils.SlugSuffix()
		if serr != nil {
			return nil, fmt.Errorf("failed to generate slug suffix: %w", serr)
		}
		slug = utils.Slugify(req.Title) + "-" + suffix
		log.Printf("Slug collision for case study %q, retrying as %q", req.Title, slug)
	}
}

func (s *CaseStudyStore) Update(ctx context.Context, id, portfolioID string, req *models.CaseStudyRequest) (*models.CaseStudy, error) {
	media, timeline, technologies, outcomes, err := caseStudyJSONB(req)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE case_studies
		SET title = $3, project_overview = $4, media_gallery = $5, timeline = $6,
		    technologies = $7, outcomes = $8, updated_at = now()
		WHERE id = $1 AND portfolio_id = $2
		RETURNING %s;
	`, caseStudyColumns)

	row := s.db.QueryRowContext(ctx, query,
		id, portfolioID, req.Title, req.ProjectOverview,
		media, timeline, technologies, outcomes,
	)
	return scanCaseStudy(row)
}

// Delete removes the case study row. Analytics events referencing it are
// never cascade-deleted; aggregation tolerates the dangling id.
func (s *CaseStudyStore) Delete(ctx context.Context, id, portfolioID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM case_studies WHERE id = $1 AND portfolio_id = $2;`, id, portfolioID)
	if err != nil {
		return fmt.Errorf("failed to delete case study: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return ErrCaseStudyNotFound
	}
	return nil
}

func (s *CaseStudyStore) TogglePublish(ctx context.Context, id, portfolioID string) (*models.CaseStudy, error) {
	query := fmt.Sprintf(`
		UPDATE case_studies SET published = NOT published, updated_at = now()
		WHERE id = $1 AND portfolio_id = $2
		RETURNING %s;
	`, caseStudyColumns)
	return scanCaseStudy(s.db.QueryRowContext(ctx, query, id, portfolioID))
}

func (s *CaseStudyStore) ToggleFeature(ctx context.Context, id, portfolioID string) (*models.CaseStudy, error) {
	query := fmt.Sprintf(`
		UPDATE case_studies SET featured = NOT featured, updated_at = now()
		WHERE id = $1 AND portfolio_id = $2
		RETURNING %s;
	`, caseStudyColumns)
	return scanCaseStudy(s.db.QueryRowContext(ctx, query, id, portfolioID))
}

// ListPublished returns the public view of a portfolio's case studies,
// featured entries first, then newest.
func (s *CaseStudyStore) ListPublished(ctx context.Context, portfolioID string) ([]*models.CaseStudy, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM case_studies
		WHERE portfolio_id = $1 AND published = TRUE
		ORDER BY featured DESC, created_at DESC;
	`, caseStudyColumns)

	rows, err := s.db.QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to list published case studies: %w", err)
	}
	defer rows.Close()

	var results []*models.CaseStudy
	for rows.Next() {
		cs, err := scanCaseStudy(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error listing published case studies: %w", err)
	}
	return results, nil
}

func (s *CaseStudyStore) GetPublishedBySlug(ctx context.Context, portfolioID, slug string) (*models.CaseStudy, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM case_studies
		WHERE portfolio_id = $1 AND slug = $2 AND published = TRUE;
	`, caseStudyColumns)
	return scanCaseStudy(s.db.QueryRowContext(ctx, query, portfolioID, slug))
}

// ResolveTitles maps case-study ids to titles in one batch query. Ids whose
// case study no longer exists are simply absent from the result.
func (s *CaseStudyStore) ResolveTitles(ctx context.Context, ids []string) (map[string]string, error) {
	titles := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return titles, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, title FROM case_studies WHERE id = ANY($1);`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve case study titles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("failed to scan case study title: %w", err)
		}
		titles[id] = title
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error resolving case study titles: %w", err)
	}
	return titles, nil
}
