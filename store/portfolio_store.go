package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"craftfolio/api/models"
)

var ErrPortfolioNotFound = fmt.Errorf("portfolio not found")

type PortfolioStore struct {
	db *sql.DB
}

func NewPortfolioStore(db *sql.DB) *PortfolioStore {
	return &PortfolioStore{db: db}
}

const portfolioColumns = `id, user_id, display_name, bio, profile_picture, cover_image, social_links, theme, custom_css, published, created_at, updated_at`

func scanPortfolio(row *sql.Row) (*models.Portfolio, error) {
	p := &models.Portfolio{}
	var socialLinks []byte
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.DisplayName,
		&p.Bio,
		&p.ProfilePicture,
		&p.CoverImage,
		&socialLinks,
		&p.Theme,
		&p.CustomCSS,
		&p.Published,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPortfolioNotFound
		}
		return nil, fmt.Errorf("failed to scan portfolio: %w", err)
	}
	if len(socialLinks) > 0 {
		p.SocialLinks = &models.SocialLinks{}
		if err := json.Unmarshal(socialLinks, p.SocialLinks); err != nil {
			return nil, fmt.Errorf("failed to decode social links: %w", err)
		}
	}
	return p, nil
}

func (s *PortfolioStore) GetByUserID(ctx context.Context, userID int) (*models.Portfolio, error) {
	query := fmt.Sprintf(`SELECT %s FROM portfolios WHERE user_id = $1;`, portfolioColumns)
	return scanPortfolio(s.db.QueryRowContext(ctx, query, userID))
}

func (s *PortfolioStore) GetByID(ctx context.Context, id string) (*models.Portfolio, error) {
	query := fmt.Sprintf(`SELECT %s FROM portfolios WHERE id = $1;`, portfolioColumns)
	return scanPortfolio(s.db.QueryRowContext(ctx, query, id))
}

func socialLinksJSON(links *models.SocialLinks) (interface{}, error) {
	if links == nil {
		return nil, nil
	}
	data, err := json.Marshal(links)
	if err != nil {
		return nil, fmt.Errorf("failed to encode social links: %w", err)
	}
	return data, nil
}

// Create inserts a new portfolio for the user. Theme defaults to minimal
// when the request carries none.
func (s *PortfolioStore) Create(ctx context.Context, userID int, req *models.PortfolioRequest) (*models.Portfolio, error) {
	theme := req.Theme
	if theme == "" {
		theme = "minimal"
	}
	links, err := socialLinksJSON(req.SocialLinks)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		INSERT INTO portfolios (id, user_id, display_name, bio, profile_picture, cover_image, social_links, theme, custom_css)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s;
	`, portfolioColumns)

	row := s.db.QueryRowContext(ctx, query,
		uuid.New().String(), userID, req.DisplayName, req.Bio,
		req.ProfilePicture, req.CoverImage, links, theme, req.CustomCSS,
	)
	return scanPortfolio(row)
}

// Update replaces the caller-editable fields of the user's portfolio.
func (s *PortfolioStore) Update(ctx context.Context, userID int, req *models.PortfolioRequest) (*models.Portfolio, error) {
	links, err := socialLinksJSON(req.SocialLinks)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE portfolios
		SET display_name = $2, bio = $3, profile_picture = $4, cover_image = $5,
		    social_links = $6, theme = COALESCE(NULLIF($7, ''), theme),
		    custom_css = $8, updated_at = now()
		WHERE user_id = $1
		RETURNING %s;
	`, portfolioColumns)

	row := s.db.QueryRowContext(ctx, query,
		userID, req.DisplayName, req.Bio, req.ProfilePicture,
		req.CoverImage, links, req.Theme, req.CustomCSS,
	)
	return scanPortfolio(row)
}

func (s *PortfolioStore) UpdateTheme(ctx context.Context, userID int, theme string) (*models.Portfolio, error) {
	query := fmt.Sprintf(`
		UPDATE portfolios SET theme = $2, updated_at = now()
		WHERE user_id = $1
		RETURNING %s;
	`, portfolioColumns)
	return scanPortfolio(s.db.QueryRowContext(ctx, query, userID, theme))
}

// TogglePublish flips the published flag and returns the updated row.
func (s *PortfolioStore) TogglePublish(ctx context.Context, userID int) (*models.Portfolio, error) {
	query := fmt.Sprintf(`
		UPDATE portfolios SET published = NOT published, updated_at = now()
		WHERE user_id = $1
		RETURNING %s;
	`, portfolioColumns)
	return scanPortfolio(s.db.QueryRowContext(ctx, query, userID))
}
