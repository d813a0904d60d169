package portfoliorepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/projectshelf/internal/domain/portfolio"
)

const portfolioColumns = `id::text, user_id::text, name, title, bio, profile_image, email,
	linkedin, github, website, twitter, theme_settings, case_studies, created_at, updated_at`

// PostgresRepository stores portfolios in one row each; theme settings and
// case studies are jsonb columns encoded by pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, p portfolio.Portfolio) (portfolio.Portfolio, error) {
	if !isUUID(p.UserID) {
		return portfolio.Portfolio{}, fmt.Errorf("insert portfolio: invalid owner id %q", p.UserID)
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO portfolios (user_id, name, title, bio, profile_image, email,
			linkedin, github, website, twitter, theme_settings, case_studies)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+portfolioColumns,
		p.UserID, p.Name, p.Title, p.Bio, p.ProfileImage, p.Email,
		p.LinkedIn, p.GitHub, p.Website, p.Twitter, p.ThemeSettings, nonNilStudies(p.CaseStudies))
	created, err := scanPortfolio(row)
	if err != nil {
		return portfolio.Portfolio{}, fmt.Errorf("insert portfolio: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]portfolio.Portfolio, error) {
	out := make([]portfolio.Portfolio, 0)
	if !isUUID(ownerID) {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+portfolioColumns+` FROM portfolios WHERE user_id = $1 ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list portfolios: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetForOwner(ctx context.Context, id, ownerID string) (portfolio.Portfolio, bool, error) {
	if !isUUID(id) || !isUUID(ownerID) {
		return portfolio.Portfolio{}, false, nil
	}
	row := r.pool.QueryRow(ctx, `SELECT `+portfolioColumns+` FROM portfolios WHERE id = $1 AND user_id = $2`, id, ownerID)
	p, err := scanPortfolio(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return portfolio.Portfolio{}, false, nil
	}
	if err != nil {
		return portfolio.Portfolio{}, false, fmt.Errorf("get portfolio: %w", err)
	}
	return p, true, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p portfolio.Portfolio) (portfolio.Portfolio, bool, error) {
	if !isUUID(p.ID) || !isUUID(p.UserID) {
		return portfolio.Portfolio{}, false, nil
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE portfolios
		SET name = $3, title = $4, bio = $5, profile_image = $6, email = $7,
			linkedin = $8, github = $9, website = $10, twitter = $11,
			theme_settings = $12, case_studies = $13, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+portfolioColumns,
		p.ID, p.UserID, p.Name, p.Title, p.Bio, p.ProfileImage, p.Email,
		p.LinkedIn, p.GitHub, p.Website, p.Twitter, p.ThemeSettings, nonNilStudies(p.CaseStudies))
	updated, err := scanPortfolio(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return portfolio.Portfolio{}, false, nil
	}
	if err != nil {
		return portfolio.Portfolio{}, false, fmt.Errorf("update portfolio: %w", err)
	}
	return updated, true, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	if !isUUID(id) || !isUUID(ownerID) {
		return false, nil
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM portfolios WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete portfolio: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	if !isUUID(ownerID) {
		return 0, nil
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM portfolios WHERE user_id = $1`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("delete owner portfolios: %w", err)
	}
	return tag.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPortfolio(row rowScanner) (portfolio.Portfolio, error) {
	var (
		p       portfolio.Portfolio
		created time.Time
		updated time.Time
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Title, &p.Bio, &p.ProfileImage, &p.Email,
		&p.LinkedIn, &p.GitHub, &p.Website, &p.Twitter, &p.ThemeSettings, &p.CaseStudies, &created, &updated); err != nil {
		return portfolio.Portfolio{}, err
	}
	p.CaseStudies = nonNilStudies(p.CaseStudies)
	p.CreatedAt = created.UTC()
	p.UpdatedAt = updated.UTC()
	return p, nil
}

func nonNilStudies(in []portfolio.CaseStudy) []portfolio.CaseStudy {
	if in == nil {
		return []portfolio.CaseStudy{}
	}
	return in
}

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

var _ portfolio.Repository = (*PostgresRepository)(nil)
