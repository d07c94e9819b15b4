// AngelaMos | 2026
// repository.go

package deal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/perkhub/internal/core"
)

type Repository interface {
	NewID() string
	ValidID(id string) bool
	GetActiveByID(ctx context.Context, id string) (*Deal, error)
	GetActiveBySlug(ctx context.Context, slug string) (*Deal, error)
	Find(ctx context.Context, filter Filter, limit, skip int) ([]*Deal, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*Deal, error)
	Upsert(ctx context.Context, deal *Deal) error
	DeleteAll(ctx context.Context) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const dealColumns = `id, title, slug, description, partner_name, partner_url,
		       category, access_level, is_active, eligibility, cta_text, cta_url,
		       created_at, updated_at`

func (r *repository) NewID() string {
	return uuid.New().String()
}

func (r *repository) ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *repository) GetActiveByID(ctx context.Context, id string) (*Deal, error) {
	if !r.ValidID(id) {
		return nil, fmt.Errorf("get deal: %w", core.ErrNotFound)
	}

	query := `SELECT ` + dealColumns + ` FROM deals WHERE id = $1 AND is_active`
	return r.getOne(ctx, "get deal", query, id)
}

func (r *repository) GetActiveBySlug(ctx context.Context, slug string) (*Deal, error) {
	query := `SELECT ` + dealColumns + `
		FROM deals
		WHERE LOWER(slug) = LOWER($1) AND is_active`
	return r.getOne(ctx, "get deal by slug", query, slug)
}

func (r *repository) Find(
	ctx context.Context,
	filter Filter,
	limit, skip int,
) ([]*Deal, error) {
	where, args := buildWhere(filter)
	args = append(args, limit, skip)

	query := `SELECT ` + dealColumns + ` FROM deals ` + where + `
		ORDER BY created_at DESC, id
		LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	var deals []*Deal
	if err := r.db.SelectContext(ctx, &deals, query, args...); err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}

	return deals, nil
}

func (r *repository) Count(ctx context.Context, filter Filter) (int64, error) {
	where, args := buildWhere(filter)

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM deals `+where, args...); err != nil {
		return 0, fmt.Errorf("count deals: %w", err)
	}

	return total, nil
}

// GetByIDs returns every requested deal regardless of its active flag.
// Unknown and malformed ids are simply absent from the result.
func (r *repository) GetByIDs(
	ctx context.Context,
	ids []string,
) (map[string]*Deal, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if r.ValidID(id) {
			valid = append(valid, id)
		}
	}

	out := make(map[string]*Deal, len(valid))
	if len(valid) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`SELECT `+dealColumns+` FROM deals WHERE id IN (?)`, valid)
	if err != nil {
		return nil, fmt.Errorf("get deals: %w", err)
	}

	var deals []*Deal
	if err := r.db.SelectContext(ctx, &deals, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("get deals: %w", err)
	}

	for _, d := range deals {
		out[d.ID] = d
	}
	return out, nil
}

// Upsert inserts or updates a deal keyed by its slug. deal.ID is replaced by
// the stored id when the slug already exists.
func (r *repository) Upsert(ctx context.Context, deal *Deal) error {
	if deal.ID == "" {
		deal.ID = r.NewID()
	}

	query := `
		INSERT INTO deals (id, title, slug, description, partner_name, partner_url,
		                   category, access_level, is_active, eligibility, cta_text, cta_url)
		VALUES ($1, $2, LOWER($3), $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT ((LOWER(slug))) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			partner_name = EXCLUDED.partner_name,
			partner_url = EXCLUDED.partner_url,
			category = EXCLUDED.category,
			access_level = EXCLUDED.access_level,
			is_active = EXCLUDED.is_active,
			eligibility = EXCLUDED.eligibility,
			cta_text = EXCLUDED.cta_text,
			cta_url = EXCLUDED.cta_url,
			updated_at = NOW()
		RETURNING id, slug, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		deal.ID,
		deal.Title,
		deal.Slug,
		deal.Description,
		deal.PartnerName,
		deal.PartnerURL,
		deal.Category,
		string(deal.AccessLevel),
		deal.IsActive,
		deal.Eligibility,
		deal.CTAText,
		deal.CTAURL,
	).Scan(&deal.ID, &deal.Slug, &deal.CreatedAt, &deal.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert deal: %w", err)
	}

	return nil
}

func (r *repository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM deals`)
	if err != nil {
		return 0, fmt.Errorf("delete deals: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete deals: %w", err)
	}
	return n, nil
}

func (r *repository) getOne(
	ctx context.Context,
	op, query string,
	args ...any,
) (*Deal, error) {
	var deal Deal
	err := r.db.GetContext(ctx, &deal, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &deal, nil
}

func buildWhere(filter Filter) (string, []any) {
	clauses := []string{"is_active"}
	var args []any

	if filter.Category != "" {
		args = append(args, filter.Category)
		clauses = append(clauses, "category = $"+strconv.Itoa(len(args)))
	}

	if filter.AccessLevel != "" {
		args = append(args, string(filter.AccessLevel))
		clauses = append(clauses, "access_level = $"+strconv.Itoa(len(args)))
	}

	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		n := "$" + strconv.Itoa(len(args))
		clauses = append(clauses,
			"(title ILIKE "+n+" OR description ILIKE "+n+" OR partner_name ILIKE "+n+")")
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
