// AngelaMos | 2026
// repository.go

package claim

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/carterperez-dev/perkhub/internal/core"
)

// Repository is the claim ledger. Create must reject a second claim for the
// same (user, deal) pair with core.ErrDuplicateKey.
type Repository interface {
	NewID() string
	Create(ctx context.Context, claim *Claim) error
	GetByID(ctx context.Context, id string) (*Claim, error)
	FindByUserAndDeal(ctx context.Context, userID, dealID string) (*Claim, error)
	ListByUser(ctx context.Context, userID string) ([]*Claim, error)
	UpdateStatus(ctx context.Context, id string, from, to Status) (*Claim, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const claimColumns = `id, user_id, deal_id, status, claimed_at, created_at, updated_at`

func (r *repository) NewID() string {
	return uuid.New().String()
}

func (r *repository) Create(ctx context.Context, claim *Claim) error {
	query := `
		INSERT INTO claims (id, user_id, deal_id, status, claimed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		claim.ID,
		claim.UserID,
		claim.DealID,
		string(claim.Status),
		claim.ClaimedAt,
	).Scan(&claim.CreatedAt, &claim.UpdatedAt)
	if err != nil {
		if core.IsPgUniqueViolation(err) {
			return fmt.Errorf("create claim: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create claim: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Claim, error) {
	if !validUUID(id) {
		return nil, fmt.Errorf("get claim: %w", core.ErrNotFound)
	}

	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = $1`
	return r.getOne(ctx, "get claim", query, id)
}

func (r *repository) FindByUserAndDeal(
	ctx context.Context,
	userID, dealID string,
) (*Claim, error) {
	if !validUUID(userID) || !validUUID(dealID) {
		return nil, fmt.Errorf("find claim: %w", core.ErrNotFound)
	}

	query := `SELECT ` + claimColumns + ` FROM claims WHERE user_id = $1 AND deal_id = $2`
	return r.getOne(ctx, "find claim", query, userID, dealID)
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]*Claim, error) {
	claims := []*Claim{}
	if !validUUID(userID) {
		return claims, nil
	}

	query := `
		SELECT ` + claimColumns + `
		FROM claims
		WHERE user_id = $1
		ORDER BY claimed_at DESC, id`

	if err := r.db.SelectContext(ctx, &claims, query, userID); err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}

	return claims, nil
}

// UpdateStatus only applies when the stored status still equals from.
// A concurrent review that got there first yields core.ErrConflict.
func (r *repository) UpdateStatus(
	ctx context.Context,
	id string,
	from, to Status,
) (*Claim, error) {
	if !validUUID(id) {
		return nil, fmt.Errorf("update claim status: %w", core.ErrNotFound)
	}

	query := `
		UPDATE claims
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + claimColumns

	var claim Claim
	err := r.db.GetContext(ctx, &claim, query, id, string(from), string(to))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update claim status: %w", core.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("update claim status: %w", err)
	}

	return &claim, nil
}

func (r *repository) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	var rows []struct {
		Status Status `db:"status"`
		Count  int64  `db:"count"`
	}

	query := `SELECT status, COUNT(*) AS count FROM claims GROUP BY status`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count claims: %w", err)
	}

	out := make(map[Status]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (r *repository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM claims`)
	if err != nil {
		return 0, fmt.Errorf("delete claims: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete claims: %w", err)
	}
	return n, nil
}

func (r *repository) getOne(
	ctx context.Context,
	op, query string,
	args ...any,
) (*Claim, error) {
	var claim Claim
	err := r.db.GetContext(ctx, &claim, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &claim, nil
}

func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
