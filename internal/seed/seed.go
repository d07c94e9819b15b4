// AngelaMos | 2026
// seed.go

package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/carterperez-dev/perkhub/internal/claim"
	"github.com/carterperez-dev/perkhub/internal/core"
	"github.com/carterperez-dev/perkhub/internal/deal"
	"github.com/carterperez-dev/perkhub/internal/user"
)

type Result struct {
	ClaimsDeleted int64
	DealsDeleted  int64
	UsersCreated  int
	UsersExisting int
	DealsUpserted int
	ClaimsCreated int
	ClaimsSkipped int
}

type Seeder struct {
	users  user.Repository
	deals  *deal.Service
	claims *claim.Service
	hasher *core.PasswordHasher
	logger *slog.Logger
}

func NewSeeder(
	users user.Repository,
	deals *deal.Service,
	claims *claim.Service,
	hasher *core.PasswordHasher,
	logger *slog.Logger,
) *Seeder {
	return &Seeder{
		users:  users,
		deals:  deals,
		claims: claims,
		hasher: hasher,
		logger: logger,
	}
}

// Run is idempotent: users are matched by email, deals upserted by slug
// and claim fixtures that already exist are skipped. Reset wipes claims
// and deals first; users are never deleted.
func (s *Seeder) Run(ctx context.Context, f *Fixtures, reset bool) (*Result, error) {
	res := &Result{}

	if reset {
		n, err := s.claims.DeleteAll(ctx)
		if err != nil {
			return res, fmt.Errorf("reset claims: %w", err)
		}
		res.ClaimsDeleted = n

		n, err = s.deals.DeleteAll(ctx)
		if err != nil {
			return res, fmt.Errorf("reset deals: %w", err)
		}
		res.DealsDeleted = n

		s.logger.InfoContext(ctx, "seed reset",
			"claims_deleted", res.ClaimsDeleted,
			"deals_deleted", res.DealsDeleted,
		)
	}

	userIDs := make(map[string]string, len(f.Users))
	for _, uf := range f.Users {
		id, created, err := s.ensureUser(ctx, uf)
		if err != nil {
			return res, err
		}
		userIDs[strings.ToLower(uf.Email)] = id
		if created {
			res.UsersCreated++
		} else {
			res.UsersExisting++
		}
	}

	for _, df := range f.Deals {
		if err := s.deals.Upsert(ctx, df.toDeal()); err != nil {
			return res, fmt.Errorf("seed deal %q: %w", df.Slug, err)
		}
		res.DealsUpserted++
	}

	for _, cf := range f.Claims {
		userID := userIDs[strings.ToLower(cf.Email)]

		_, err := s.claims.Submit(ctx, userID, cf.Deal)
		switch {
		case err == nil:
			res.ClaimsCreated++
		case errors.Is(err, claim.ErrDuplicateClaim),
			errors.Is(err, claim.ErrVerificationRequired):
			s.logger.InfoContext(ctx, "seed claim skipped",
				"email", cf.Email,
				"deal", cf.Deal,
				"reason", err.Error(),
			)
			res.ClaimsSkipped++
		default:
			return res, fmt.Errorf("seed claim %s/%s: %w", cf.Email, cf.Deal, err)
		}
	}

	s.logger.InfoContext(ctx, "seed complete",
		"users_created", res.UsersCreated,
		"users_existing", res.UsersExisting,
		"deals_upserted", res.DealsUpserted,
		"claims_created", res.ClaimsCreated,
		"claims_skipped", res.ClaimsSkipped,
	)

	return res, nil
}

// ensureUser creates the user or brings an existing one's verification
// flag in line with the fixture. Passwords of existing users are left
// untouched.
func (s *Seeder) ensureUser(ctx context.Context, uf UserFixture) (string, bool, error) {
	existing, err := s.users.GetByEmail(ctx, uf.Email)
	switch {
	case err == nil:
		if existing.IsVerified != uf.Verified {
			if _, err := s.users.SetVerified(ctx, existing.ID, uf.Verified); err != nil {
				return "", false, fmt.Errorf("seed user %q: %w", uf.Email, err)
			}
		}
		return existing.ID, false, nil
	case !errors.Is(err, core.ErrNotFound):
		return "", false, fmt.Errorf("seed user %q: %w", uf.Email, err)
	}

	hash, err := s.hasher.Hash(uf.Password)
	if err != nil {
		return "", false, fmt.Errorf("seed user %q: %w", uf.Email, err)
	}

	u := &user.User{
		ID:           s.users.NewID(),
		Email:        strings.ToLower(strings.TrimSpace(uf.Email)),
		PasswordHash: hash,
		Name:         uf.Name,
		IsVerified:   uf.Verified,
	}
	if uf.Role != "" {
		role := uf.Role
		u.Role = &role
	}

	if err := s.users.Create(ctx, u); err != nil {
		return "", false, fmt.Errorf("seed user %q: %w", uf.Email, err)
	}

	return u.ID, true, nil
}
