// AngelaMos | 2026
// service.go

package claim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/carterperez-dev/perkhub/internal/core"
	"github.com/carterperez-dev/perkhub/internal/deal"
	"github.com/carterperez-dev/perkhub/internal/user"
)

var tracer = otel.Tracer("perkhub/claim")

// Admission outcomes reported to the OutcomeRecorder.
const (
	OutcomeCreated              = "created"
	OutcomeDealNotFound         = "deal_not_found"
	OutcomeVerificationRequired = "verification_required"
	OutcomeDuplicate            = "duplicate"
	OutcomeDuplicateRace        = "duplicate_race"
	OutcomeError                = "error"
)

type DealResolver interface {
	Resolve(ctx context.Context, identifier string) (*deal.Deal, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*deal.Deal, error)
}

type UserLookup interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
}

type OutcomeRecorder interface {
	ObserveClaim(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveClaim(string) {}

type Service struct {
	repo     Repository
	deals    DealResolver
	users    UserLookup
	recorder OutcomeRecorder
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(
	repo Repository,
	deals DealResolver,
	users UserLookup,
	recorder OutcomeRecorder,
	logger *slog.Logger,
) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{
		repo:     repo,
		deals:    deals,
		users:    users,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// Detail is a claim joined with a view of its deal. Deal is nil when the
// deal no longer exists.
type Detail struct {
	Claim *Claim
	Deal  *deal.Summary
}

type History struct {
	Claims []Detail
	Stats  Stats
}

// Submit runs the admission checks in order and stops at the first failure:
// deal resolution, verification gate for locked deals, duplicate check,
// insert. Failures never write.
func (s *Service) Submit(
	ctx context.Context,
	userID, dealIdentifier string,
) (*Detail, error) {
	ctx, span := tracer.Start(ctx, "claim.Submit", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("deal.identifier", dealIdentifier),
	))
	defer span.End()

	detail, outcome, err := s.submit(ctx, userID, dealIdentifier)

	span.SetAttributes(attribute.String("claim.outcome", outcome))
	s.recorder.ObserveClaim(outcome)
	if outcome == OutcomeError {
		core.SetSpanError(ctx, err)
	}

	return detail, err
}

func (s *Service) submit(
	ctx context.Context,
	userID, dealIdentifier string,
) (*Detail, string, error) {
	d, err := s.deals.Resolve(ctx, dealIdentifier)
	if err != nil {
		if errors.Is(err, deal.ErrNotFound) {
			return nil, OutcomeDealNotFound, ErrDealNotFound
		}
		return nil, OutcomeError, fmt.Errorf("resolve deal: %w", err)
	}

	if d.IsLocked() {
		verified, err := s.isVerified(ctx, userID)
		if err != nil {
			return nil, OutcomeError, err
		}
		if !verified {
			return nil, OutcomeVerificationRequired, &VerificationRequiredError{
				DealSlug:  d.Slug,
				DealTitle: d.Title,
			}
		}
	}

	existing, err := s.repo.FindByUserAndDeal(ctx, userID, d.ID)
	switch {
	case err == nil:
		return nil, OutcomeDuplicate, newDuplicate(existing)
	case !errors.Is(err, core.ErrNotFound):
		return nil, OutcomeError, fmt.Errorf("check existing claim: %w", err)
	}

	c := &Claim{
		ID:        s.repo.NewID(),
		UserID:    userID,
		DealID:    d.ID,
		Status:    StatusPending,
		ClaimedAt: s.now().UTC(),
	}

	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, OutcomeDuplicateRace, s.duplicateAfterRace(ctx, userID, d.ID)
		}
		return nil, OutcomeError, fmt.Errorf("create claim: %w", err)
	}

	s.logger.InfoContext(ctx, "deal claimed",
		"claim_id", c.ID,
		"user_id", userID,
		"deal_id", d.ID,
		"deal_slug", d.Slug,
	)

	return &Detail{Claim: c, Deal: deal.ToSummary(d)}, OutcomeCreated, nil
}

// isVerified reads the stored user. A missing record counts as unverified.
func (s *Service) isVerified(ctx context.Context, userID string) (bool, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load user: %w", err)
	}
	return u.IsVerified, nil
}

// duplicateAfterRace builds the conflict for an insert rejected by the
// unique index. The winner's claim is attached when it can be read back.
func (s *Service) duplicateAfterRace(ctx context.Context, userID, dealID string) error {
	existing, err := s.repo.FindByUserAndDeal(ctx, userID, dealID)
	if err != nil {
		s.logger.WarnContext(ctx, "claim insert lost race, winner not readable",
			"user_id", userID,
			"deal_id", dealID,
			"error", err,
		)
		return newDuplicate(nil)
	}
	return newDuplicate(existing)
}

// ListForUser returns the user's claims newest first, each joined with its
// deal, and a tally computed over exactly that set.
func (s *Service) ListForUser(ctx context.Context, userID string) (*History, error) {
	ctx, span := tracer.Start(ctx, "claim.ListForUser", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()

	claims, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, fmt.Errorf("list claims: %w", err)
	}

	ids := make([]string, 0, len(claims))
	seen := make(map[string]struct{}, len(claims))
	for _, c := range claims {
		if _, ok := seen[c.DealID]; ok {
			continue
		}
		seen[c.DealID] = struct{}{}
		ids = append(ids, c.DealID)
	}

	deals, err := s.deals.GetByIDs(ctx, ids)
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, fmt.Errorf("load claimed deals: %w", err)
	}

	history := &History{
		Claims: make([]Detail, 0, len(claims)),
		Stats:  Tally(claims),
	}
	for _, c := range claims {
		detail := Detail{Claim: c}
		if d, ok := deals[c.DealID]; ok {
			detail.Deal = deal.ToDetailedSummary(d)
		}
		history.Claims = append(history.Claims, detail)
	}

	span.SetAttributes(attribute.Int("claim.count", history.Stats.Total))
	return history, nil
}

// UpdateStatus is the review step: pending claims may become approved or
// rejected, nothing else.
func (s *Service) UpdateStatus(ctx context.Context, claimID string, to Status) (*Claim, error) {
	ctx, span := tracer.Start(ctx, "claim.UpdateStatus", trace.WithAttributes(
		attribute.String("claim.id", claimID),
		attribute.String("claim.status", string(to)),
	))
	defer span.End()

	if !to.Valid() || to == StatusPending {
		return nil, ErrInvalidStatus
	}

	current, err := s.repo.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if !current.Status.CanTransitionTo(to) {
		return nil, &InvalidTransitionError{From: current.Status, To: to}
	}

	updated, err := s.repo.UpdateStatus(ctx, claimID, current.Status, to)
	if err != nil {
		if errors.Is(err, core.ErrConflict) {
			latest, getErr := s.repo.GetByID(ctx, claimID)
			if getErr != nil {
				return nil, getErr
			}
			return nil, &InvalidTransitionError{From: latest.Status, To: to}
		}
		core.SetSpanError(ctx, err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "claim reviewed",
		"claim_id", claimID,
		"from", current.Status,
		"to", to,
	)
	return updated, nil
}

func (s *Service) CountByStatus(ctx context.Context) (Stats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Pending:  int(counts[StatusPending]),
		Approved: int(counts[StatusApproved]),
		Rejected: int(counts[StatusRejected]),
	}
	stats.Total = stats.Pending + stats.Approved + stats.Rejected
	return stats, nil
}

func (s *Service) DeleteAll(ctx context.Context) (int64, error) {
	return s.repo.DeleteAll(ctx)
}
