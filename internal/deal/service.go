// AngelaMos | 2026
// service.go

package deal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/carterperez-dev/perkhub/internal/core"
)

var tracer = otel.Tracer("perkhub/deal")

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

type ListResult struct {
	Deals []*Deal
	Total int64
	Limit int
	Skip  int
}

func (r *ListResult) HasMore() bool {
	return int64(r.Skip+len(r.Deals)) < r.Total
}

// List returns one page of active deals plus the total matching count.
func (s *Service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	ctx, span := tracer.Start(ctx, "deal.List")
	defer span.End()

	if params.AccessLevel != "" && !params.AccessLevel.Valid() {
		return nil, fmt.Errorf("list deals: %w: %q", ErrInvalidAccessLevel, params.AccessLevel)
	}

	limit := ClampLimit(params.Limit)
	skip := ClampSkip(params.Skip)

	span.SetAttributes(
		attribute.Int("deal.limit", limit),
		attribute.Int("deal.skip", skip),
		attribute.Bool("deal.search", params.Search != ""),
	)

	result := &ListResult{Deals: []*Deal{}, Limit: limit, Skip: skip}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := s.repo.Count(gctx, params.Filter)
		if err != nil {
			return err
		}
		result.Total = total
		return nil
	})
	if limit > 0 {
		g.Go(func() error {
			deals, err := s.repo.Find(gctx, params.Filter, limit, skip)
			if err != nil {
				return err
			}
			if deals != nil {
				result.Deals = deals
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	// A page past the end reports skip=total so skip+len(deals) <= total.
	if int64(result.Skip) > result.Total {
		result.Skip = int(result.Total)
	}

	return result, nil
}

// Resolve finds an active deal by id or slug. The id lookup only runs when
// the identifier has the storage backend's id shape.
func (s *Service) Resolve(ctx context.Context, identifier string) (*Deal, error) {
	ctx, span := tracer.Start(ctx, "deal.Resolve")
	defer span.End()

	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrNotFound
	}

	if s.repo.ValidID(identifier) {
		d, err := s.repo.GetActiveByID(ctx, identifier)
		if err == nil {
			span.SetAttributes(attribute.String("deal.resolved_by", "id"))
			return d, nil
		}
		if !errors.Is(err, core.ErrNotFound) {
			core.SetSpanError(ctx, err)
			return nil, err
		}
	}

	d, err := s.repo.GetActiveBySlug(ctx, strings.ToLower(identifier))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrNotFound
		}
		core.SetSpanError(ctx, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("deal.resolved_by", "slug"))
	return d, nil
}

// GetByIDs is used for joins. Inactive deals are included.
func (s *Service) GetByIDs(ctx context.Context, ids []string) (map[string]*Deal, error) {
	return s.repo.GetByIDs(ctx, ids)
}

// Upsert stores a deal keyed by slug. Used by the seeding process.
func (s *Service) Upsert(ctx context.Context, d *Deal) error {
	d.Slug = strings.ToLower(strings.TrimSpace(d.Slug))
	if d.Slug == "" || strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("upsert deal: title and slug required: %w", core.ErrInvalidInput)
	}
	if d.AccessLevel == "" {
		d.AccessLevel = AccessPublic
	}
	if !d.AccessLevel.Valid() {
		return fmt.Errorf("upsert deal %q: %w", d.Slug, ErrInvalidAccessLevel)
	}

	if err := s.repo.Upsert(ctx, d); err != nil {
		return err
	}

	s.logger.DebugContext(ctx, "deal upserted", "deal_id", d.ID, "slug", d.Slug)
	return nil
}

func (s *Service) DeleteAll(ctx context.Context) (int64, error) {
	return s.repo.DeleteAll(ctx)
}
