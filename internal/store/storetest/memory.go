// AngelaMos | 2026
// memory.go

// Package storetest provides an in-memory Store for tests that exercise
// several packages together. It honours the same uniqueness rules as the
// real backends: email, slug and (user, deal) are unique.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/carterperez-dev/perkhub/internal/claim"
	"github.com/carterperez-dev/perkhub/internal/core"
	"github.com/carterperez-dev/perkhub/internal/deal"
	"github.com/carterperez-dev/perkhub/internal/store"
	"github.com/carterperez-dev/perkhub/internal/user"
)

const Driver = "memory"

type Memory struct {
	Users  *Users
	Deals  *Deals
	Claims *Claims
}

func New() (*store.Store, *Memory) {
	m := &Memory{
		Users:  &Users{byID: make(map[string]*user.User)},
		Deals:  &Deals{byID: make(map[string]*deal.Deal)},
		Claims: &Claims{byID: make(map[string]*claim.Claim)},
	}

	return &store.Store{
		Driver: Driver,
		Users:  m.Users,
		Deals:  m.Deals,
		Claims: m.Claims,
	}, m
}

type sequence struct {
	mu sync.Mutex
	n  int
}

func (s *sequence) next(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s%06d", prefix, s.n)
}

type Users struct {
	mu   sync.Mutex
	seq  sequence
	byID map[string]*user.User
}

func (u *Users) NewID() string { return u.seq.next("u") }

func (u *Users) Create(_ context.Context, nu *user.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	nu.Email = strings.ToLower(nu.Email)
	for _, existing := range u.byID {
		if existing.Email == nu.Email {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}

	now := time.Now().UTC()
	nu.CreatedAt, nu.UpdatedAt = now, now
	cp := *nu
	u.byID[nu.ID] = &cp
	return nil
}

func (u *Users) GetByID(_ context.Context, id string) (*user.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if found, ok := u.byID[id]; ok {
		cp := *found
		return &cp, nil
	}
	return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
}

func (u *Users) GetByEmail(_ context.Context, email string) (*user.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	email = strings.ToLower(email)
	for _, found := range u.byID {
		if found.Email == email {
			cp := *found
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
}

func (u *Users) SetVerified(_ context.Context, id string, verified bool) (*user.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	found, ok := u.byID[id]
	if !ok {
		return nil, fmt.Errorf("set verified: %w", core.ErrNotFound)
	}
	found.IsVerified = verified
	found.UpdatedAt = time.Now().UTC()
	cp := *found
	return &cp, nil
}

func (u *Users) UpdatePassword(_ context.Context, id, hash string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	found, ok := u.byID[id]
	if !ok {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}
	found.PasswordHash = hash
	return nil
}

func (u *Users) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.byID)
}

type Deals struct {
	mu   sync.Mutex
	seq  sequence
	byID map[string]*deal.Deal
}

func (d *Deals) NewID() string { return d.seq.next("d") }

func (d *Deals) ValidID(id string) bool {
	return len(id) == 7 && strings.HasPrefix(id, "d")
}

func (d *Deals) GetActiveByID(_ context.Context, id string) (*deal.Deal, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if found, ok := d.byID[id]; ok && found.IsActive {
		cp := *found
		return &cp, nil
	}
	return nil, fmt.Errorf("get deal: %w", core.ErrNotFound)
}

func (d *Deals) GetActiveBySlug(_ context.Context, slug string) (*deal.Deal, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, found := range d.byID {
		if found.Slug == slug && found.IsActive {
			cp := *found
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get deal by slug: %w", core.ErrNotFound)
}

func (d *Deals) matching(f deal.Filter) []*deal.Deal {
	var out []*deal.Deal
	for _, found := range d.byID {
		switch {
		case !found.IsActive:
			continue
		case f.Category != "" && found.Category != f.Category:
			continue
		case f.AccessLevel != "" && found.AccessLevel != f.AccessLevel:
			continue
		case f.Search != "" && !strings.Contains(
			strings.ToLower(found.Title+" "+found.Description+" "+found.PartnerName),
			strings.ToLower(f.Search),
		):
			continue
		}
		cp := *found
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (d *Deals) Find(_ context.Context, f deal.Filter, limit, skip int) ([]*deal.Deal, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	all := d.matching(f)
	if skip >= len(all) {
		return []*deal.Deal{}, nil
	}
	return all[skip:min(skip+limit, len(all))], nil
}

func (d *Deals) Count(_ context.Context, f deal.Filter) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.matching(f))), nil
}

func (d *Deals) GetByIDs(_ context.Context, ids []string) (map[string]*deal.Deal, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]*deal.Deal, len(ids))
	for _, id := range ids {
		if found, ok := d.byID[id]; ok {
			cp := *found
			out[id] = &cp
		}
	}
	return out, nil
}

func (d *Deals) Upsert(_ context.Context, nd *deal.Deal) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now().UTC()
	nd.ID = ""
	nd.CreatedAt = now
	for _, existing := range d.byID {
		if existing.Slug == nd.Slug {
			nd.ID = existing.ID
			nd.CreatedAt = existing.CreatedAt
		}
	}
	if nd.ID == "" {
		nd.ID = d.seq.next("d")
	}
	nd.UpdatedAt = now

	cp := *nd
	d.byID[nd.ID] = &cp
	return nil
}

func (d *Deals) DeleteAll(context.Context) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := int64(len(d.byID))
	d.byID = make(map[string]*deal.Deal)
	return n, nil
}

func (d *Deals) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.byID)
}

type Claims struct {
	mu   sync.Mutex
	seq  sequence
	byID map[string]*claim.Claim
}

func (c *Claims) NewID() string { return c.seq.next("c") }

func (c *Claims) Create(_ context.Context, nc *claim.Claim) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.byID {
		if existing.UserID == nc.UserID && existing.DealID == nc.DealID {
			return fmt.Errorf("create claim: %w", core.ErrDuplicateKey)
		}
	}
	now := time.Now().UTC()
	nc.CreatedAt, nc.UpdatedAt = now, now
	cp := *nc
	c.byID[nc.ID] = &cp
	return nil
}

func (c *Claims) GetByID(_ context.Context, id string) (*claim.Claim, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if found, ok := c.byID[id]; ok {
		cp := *found
		return &cp, nil
	}
	return nil, fmt.Errorf("get claim: %w", core.ErrNotFound)
}

func (c *Claims) FindByUserAndDeal(_ context.Context, userID, dealID string) (*claim.Claim, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, found := range c.byID {
		if found.UserID == userID && found.DealID == dealID {
			cp := *found
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("find claim: %w", core.ErrNotFound)
}

func (c *Claims) ListByUser(_ context.Context, userID string) ([]*claim.Claim, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := []*claim.Claim{}
	for _, found := range c.byID {
		if found.UserID == userID {
			cp := *found
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ClaimedAt.Equal(out[j].ClaimedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].ClaimedAt.After(out[j].ClaimedAt)
	})
	return out, nil
}

func (c *Claims) UpdateStatus(_ context.Context, id string, from, to claim.Status) (*claim.Claim, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	found, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("update claim status: %w", core.ErrNotFound)
	}
	if found.Status != from {
		return nil, fmt.Errorf("update claim status: %w", core.ErrConflict)
	}
	found.Status = to
	found.UpdatedAt = time.Now().UTC()
	cp := *found
	return &cp, nil
}

func (c *Claims) CountByStatus(context.Context) (map[claim.Status]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[claim.Status]int64)
	for _, found := range c.byID {
		out[found.Status]++
	}
	return out, nil
}

func (c *Claims) DeleteAll(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := int64(len(c.byID))
	c.byID = make(map[string]*claim.Claim)
	return n, nil
}

func (c *Claims) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byID)
}
