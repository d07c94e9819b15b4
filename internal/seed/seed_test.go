// AngelaMos | 2026
// seed_test.go

package seed

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/perkhub/internal/claim"
	"github.com/carterperez-dev/perkhub/internal/core"
	"github.com/carterperez-dev/perkhub/internal/deal"
	"github.com/carterperez-dev/perkhub/internal/store/storetest"
	"github.com/carterperez-dev/perkhub/internal/user"
)

type harness struct {
	mem    *storetest.Memory
	seeder *Seeder
}

func newHarness() *harness {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, mem := storetest.New()

	userSvc := user.NewService(st.Users, logger)
	dealSvc := deal.NewService(st.Deals, logger)
	claimSvc := claim.NewService(st.Claims, dealSvc, userSvc, nil, logger)
	hasher := core.NewPasswordHasher(core.PasswordParams{
		Memory:  1024,
		Time:    1,
		Threads: 1,
		KeyLen:  16,
	})

	return &harness{
		mem:    mem,
		seeder: NewSeeder(st.Users, dealSvc, claimSvc, hasher, logger),
	}
}

func TestDefaultFixtures(t *testing.T) {
	f, err := Default()
	require.NoError(t, err)

	assert.Len(t, f.Deals, 22)
	assert.Len(t, f.Users, 3)

	levels := map[string]int{}
	for _, d := range f.Deals {
		levels[d.AccessLevel]++
	}
	assert.Positive(t, levels["public"])
	assert.Positive(t, levels["locked"])
}

func TestParseRejectsBadFixtures(t *testing.T) {
	_, err := Parse([]byte("deals:\n  - title: X\n    slug: x\n    accessLevel: gold\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("users: []\ndeals: []\nclaims:\n  - email: a@b.co\n    deal: x\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("users: [\n"))
	assert.Error(t, err)
}

func TestRunSeedsDemoData(t *testing.T) {
	h := newHarness()
	f, err := Default()
	require.NoError(t, err)

	res, err := h.seeder.Run(context.Background(), f, false)
	require.NoError(t, err)

	assert.Equal(t, 3, res.UsersCreated)
	assert.Equal(t, 22, res.DealsUpserted)
	assert.Equal(t, 1, res.ClaimsCreated)

	verified, err := h.mem.Users.GetByEmail(context.Background(), "verified@example.com")
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	assert.NotEqual(t, "hashme", verified.PasswordHash)

	admin, err := h.mem.Users.GetByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
}

func TestRunIsIdempotent(t *testing.T) {
	h := newHarness()
	f, err := Default()
	require.NoError(t, err)

	_, err = h.seeder.Run(context.Background(), f, false)
	require.NoError(t, err)

	res, err := h.seeder.Run(context.Background(), f, false)
	require.NoError(t, err)

	assert.Zero(t, res.UsersCreated)
	assert.Equal(t, 3, res.UsersExisting)
	assert.Zero(t, res.ClaimsCreated)
	assert.Equal(t, 1, res.ClaimsSkipped)
	assert.Equal(t, 22, h.mem.Deals.Len())
	assert.Equal(t, 1, h.mem.Claims.Len())
}

func TestRunResetClearsClaimsAndDeals(t *testing.T) {
	h := newHarness()
	f, err := Default()
	require.NoError(t, err)

	_, err = h.seeder.Run(context.Background(), f, false)
	require.NoError(t, err)

	res, err := h.seeder.Run(context.Background(), f, true)
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.ClaimsDeleted)
	assert.Equal(t, int64(22), res.DealsDeleted)
	assert.Equal(t, 1, res.ClaimsCreated)
	assert.Equal(t, 3, h.mem.Users.Len())
}

func TestLockedClaimFixtureIsSkippedForUnverifiedUser(t *testing.T) {
	h := newHarness()
	f := &Fixtures{
		Users:  []UserFixture{{Email: "new@example.com", Name: "New", Password: "secret1"}},
		Deals:  []DealFixture{{Title: "GCP", Slug: "gcp-credits", AccessLevel: "locked"}},
		Claims: []ClaimFixture{{Email: "new@example.com", Deal: "gcp-credits"}},
	}

	res, err := h.seeder.Run(context.Background(), f, false)
	require.NoError(t, err)

	assert.Zero(t, res.ClaimsCreated)
	assert.Equal(t, 1, res.ClaimsSkipped)
	assert.Zero(t, h.mem.Claims.Len())
}
