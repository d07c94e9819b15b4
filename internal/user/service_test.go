// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/perkhub/internal/core"
)

type memoryRepo struct {
	mu    sync.Mutex
	next  int
	users map[string]*User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[string]*User)}
}

func (m *memoryRepo) NewID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return "u" + strconv.Itoa(m.next)
}

func (m *memoryRepo) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return core.ErrDuplicateKey
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memoryRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memoryRepo) SetVerified(_ context.Context, id string, verified bool) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	u.IsVerified = verified
	cp := *u
	return &cp, nil
}

func (m *memoryRepo) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func newTestService() *Service {
	return NewService(newMemoryRepo(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestServiceCreateNormalizesEmail(t *testing.T) {
	svc := newTestService()

	info, err := svc.Create(context.Background(), "  Ada@Example.COM ", "hash", " Ada ")
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", info.Email)
	assert.Equal(t, "Ada", info.Name)
	assert.False(t, info.IsVerified)
	assert.Empty(t, info.Role)

	found, err := svc.GetByEmail(context.Background(), "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, info.ID, found.ID)
}

func TestServiceCreateDuplicate(t *testing.T) {
	svc := newTestService()

	_, err := svc.Create(context.Background(), "a@b.c", "h", "A")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "A@B.C", "h", "A")
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestServiceSetVerification(t *testing.T) {
	svc := newTestService()
	info, err := svc.Create(context.Background(), "a@b.c", "h", "A")
	require.NoError(t, err)

	u, err := svc.SetVerification(context.Background(), info.ID, true)
	require.NoError(t, err)
	assert.True(t, u.IsVerified)

	_, err = svc.SetVerification(context.Background(), "missing", true)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestServiceGetMeRequiresUser(t *testing.T) {
	svc := newTestService()

	_, err := svc.GetMe(context.Background(), "")
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}
