// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/perkhub/internal/core"
	"github.com/carterperez-dev/perkhub/internal/middleware"
)

type fakeUsers struct {
	mu       sync.Mutex
	byID     map[string]*UserInfo
	next     int
	raceOnce bool
	failWith error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[string]*UserInfo)}
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Create(_ context.Context, email, hash, name string) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.raceOnce {
		f.raceOnce = false
		return nil, core.ErrDuplicateKey
	}
	f.next++
	u := &UserInfo{ID: "u" + strconv.Itoa(f.next), Email: email, Name: name, PasswordHash: hash}
	f.byID[u.ID] = u
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

type fakeIssuer struct {
	last AccessTokenClaims
}

func (f *fakeIssuer) CreateAccessToken(c AccessTokenClaims) (string, time.Time, error) {
	f.last = c
	return "token-for-" + c.UserID, time.Now().Add(time.Hour), nil
}

type countingRecorder struct {
	registrations map[string]int
	logins        map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{registrations: map[string]int{}, logins: map[string]int{}}
}

func (c *countingRecorder) ObserveRegistration(o string) { c.registrations[o]++ }
func (c *countingRecorder) ObserveLogin(o string)        { c.logins[o]++ }

type fixture struct {
	svc      *Service
	users    *fakeUsers
	issuer   *fakeIssuer
	recorder *countingRecorder
}

func newFixture() *fixture {
	users := newFakeUsers()
	issuer := &fakeIssuer{}
	rec := newCountingRecorder()
	hasher := core.NewPasswordHasher(core.PasswordParams{Memory: 1024, Time: 1, Threads: 1, KeyLen: 32})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		svc:      NewService(issuer, users, hasher, rec, logger),
		users:    users,
		issuer:   issuer,
		recorder: rec,
	}
}

func TestRegisterIssuesUnverifiedToken(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.Register(context.Background(), RegisterRequest{
		Email: "A@X.com", Password: "pw123", Name: "A",
	})
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", resp.User.Email)
	assert.False(t, resp.User.IsVerified)
	assert.Equal(t, "token-for-"+resp.User.ID, resp.Token)
	assert.Equal(t, "a@x.com", f.issuer.last.Email)
	assert.False(t, f.issuer.last.IsVerified)
	assert.Equal(t, 1, f.recorder.registrations["created"])

	stored, err := f.users.GetByID(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", stored.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Register(context.Background(), RegisterRequest{Email: "a@x.com", Password: "pw123", Name: "A"})
	require.NoError(t, err)

	_, err = f.svc.Register(context.Background(), RegisterRequest{Email: "A@x.com", Password: "pw456", Name: "B"})
	assert.ErrorIs(t, err, ErrUserExists)
	assert.Equal(t, 1, f.recorder.registrations["exists"])
}

func TestRegisterUniqueIndexRace(t *testing.T) {
	f := newFixture()
	f.users.raceOnce = true

	_, err := f.svc.Register(context.Background(), RegisterRequest{Email: "a@x.com", Password: "pw123", Name: "A"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRegisterStorageFailure(t *testing.T) {
	f := newFixture()
	f.users.failWith = errors.New("connection reset")

	_, err := f.svc.Register(context.Background(), RegisterRequest{Email: "a@x.com", Password: "pw123", Name: "A"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserExists)
}

func TestLogin(t *testing.T) {
	f := newFixture()
	reg, err := f.svc.Register(context.Background(), RegisterRequest{Email: "a@x.com", Password: "pw123", Name: "A"})
	require.NoError(t, err)

	resp, err := f.svc.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "pw123"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, resp.User.ID)
	assert.Equal(t, 1, f.recorder.logins["success"])
}

func TestLoginSameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Register(context.Background(), RegisterRequest{Email: "a@x.com", Password: "pw123", Name: "A"})
	require.NoError(t, err)

	_, errWrong := f.svc.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "nope"})
	_, errUnknown := f.svc.Login(context.Background(), LoginRequest{Email: "ghost@x.com", Password: "pw123"})

	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
	assert.Equal(t, 2, f.recorder.logins["invalid"])
}

func TestLoginReflectsCurrentVerification(t *testing.T) {
	f := newFixture()
	reg, err := f.svc.Register(context.Background(), RegisterRequest{Email: "b@x.com", Password: "pw123", Name: "B"})
	require.NoError(t, err)

	f.users.byID[reg.User.ID].IsVerified = true

	resp, err := f.svc.Login(context.Background(), LoginRequest{Email: "b@x.com", Password: "pw123"})
	require.NoError(t, err)
	assert.True(t, resp.User.IsVerified)
	assert.True(t, f.issuer.last.IsVerified)
}

func TestCurrentUser(t *testing.T) {
	f := newFixture()
	reg, err := f.svc.Register(context.Background(), RegisterRequest{Email: "a@x.com", Password: "pw123", Name: "A"})
	require.NoError(t, err)

	u, err := f.svc.CurrentUser(context.Background(), &middleware.AccessTokenClaims{UserID: reg.User.ID})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)

	_, err = f.svc.CurrentUser(context.Background(), &middleware.AccessTokenClaims{UserID: "gone"})
	assert.ErrorIs(t, err, core.ErrNotFound)
}
