package session

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	adapterrepo "tokoaing/internal/adapter/repository"
	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/repository"
	"tokoaing/internal/domain/service"
	"tokoaing/internal/infrastructure/memtree"
	"tokoaing/pkg/errors"
)

type mockIdentity struct {
	mock.Mock
}

func (m *mockIdentity) CreateUser(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *mockIdentity) SignIn(ctx context.Context, email, password string) (*entity.Identity, error) {
	args := m.Called(ctx, email, password)
	identity, _ := args.Get(0).(*entity.Identity)
	return identity, args.Error(1)
}

func (m *mockIdentity) VerifyToken(ctx context.Context, idToken string) (*entity.Identity, error) {
	args := m.Called(ctx, idToken)
	identity, _ := args.Get(0).(*entity.Identity)
	return identity, args.Error(1)
}

func (m *mockIdentity) SignOut(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

func (m *mockIdentity) SendPasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockIdentity) UpdateEmail(ctx context.Context, uid, email string) error {
	return m.Called(ctx, uid, email).Error(0)
}

func (m *mockIdentity) UpdatePassword(ctx context.Context, uid, password string) error {
	return m.Called(ctx, uid, password).Error(0)
}

type fixture struct {
	tree     *memtree.Tree
	prefs    repository.PreferenceRepository
	accounts repository.AccountRepository
	identity *mockIdentity
	deps     Dependencies
}

func newFixture() *fixture {
	tree := memtree.New()
	f := &fixture{
		tree:     tree,
		prefs:    adapterrepo.NewMemoryPreferenceRepository(),
		accounts: adapterrepo.NewTreeAccountRepository(tree),
		identity: new(mockIdentity),
	}
	f.deps = Dependencies{
		Preferences: f.prefs,
		Accounts:    f.accounts,
		Identity:    f.identity,
		BypassTTL:   time.Hour,
	}
	return f
}

func waitReady(t *testing.T, s *Session) State {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := s.WaitReady(ctx)
	require.NoError(t, err)
	return st
}

func TestInitWithoutIdentityIsGuest(t *testing.T) {
	f := newFixture()
	s := New("s1", f.deps, "")
	defer s.Close()

	s.Init(context.Background())
	st := waitReady(t, s)

	assert.Nil(t, st.Identity)
	assert.Empty(t, st.Role)
	assert.Equal(t, ViewGuest, st.View())
	assert.Equal(t, entity.ThemeLight, st.Theme)
}

func TestInitRestoresBypassFlag(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.prefs.SetBypassFlag(context.Background(), "s1", time.Hour))

	s := New("s1", f.deps, "")
	defer s.Close()
	s.Init(context.Background())

	st := s.State()
	require.NotNil(t, st.Identity)
	assert.True(t, st.Identity.Bypass)
	assert.Equal(t, entity.RoleAdmin, st.Role)
	assert.False(t, st.Loading)
	assert.Nil(t, st.Profile)
	assert.Equal(t, 0, s.AuthStream().ObserverCount(), "bypass skips the auth subscription")
}

func TestSignInLoadsProfileAndRole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.accounts.Create(ctx, &entity.Account{UID: "u1", Email: "a@b.c", Role: entity.RoleUser}))
	f.identity.On("SignIn", mock.Anything, "a@b.c", "secret1").
		Return(&entity.Identity{UID: "u1", Email: "a@b.c", IDToken: "tok"}, nil)

	s := New("s1", f.deps, "")
	defer s.Close()
	s.Init(ctx)

	_, err := s.SignIn(ctx, "a@b.c", "secret1")
	require.NoError(t, err)

	st := waitReady(t, s)
	require.NotNil(t, st.Profile)
	assert.Equal(t, entity.RoleUser, st.Role)
	assert.Equal(t, ViewUser, st.View())

	// role changes in the tree reach the session through the live profile subscription
	require.NoError(t, f.accounts.UpdateFields(ctx, "u1", map[string]interface{}{"role": "admin"}))
	assert.Eventually(t, func() bool {
		return s.State().Role == entity.RoleAdmin
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSignInWithoutProfileDocumentStillFinishesLoading(t *testing.T) {
	f := newFixture()
	f.identity.On("SignIn", mock.Anything, "ghost@b.c", "pw").
		Return(&entity.Identity{UID: "ghost", Email: "ghost@b.c"}, nil)

	s := New("s1", f.deps, "")
	defer s.Close()
	s.Init(context.Background())

	_, err := s.SignIn(context.Background(), "ghost@b.c", "pw")
	require.NoError(t, err)

	st := waitReady(t, s)
	assert.NotNil(t, st.Identity)
	assert.Nil(t, st.Profile)
	assert.Empty(t, st.Role)
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	f := newFixture()
	f.identity.On("SignIn", mock.Anything, "a@b.c", "nope").
		Return(nil, service.ErrInvalidCredentials)

	s := New("s1", f.deps, "")
	defer s.Close()
	s.Init(context.Background())

	_, err := s.SignIn(context.Background(), "a@b.c", "nope")
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))
	assert.Nil(t, s.State().Identity)
}

func TestBypassAdminLogin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	s := New("s1", f.deps, "")
	defer s.Close()
	s.Init(ctx)
	before := s.State()

	assert.False(t, s.BypassAdminLogin(ctx, "masuk22"))
	assert.Equal(t, before, s.State())
	flag, _ := f.prefs.HasBypassFlag(ctx, "s1")
	assert.False(t, flag)

	assert.True(t, s.BypassAdminLogin(ctx, "Masuk22"))
	st := s.State()
	require.NotNil(t, st.Identity)
	assert.Equal(t, entity.RoleAdmin, st.Role)
	assert.Equal(t, ViewAdmin, st.View())
	flag, _ = f.prefs.HasBypassFlag(ctx, "s1")
	assert.True(t, flag)
}

func TestCheckBypassEndsExpiredBypass(t *testing.T) {
	f := newFixture()
	f.deps.BypassTTL = 100 * time.Millisecond
	ctx := context.Background()
	s := New("s1", f.deps, "")
	defer s.Close()
	s.Init(ctx)
	require.True(t, s.BypassAdminLogin(ctx, BypassSecret))
	assert.True(t, s.CheckBypass(ctx))

	assert.Eventually(t, func() bool { return !s.CheckBypass(ctx) }, time.Second, 10*time.Millisecond)

	st := s.State()
	assert.Nil(t, st.Identity)
	assert.False(t, st.IsAdmin())
	assert.Equal(t, ViewGuest, st.View())
}

func TestLogoutFromBypassIsLocal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	s := New("s1", f.deps, "")
	defer s.Close()
	s.Init(ctx)
	require.True(t, s.BypassAdminLogin(ctx, BypassSecret))

	require.NoError(t, s.Logout(ctx))

	st := s.State()
	assert.Nil(t, st.Identity)
	assert.Empty(t, st.Role)
	flag, _ := f.prefs.HasBypassFlag(ctx, "s1")
	assert.False(t, flag)
	f.identity.AssertNotCalled(t, "SignOut", mock.Anything, mock.Anything)
}

func TestLogoutSignsOutAtBackend(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.accounts.Create(ctx, &entity.Account{UID: "u1", Email: "a@b.c", Role: entity.RoleUser}))
	f.identity.On("SignIn", mock.Anything, "a@b.c", "pw").
		Return(&entity.Identity{UID: "u1", Email: "a@b.c"}, nil)
	f.identity.On("SignOut", mock.Anything, "u1").Return(nil)

	s := New("s1", f.deps, "")
	defer s.Close()
	s.Init(ctx)
	_, err := s.SignIn(ctx, "a@b.c", "pw")
	require.NoError(t, err)
	waitReady(t, s)

	require.NoError(t, s.Logout(ctx))

	st := s.State()
	assert.Nil(t, st.Identity)
	assert.Nil(t, st.Profile)
	assert.Equal(t, 0, f.tree.WatcherCount(), "profile watch is cancelled on sign-out")
	f.identity.AssertExpectations(t)
}

func TestThemeTogglePersistsAndRoundTrips(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	s := New("s1", f.deps, "")
	defer s.Close()
	s.Init(ctx)

	original := s.State().Theme
	assert.Equal(t, entity.ThemeDark, s.ToggleTheme(ctx))
	saved, ok, _ := f.prefs.GetTheme(ctx, "s1")
	assert.True(t, ok)
	assert.Equal(t, entity.ThemeDark, saved)
	assert.True(t, s.State().Dark())

	s.ToggleTheme(ctx)
	assert.Equal(t, original, s.State().Theme)
	saved, _, _ = f.prefs.GetTheme(ctx, "s1")
	assert.Equal(t, original, saved)
}

func TestThemeResolution(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	hinted := New("s1", f.deps, entity.ThemeDark)
	defer hinted.Close()
	hinted.Init(ctx)
	assert.Equal(t, entity.ThemeDark, hinted.State().Theme)

	require.NoError(t, f.prefs.SetTheme(ctx, "s2", entity.ThemeLight))
	stored := New("s2", f.deps, entity.ThemeDark)
	defer stored.Close()
	stored.Init(ctx)
	assert.Equal(t, entity.ThemeLight, stored.State().Theme, "persisted preference wins over the hint")
}

func TestCloseCancelsSubscriptions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.accounts.Create(ctx, &entity.Account{UID: "u1", Email: "a@b.c", Role: entity.RoleUser}))
	f.identity.On("SignIn", mock.Anything, "a@b.c", "pw").
		Return(&entity.Identity{UID: "u1", Email: "a@b.c"}, nil)

	s := New("s1", f.deps, "")
	s.Init(ctx)
	_, err := s.SignIn(ctx, "a@b.c", "pw")
	require.NoError(t, err)
	waitReady(t, s)
	require.Equal(t, 1, f.tree.WatcherCount())

	s.Close()

	assert.Eventually(t, func() bool { return f.tree.WatcherCount() == 0 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, s.AuthStream().ObserverCount())
}

type failingTree struct {
	repository.Tree
}

func (failingTree) Watch(ctx context.Context, path string, fn func(repository.Snapshot)) repository.Subscription {
	go fn(repository.Snapshot{Path: path, Err: stderrors.New("permission denied")})
	return repository.SubscriptionFunc(func() {})
}

func TestProfileErrorEndsLoadingWithErrorState(t *testing.T) {
	f := newFixture()
	f.deps.Accounts = adapterrepo.NewTreeAccountRepository(failingTree{Tree: f.tree})
	f.identity.On("SignIn", mock.Anything, "a@b.c", "pw").
		Return(&entity.Identity{UID: "u1", Email: "a@b.c"}, nil)

	s := New("s1", f.deps, "")
	defer s.Close()
	s.Init(context.Background())
	_, err := s.SignIn(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)

	st := waitReady(t, s)
	assert.Contains(t, st.Error, "permission denied")
	assert.False(t, st.Loading)
}
