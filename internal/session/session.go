package session

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/repository"
	"tokoaing/internal/domain/service"
	"tokoaing/pkg/errors"
	"tokoaing/pkg/logger"
)

// BypassSecret unlocks the hardcoded admin identity without the auth backend. It is a
// legacy demo escape hatch compared in plain text and gives no real access control.
const BypassSecret = "Masuk22"

var bypassIdentity = entity.Identity{
	UID:    "bypass-admin",
	Email:  "admin@bypass.local",
	Bypass: true,
}

// Dependencies are shared by every session of a Manager.
type Dependencies struct {
	Preferences repository.PreferenceRepository
	Accounts    repository.AccountRepository
	Identity    service.IdentityService
	BypassTTL   time.Duration
}

// Session is the Session Context of one client: identity, resolved role, theme and
// loading state. It is initialized once and then kept current by the auth stream and the
// live subscription on the account's profile document.
type Session struct {
	id        string
	deps      Dependencies
	stream    *AuthStream
	themeHint entity.Theme

	ctx    context.Context
	cancel context.CancelFunc

	initOnce  sync.Once
	closeOnce sync.Once
	notifyMu  sync.Mutex

	mu         sync.RWMutex
	state      State
	generation int
	authSub    repository.Subscription
	profileSub repository.Subscription
	listeners  map[int]func(State)
	nextID     int
	lastSeen   time.Time
}

func New(id string, deps Dependencies, themeHint entity.Theme) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:        id,
		deps:      deps,
		stream:    NewAuthStream(),
		themeHint: themeHint,
		ctx:       ctx,
		cancel:    cancel,
		state:     State{Loading: true, Theme: entity.ThemeLight},
		listeners: make(map[int]func(State)),
		lastSeen:  time.Now(),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) AuthStream() *AuthStream {
	return s.stream
}

// Init runs the initialization sequence. Only the first call has an effect.
func (s *Session) Init(ctx context.Context) {
	s.initOnce.Do(func() {
		theme := s.resolveTheme(ctx)

		bypass, err := s.deps.Preferences.HasBypassFlag(ctx, s.id)
		if err != nil {
			logger.Warn("Session %s: failed to read bypass flag: %v", s.id, err)
		}

		s.mu.Lock()
		s.state.Theme = theme
		if bypass {
			s.applyBypassLocked()
		}
		s.mu.Unlock()

		if bypass {
			logger.Debug("Session %s restored bypass admin", s.id)
			s.notify()
			return
		}

		s.notify()
		s.ensureAuthSubscription()
	})
}

func (s *Session) resolveTheme(ctx context.Context) entity.Theme {
	theme, ok, err := s.deps.Preferences.GetTheme(ctx, s.id)
	if err != nil {
		logger.Warn("Session %s: failed to read theme: %v", s.id, err)
	}
	if ok && theme.Valid() {
		return theme
	}
	if s.themeHint.Valid() {
		return s.themeHint
	}
	return entity.ThemeLight
}

func (s *Session) ensureAuthSubscription() {
	s.mu.Lock()
	if s.authSub != nil || s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	s.authSub = repository.SubscriptionFunc(func() {})
	s.mu.Unlock()

	sub := s.stream.Subscribe(s.onAuthChange)

	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		sub.Cancel()
		return
	}
	s.authSub = sub
	s.mu.Unlock()
}

func (s *Session) onAuthChange(identity *entity.Identity) {
	s.mu.Lock()
	if s.state.Identity != nil && s.state.Identity.Bypass {
		s.mu.Unlock()
		return
	}

	s.generation++
	gen := s.generation
	s.cancelProfileLocked()
	s.state.Profile = nil
	s.state.Role = ""
	s.state.Error = ""

	if identity == nil {
		s.state.Identity = nil
		s.state.Loading = false
		s.mu.Unlock()
		s.notify()
		return
	}

	s.state.Identity = identity
	s.state.Loading = true
	s.mu.Unlock()
	s.notify()

	sub := s.deps.Accounts.Watch(s.ctx, identity.UID, func(account *entity.Account, err error) {
		s.onProfile(gen, account, err)
	})

	s.mu.Lock()
	if s.generation == gen {
		s.profileSub = sub
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	sub.Cancel()
}

func (s *Session) onProfile(gen int, account *entity.Account, err error) {
	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return
	}

	switch {
	case err != nil:
		s.state.Error = err.Error()
		logger.Warn("Session %s: profile subscription failed: %v", s.id, err)
	case account != nil:
		s.state.Profile = account
		s.state.Role = account.Role
		s.state.Error = ""
	}
	s.state.Loading = false
	s.mu.Unlock()

	s.notify()
}

func (s *Session) cancelProfileLocked() {
	if s.profileSub != nil {
		s.profileSub.Cancel()
		s.profileSub = nil
	}
}

func (s *Session) applyBypassLocked() {
	s.generation++
	s.cancelProfileLocked()
	identity := bypassIdentity
	s.state.Identity = &identity
	s.state.Profile = nil
	s.state.Role = entity.RoleAdmin
	s.state.Loading = false
	s.state.Error = ""
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe calls fn with the current state now and after every change.
func (s *Session) Subscribe(fn func(State)) repository.Subscription {
	s.notifyMu.Lock()
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	fn(s.State())
	s.notifyMu.Unlock()

	var once sync.Once
	return repository.SubscriptionFunc(func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	})
}

func (s *Session) notify() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.RLock()
	state := s.state.clone()
	listeners := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(state)
	}
}

// WaitReady blocks until the session is no longer loading or ctx is done.
func (s *Session) WaitReady(ctx context.Context) (State, error) {
	ready := make(chan State, 1)
	sub := s.Subscribe(func(st State) {
		if st.Loading {
			return
		}
		select {
		case ready <- st:
		default:
		}
	})
	defer sub.Cancel()

	select {
	case st := <-ready:
		return st, nil
	case <-ctx.Done():
		return s.State(), ctx.Err()
	}
}

// ToggleTheme flips the theme and persists it. A failed save is logged and the new theme
// still applies to the session.
func (s *Session) ToggleTheme(ctx context.Context) entity.Theme {
	s.mu.Lock()
	next := s.state.Theme.Toggle()
	s.state.Theme = next
	s.mu.Unlock()

	if err := s.deps.Preferences.SetTheme(ctx, s.id, next); err != nil {
		logger.Warn("Session %s: failed to persist theme: %v", s.id, err)
	}

	s.notify()
	return next
}

// BypassAdminLogin switches the session to the fixed admin identity when secret matches.
// A mismatch leaves the session untouched.
func (s *Session) BypassAdminLogin(ctx context.Context, secret string) bool {
	if secret != BypassSecret {
		return false
	}

	if err := s.deps.Preferences.SetBypassFlag(ctx, s.id, s.deps.BypassTTL); err != nil {
		logger.Warn("Session %s: failed to persist bypass flag: %v", s.id, err)
	}

	s.mu.Lock()
	s.applyBypassLocked()
	s.mu.Unlock()

	s.notify()
	return true
}

// CheckBypass ends a bypass identity whose persisted flag has expired and reports whether
// the session still holds it. A failed flag read keeps the identity.
func (s *Session) CheckBypass(ctx context.Context) bool {
	current := s.State()
	if current.Identity == nil || !current.Identity.Bypass {
		return false
	}

	flag, err := s.deps.Preferences.HasBypassFlag(ctx, s.id)
	if err != nil {
		logger.Warn("Session %s: failed to read bypass flag: %v", s.id, err)
		return true
	}
	if flag {
		return true
	}

	logger.Info("Session %s: bypass flag expired", s.id)
	s.leaveBypass(ctx)
	s.ensureAuthSubscription()
	return false
}

// SignIn authenticates against the identity backend and publishes the identity on the
// session's auth stream.
func (s *Session) SignIn(ctx context.Context, email, password string) (*entity.Identity, error) {
	identity, err := s.deps.Identity.SignIn(ctx, email, password)
	if err != nil {
		if stderrors.Is(err, service.ErrInvalidCredentials) || stderrors.Is(err, service.ErrUserNotFound) {
			return nil, errors.Unauthorized("Invalid email or password", err)
		}
		return nil, errors.Internal("Failed to sign in", err)
	}

	s.leaveBypass(ctx)
	s.ensureAuthSubscription()
	s.stream.Emit(identity)

	return identity, nil
}

// RestoreToken adopts the identity behind a backend ID token when the session has none
// or holds a different account.
func (s *Session) RestoreToken(ctx context.Context, idToken string) error {
	identity, err := s.deps.Identity.VerifyToken(ctx, idToken)
	if err != nil {
		return errors.Unauthorized("Invalid or expired token", err)
	}

	current := s.State()
	if current.Identity != nil && current.Identity.UID == identity.UID {
		return nil
	}

	s.leaveBypass(ctx)
	s.ensureAuthSubscription()
	s.stream.Emit(identity)
	return nil
}

// Logout clears a bypass session locally. Any other identity is signed out at the backend
// and the resulting empty identity flows through the auth stream.
func (s *Session) Logout(ctx context.Context) error {
	if s.leaveBypass(ctx) {
		s.ensureAuthSubscription()
		return nil
	}

	current := s.State()
	if current.Identity != nil {
		if err := s.deps.Identity.SignOut(ctx, current.Identity.UID); err != nil {
			return errors.Internal("Failed to sign out", err)
		}
	}

	s.stream.Emit(nil)
	return nil
}

// leaveBypass clears the bypass flag and identity. It reports whether a bypass was active.
func (s *Session) leaveBypass(ctx context.Context) bool {
	flag, err := s.deps.Preferences.HasBypassFlag(ctx, s.id)
	if err != nil {
		logger.Warn("Session %s: failed to read bypass flag: %v", s.id, err)
	}

	s.mu.Lock()
	active := flag || (s.state.Identity != nil && s.state.Identity.Bypass)
	if active {
		s.generation++
		s.state.Identity = nil
		s.state.Profile = nil
		s.state.Role = ""
		s.state.Loading = false
		s.state.Error = ""
	}
	s.mu.Unlock()

	if !active {
		return false
	}

	if err := s.deps.Preferences.ClearBypassFlag(ctx, s.id); err != nil {
		logger.Warn("Session %s: failed to clear bypass flag: %v", s.id, err)
	}
	s.notify()
	return true
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// Close cancels the auth subscription and any profile subscription.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.generation++
		authSub := s.authSub
		s.authSub = nil
		s.cancelProfileLocked()
		s.listeners = make(map[int]func(State))
		s.mu.Unlock()

		if authSub != nil {
			authSub.Cancel()
		}
		s.cancel()
	})
}
