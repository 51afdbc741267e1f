package firebase

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/service"
	"tokoaing/pkg/logger"
)

type localUser struct {
	uid          string
	email        string
	passwordHash []byte
}

// LocalIdentityService stands in for Firebase Authentication when the service runs with the
// in-memory backend. ID tokens are opaque random strings that live until sign-out.
type LocalIdentityService struct {
	mu      sync.RWMutex
	byEmail map[string]*localUser
	byUID   map[string]*localUser
	tokens  map[string]string
}

func NewLocalIdentityService() *LocalIdentityService {
	return &LocalIdentityService{
		byEmail: make(map[string]*localUser),
		byUID:   make(map[string]*localUser),
		tokens:  make(map[string]string),
	}
}

var _ service.IdentityService = (*LocalIdentityService)(nil)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *LocalIdentityService) CreateUser(ctx context.Context, email, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeEmail(email)
	if _, exists := s.byEmail[key]; exists {
		return "", service.ErrEmailInUse
	}

	user := &localUser{uid: uuid.New().String(), email: email, passwordHash: hash}
	s.byEmail[key] = user
	s.byUID[user.uid] = user

	return user.uid, nil
}

func (s *LocalIdentityService) SignIn(ctx context.Context, email, password string) (*entity.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, service.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword(user.passwordHash, []byte(password)); err != nil {
		return nil, service.ErrInvalidCredentials
	}

	token := uuid.New().String()
	s.tokens[token] = user.uid

	return &entity.Identity{UID: user.uid, Email: user.email, IDToken: token}, nil
}

func (s *LocalIdentityService) VerifyToken(ctx context.Context, idToken string) (*entity.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uid, ok := s.tokens[idToken]
	if !ok {
		return nil, service.ErrInvalidToken
	}
	user := s.byUID[uid]

	return &entity.Identity{UID: uid, Email: user.email, IDToken: idToken}, nil
}

func (s *LocalIdentityService) SignOut(ctx context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, owner := range s.tokens {
		if owner == uid {
			delete(s.tokens, token)
		}
	}
	return nil
}

func (s *LocalIdentityService) SendPasswordReset(ctx context.Context, email string) error {
	s.mu.RLock()
	_, ok := s.byEmail[normalizeEmail(email)]
	s.mu.RUnlock()

	if !ok {
		return service.ErrUserNotFound
	}
	logger.Info("Password reset requested for %s (local identity, no email sent)", email)
	return nil
}

func (s *LocalIdentityService) UpdateEmail(ctx context.Context, uid, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byUID[uid]
	if !ok {
		return service.ErrUserNotFound
	}
	key := normalizeEmail(email)
	if other, exists := s.byEmail[key]; exists && other.uid != uid {
		return service.ErrEmailInUse
	}

	delete(s.byEmail, normalizeEmail(user.email))
	user.email = email
	s.byEmail[key] = user
	return nil
}

func (s *LocalIdentityService) UpdatePassword(ctx context.Context, uid, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byUID[uid]
	if !ok {
		return service.ErrUserNotFound
	}
	user.passwordHash = hash
	return nil
}
