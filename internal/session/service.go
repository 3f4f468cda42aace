package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"reelist-server/internal/auth"
	"reelist-server/internal/model"
)

// UserStore is the account backend the service authenticates against.
// *repos.UsersRepo satisfies it.
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// Service wraps the account store and token manager behind the login, signup
// and logout operations, and tracks one Provider per issued token (jti).
// Two devices holding two tokens are two independent sessions; their edits
// meet at the store with last-writer-wins, by contract.
type Service struct {
	users  UserStore
	tokens *auth.Manager

	mu        sync.Mutex
	providers map[string]*Provider
}

func NewService(users UserStore, tokens *auth.Manager) *Service {
	return &Service{users: users, tokens: tokens, providers: make(map[string]*Provider)}
}

// LoginResult carries the outcome of a successful login or signup.
type LoginResult struct {
	Token    string
	JTI      string
	Session  model.Session
	Provider *Provider
}

// Login attempts Anonymous -> Authenticated. Failure keeps no session state
// and returns ErrAuthFailed with the backend message attached.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil || !auth.CheckPassword(u.PasswordHash, password) {
		return LoginResult{}, fmt.Errorf("%w: invalid email or password", model.ErrAuthFailed)
	}
	return s.establish(u)
}

// Signup creates an account and signs it in. The display name is stored with
// the account, mirroring a create-then-update-profile flow.
func (s *Service) Signup(ctx context.Context, name, email, password string) (LoginResult, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: %v", model.ErrAuthFailed, err)
	}
	u, err := s.users.Create(ctx, strings.TrimSpace(name), strings.ToLower(strings.TrimSpace(email)), hash)
	if err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			return LoginResult{}, fmt.Errorf("%w: %w", model.ErrAuthFailed, model.ErrEmailTaken)
		}
		return LoginResult{}, fmt.Errorf("%w: %v", model.ErrAuthFailed, err)
	}
	return s.establish(u)
}

func (s *Service) establish(u model.User) (LoginResult, error) {
	token, jti, err := s.tokens.Issue(u.ID, u.Name)
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: %v", model.ErrAuthFailed, err)
	}
	sess := model.Session{UserID: u.ID, DisplayName: u.Name}
	p := NewProvider()
	p.ResolveAuthenticated(sess)
	s.mu.Lock()
	s.providers[jti] = p
	s.mu.Unlock()
	log.Info().Str("user_id", u.ID).Str("jti", jti).Msg("session established")
	return LoginResult{Token: token, JTI: jti, Session: sess, Provider: p}, nil
}

// Resolve returns the provider for a validated token. After a restart the
// registry is empty; a valid token re-materializes its session from claims.
func (s *Service) Resolve(claims *auth.Claims) *Provider {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.providers[claims.ID]; ok {
		return p
	}
	p := NewProvider()
	p.ResolveAuthenticated(model.Session{UserID: claims.Subject, DisplayName: claims.Name})
	s.providers[claims.ID] = p
	return p
}

// ProviderByJTI returns the live provider for a session id, if any. Resolve
// must have run for the token first (the auth middleware does).
func (s *Service) ProviderByJTI(jti string) (*Provider, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.providers[jti]
	return p, ok
}

// Validate checks a raw bearer token and returns its claims.
func (s *Service) Validate(token string) (*auth.Claims, error) {
	return s.tokens.Validate(token)
}

// Logout transitions the session for jti to Anonymous. The provider stays in
// the registry so the token cannot re-resolve an authenticated session for
// the rest of its lifetime; entries age out when the process restarts, at
// which point token expiry takes over. Unknown jtis are a no-op.
func (s *Service) Logout(jti string) {
	s.mu.Lock()
	p, ok := s.providers[jti]
	s.mu.Unlock()
	if ok {
		p.Logout()
		log.Info().Str("jti", jti).Msg("session closed")
	}
}
