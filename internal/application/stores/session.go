package stores

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/AtRiskMedia/storefront-go/internal/domain/entities/session"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/kv"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/security"
)

// ErrRejectedToken is returned by Login when the token is empty or a sentinel literal
var ErrRejectedToken = errors.New("login rejected: token is empty or a sentinel literal")

// Namespace names the keys a session store owns
type Namespace struct {
	UserKey  string
	TokenKey string
	Label    string
	// LiveTokenCheck re-reads the token key on every check so a token cleared
	// by another process ends this session.
	LiveTokenCheck bool
}

var (
	CustomerNamespace = Namespace{UserKey: KeyUser, TokenKey: KeyToken, Label: "customer"}
	AdminNamespace    = Namespace{UserKey: KeyAdminUser, TokenKey: KeyAdminToken, Label: "admin", LiveTokenCheck: true}
)

// State is the session state machine position
type State string

const (
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

// SessionStore holds one authenticated identity under a namespace.
// Anonymous -> Authenticated only through Login; back through Logout or, with
// LiveTokenCheck, an observed external clear of the token key.
type SessionStore struct {
	mu       sync.RWMutex
	ns       Namespace
	identity *session.Identity
	deps     Deps
}

// NewSessionStore restores the identity persisted under ns. Anything short
// of a decodable user and a usable token starts the session anonymous.
func NewSessionStore(ctx context.Context, ns Namespace, deps Deps) *SessionStore {
	s := &SessionStore{ns: ns, deps: deps}

	user, ok, err := kv.Load[session.UserRef](ctx, deps.Store, ns.UserKey)
	if !ok {
		logDecodeFailure(deps, ns.UserKey, err)
		return s
	}
	token, ok, err := kv.LoadString(ctx, deps.Store, ns.TokenKey)
	if !ok {
		logDecodeFailure(deps, ns.TokenKey, err)
		return s
	}
	s.identity = &session.Identity{User: user, Token: token}
	deps.Logger.Auth().Debug("Session restored", "namespace", ns.Label, "profileId", deps.ProfileID)
	return s
}

// Namespace returns the keys this store owns
func (s *SessionStore) Namespace() Namespace { return s.ns }

// Login stores user and token. Empty or sentinel tokens are rejected with
// ErrRejectedToken and leave the session untouched.
func (s *SessionStore) Login(ctx context.Context, user session.UserRef, token string) error {
	if kv.IsSentinel(token) {
		s.deps.Logger.LogAuthOperation("login", s.ns.Label, user.ID(), false, map[string]any{
			"profileId": s.deps.ProfileID,
			"reason":    "invalid token",
		})
		return ErrRejectedToken
	}
	if user == nil {
		user = session.UserRef{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity = &session.Identity{User: user, Token: token}

	var errs []error
	if err := persist(ctx, s.deps, s.ns.UserKey, user); err != nil {
		errs = append(errs, err)
	}
	if err := persist(ctx, s.deps, s.ns.TokenKey, token); err != nil {
		errs = append(errs, err)
	}
	s.deps.Logger.LogAuthOperation("login", s.ns.Label, user.ID(), true, map[string]any{"profileId": s.deps.ProfileID})

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("save %s session: %w", s.ns.Label, err)
	}
	return nil
}

// Logout clears the identity and both persisted keys
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID := ""
	if s.identity != nil {
		userID = s.identity.User.ID()
	}
	s.identity = nil

	err := errors.Join(
		s.deps.Store.Delete(ctx, s.ns.UserKey),
		s.deps.Store.Delete(ctx, s.ns.TokenKey),
	)
	s.deps.Logger.LogAuthOperation("logout", s.ns.Label, userID, true, map[string]any{"profileId": s.deps.ProfileID})
	if err != nil {
		return fmt.Errorf("clear %s session: %w", s.ns.Label, err)
	}
	return nil
}

// observe applies the live token check. Backend failures keep the session;
// only a token that is gone or unusable ends it.
func (s *SessionStore) observe(ctx context.Context) {
	if !s.ns.LiveTokenCheck {
		return
	}

	s.mu.RLock()
	active := s.identity != nil
	s.mu.RUnlock()
	if !active {
		return
	}

	_, ok, err := kv.LoadString(ctx, s.deps.Store, s.ns.TokenKey)
	if ok || (err != nil && !errors.Is(err, kv.ErrSentinel) && !errors.Is(err, kv.ErrCorrupt)) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return
	}
	userID := s.identity.User.ID()
	s.identity = nil
	s.deps.Logger.LogAuthOperation("external-clear", s.ns.Label, userID, true, map[string]any{"profileId": s.deps.ProfileID})
}

// IsAuthenticated reports whether an identity is held
func (s *SessionStore) IsAuthenticated(ctx context.Context) bool {
	_, ok := s.Identity(ctx)
	return ok
}

// State returns the state machine position
func (s *SessionStore) State(ctx context.Context) State {
	if s.IsAuthenticated(ctx) {
		return StateAuthenticated
	}
	return StateAnonymous
}

// Identity returns a copy of the current identity
func (s *SessionStore) Identity(ctx context.Context) (session.Identity, bool) {
	s.observe(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return session.Identity{}, false
	}
	user := make(session.UserRef, len(s.identity.User))
	for k, v := range s.identity.User {
		user[k] = v
	}
	return session.Identity{User: user, Token: s.identity.Token}, true
}

// User returns the logged-in user, or nil
func (s *SessionStore) User(ctx context.Context) session.UserRef {
	id, _ := s.Identity(ctx)
	return id.User
}

// Token returns the bearer token, or ""
func (s *SessionStore) Token(ctx context.Context) string {
	id, _ := s.Identity(ctx)
	return id.Token
}

// TokenInfo peeks at the token's claims without verifying them. The remote
// API remains the only judge of validity.
func (s *SessionStore) TokenInfo(ctx context.Context) (security.TokenInfo, error) {
	token := s.Token(ctx)
	if token == "" {
		return security.TokenInfo{}, errors.New("no session token")
	}
	return security.InspectToken(token)
}
