package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ariefcatur/lexi-storefront/internal/apiclient"
	"github.com/ariefcatur/lexi-storefront/internal/durable"
	"github.com/ariefcatur/lexi-storefront/internal/shop"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

var ErrNoRefreshToken = errors.New("no refresh token found")

// Authenticator is the slice of the storefront API the session needs.
type Authenticator interface {
	ObtainToken(ctx context.Context, username, password string) (shop.TokenPair, error)
	RefreshToken(ctx context.Context, refresh string) (string, error)
	Me(ctx context.Context) (shop.Identity, error)
	Register(ctx context.Context, req shop.RegisterRequest) error
}

// Session is the persisted view of the signed-in user.
type Session struct {
	UserID       int64     `json:"userId"`
	Username     string    `json:"user,omitempty"`
	Role         shop.Role `json:"role"`
	CustomerID   int64     `json:"customerId"`
	SellerID     int64     `json:"sellerId"`
	AccessToken  string    `json:"accessToken,omitempty"`
	IsLoggedIn   bool      `json:"isLoggedIn"`
	ErrorMessage string    `json:"errorMessage"`
}

// Store owns one browser's session. It moves anonymous -> authenticating-role
// (after Login) -> authenticated-as-role (after /auth/me answers); Logout
// returns to anonymous from anywhere.
type Store struct {
	api            Authenticator
	storage        durable.Storage
	log            *zap.Logger
	resolveTimeout time.Duration

	mu       sync.Mutex
	state    Session
	gen      uint64
	resolved chan struct{}
	lastUsed time.Time
}

func New(api Authenticator, storage durable.Storage, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		api:            api,
		storage:        storage,
		log:            log.Named("session"),
		resolveTimeout: 10 * time.Second,
		resolved:       closedChan(),
		lastUsed:       time.Now(),
	}
}

func closedChan() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}

func (s *Store) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) Capability() Capability {
	return Resolve(s.Snapshot())
}

// Login exchanges credentials for tokens and marks the session logged in.
// The role is fetched in the background; use AwaitRole or RoleResolved to
// observe it. On failure ErrorMessage carries a displayable reason.
func (s *Store) Login(ctx context.Context, username, password string) (shop.TokenPair, error) {
	tp, err := s.api.ObtainToken(ctx, username, password)
	if err != nil {
		s.fail(err)
		return tp, err
	}
	userID, err := decodeUserID(tp.Access)
	if err != nil {
		err = fmt.Errorf("decode access token: %w", err)
		s.fail(err)
		return tp, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Set(ctx, durable.KeyAccessToken, tp.Access); err != nil {
		s.failLocked(err)
		return tp, err
	}
	if err := s.storage.Set(ctx, durable.KeyRefreshToken, tp.Refresh); err != nil {
		if rmErr := s.storage.Remove(ctx, durable.KeyAccessToken); rmErr != nil {
			s.log.Warn("dropping half-written login", zap.Error(rmErr))
		}
		s.failLocked(err)
		return tp, err
	}

	s.gen++
	s.state = Session{
		UserID:      userID,
		Username:    username,
		AccessToken: tp.Access,
		IsLoggedIn:  true,
	}
	s.persistLocked(ctx)

	done := make(chan struct{})
	s.resolved = done
	go s.resolveRole(context.WithoutCancel(ctx), s.gen, done)

	s.log.Info("logged in", zap.Int64("user_id", userID))
	return tp, nil
}

// resolveRole asks the API who the token belongs to and stores the role and
// the matching role id. The answer is dropped if the session changed since.
func (s *Store) resolveRole(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)

	ctx, cancel := context.WithTimeout(ctx, s.resolveTimeout)
	defer cancel()

	id, err := s.api.Me(ctx)
	if err != nil {
		s.log.Warn("role resolution failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen || !s.state.IsLoggedIn {
		return
	}
	s.state.Role = id.Role
	s.state.CustomerID, s.state.SellerID = 0, 0
	switch id.Role {
	case shop.RoleCustomer:
		s.state.CustomerID = id.CustomerID
	case shop.RoleSeller:
		s.state.SellerID = id.SellerID
	}
	s.persistLocked(ctx)
	s.log.Debug("role resolved", zap.String("role", string(id.Role)))
}

// ResolveRole restarts role resolution for a logged-in session that has no
// role yet, e.g. after a restore. It is a no-op otherwise.
func (s *Store) ResolveRole(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.IsLoggedIn || s.state.Role != "" {
		return
	}
	select {
	case <-s.resolved:
	default:
		return // already running
	}
	done := make(chan struct{})
	s.resolved = done
	go s.resolveRole(context.WithoutCancel(ctx), s.gen, done)
}

// RoleResolved is closed once the pending role resolution, if any, is over.
func (s *Store) RoleResolved() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolved
}

func (s *Store) AwaitRole(ctx context.Context) (Capability, error) {
	select {
	case <-s.RoleResolved():
		return s.Capability(), nil
	case <-ctx.Done():
		return s.Capability(), ctx.Err()
	}
}

// Logout forgets everything locally. The tokens are not revoked upstream.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.state = Session{}
	s.resolved = closedChan()

	var errs []error
	for _, k := range []string{durable.KeyAccessToken, durable.KeyRefreshToken, durable.KeySession} {
		if err := s.storage.Remove(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		s.log.Error("logout cleanup", zap.Error(err))
		return err
	}
	return nil
}

// Register creates an account. Nothing changes in the session.
func (s *Store) Register(ctx context.Context, form shop.RegistrationForm) error {
	if err := form.Validate(); err != nil {
		return err
	}
	if err := s.api.Register(ctx, form.Request()); err != nil {
		s.log.Error("registration", zap.String("username", form.Username), zap.Error(err))
		return err
	}
	return nil
}

// RefreshAccessToken trades the stored refresh token for a new access token.
func (s *Store) RefreshAccessToken(ctx context.Context) error {
	refresh, ok, err := s.storage.Get(ctx, durable.KeyRefreshToken)
	if err == nil && (!ok || refresh == "") {
		err = ErrNoRefreshToken
	}
	if err != nil {
		s.log.Warn("token refresh", zap.Error(err))
		return err
	}

	access, err := s.api.RefreshToken(ctx, refresh)
	if err != nil {
		s.log.Warn("token refresh", zap.Error(err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Set(ctx, durable.KeyAccessToken, access); err != nil {
		s.log.Warn("token refresh", zap.Error(err))
		return err
	}
	if s.state.IsLoggedIn {
		s.state.AccessToken = access
		s.persistLocked(ctx)
	}
	return nil
}

// Restore reloads the persisted session blob.
func (s *Store) Restore(ctx context.Context) error {
	raw, ok, err := s.storage.Get(ctx, durable.KeySession)
	if err != nil || !ok {
		return err
	}
	var st Session
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return fmt.Errorf("decode session blob: %w", err)
	}
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	return nil
}

func (s *Store) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLocked(err)
}

func (s *Store) failLocked(err error) {
	s.log.Error("login", zap.Error(err))
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		s.state.ErrorMessage = apiErr.Detail
	} else {
		s.state.ErrorMessage = err.Error()
	}
}

func (s *Store) persistLocked(ctx context.Context) {
	b, err := json.Marshal(s.state)
	if err != nil {
		s.log.Error("encode session", zap.Error(err))
		return
	}
	if err := s.storage.Set(ctx, durable.KeySession, string(b)); err != nil {
		s.log.Error("persist session", zap.Error(err))
	}
}

func (s *Store) touch() {
	s.mu.Lock()
	s.lastUsed = time.Now()
	s.mu.Unlock()
}

func (s *Store) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

type accessClaims struct {
	UserID json.Number `json:"user_id"`
	jwt.RegisteredClaims
}

// decodeUserID reads the user_id claim without verifying the signature; the
// API verifies the token on every call.
func decodeUserID(token string) (int64, error) {
	var claims accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return 0, err
	}
	if claims.UserID == "" {
		return 0, errors.New("token has no user_id claim")
	}
	return claims.UserID.Int64()
}
