package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ariefcatur/lexi-storefront/internal/apiclient"
	"github.com/ariefcatur/lexi-storefront/internal/durable"
	"github.com/ariefcatur/lexi-storefront/internal/shop"
	"github.com/golang-jwt/jwt/v4"
)

type fakeAPI struct {
	mu         sync.Mutex
	tokenErr   error
	access     string
	identity   shop.Identity
	meErr      error
	meGate     chan struct{}
	meCalls    int
	refreshed  string
	registered []shop.RegisterRequest
}

func (f *fakeAPI) ObtainToken(context.Context, string, string) (shop.TokenPair, error) {
	if f.tokenErr != nil {
		return shop.TokenPair{}, f.tokenErr
	}
	return shop.TokenPair{Access: f.access, Refresh: "refresh-1"}, nil
}

func (f *fakeAPI) RefreshToken(_ context.Context, refresh string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshed = refresh
	return "access-2", nil
}

func (f *fakeAPI) Me(ctx context.Context) (shop.Identity, error) {
	f.mu.Lock()
	f.meCalls++
	gate := f.meGate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return shop.Identity{}, ctx.Err()
		}
	}
	return f.identity, f.meErr
}

func (f *fakeAPI) Register(_ context.Context, req shop.RegisterRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, req)
	return nil
}

func accessToken(t *testing.T, userID any) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": userID}).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func awaitRole(t *testing.T, s *Store) Capability {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := s.AwaitRole(ctx)
	if err != nil {
		t.Fatalf("role never resolved: %v", err)
	}
	return c
}

func TestLoginSuccess(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{access: accessToken(t, 42), identity: shop.Identity{Role: shop.RoleCustomer, CustomerID: 7}}
	storage := durable.NewMemory()
	s := New(api, storage, nil)

	if _, err := s.Login(ctx, "u", "p"); err != nil {
		t.Fatalf("login: %v", err)
	}
	snap := s.Snapshot()
	if !snap.IsLoggedIn || snap.UserID != 42 {
		t.Fatalf("session = %+v", snap)
	}
	if tok, ok, _ := storage.Get(ctx, durable.KeyAccessToken); !ok || tok == "" {
		t.Fatal("access token not persisted")
	}

	c := awaitRole(t, s)
	if c.Kind != Customer || c.CustomerID != 7 || c.SellerID != 0 {
		t.Fatalf("capability = %+v", c)
	}

	raw, _, _ := storage.Get(ctx, durable.KeySession)
	var persisted Session
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		t.Fatal(err)
	}
	if persisted.Role != shop.RoleCustomer || persisted.CustomerID != 7 {
		t.Fatalf("blob not updated after role resolution: %+v", persisted)
	}
}

func TestLoginAcceptsStringUserID(t *testing.T) {
	api := &fakeAPI{access: accessToken(t, "15"), identity: shop.Identity{Role: shop.RoleSeller, SellerID: 2}}
	s := New(api, durable.NewMemory(), nil)
	if _, err := s.Login(context.Background(), "u", "p"); err != nil {
		t.Fatal(err)
	}
	if s.Snapshot().UserID != 15 {
		t.Fatalf("user id = %d", s.Snapshot().UserID)
	}
	awaitRole(t, s)
}

func TestLoginNetworkFailure(t *testing.T) {
	api := &fakeAPI{tokenErr: errors.New("dial tcp: connection refused")}
	s := New(api, durable.NewMemory(), nil)

	if _, err := s.Login(context.Background(), "u", "p"); err == nil {
		t.Fatal("expected error")
	}
	snap := s.Snapshot()
	if snap.IsLoggedIn {
		t.Fatal("failed login marked session logged in")
	}
	if snap.ErrorMessage == "" {
		t.Fatal("no error message captured")
	}
}

func TestLoginUsesAPIDetail(t *testing.T) {
	api := &fakeAPI{tokenErr: &apiclient.APIError{Status: 401, Detail: "No active account found with the given credentials"}}
	s := New(api, durable.NewMemory(), nil)
	_, _ = s.Login(context.Background(), "u", "bad")
	if got := s.Snapshot().ErrorMessage; got != "No active account found with the given credentials" {
		t.Fatalf("message = %q", got)
	}
}

func TestLoginRejectsUndecodableToken(t *testing.T) {
	s := New(&fakeAPI{access: "not-a-jwt"}, durable.NewMemory(), nil)
	if _, err := s.Login(context.Background(), "u", "p"); err == nil {
		t.Fatal("expected error")
	}
	if s.Snapshot().IsLoggedIn {
		t.Fatal("logged in with garbage token")
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{access: accessToken(t, 1), identity: shop.Identity{Role: shop.RoleCustomer, CustomerID: 3}}
	storage := durable.NewMemory()
	s := New(api, storage, nil)
	if _, err := s.Login(ctx, "u", "p"); err != nil {
		t.Fatal(err)
	}
	awaitRole(t, s)

	if err := s.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	if s.Snapshot().IsLoggedIn || s.Capability().Kind != Anonymous {
		t.Fatal("still logged in after logout")
	}
	for _, k := range []string{durable.KeyAccessToken, durable.KeyRefreshToken, durable.KeySession} {
		if _, ok, _ := storage.Get(ctx, k); ok {
			t.Fatalf("%s survived logout", k)
		}
	}
}

func TestSellerIDsHiddenUntilRoleResolves(t *testing.T) {
	ctx := context.Background()
	gate := make(chan struct{})
	api := &fakeAPI{
		access: accessToken(t, 5),
		// A misbehaving API may send both ids; only the seller id may surface.
		identity: shop.Identity{Role: shop.RoleSeller, SellerID: 11, CustomerID: 99},
		meGate:   gate,
	}
	s := New(api, durable.NewMemory(), nil)
	if _, err := s.Login(ctx, "seller", "p"); err != nil {
		t.Fatal(err)
	}

	pending := s.Capability()
	if !pending.LoggedIn || pending.Kind != Anonymous || pending.CustomerID != 0 || pending.SellerID != 0 {
		t.Fatalf("pending capability leaks ids: %+v", pending)
	}

	close(gate)
	c := awaitRole(t, s)
	if c.Kind != Seller || c.SellerID != 11 || c.CustomerID != 0 {
		t.Fatalf("capability = %+v", c)
	}
	if snap := s.Snapshot(); snap.CustomerID != 0 {
		t.Fatalf("customer id stored for seller: %+v", snap)
	}
}

func TestLogoutDuringRoleResolutionDropsAnswer(t *testing.T) {
	ctx := context.Background()
	gate := make(chan struct{})
	api := &fakeAPI{access: accessToken(t, 5), identity: shop.Identity{Role: shop.RoleCustomer, CustomerID: 3}, meGate: gate}
	storage := durable.NewMemory()
	s := New(api, storage, nil)
	if _, err := s.Login(ctx, "u", "p"); err != nil {
		t.Fatal(err)
	}
	pending := s.RoleResolved()

	if err := s.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	close(gate)
	<-pending

	if s.Snapshot().Role != "" {
		t.Fatal("late role answer applied after logout")
	}
	if _, ok, _ := storage.Get(ctx, durable.KeySession); ok {
		t.Fatal("late role answer resurrected the session blob")
	}
}

func TestRoleResolutionFailureKeepsPending(t *testing.T) {
	api := &fakeAPI{access: accessToken(t, 5), meErr: errors.New("boom")}
	s := New(api, durable.NewMemory(), nil)
	if _, err := s.Login(context.Background(), "u", "p"); err != nil {
		t.Fatal(err)
	}
	c := awaitRole(t, s)
	if !c.LoggedIn || c.Kind != Anonymous {
		t.Fatalf("capability = %+v", c)
	}
}

func TestRestoreAfterReload(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{access: accessToken(t, 8), identity: shop.Identity{Role: shop.RoleSeller, SellerID: 4}}
	storage := durable.NewMemory()
	first := New(api, storage, nil)
	if _, err := first.Login(ctx, "u", "p"); err != nil {
		t.Fatal(err)
	}
	awaitRole(t, first)

	reloaded := New(api, storage, nil)
	if err := reloaded.Restore(ctx); err != nil {
		t.Fatal(err)
	}
	c := reloaded.Capability()
	if c.Kind != Seller || c.SellerID != 4 || c.UserID != 8 {
		t.Fatalf("restored capability = %+v", c)
	}
}

func TestRefreshAccessToken(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	storage := durable.NewMemory()
	s := New(api, storage, nil)

	if err := s.RefreshAccessToken(ctx); !errors.Is(err, ErrNoRefreshToken) {
		t.Fatalf("expected ErrNoRefreshToken, got %v", err)
	}

	_ = storage.Set(ctx, durable.KeyRefreshToken, "r-1")
	if err := s.RefreshAccessToken(ctx); err != nil {
		t.Fatal(err)
	}
	if tok, _, _ := storage.Get(ctx, durable.KeyAccessToken); tok != "access-2" {
		t.Fatalf("access token = %q", tok)
	}
	if api.refreshed != "r-1" {
		t.Fatalf("refreshed with %q", api.refreshed)
	}
}

func TestRegisterValidatesBeforeCalling(t *testing.T) {
	api := &fakeAPI{}
	s := New(api, durable.NewMemory(), nil)

	err := s.Register(context.Background(), shop.RegistrationForm{FirstName: "Al"})
	var verr shop.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(api.registered) != 0 {
		t.Fatal("invalid form reached the API")
	}

	form := shop.RegistrationForm{
		FirstName: "Ayse", LastName: "Kaya", Username: "ayse", Email: "a@b.c",
		Password: "pw", PasswordCheck: "pw", Role: shop.RoleSeller,
	}
	if err := s.Register(context.Background(), form); err != nil {
		t.Fatal(err)
	}
	if len(api.registered) != 1 || api.registered[0].FirstName != "Ayse" {
		t.Fatalf("registered = %+v", api.registered)
	}
}

// failingSet rejects writes of one key.
type failingSet struct {
	*durable.Memory
	key string
}

func (f failingSet) Set(ctx context.Context, key, value string) error {
	if key == f.key {
		return errors.New("storage full")
	}
	return f.Memory.Set(ctx, key, value)
}

func TestLoginRollsBackAccessTokenWhenRefreshWriteFails(t *testing.T) {
	ctx := context.Background()
	mem := durable.NewMemory()
	s := New(&fakeAPI{access: accessToken(t, 1)}, failingSet{Memory: mem, key: durable.KeyRefreshToken}, nil)

	if _, err := s.Login(ctx, "u", "p"); err == nil {
		t.Fatal("expected error")
	}
	if _, ok, _ := mem.Get(ctx, durable.KeyAccessToken); ok {
		t.Fatal("access token left behind")
	}
	if s.Snapshot().IsLoggedIn {
		t.Fatal("session marked logged in")
	}
}
