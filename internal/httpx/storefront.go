package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/ariefcatur/lexi-storefront/internal/activity"
	"github.com/ariefcatur/lexi-storefront/internal/chat"
	"github.com/ariefcatur/lexi-storefront/internal/logx"
	"github.com/ariefcatur/lexi-storefront/internal/pages"
	"github.com/ariefcatur/lexi-storefront/internal/session"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Storefront serves the browser-facing JSON API. Every request is bound to
// the browser cookie's session.
type Storefront struct {
	Clients  *Clients
	Sessions *session.Manager
	Chat     *chat.Hub
	Activity activity.Publisher
	Cookie   Cookie
	Log      *zap.Logger
	// RoleWait bounds how long a gated request waits for a fresh login's
	// role to resolve.
	RoleWait time.Duration
}

func (s *Storefront) log() *zap.Logger { return logx.OrNop(s.Log) }

func (s *Storefront) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(s.Cookie.middleware)

		r.Post("/auth/login", s.login)
		r.Post("/auth/logout", s.logout)
		r.Post("/auth/register", s.register)
		r.Post("/auth/refresh", s.refresh)
		r.Get("/auth/session", s.sessionState)
		r.Get("/nav", s.nav)

		r.Group(func(r chi.Router) {
			r.Use(s.require(session.Customer))
			s.customerRoutes(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(s.require(session.Seller))
			s.sellerRoutes(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(s.requireLogin)
			r.Get("/chat", s.chatTranscript)
			r.Post("/chat", s.chatSend)
		})
	})
}

type ctxKey int

const (
	storeKey ctxKey = iota
	capabilityKey
)

func (s *Storefront) open(r *http.Request) (*session.Store, error) {
	return s.Sessions.Open(r.Context(), browserFrom(r.Context()))
}

// capability waits briefly for a pending role so that a request sent right
// after login is not bounced.
// capability waits up to RoleWait for a pending role. A logged-in session whose
// role lookup failed earlier gets a fresh lookup here.
func (s *Storefront) capability(ctx context.Context, st *session.Store) session.Capability {
	c := st.Capability()
	if !c.LoggedIn || c.Kind != session.Anonymous {
		return c
	}
	if s.RoleWait <= 0 {
		st.ResolveRole(ctx)
		return st.Capability()
	}
	ctx, cancel := context.WithTimeout(ctx, s.RoleWait)
	defer cancel()
	for attempt := 0; attempt < 2; attempt++ {
		st.ResolveRole(ctx)
		c, _ = st.AwaitRole(ctx)
		if c.Kind != session.Anonymous || !c.LoggedIn || ctx.Err() != nil {
			break
		}
	}
	return c
}

func (s *Storefront) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st, err := s.open(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		c := st.Capability()
		if !c.LoggedIn {
			redirectToLogin(w)
			return
		}
		ctx := context.WithValue(r.Context(), storeKey, st)
		ctx = context.WithValue(ctx, capabilityKey, c)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Storefront) require(kind session.Kind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st, err := s.open(r)
			if err != nil {
				s.writeError(w, r, err)
				return
			}
			c := s.capability(r.Context(), st)
			switch {
			case !c.LoggedIn:
				redirectToLogin(w)
				return
			case c.Kind != kind:
				writeMessage(w, http.StatusForbidden, "this page is for "+kind.String()+" accounts")
				return
			}
			ctx := context.WithValue(r.Context(), storeKey, st)
			ctx = context.WithValue(ctx, capabilityKey, c)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func capabilityFrom(ctx context.Context) session.Capability {
	c, _ := ctx.Value(capabilityKey).(session.Capability)
	return c
}

func (s *Storefront) views(r *http.Request) *pages.Service {
	return &pages.Service{API: s.Clients.For(browserFrom(r.Context())), Log: s.log().Named("pages")}
}

func (s *Storefront) emit(ctx context.Context, ev activity.Event) {
	if s.Activity != nil {
		s.Activity.Publish(ctx, ev)
	}
}

// publish reports an event for the signed-in user of r.
func (s *Storefront) publish(r *http.Request, typ string, payload any) {
	s.emit(r.Context(), activity.Event{
		Type:      typ,
		BrowserID: browserFrom(r.Context()),
		UserID:    capabilityFrom(r.Context()).UserID,
		Payload:   payload,
	})
}

func storeFrom(ctx context.Context) *session.Store {
	st, _ := ctx.Value(storeKey).(*session.Store)
	return st
}
