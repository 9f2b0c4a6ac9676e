package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ariefcatur/lexi-storefront/internal/activity"
	"github.com/ariefcatur/lexi-storefront/internal/apiclient"
	"github.com/ariefcatur/lexi-storefront/internal/nav"
	"github.com/ariefcatur/lexi-storefront/internal/session"
	"github.com/ariefcatur/lexi-storefront/internal/shop"
	"go.uber.org/zap"
)

type sessionResp struct {
	User         string             `json:"user,omitempty"`
	IsLoggedIn   bool               `json:"isLoggedIn"`
	RoleResolved bool               `json:"roleResolved"`
	Capability   session.Capability `json:"capability"`
	ErrorMessage string             `json:"errorMessage,omitempty"`
}

func sessionView(st *session.Store) sessionResp {
	snap := st.Snapshot()
	return sessionResp{
		User:         snap.Username,
		IsLoggedIn:   snap.IsLoggedIn,
		RoleResolved: snap.Role != "",
		Capability:   session.Resolve(snap),
		ErrorMessage: snap.ErrorMessage,
	}
}

func (s *Storefront) login(w http.ResponseWriter, r *http.Request) {
	var form shop.LoginForm
	if !decode(w, r, &form) {
		return
	}
	if err := form.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	st, err := s.open(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := st.Login(r.Context(), form.Username, form.Password); err != nil {
		code := http.StatusBadGateway
		if errors.Is(err, apiclient.ErrUnauthorized) {
			code = http.StatusUnauthorized
		}
		writeJSON(w, code, sessionView(st))
		return
	}
	s.emit(r.Context(), activity.Event{
		Type:      activity.EventLoggedIn,
		BrowserID: browserFrom(r.Context()),
		UserID:    st.Snapshot().UserID,
	})
	writeJSON(w, http.StatusOK, sessionView(st))
}

// logout resets the browser completely: session, chat and cookie.
func (s *Storefront) logout(w http.ResponseWriter, r *http.Request) {
	id := browserFrom(r.Context())
	st, err := s.open(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	userID := st.Snapshot().UserID
	if err := st.Logout(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.Sessions.Forget(id)
	s.Chat.Forget(id)
	s.Cookie.clear(w)
	s.emit(r.Context(), activity.Event{Type: activity.EventLoggedOut, BrowserID: id, UserID: userID})
	writeJSON(w, http.StatusOK, map[string]string{"redirect": "/"})
}

func (s *Storefront) register(w http.ResponseWriter, r *http.Request) {
	var form shop.RegistrationForm
	if !decode(w, r, &form) {
		return
	}
	st, err := s.open(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := st.Register(r.Context(), form); err != nil {
		var verr shop.ValidationError
		var apiErr *apiclient.APIError
		if !errors.As(err, &verr) && errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest {
			// The API rejects taken usernames and malformed emails with 400.
			writeMessage(w, http.StatusUnprocessableEntity, apiErr.Detail)
			return
		}
		s.writeError(w, r, err)
		return
	}
	s.emit(r.Context(), activity.Event{
		Type:      activity.EventRegistered,
		BrowserID: browserFrom(r.Context()),
		Payload:   map[string]string{"role": string(form.Role)},
	})
	writeJSON(w, http.StatusCreated, map[string]string{"redirect": loginPath})
}

func (s *Storefront) refresh(w http.ResponseWriter, r *http.Request) {
	st, err := s.open(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := st.RefreshAccessToken(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sessionState reports the session. With ?wait=1 it holds the answer until a
// pending role resolves or RoleWait passes.
func (s *Storefront) sessionState(w http.ResponseWriter, r *http.Request) {
	st, err := s.open(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if r.URL.Query().Get("wait") != "" {
		s.capability(r.Context(), st)
	}
	writeJSON(w, http.StatusOK, sessionView(st))
}

type navResp struct {
	nav.Decision
	Menu nav.Shell `json:"menu"`
}

func (s *Storefront) nav(w http.ResponseWriter, r *http.Request) {
	st, err := s.open(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c := st.Capability()
	writeJSON(w, http.StatusOK, navResp{
		Decision: nav.Resolve(c, r.URL.Query().Get("path")),
		Menu:     nav.Menu(c, s.cartCount(r.Context(), c)),
	})
}

// cartCount feeds the cart badge. It is best effort.
func (s *Storefront) cartCount(ctx context.Context, c session.Capability) int {
	if c.Kind != session.Customer {
		return 0
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	items, err := s.Clients.For(browserFrom(ctx)).ListCart(ctx)
	if err != nil {
		s.log().Warn("cart badge", zap.Error(err))
		return 0
	}
	return len(items)
}
