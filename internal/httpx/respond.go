package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ariefcatur/lexi-storefront/internal/apiclient"
	"github.com/ariefcatur/lexi-storefront/internal/chat"
	"github.com/ariefcatur/lexi-storefront/internal/pages"
	"github.com/ariefcatur/lexi-storefront/internal/session"
	"github.com/ariefcatur/lexi-storefront/internal/shop"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	loginPath   = "/login"
	maxJSONBody = 1 << 20
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func redirectToLogin(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{"redirect": loginPath})
}

// writeError maps domain and upstream errors onto HTTP answers.
func (s *Storefront) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr   shop.ValidationError
		apiErr *apiclient.APIError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": verr})
	case errors.Is(err, apiclient.ErrUnauthorized), errors.Is(err, session.ErrNoRefreshToken):
		redirectToLogin(w)
	case errors.Is(err, pages.ErrOutOfStock):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, pages.ErrNoAddressSelected):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, chat.ErrSlowDown):
		writeMessage(w, http.StatusTooManyRequests, err.Error())
	case errors.As(err, &apiErr):
		s.log().Warn("upstream error", zap.String("path", r.URL.Path), zap.Error(err))
		writeMessage(w, http.StatusBadGateway, apiErr.Detail)
	default:
		s.log().Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeMessage(w, http.StatusBadGateway, "The store is not reachable right now. Please try again later.")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(v)
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &tooBig):
		writeMessage(w, http.StatusRequestEntityTooLarge, "request body too large")
		return false
	case err != nil:
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeMessage(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
