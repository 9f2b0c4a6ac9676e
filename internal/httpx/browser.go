package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type Cookie struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

type browserKey struct{}

// middleware reads the browser cookie, minting a new id on first visit. The
// id selects the browser's durable storage and session.
func (c Cookie) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if ck, err := r.Cookie(c.Name); err == nil {
			if u, err := uuid.Parse(ck.Value); err == nil {
				id = u.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
			c.set(w, id)
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), browserKey{}, id)))
	})
}

func (c Cookie) set(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    id,
		Path:     "/",
		MaxAge:   int(c.TTL / time.Second),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c Cookie) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func browserFrom(ctx context.Context) string {
	id, _ := ctx.Value(browserKey{}).(string)
	return id
}
