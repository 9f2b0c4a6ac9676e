package httpx

import (
	"net/http"

	"github.com/ariefcatur/lexi-storefront/internal/chat"
)

func (s *Storefront) widget(r *http.Request) *chat.Widget {
	id := browserFrom(r.Context())
	return s.Chat.Widget(id, s.Clients.For(id))
}

func (s *Storefront) chatTranscript(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"messages": s.widget(r).Transcript()})
}

func (s *Storefront) chatSend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decode(w, r, &req) {
		return
	}
	msgs, err := s.widget(r).Send(r.Context(), req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}
