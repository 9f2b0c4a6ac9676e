package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/ariefcatur/lexi-storefront/internal/shop"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var ErrSlowDown = errors.New("too many chat messages, slow down")

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

type Message struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// Bot answers chat queries.
type Bot interface {
	Chat(ctx context.Context, query string) (shop.ChatReply, error)
}

// Widget is one browser's chat transcript.
type Widget struct {
	bot     Bot
	limiter *rate.Limiter
	log     *zap.Logger

	mu       sync.Mutex
	messages []Message
	lastUsed time.Time
}

// NewWidget allows perMinute messages per minute with a burst of the same
// size. perMinute <= 0 disables throttling.
func NewWidget(bot Bot, perMinute int, log *zap.Logger) *Widget {
	if log == nil {
		log = zap.NewNop()
	}
	lim := rate.NewLimiter(rate.Inf, 0)
	if perMinute > 0 {
		lim = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
	return &Widget{bot: bot, limiter: lim, log: log.Named("chat"), lastUsed: time.Now()}
}

// Send appends the user's message and the bot's replies. A blank message is
// ignored. When the bot fails the user's message stays in the transcript.
func (w *Widget) Send(ctx context.Context, text string) ([]Message, error) {
	if strings.TrimSpace(text) == "" {
		return w.Transcript(), nil
	}
	if !w.limiter.Allow() {
		return w.Transcript(), ErrSlowDown
	}

	w.mu.Lock()
	w.messages = append(w.messages, Message{Sender: SenderUser, Text: text})
	w.mu.Unlock()

	reply, err := w.bot.Chat(ctx, text)
	if err != nil {
		w.log.Error("sending message", zap.Error(err))
		return w.Transcript(), err
	}

	w.mu.Lock()
	for _, m := range reply.Message {
		w.messages = append(w.messages, Message{Sender: SenderBot, Text: m})
	}
	w.mu.Unlock()
	return w.Transcript(), nil
}

func (w *Widget) touch() {
	w.mu.Lock()
	w.lastUsed = time.Now()
	w.mu.Unlock()
}

func (w *Widget) idleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastUsed
}

func (w *Widget) Transcript() []Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Message(nil), w.messages...)
}

// Hub keeps one widget per browser until logout or until it is swept.
type Hub struct {
	PerMinute int
	Log       *zap.Logger

	mu      sync.Mutex
	widgets map[string]*Widget
}

func (h *Hub) Widget(browserID string, bot Bot) *Widget {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.widgets == nil {
		h.widgets = make(map[string]*Widget)
	}
	w, ok := h.widgets[browserID]
	if !ok {
		w = NewWidget(bot, h.PerMinute, h.Log)
		h.widgets[browserID] = w
	}
	w.touch()
	return w
}

func (h *Hub) Forget(browserID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.widgets, browserID)
}

// Sweep drops widgets not used for longer than idle, transcripts included.
func (h *Hub) Sweep(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for id, w := range h.widgets {
		if w.idleSince().Before(cutoff) {
			delete(h.widgets, id)
			n++
		}
	}
	return n
}
