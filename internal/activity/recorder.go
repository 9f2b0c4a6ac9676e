package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ariefcatur/lexi-storefront/internal/logx"
	"github.com/ariefcatur/lexi-storefront/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Log is where recorded events end up.
type Log interface {
	Append(ctx context.Context, env Envelope) (bool, error)
}

// Recorder is the consumer-side handler that appends activity events to the
// log, skipping events it has already seen. Without Redis it relies on the
// log ignoring duplicate event ids.
type Recorder struct {
	Log     Log
	Redis   redis.Cmdable
	Service string
	Logger  *zap.Logger
}

func (r *Recorder) HandleMessage(ctx context.Context, m kafkago.Message) error {
	var env Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// A malformed message can never succeed; drop it so the offset moves on.
		r.logger().Warn("undecodable activity message", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	if env.EventID == "" {
		return nil
	}

	key := fmt.Sprintf(redisx.KeyDedup, r.Service, env.EventID)
	if r.Redis != nil {
		if seen, _ := redisx.Exists(ctx, r.Redis, key); seen {
			return nil
		}
	}

	inserted, err := r.Log.Append(ctx, env)
	if err != nil {
		return fmt.Errorf("append %s: %w", env.EventID, err)
	}
	if r.Redis != nil {
		if _, err := redisx.MarkOnce(ctx, r.Redis, key, redisx.TTLDedup); err != nil {
			r.logger().Warn("dedup mark", zap.String("event_id", env.EventID), zap.Error(err))
		}
	}
	if inserted {
		r.logger().Debug("recorded",
			zap.String("event_id", env.EventID),
			zap.String("event_type", env.EventType),
			zap.String("browser", env.BrowserID))
	}
	return nil
}

func (r *Recorder) logger() *zap.Logger { return logx.OrNop(r.Logger) }
