package activity

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS activity_log (
	event_id    TEXT PRIMARY KEY,
	event_type  TEXT NOT NULL,
	browser_id  TEXT NOT NULL,
	user_id     BIGINT,
	producer    TEXT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	payload     JSONB,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS activity_log_browser_idx ON activity_log (browser_id, occurred_at);
`

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.Exec(ctx, schema)
	return err
}

// Append stores env once; replays of the same event id are ignored.
func (r *Repo) Append(ctx context.Context, env Envelope) (bool, error) {
	var userID *int64
	if env.UserID != 0 {
		userID = &env.UserID
	}
	var payload []byte
	if len(env.Payload) > 0 {
		payload = env.Payload
	}
	tag, err := r.DB.Exec(ctx, `
		INSERT INTO activity_log (event_id, event_type, browser_id, user_id, producer, occurred_at, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event_id) DO NOTHING`,
		env.EventID, env.EventType, env.BrowserID, userID, env.Producer, env.OccurredAt, payload)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
