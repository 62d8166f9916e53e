package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Recorder counts hits per rate-limit key in Redis so the external limiter
// has data to act on. Advisory only: recording failures are logged and the
// request proceeds regardless.
type Recorder struct {
	client redis.Cmdable
	window time.Duration
	logger *slog.Logger
}

// NewRecorder builds a Recorder. Returns nil when client is nil (Redis not
// configured); a nil Recorder is safe to call.
func NewRecorder(client redis.Cmdable, window time.Duration, logger *slog.Logger) *Recorder {
	if client == nil {
		return nil
	}
	return &Recorder{client: client, window: window, logger: logger}
}

// Hit increments the counter for the action/ip pair, setting the window TTL
// on first hit.
func (r *Recorder) Hit(ctx context.Context, action, ip string) {
	if r == nil {
		return
	}
	key := Key(action, ip)
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.WarnContext(ctx, "rate hit record failed", "key", key, "error", err)
		return
	}
	_ = incr.Val()
}
