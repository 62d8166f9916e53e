package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecorder(t *testing.T) (*Recorder, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRecorder(client, time.Minute, logger), mr
}

func TestHitIncrementsAndSetsWindow(t *testing.T) {
	recorder, mr := newTestRecorder(t)
	ctx := context.Background()

	recorder.Hit(ctx, "log_security_event", "203.0.113.7")

	key := Key("log_security_event", "203.0.113.7")
	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "1", got)
	assert.Equal(t, time.Minute, mr.TTL(key))
}

func TestHitCountsRepeatedCalls(t *testing.T) {
	recorder, mr := newTestRecorder(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		recorder.Hit(ctx, "update_consent", "198.51.100.4")
	}

	got, err := mr.Get(Key("update_consent", "198.51.100.4"))
	require.NoError(t, err)
	assert.Equal(t, "3", got)
}

func TestHitKeysActionAndIPSeparately(t *testing.T) {
	recorder, mr := newTestRecorder(t)
	ctx := context.Background()

	recorder.Hit(ctx, "get_security_alerts", "203.0.113.7")
	recorder.Hit(ctx, "get_security_alerts", "198.51.100.4")
	recorder.Hit(ctx, "log_security_event", "203.0.113.7")

	for _, key := range []string{
		Key("get_security_alerts", "203.0.113.7"),
		Key("get_security_alerts", "198.51.100.4"),
		Key("log_security_event", "203.0.113.7"),
	} {
		got, err := mr.Get(key)
		require.NoError(t, err)
		assert.Equal(t, "1", got, key)
	}
}

func TestHitFailureIsSwallowed(t *testing.T) {
	recorder, mr := newTestRecorder(t)
	mr.Close()

	// Recording is advisory: a dead Redis must not panic or block the
	// request path.
	recorder.Hit(context.Background(), "log_security_event", "203.0.113.7")
}

func TestNilRecorderIsSafe(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := NewRecorder(nil, time.Minute, logger)

	require.Nil(t, recorder, "no client means no recorder")
	recorder.Hit(context.Background(), "log_security_event", "203.0.113.7")
}
