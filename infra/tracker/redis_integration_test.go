//go:build integration

package tracker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/disburse/test/util"
)

func TestRedisTracker_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	url, cleanup, err := util.StartRedis(ctx)
	if err != nil {
		t.Skipf("redis container unavailable: %v", err)
	}
	defer cleanup()

	tr, err := NewRedisTracker(RedisConfig{URL: url, TTLSeconds: 60}, "demo")
	require.NoError(t, err)
	defer tr.Close()

	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	sub := redis.NewClient(opt)
	defer sub.Close()
	ps := sub.Subscribe(ctx, tr.Key())
	defer ps.Close()
	_, err = ps.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, tr.MarkRequested(ctx))
	require.NoError(t, tr.UpdateProgress(ctx, 3, 5))

	st, err := tr.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateInProgress, st.State)
	assert.Equal(t, 3, st.Current)
	assert.Equal(t, 5, st.Total)

	ttl, err := sub.TTL(ctx, tr.Key()).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	msgs := ps.Channel()
	var last Status
	for i := 0; i < 2; i++ {
		select {
		case m := <-msgs:
			require.NoError(t, json.Unmarshal([]byte(m.Payload), &last))
		case <-ctx.Done():
			t.Fatal("no pubsub message")
		}
	}
	assert.Equal(t, StateInProgress, last.State)
}
