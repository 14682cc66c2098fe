package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisConfig locates the Redis instance holding batch status.
type RedisConfig struct {
	URL        string `json:"url"`
	KeyPrefix  string `json:"key_prefix"`
	TTLSeconds int    `json:"ttl_seconds"`
}

func (c *RedisConfig) SetDefaults() {
	if c.KeyPrefix == "" {
		c.KeyPrefix = "disburse"
	}
	if c.TTLSeconds <= 0 {
		c.TTLSeconds = 86400
	}
}

func (c RedisConfig) Validate() error {
	if c.URL == "" {
		return errors.New("redis tracker: url is required")
	}
	return nil
}

// RedisTracker stores the status of a domain in a hash and publishes each
// update as JSON on a channel of the same name.
type RedisTracker struct {
	*machine
	rdb *redis.Client
	key string
	ttl time.Duration
}

// NewRedisTracker parses cfg.URL and returns a tracker for domain. The
// connection is established lazily on the first update.
func NewRedisTracker(cfg RedisConfig, domain string) (*RedisTracker, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis tracker: %w", err)
	}
	return newRedisTracker(redis.NewClient(opt), cfg, domain), nil
}

func newRedisTracker(rdb *redis.Client, cfg RedisConfig, domain string) *RedisTracker {
	t := &RedisTracker{
		rdb: rdb,
		key: cfg.KeyPrefix + ":status:" + domain,
		ttl: time.Duration(cfg.TTLSeconds) * time.Second,
	}
	t.machine = newMachine(domain, t.write)
	return t
}

// Key is the hash and channel name used for the domain.
func (t *RedisTracker) Key() string { return t.key }

func (t *RedisTracker) write(ctx context.Context, s Status) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = t.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, t.key, map[string]any{
			"state":      string(s.State),
			"current":    s.Current,
			"total":      s.Total,
			"error_slug": s.ErrorSlug,
			"updated_at": s.UpdatedAt.Format(time.RFC3339Nano),
		})
		p.Expire(ctx, t.key, t.ttl)
		p.Publish(ctx, t.key, payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis tracker %s: %w", t.key, err)
	}
	return nil
}

// Load reads the stored status of the domain back from Redis.
func (t *RedisTracker) Load(ctx context.Context) (Status, error) {
	vals, err := t.rdb.HGetAll(ctx, t.key).Result()
	if err != nil {
		return Status{}, err
	}
	if len(vals) == 0 {
		return Status{}, redis.Nil
	}
	s := Status{Domain: t.snapshot().Domain, State: State(vals["state"]), ErrorSlug: vals["error_slug"]}
	s.Current, _ = strconv.Atoi(vals["current"])
	s.Total, _ = strconv.Atoi(vals["total"])
	s.UpdatedAt, _ = time.Parse(time.RFC3339Nano, vals["updated_at"])
	return s, nil
}

// Close releases the Redis connection pool.
func (t *RedisTracker) Close() error { return t.rdb.Close() }
