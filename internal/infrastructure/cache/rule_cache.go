// Package cache keeps the active commission rule set in Redis and invalidates it
// when PostgreSQL reports a rule change.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/redis/go-redis/v9"

	"ganji/internal/config"
	"ganji/internal/domain/commission"
)

// ActiveRulesKey is the Redis key holding the compressed active rule set.
const ActiveRulesKey = "ganji:commission:rules:active"

// Compile-time check that RuleCache implements commission.Cache.
var _ commission.Cache = (*RuleCache)(nil)

// RuleCache stores the active rules as zstd-compressed JSON.
type RuleCache struct {
	client *redis.Client
	ttl    time.Duration
	codec  *codec
}

// NewRedisClient opens and pings a client for the configured Redis.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRuleCache creates a rule cache. The caller keeps ownership of client.
func NewRuleCache(client *redis.Client, ttl time.Duration) (*RuleCache, error) {
	c, err := newCodec()
	if err != nil {
		return nil, err
	}
	return &RuleCache{client: client, ttl: ttl, codec: c}, nil
}

// GetActive implements commission.Cache.
func (c *RuleCache) GetActive(ctx context.Context) ([]commission.Rule, bool, error) {
	data, err := c.client.Get(ctx, ActiveRulesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached rules: %w", err)
	}

	rules, err := c.codec.decode(data)
	if err != nil {
		// A payload we cannot read is dropped and treated as a miss.
		_ = c.client.Del(ctx, ActiveRulesKey).Err()
		return nil, false, nil
	}
	return rules, true, nil
}

// SetActive implements commission.Cache.
func (c *RuleCache) SetActive(ctx context.Context, rules []commission.Rule) error {
	data, err := c.codec.encode(rules)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, ActiveRulesKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached rules: %w", err)
	}
	return nil
}

// Invalidate implements commission.Cache.
func (c *RuleCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, ActiveRulesKey).Err(); err != nil {
		return fmt.Errorf("invalidate cached rules: %w", err)
	}
	return nil
}

// codec turns rule sets into compressed payloads. EncodeAll and DecodeAll are safe
// for concurrent use, so one codec serves every request.
type codec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func newCodec() (*codec, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &codec{encoder: encoder, decoder: decoder}, nil
}

func (c *codec) encode(rules []commission.Rule) ([]byte, error) {
	if rules == nil {
		rules = []commission.Rule{}
	}
	raw, err := json.Marshal(rules)
	if err != nil {
		return nil, fmt.Errorf("marshal rules: %w", err)
	}
	return c.encoder.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

func (c *codec) decode(data []byte) ([]commission.Rule, error) {
	raw, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress rules: %w", err)
	}
	var rules []commission.Rule
	if err := json.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("unmarshal rules: %w", err)
	}
	return rules, nil
}
