package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "allocator:reasoning:"

var ErrCacheMiss = errors.New("cache miss")

type ResponseCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type redisCache struct {
	client *redis.Client
}

// NewRedisCache connects to a redis:// URL and pings it once.
func NewRedisCache(ctx context.Context, url string) (ResponseCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}

	return &redisCache{client: client}, nil
}

func (c *redisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrCacheMiss
		}
		return "", err
	}
	return value, nil
}

func (c *redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

type cachedGenerator struct {
	TextGenerator
	cache ResponseCache
	ttl   time.Duration
	log   *zap.Logger
}

// WithCache serves repeated prompts from cache. Cache errors fall through to the backend.
func WithCache(gen TextGenerator, cache ResponseCache, ttl time.Duration, log *zap.Logger) TextGenerator {
	if cache == nil {
		return gen
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &cachedGenerator{TextGenerator: gen, cache: cache, ttl: ttl, log: log}
}

func (g *cachedGenerator) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	key := g.cacheKey(prompt, temperature)

	cached, err := g.cache.Get(ctx, key)
	switch {
	case err == nil:
		return cached, nil
	case !errors.Is(err, ErrCacheMiss):
		g.log.Warn("reasoning cache read failed", zap.Error(err))
	}

	text, err := g.TextGenerator.GenerateText(ctx, prompt, temperature)
	if err != nil {
		return "", err
	}

	if err := g.cache.Set(ctx, key, text, g.ttl); err != nil {
		g.log.Warn("reasoning cache write failed", zap.Error(err))
	}

	return text, nil
}

func (g *cachedGenerator) cacheKey(prompt string, temperature float32) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s|%s|%.2f|%s", g.Provider(), g.Model(), temperature, prompt)))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
