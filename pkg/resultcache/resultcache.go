package resultcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/pokedex/pkg/creature"
	"github.com/travigo/pokedex/pkg/evolution"
)

// Engine caches the results of another evolution.Engine in Redis. The
// queries are read-only so a cached result stays valid until the TTL expires
// or the source collection is reloaded.
type Engine struct {
	Wrapped evolution.Engine
	Cache   *cache.Cache[string]

	// Namespace separates results of different collections sharing one Redis
	Namespace string
}

func New(wrapped evolution.Engine, client *redis.Client, ttl time.Duration, namespace string) *Engine {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(ttl))

	return &Engine{
		Wrapped:   wrapped,
		Cache:     cache.New[string](redisStore),
		Namespace: namespace,
	}
}

func (e *Engine) Evolutions(ctx context.Context) ([]creature.EvolutionView, error) {
	return cached(ctx, e, e.key("evolutions"), e.Wrapped.Evolutions)
}

func (e *Engine) FirstStage(ctx context.Context, query evolution.FirstStageQuery) ([]creature.FirstStageView, error) {
	return cached(ctx, e, e.key("first-stage", query.String()), func(ctx context.Context) ([]creature.FirstStageView, error) {
		return e.Wrapped.FirstStage(ctx, query)
	})
}

func (e *Engine) key(parts ...string) string {
	key := fmt.Sprintf("pokedex:%s", e.Namespace)
	for _, part := range parts {
		key += ":" + part
	}
	return key
}

func cached[T any](ctx context.Context, e *Engine, key string, load func(context.Context) (T, error)) (T, error) {
	if value, err := e.Cache.Get(ctx, key); err == nil {
		var result T
		if err := json.Unmarshal([]byte(value), &result); err == nil {
			log.Debug().Str("key", key).Msg("Result cache hit")
			return result, nil
		}

		log.Warn().Str("key", key).Msg("Discarding undecodable cached result")
	}

	result, err := load(ctx)
	if err != nil {
		return result, err
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to encode result for cache")
		return result, nil
	}

	if err := e.Cache.Set(ctx, key, string(encoded)); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to store result in cache")
	}

	return result, nil
}
