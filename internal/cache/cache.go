// Package cache stores rendered list views in Redis and invalidates them.
//
// Every cached view lives in one hash keyed by its path, so revalidating a
// path drops all of its query/page variants with a single DEL. Each path
// also has a generation counter bumped on every revalidation; a view
// computed under an older generation is never written back.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	keyPrefix        = "view:"
	generationPrefix = "view-gen:"
)

var (
	// ErrMiss is returned by Get when the view variant is not cached.
	ErrMiss = errors.New("cache: miss")

	// ErrStale is returned by Set when the path was revalidated after the
	// generation the value was computed under.
	ErrStale = errors.New("cache: stale generation")
)

// setIfCurrent writes the variant only while the generation is unchanged.
// KEYS: generation, view hash. ARGV: expected generation, variant, value.
var setIfCurrent = redis.NewScript(`
local gen = redis.call("GET", KEYS[1]) or "0"
if gen ~= ARGV[1] then
	return 0
end
redis.call("HSET", KEYS[2], ARGV[2], ARGV[3])
return 1
`)

type ViewCache struct {
	client *redis.Client
	logger *zerolog.Logger
}

func NewViewCache(client *redis.Client, logger *zerolog.Logger) *ViewCache {
	return &ViewCache{client: client, logger: logger}
}

// NormalizePath gives every spelling of a view path one canonical form:
// a single leading slash and no trailing slash.
func NormalizePath(path string) string {
	path = strings.Trim(strings.TrimSpace(path), "/")
	return "/" + path
}

func viewKey(path string) string {
	return keyPrefix + NormalizePath(path)
}

func generationKey(path string) string {
	return generationPrefix + NormalizePath(path)
}

// Get decodes the cached variant of path into dst.
func (c *ViewCache) Get(ctx context.Context, path, variant string, dst any) error {
	raw, err := c.client.HGet(ctx, viewKey(path), variant).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("failed to read cached view %s: %w", path, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode cached view %s: %w", path, err)
	}
	return nil
}

// Generation returns the current generation of path. Read it before
// computing a view and pass it to Set.
func (c *ViewCache) Generation(ctx context.Context, path string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(path)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read generation of view %s: %w", path, err)
	}
	return gen, nil
}

// Set stores value as the variant of path if path is still at generation.
// Otherwise nothing is written and ErrStale is returned.
func (c *ViewCache) Set(ctx context.Context, path, variant string, generation int64, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode view %s: %w", path, err)
	}

	keys := []string{generationKey(path), viewKey(path)}
	written, err := setIfCurrent.Run(ctx, c.client, keys,
		strconv.FormatInt(generation, 10), variant, raw,
	).Int()
	if err != nil {
		return fmt.Errorf("failed to cache view %s: %w", path, err)
	}
	if written == 0 {
		return ErrStale
	}
	return nil
}

// RevalidatePath drops every cached variant of path and bumps its
// generation, so views computed before this call are not cached.
func (c *ViewCache) RevalidatePath(ctx context.Context, path string) error {
	path = NormalizePath(path)

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationPrefix+path)
		pipe.Del(ctx, keyPrefix+path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to drop cached view %s: %w", path, err)
	}

	c.logger.Debug().Str("path", path).Msg("view revalidated")
	return nil
}
