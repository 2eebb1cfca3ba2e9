package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Fetch runs loader through the cache and returns the value as T. The
// in-process cache hands hits back unchanged, while the redis cache
// hands back the JSON it persisted, so hits are decoded when needed.
func Fetch[T any](ctx context.Context, c Cache, key string, ttl time.Duration, loader func() (T, error)) (T, error) {
	value, err := c.GetOrSet(ctx, key, ttl, func() (any, error) {
		return loader()
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return decode[T](key, value)
}

func decode[T any](key string, value any) (T, error) {
	if typed, ok := value.(T); ok {
		return typed, nil
	}

	var out T
	raw, ok := value.(json.RawMessage)
	if !ok {
		data, err := json.Marshal(value)
		if err != nil {
			return out, fmt.Errorf("encoding cached value for key %s: %w", key, err)
		}
		raw = data
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decoding cached value for key %s: %w", key, err)
	}

	return out, nil
}
