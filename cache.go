package omnicache

import (
	"context"
	"time"

	"github.com/unkn0wn-root/omnicache/codec"
	pr "github.com/unkn0wn-root/omnicache/provider"
)

// cache is immutable after newCache; all methods are safe for concurrent use
// as long as the driver is.
type cache[V any] struct {
	prefix     string
	driver     pr.Driver
	codec      codec.Codec[V]
	defaultTTL time.Duration
	log        Logger
	hooks      Hooks
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Driver == nil {
		return nil, ErrNilDriver
	}
	if opts.Codec == nil {
		return nil, ErrNilCodec
	}

	c := &cache[V]{
		prefix:     opts.Prefix,
		driver:     opts.Driver,
		codec:      opts.Codec,
		defaultTTL: opts.DefaultTTL,
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{}).With(Fields{"prefix": opts.Prefix})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})

	return c, nil
}

func (c *cache[V]) Prefix() string            { return c.prefix }
func (c *cache[V]) DefaultTTL() time.Duration { return c.defaultTTL }

func (c *cache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	raw, ok, err := c.driver.Get(ctx, c.physical(key))
	if err != nil {
		c.hooks.DriverError("get", err)
		return zero, false, err
	}
	if !ok {
		return zero, false, nil
	}
	v, err := c.decode(key, raw)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func (c *cache[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) (bool, error) {
	raw, err := c.codec.Encode(value)
	if err != nil {
		return false, &CodecError{Op: "encode", Key: key, Err: err}
	}
	pk := c.physical(key)
	ok, err := c.driver.Set(ctx, pk, raw, c.ttl(ttl))
	if err != nil {
		c.hooks.DriverError("set", err)
		return ok, err
	}
	if !ok {
		c.log.Debug("Set rejected by driver", Fields{"key": key})
		c.hooks.DriverSetRejected(pk, false)
	}
	return ok, nil
}

func (c *cache[V]) Delete(ctx context.Context, key string) error {
	err := c.driver.Del(ctx, c.physical(key))
	if err != nil {
		c.hooks.DriverError("delete", err)
	}
	return err
}

// GetMulti keys the result by logical key. A position whose physical key the
// driver did not return, or whose value does not decode, is omitted; the
// undecodable entry is deleted.
func (c *cache[V]) GetMulti(ctx context.Context, keys []string) (map[string]V, error) {
	out := make(map[string]V, len(keys))
	err := c.getMulti(ctx, keys, func(i int, v V) { out[keys[i]] = v })
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetMultiIndexed is GetMulti keyed by input position, so duplicate keys
// each get their own entry.
func (c *cache[V]) GetMultiIndexed(ctx context.Context, keys []string) (map[int]V, error) {
	out := make(map[int]V, len(keys))
	err := c.getMulti(ctx, keys, func(i int, v V) { out[i] = v })
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *cache[V]) getMulti(ctx context.Context, keys []string, put func(i int, v V)) error {
	if len(keys) == 0 {
		return nil
	}
	physical := make([]string, len(keys))
	for i, k := range keys {
		physical[i] = c.physical(k)
	}

	found, err := c.driver.GetMulti(ctx, physical)
	if err != nil {
		c.hooks.DriverError("get_multi", err)
		return err
	}

	hits := 0
	decoded := make(map[string]V, len(found))
	corrupt := make(map[string]bool)
	for i, pk := range physical {
		raw, ok := found[pk]
		if !ok || corrupt[pk] {
			continue
		}
		v, seen := decoded[pk]
		if !seen {
			if v, err = c.decode(keys[i], raw); err != nil {
				// one bad entry is a miss, not a failed batch
				corrupt[pk] = true
				_ = c.driver.Del(ctx, pk)
				c.hooks.SelfHeal(pk, "value_decode")
				continue
			}
			decoded[pk] = v
		}
		put(i, v)
		hits++
	}
	if hits < len(keys) {
		c.hooks.PartialMulti(c.prefix, len(keys), hits)
	}
	return nil
}

// SetMulti returns the driver's aggregate result as-is. An empty batch is a
// successful no-op.
func (c *cache[V]) SetMulti(ctx context.Context, items map[string]V, ttl time.Duration) (bool, error) {
	if len(items) == 0 {
		return true, nil
	}
	physical := make(map[string][]byte, len(items))
	for k, v := range items {
		raw, err := c.codec.Encode(v)
		if err != nil {
			return false, &CodecError{Op: "encode", Key: k, Err: err}
		}
		physical[c.physical(k)] = raw
	}

	ok, err := c.driver.SetMulti(ctx, physical, c.ttl(ttl))
	if err != nil {
		c.hooks.DriverError("set_multi", err)
		return ok, err
	}
	if !ok {
		c.log.Debug("SetMulti partially rejected by driver", Fields{"count": len(items)})
		c.hooks.DriverSetRejected(c.prefix, true)
	}
	return ok, nil
}

// DeleteMulti returns the driver's result as-is. An empty batch is a
// successful no-op.
func (c *cache[V]) DeleteMulti(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	physical := make([]string, len(keys))
	for i, k := range keys {
		physical[i] = c.physical(k)
	}
	err := c.driver.DelMulti(ctx, physical)
	if err != nil {
		c.hooks.DriverError("delete_multi", err)
	}
	return err
}

func (c *cache[V]) physical(key string) string {
	return c.prefix + key
}

// ttl resolves the caller's TTL: 0 means the facade default.
func (c *cache[V]) ttl(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return c.defaultTTL
	}
	return ttl
}

func (c *cache[V]) decode(key string, raw []byte) (V, error) {
	v, err := c.codec.Decode(raw)
	if err != nil {
		c.log.Warn("value decode failed", Fields{"key": key, "err": err})
		return v, &CodecError{Op: "decode", Key: key, Err: err}
	}
	return v, nil
}
