// Package memcached is the networked memcached driver, backed by
// bradfitz/gomemcache.
package memcached

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	pr "github.com/unkn0wn-root/omnicache/provider"
)

// memcached treats expirations above this as absolute Unix timestamps.
const relativeLimit = 30 * 24 * time.Hour

var ErrNoServers = errors.New("memcached provider: no servers")

type Memcached struct {
	c   *memcache.Client
	now func() time.Time
}

var _ pr.Driver = (*Memcached)(nil)

type Config struct {
	Servers      []string      `mapstructure:"servers"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
}

func New(cfg Config) (*Memcached, error) {
	if len(cfg.Servers) == 0 {
		return nil, ErrNoServers
	}
	c := memcache.New(cfg.Servers...)
	if cfg.Timeout > 0 {
		c.Timeout = cfg.Timeout
	}
	if cfg.MaxIdleConns > 0 {
		c.MaxIdleConns = cfg.MaxIdleConns
	}
	return &Memcached{c: c, now: time.Now}, nil
}

func (m *Memcached) Get(_ context.Context, key string) ([]byte, bool, error) {
	it, err := m.c.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return it.Value, true, nil
}

// Set stores value. ttl<=0 means no expiry; sub-second TTLs round up to one
// second; TTLs beyond 30 days are sent as an absolute deadline.
func (m *Memcached) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if err := m.c.Set(&memcache.Item{Key: key, Value: value, Expiration: m.expiration(ttl)}); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Memcached) Del(_ context.Context, key string) error {
	err := m.c.Delete(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil
	}
	return err
}

func (m *Memcached) GetMulti(_ context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	items, err := m.c.GetMulti(keys)
	if err != nil {
		return nil, err
	}
	for k, it := range items {
		out[k] = it.Value
	}
	return out, nil
}

func (m *Memcached) SetMulti(ctx context.Context, items map[string][]byte, ttl time.Duration) (bool, error) {
	return pr.SetEach(ctx, m, items, ttl)
}

func (m *Memcached) DelMulti(ctx context.Context, keys []string) error {
	return pr.DelEach(ctx, m, keys)
}

// Close is a no-op: gomemcache keeps only idle pooled connections, which are
// released with the client.
func (m *Memcached) Close(context.Context) error { return nil }

func (m *Memcached) expiration(ttl time.Duration) int32 {
	switch {
	case ttl <= 0:
		return 0
	case ttl > relativeLimit:
		// the protocol field is 32-bit; deadlines past 2038 saturate
		at := m.now().Add(ttl).Unix()
		if at > math.MaxInt32 {
			return math.MaxInt32
		}
		return int32(at)
	case ttl < time.Second:
		return 1
	default:
		return int32(ttl / time.Second)
	}
}
