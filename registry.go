package omnicache

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/unkn0wn-root/omnicache/internal/settings"
	"github.com/unkn0wn-root/omnicache/internal/util"
	pr "github.com/unkn0wn-root/omnicache/provider"
	"github.com/unkn0wn-root/omnicache/provider/bigcache"
	"github.com/unkn0wn-root/omnicache/provider/file"
	"github.com/unkn0wn-root/omnicache/provider/lru"
	"github.com/unkn0wn-root/omnicache/provider/memcached"
	"github.com/unkn0wn-root/omnicache/provider/redis"
	"github.com/unkn0wn-root/omnicache/provider/ristretto"
)

// DriverType selects a backend.
type DriverType string

const (
	// TypeMemory is ristretto. The registry turns on sync_writes by default
	// so a Set is visible to the next Get; pass sync_writes: false to trade
	// that for write throughput.
	TypeMemory    DriverType = "memory"
	TypeLRU       DriverType = "lru"
	TypeBigCache  DriverType = "bigcache"
	TypeFile      DriverType = "file"
	TypeRedis     DriverType = "redis"
	TypeMemcached DriverType = "memcached"
)

// DefaultType is used for empty or unknown selectors. Falling back is a
// policy, not an error: Resolve logs a warning and fires Hooks.DriverFallback.
const DefaultType = TypeMemcached

// Factory builds a driver from an opaque settings map. ctx is detached from
// the caller's cancellation; drivers may tie background work to it.
type Factory func(ctx context.Context, settings map[string]any) (pr.Driver, error)

type RegistryOptions struct {
	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // if nil, NopHooks is used
	// Factories replace or extend the built-in set, keyed by type.
	Factories map[DriverType]Factory
}

// Registry hands out one shared driver per (type, settings). The registry
// owner closes it, and with it every driver, at shutdown.
type Registry struct {
	log       Logger
	hooks     Hooks
	factories map[DriverType]Factory

	group   singleflight.Group
	mu      sync.Mutex
	drivers map[string]pr.Driver
	closed  bool
}

func NewRegistry(opts RegistryOptions) *Registry {
	r := &Registry{
		log:       coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:     coalesce[Hooks](opts.Hooks, NopHooks{}),
		factories: builtinFactories(),
		drivers:   make(map[string]pr.Driver),
	}
	for t, f := range opts.Factories {
		if f != nil {
			r.factories[t] = f
		}
	}
	return r
}

// Resolve returns the driver for (typ, m), constructing it on first use.
// Concurrent first calls for the same pair share one construction. A failed
// construction is not remembered; the next call retries.
func (r *Registry) Resolve(ctx context.Context, typ DriverType, m map[string]any) (pr.Driver, error) {
	typ = r.selectType(typ)
	key, err := util.RegistryKey(string(typ), m)
	if err != nil {
		return nil, &DriverError{Type: typ, Err: err}
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRegistryClosed
	}
	if d, ok := r.drivers[key]; ok {
		r.mu.Unlock()
		return d, nil
	}
	r.mu.Unlock()

	v, err, _ := r.group.Do(key, func() (any, error) {
		// a previous flight may have finished between the lookup and Do
		r.mu.Lock()
		if d, ok := r.drivers[key]; ok {
			r.mu.Unlock()
			return d, nil
		}
		r.mu.Unlock()

		bctx := context.WithoutCancel(ctx)
		d, err := r.factories[typ](bctx, m)
		if err != nil {
			r.log.Error("driver construction failed", Fields{"type": string(typ), "err": err})
			return nil, &DriverError{Type: typ, Err: err}
		}

		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			_ = d.Close(bctx)
			return nil, ErrRegistryClosed
		}
		r.drivers[key] = d
		r.mu.Unlock()

		r.log.Info("driver resolved", Fields{"type": string(typ), "key": key})
		r.hooks.DriverResolved(string(typ), key)
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(pr.Driver), nil
}

// Len reports the number of live driver handles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.drivers)
}

// Close closes every driver once. Later Resolve calls fail with
// ErrRegistryClosed.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	drivers := r.drivers
	r.drivers = make(map[string]pr.Driver)
	r.mu.Unlock()

	var errs []error
	for key, d := range drivers {
		if err := d.Close(ctx); err != nil {
			r.log.Warn("driver close failed", Fields{"key": key, "err": err})
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) selectType(typ DriverType) DriverType {
	if _, ok := r.factories[typ]; ok {
		return typ
	}
	r.log.Warn("unknown driver type; using default", Fields{"requested": string(typ), "default": string(DefaultType)})
	r.hooks.DriverFallback(string(typ), string(DefaultType))
	return DefaultType
}

func builtinFactories() map[DriverType]Factory {
	mem := ristretto.DefaultConfig()
	mem.SyncWrites = true

	return map[DriverType]Factory{
		TypeMemory: build(mem, func(_ context.Context, cfg ristretto.Config) (*ristretto.Provider, error) {
			return ristretto.New(cfg)
		}),
		TypeLRU: build(lru.Config{}, func(_ context.Context, cfg lru.Config) (*lru.Provider, error) {
			return lru.New(cfg)
		}),
		TypeBigCache: build(bigcache.DefaultConfig(), bigcache.New),
		TypeFile: build(file.Config{}, func(_ context.Context, cfg file.Config) (*file.Provider, error) {
			return file.New(cfg)
		}),
		TypeRedis: build(redis.Config{}, func(_ context.Context, cfg redis.Config) (*redis.Redis, error) {
			if len(cfg.Addrs) == 0 {
				cfg.Addrs = []string{"localhost:6379"}
			}
			return redis.New(cfg)
		}),
		TypeMemcached: build(memcached.Config{}, func(_ context.Context, cfg memcached.Config) (*memcached.Memcached, error) {
			if len(cfg.Servers) == 0 {
				cfg.Servers = []string{"localhost:11211"}
			}
			return memcached.New(cfg)
		}),
	}
}

// build adapts a typed constructor into a Factory: defaults are overlaid with
// the settings map, then passed to ctor.
func build[C any, D pr.Driver](defaults C, ctor func(context.Context, C) (D, error)) Factory {
	return func(ctx context.Context, m map[string]any) (pr.Driver, error) {
		cfg := defaults
		if err := settings.Decode(m, &cfg); err != nil {
			return nil, err
		}
		d, err := ctor(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}
