package omnicache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/omnicache/codec"
	"github.com/unkn0wn-root/omnicache/config"
	pr "github.com/unkn0wn-root/omnicache/provider"
)

// Cache is the namespaced facade over one driver.
// Keys are logical; the facade prepends its prefix before every driver call.
// Driver errors are returned unchanged.
type Cache[V any] interface {
	// Single
	Get(ctx context.Context, key string) (v V, ok bool, err error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) (ok bool, err error)
	Delete(ctx context.Context, key string) error

	// Multi (non-transactional)
	GetMulti(ctx context.Context, keys []string) (map[string]V, error)
	GetMultiIndexed(ctx context.Context, keys []string) (map[int]V, error)
	SetMulti(ctx context.Context, items map[string]V, ttl time.Duration) (ok bool, err error)
	DeleteMulti(ctx context.Context, keys []string) error

	Prefix() string
	DefaultTTL() time.Duration
}

// Options configure a facade. Driver and Codec are required.
type Options[V any] struct {
	Prefix     string // physical key = Prefix + key; "" is allowed
	Driver     pr.Driver
	Codec      c.Codec[V]
	DefaultTTL time.Duration // used when Set/SetMulti get ttl=0; 0 => driver semantics

	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // if nil, NopHooks is used
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}

// Source names a driver and where its settings come from. When both
// ConfigPath and ConfigKey are set, the settings are loaded from the file
// and Settings is ignored.
type Source struct {
	Type       DriverType
	ConfigPath string
	ConfigKey  string
	Settings   map[string]any
}

// Open resolves src through reg and builds a facade on the shared driver.
// opts.Driver is overwritten.
func Open[V any](ctx context.Context, reg *Registry, src Source, opts Options[V]) (Cache[V], error) {
	if reg == nil {
		return nil, ErrNilRegistry
	}
	settings := src.Settings
	if src.ConfigPath != "" && src.ConfigKey != "" {
		m, err := config.Load(src.ConfigPath, src.ConfigKey)
		if err != nil {
			return nil, &ConfigError{Path: src.ConfigPath, Key: src.ConfigKey, Err: err}
		}
		settings = m
	}
	d, err := reg.Resolve(ctx, src.Type, settings)
	if err != nil {
		return nil, err
	}
	opts.Driver = d
	return New[V](opts)
}
