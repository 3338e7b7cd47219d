// Package omnicache puts in-process, file-based and networked key-value
// stores behind one namespaced cache API, so the backend can be swapped by
// configuration alone.
//
// Components:
//   - provider.Driver: byte store over physical keys (ristretto, lru,
//     bigcache, file, redis, memcached).
//   - Registry: resolves (driver type, settings) to one shared driver handle.
//   - Cache[V]: the facade. Owns a fixed key prefix, a driver and a default
//     TTL; encodes values through a codec.Codec[V].
//
// Keys:
//
//	physical = prefix + logical
//
// TTL: a zero TTL passed to Set/SetMulti means "use the facade default". If
// that default is also zero the driver decides (most treat it as no expiry;
// bigcache applies its global life window).
//
// Batches are not transactional. GetMulti returns only the keys that were
// found; misses are omitted, never reported as zero values.
//
// Usage:
//
//	reg := omnicache.NewRegistry(omnicache.RegistryOptions{})
//	defer reg.Close(ctx)
//
//	users, err := omnicache.Open[User](ctx, reg, omnicache.Source{
//	    Type:       omnicache.TypeRedis,
//	    ConfigPath: "/etc/app/cache.yaml",
//	    ConfigKey:  "cache.users",
//	}, omnicache.Options[User]{
//	    Prefix:     "app:user:",
//	    Codec:      codec.JSON[User]{},
//	    DefaultTTL: 10 * time.Minute,
//	})
package omnicache
