package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/omnicache/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
	cluster     bool
}

var _ pr.Driver = (*Redis)(nil)

type Config struct {
	// Client, when set, is used as-is and the connection settings below are ignored.
	Client      goredis.UniversalClient `mapstructure:"-"`
	CloseClient bool                    `mapstructure:"-"` // set true only if this provider exclusively owns the client

	Addrs        []string      `mapstructure:"addrs"`
	MasterName   string        `mapstructure:"master_name"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// New wraps cfg.Client, or dials a new UniversalClient from the connection
// settings (single node, sentinel or cluster, chosen by go-redis from Addrs
// and MasterName). A dialed client is owned and closed by the provider.
// Connections are established lazily by go-redis.
func New(cfg Config) (*Redis, error) {
	if cfg.Client != nil {
		return wrap(cfg.Client, cfg.CloseClient), nil
	}
	if len(cfg.Addrs) == 0 {
		return nil, ErrNilClient
	}
	rdb := goredis.NewUniversalClient(&goredis.UniversalOptions{
		Addrs:        cfg.Addrs,
		MasterName:   cfg.MasterName,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	return wrap(rdb, true), nil
}

func wrap(rdb goredis.UniversalClient, owned bool) *Redis {
	_, cluster := rdb.(*goredis.ClusterClient)
	return &Redis{rdb: rdb, closeClient: owned, cluster: cluster}
}

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := p.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

// Set stores value; ttl<=0 is sent as "no expiry".
func (p *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = 0
	}

	err := p.rdb.Set(ctx, key, value, ttl).Err()
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Redis) Del(ctx context.Context, key string) error {
	return p.rdb.Del(ctx, key).Err()
}

// GetMulti uses MGET on single-node/sentinel clients and pipelined GETs on
// cluster clients, where keys may hash to different slots.
func (p *Redis) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	if p.cluster {
		cmds := make([]*goredis.StringCmd, len(keys))
		_, err := p.rdb.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
			for i, k := range keys {
				cmds[i] = pipe.Get(ctx, k)
			}
			return nil
		})
		if err != nil && err != goredis.Nil {
			return nil, err
		}
		for i, cmd := range cmds {
			b, err := cmd.Bytes()
			if err == goredis.Nil {
				continue
			}
			if err != nil {
				return nil, err
			}
			out[keys[i]] = b
		}
		return out, nil
	}

	vals, err := p.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		switch vv := v.(type) {
		case nil:
			// miss
		case string:
			out[keys[i]] = []byte(vv)
		case []byte:
			out[keys[i]] = vv
		}
	}
	return out, nil
}

// SetMulti pipelines one SET per item; ttl<=0 means no expiry. Not
// transactional: a failure mid-pipeline leaves earlier items written.
func (p *Redis) SetMulti(ctx context.Context, items map[string][]byte, ttl time.Duration) (bool, error) {
	if len(items) == 0 {
		return true, nil
	}
	if ttl <= 0 {
		ttl = 0
	}
	cmds, err := p.rdb.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		for k, v := range items {
			pipe.Set(ctx, k, v, ttl)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	for _, c := range cmds {
		if c.Err() != nil {
			return false, c.Err()
		}
	}
	return true, nil
}

func (p *Redis) DelMulti(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if !p.cluster {
		return p.rdb.Del(ctx, keys...).Err()
	}
	_, err := p.rdb.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, k := range keys {
			pipe.Del(ctx, k)
		}
		return nil
	})
	return err
}

// Close releases the underlying redis client only when this provider owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
