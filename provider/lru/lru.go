// Package lru is a size-bounded in-process driver backed by
// hashicorp/golang-lru. Unlike ristretto it admits every write, and it keeps
// a per-entry deadline so TTLs are honoured individually.
package lru

import (
	"context"
	"errors"
	"time"

	hl "github.com/hashicorp/golang-lru/v2"

	pr "github.com/unkn0wn-root/omnicache/provider"
)

type entry struct {
	v   []byte
	exp time.Time // zero => no expiry
}

type Provider struct {
	c   *hl.Cache[string, entry]
	now func() time.Time
}

var _ pr.Driver = (*Provider)(nil)

type Config struct {
	Size int `mapstructure:"size"` // max entries; 0 => 10000
}

func New(cfg Config) (*Provider, error) {
	if cfg.Size < 0 {
		return nil, errors.New("lru: negative size")
	}
	if cfg.Size == 0 {
		cfg.Size = 10_000
	}
	c, err := hl.New[string, entry](cfg.Size)
	if err != nil {
		return nil, err
	}
	return &Provider{c: c, now: time.Now}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !e.exp.IsZero() && !p.now().Before(e.exp) {
		p.c.Remove(key)
		return nil, false, nil
	}
	return e.v, true, nil
}

// Set stores value; ttl<=0 means no expiry.
func (p *Provider) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	var exp time.Time
	if ttl > 0 {
		exp = p.now().Add(ttl)
	}
	p.c.Add(key, entry{v: value, exp: exp})
	return true, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.c.Remove(key)
	return nil
}

func (p *Provider) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	return pr.GetEach(ctx, p, keys)
}

func (p *Provider) SetMulti(ctx context.Context, items map[string][]byte, ttl time.Duration) (bool, error) {
	return pr.SetEach(ctx, p, items, ttl)
}

func (p *Provider) DelMulti(ctx context.Context, keys []string) error {
	return pr.DelEach(ctx, p, keys)
}

func (p *Provider) Len() int { return p.c.Len() }

func (p *Provider) Close(_ context.Context) error {
	p.c.Purge()
	return nil
}
