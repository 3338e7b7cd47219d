// Package file is a filesystem driver. Each key is stored in its own file
// under Config.Dir, named by the SHA-256 of the key and fanned out over 256
// subdirectories:
//
//	<dir>/<first 2 hex>/<64 hex>
//
// Files carry their own deadline (internal/wire framing). An expired or
// unreadable file reads as a miss and stays on disk until Sweep removes it.
// Sweep only touches files matching the layout above, so Dir may be shared.
package file

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/unkn0wn-root/omnicache/internal/wire"
	pr "github.com/unkn0wn-root/omnicache/provider"
)

var ErrNoDir = errors.New("file provider: dir is required")

type Provider struct {
	dir  string
	perm fs.FileMode
	now  func() time.Time

	// per fan-out directory; orders Set's rename against Sweep's
	// read-check-remove
	locks [256]sync.Mutex
}

var _ pr.Driver = (*Provider)(nil)

type Config struct {
	Dir string `mapstructure:"dir"`
	// Perm applies to created files; directories get Perm|0o700. 0 => 0o600.
	Perm uint32 `mapstructure:"perm"`
}

func New(cfg Config) (*Provider, error) {
	if cfg.Dir == "" {
		return nil, ErrNoDir
	}
	perm := fs.FileMode(cfg.Perm)
	if perm == 0 {
		perm = 0o600
	}
	if err := os.MkdirAll(cfg.Dir, perm|0o700); err != nil {
		return nil, err
	}
	return &Provider{dir: cfg.Dir, perm: perm, now: time.Now}, nil
}

func (p *Provider) path(key string) string {
	fn, _ := p.locate(key)
	return fn
}

func (p *Provider) locate(key string) (string, byte) {
	sum := sha256.Sum256([]byte(key))
	h := hex.EncodeToString(sum[:])
	return filepath.Join(p.dir, h[:2], h), sum[0]
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	fn := p.path(key)
	raw, err := os.ReadFile(fn)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	e, err := wire.DecodeEntry(raw)
	if err != nil || e.Key != key || e.Expired(p.now()) {
		return nil, false, nil
	}
	return e.Payload, true, nil
}

// Set writes value atomically (temp file + rename); ttl<=0 means no expiry.
func (p *Provider) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	e := wire.Entry{Key: key, Payload: value}
	if ttl > 0 {
		e.ExpiresAt = p.now().Add(ttl)
	}
	raw, err := wire.EncodeEntry(e)
	if err != nil {
		return false, err
	}

	fn, shard := p.locate(key)
	dir := filepath.Dir(fn)
	if err := os.MkdirAll(dir, p.perm|0o700); err != nil {
		return false, err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return false, err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return false, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return false, err
	}
	if err := os.Chmod(tmpName, p.perm); err != nil {
		os.Remove(tmpName)
		return false, err
	}
	p.locks[shard].Lock()
	err = os.Rename(tmpName, fn)
	p.locks[shard].Unlock()
	if err != nil {
		os.Remove(tmpName)
		return false, err
	}
	return true, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	err := os.Remove(p.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
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

// Sweep removes expired or undecodable entries and reports how many files
// were deleted. Only <dir>/<hh>/<64 hex> files whose name starts with hh
// are considered; anything else under Dir is left alone.
func (p *Provider) Sweep(ctx context.Context) (int, error) {
	now := p.now()
	shards, err := os.ReadDir(p.dir)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, sd := range shards {
		if !sd.IsDir() || !isHex(sd.Name(), 2) {
			continue
		}
		sub := filepath.Join(p.dir, sd.Name())
		files, err := os.ReadDir(sub)
		if err != nil {
			continue
		}
		for _, f := range files {
			if err := ctx.Err(); err != nil {
				return removed, err
			}
			name := f.Name()
			if !f.Type().IsRegular() || !isHex(name, 2*sha256.Size) || name[:2] != sd.Name() {
				continue
			}
			b, _ := hex.DecodeString(name[:2])
			if p.sweepOne(filepath.Join(sub, name), b[0], now) {
				removed++
			}
		}
	}
	return removed, nil
}

func (p *Provider) sweepOne(fn string, shard byte, now time.Time) bool {
	p.locks[shard].Lock()
	defer p.locks[shard].Unlock()

	raw, err := os.ReadFile(fn)
	if err != nil {
		return false
	}
	if e, err := wire.DecodeEntry(raw); err == nil && !e.Expired(now) {
		return false
	}
	return os.Remove(fn) == nil
}

// isHex reports whether s is n lowercase hex digits, as hex.EncodeToString
// produces.
func isHex(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Close is a no-op; files outlive the process.
func (p *Provider) Close(context.Context) error { return nil }
