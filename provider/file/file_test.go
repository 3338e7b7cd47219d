package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := New(Config{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestNewRequiresDir(t *testing.T) {
	if _, err := New(Config{}); err != ErrNoDir {
		t.Fatalf("err=%v want ErrNoDir", err)
	}
}

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	if _, ok, err := p.Get(ctx, "app:x"); ok || err != nil {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
	if ok, err := p.Set(ctx, "app:x", []byte("v1"), 0); err != nil || !ok {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	if ok, err := p.Set(ctx, "app:x", []byte("v2"), 0); err != nil || !ok {
		t.Fatalf("overwrite: ok=%v err=%v", ok, err)
	}
	got, ok, err := p.Get(ctx, "app:x")
	if err != nil || !ok || string(got) != "v2" {
		t.Fatalf("Get: got=%q ok=%v err=%v", got, ok, err)
	}
	if err := p.Del(ctx, "app:x"); err != nil {
		t.Fatal(err)
	}
	if err := p.Del(ctx, "app:x"); err != nil {
		t.Fatalf("Del must be idempotent: %v", err)
	}
}

func TestExpiredIsMissUntilSwept(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)
	now := time.Unix(1_700_000_000, 0)
	p.now = func() time.Time { return now }

	_, _ = p.Set(ctx, "short", []byte("s"), time.Minute)
	_, _ = p.Set(ctx, "other", []byte("o"), time.Minute)
	_, _ = p.Set(ctx, "forever", []byte("f"), 0)

	now = now.Add(2 * time.Minute)

	if _, ok, _ := p.Get(ctx, "short"); ok {
		t.Fatalf("short should be expired")
	}
	if _, err := os.Stat(p.path("short")); err != nil {
		t.Fatalf("Get must not remove files, stat err=%v", err)
	}

	n, err := p.Sweep(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("Sweep removed %d, want 2 (short, other)", n)
	}
	if _, err := os.Stat(p.path("short")); !os.IsNotExist(err) {
		t.Fatalf("expired file should be swept, stat err=%v", err)
	}
	if v, ok, _ := p.Get(ctx, "forever"); !ok || string(v) != "f" {
		t.Fatalf("forever lost: %q ok=%v", v, ok)
	}
}

func TestCorruptFileIsMissAndSwept(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	fn := p.path("k")
	if err := os.MkdirAll(filepath.Dir(fn), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fn, []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := p.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
	if n, err := p.Sweep(ctx); err != nil || n != 1 {
		t.Fatalf("Sweep: n=%d err=%v", n, err)
	}
	if _, err := os.Stat(fn); !os.IsNotExist(err) {
		t.Fatalf("corrupt file should be swept")
	}
}

func TestSweepLeavesForeignFiles(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	hash := strings.Repeat("ab", 32)
	foreign := []string{
		"notes.txt",
		filepath.Join("ab", "notes.txt"),
		filepath.Join("zz", hash),
		filepath.Join("cd", hash), // right shape, wrong fan-out dir
		filepath.Join("nested", "ab", hash),
		filepath.Join("AB", strings.ToUpper(hash)),
	}
	for _, rel := range foreign {
		fn := filepath.Join(p.dir, rel)
		if err := os.MkdirAll(filepath.Dir(fn), 0o700); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(fn, []byte("not an entry"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	n, err := p.Sweep(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("Sweep removed %d foreign files", n)
	}
	for _, rel := range foreign {
		if _, err := os.Stat(filepath.Join(p.dir, rel)); err != nil {
			t.Fatalf("%s: %v", rel, err)
		}
	}
}

func TestSweepDoesNotRemoveFreshWrite(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)
	now := time.Unix(1_700_000_000, 0)
	p.now = func() time.Time { return now }
	_, _ = p.Set(ctx, "k", []byte("old"), time.Minute)
	later := now.Add(2 * time.Minute)
	p.now = func() time.Time { return later }

	for i := 0; i < 50; i++ {
		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = p.Sweep(ctx)
		}()
		if ok, err := p.Set(ctx, "k", []byte("new"), 0); err != nil || !ok {
			t.Fatalf("Set: ok=%v err=%v", ok, err)
		}
		<-done
		if v, ok, _ := p.Get(ctx, "k"); !ok || string(v) != "new" {
			t.Fatalf("iteration %d: fresh write lost: %q ok=%v", i, v, ok)
		}
		// expire it again for the next round
		p.now = func() time.Time { return now }
		_, _ = p.Set(ctx, "k", []byte("old"), time.Minute)
		p.now = func() time.Time { return later }
	}
}

func TestMulti(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	ok, err := p.SetMulti(ctx, map[string][]byte{"a": []byte("1"), "b": []byte("2")}, 0)
	if err != nil || !ok {
		t.Fatalf("SetMulti: ok=%v err=%v", ok, err)
	}
	got, err := p.GetMulti(ctx, []string{"a", "missing", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || string(got["a"]) != "1" || string(got["b"]) != "2" {
		t.Fatalf("got=%v", got)
	}
	if err := p.DelMulti(ctx, []string{"a", "b", "missing"}); err != nil {
		t.Fatal(err)
	}
	got, _ = p.GetMulti(ctx, []string{"a", "b"})
	if len(got) != 0 {
		t.Fatalf("after DelMulti got=%v", got)
	}
}
