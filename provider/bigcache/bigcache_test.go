package bigcache

import (
	"context"
	"testing"
	"time"
)

func TestSetGetDelIgnoresTTL(t *testing.T) {
	ctx := context.Background()
	p, err := New(ctx, Config{LifeWindow: time.Minute, Shards: 8})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = p.Close(ctx) })

	// a per-entry TTL shorter than the sleep below must not evict
	if ok, err := p.Set(ctx, "k", []byte("v"), time.Millisecond); err != nil || !ok {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	time.Sleep(10 * time.Millisecond)
	got, ok, err := p.Get(ctx, "k")
	if err != nil || !ok || string(got) != "v" {
		t.Fatalf("Get: got=%q ok=%v err=%v", got, ok, err)
	}

	if err := p.Del(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if err := p.Del(ctx, "k"); err != nil {
		t.Fatalf("Del of absent key must be nil, got %v", err)
	}
	if _, ok, err := p.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
}

func TestMultiOmitsMisses(t *testing.T) {
	ctx := context.Background()
	p, err := New(ctx, Config{Shards: 8})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = p.Close(ctx) })

	if ok, err := p.SetMulti(ctx, map[string][]byte{"a": []byte("1")}, 0); err != nil || !ok {
		t.Fatalf("SetMulti: ok=%v err=%v", ok, err)
	}
	got, err := p.GetMulti(ctx, []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || string(got["a"]) != "1" {
		t.Fatalf("got=%v", got)
	}
	if p.Len() != 1 {
		t.Fatalf("Len=%d want 1", p.Len())
	}
}
