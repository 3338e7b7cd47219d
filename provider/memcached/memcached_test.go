package memcached

import (
	"context"
	"math"
	"net"
	"testing"
	"time"
)

func TestExpiration(t *testing.T) {
	m, err := New(Config{Servers: []string{"localhost:11211"}})
	if err != nil {
		t.Fatal(err)
	}
	now := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return now }

	tests := []struct {
		name string
		ttl  time.Duration
		want int32
	}{
		{"zero is no expiry", 0, 0},
		{"negative is no expiry", -time.Second, 0},
		{"sub-second rounds up", 10 * time.Millisecond, 1},
		{"seconds", 90 * time.Second, 90},
		{"30 days stays relative", relativeLimit, int32(relativeLimit / time.Second)},
		{"beyond 30 days is absolute", 31 * 24 * time.Hour, int32(now.Add(31 * 24 * time.Hour).Unix())},
		{"past 2038 saturates", 20 * 365 * 24 * time.Hour, math.MaxInt32},
		{"max duration saturates", time.Duration(math.MaxInt64), math.MaxInt32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.expiration(tt.ttl); got != tt.want {
				t.Fatalf("expiration(%v)=%d want %d", tt.ttl, got, tt.want)
			}
		})
	}
}

func TestNewRequiresServers(t *testing.T) {
	if _, err := New(Config{}); err != ErrNoServers {
		t.Fatalf("err=%v want ErrNoServers", err)
	}
}

func TestMemcachedProvider(t *testing.T) {
	conn, err := net.DialTimeout("tcp", "localhost:11211", 100*time.Millisecond)
	if err != nil {
		t.Skipf("memcached not available: %v", err)
	}
	conn.Close()

	ctx := context.Background()
	m, err := New(Config{Servers: []string{"localhost:11211"}, Timeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = m.DelMulti(ctx, []string{"omni:t:a", "omni:t:b"}) })

	if ok, err := m.Set(ctx, "omni:t:a", []byte("1"), time.Minute); err != nil || !ok {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	got, err := m.GetMulti(ctx, []string{"omni:t:a", "omni:t:b"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || string(got["omni:t:a"]) != "1" {
		t.Fatalf("GetMulti got=%v", got)
	}
	if err := m.Del(ctx, "omni:t:b"); err != nil {
		t.Fatalf("Del of absent key must be nil: %v", err)
	}
}
