package bigcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/unkn0wn-root/orchid/codec"
)

type point struct {
	X, Y int
}

func TestRoundTripThroughMsgpack(t *testing.T) {
	ctx := context.Background()
	p, err := New[point](Config{LifeWindow: time.Minute, Shards: 16, MaxEntriesInWindow: 1024}, codec.Msgpack[point]{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = p.Close(ctx) })

	if _, ok, err := p.Get(ctx, "p"); ok || err != nil {
		t.Fatalf("expected clean miss, ok=%v err=%v", ok, err)
	}
	if ok, err := p.Set(ctx, "p", point{X: 1, Y: 2}); !ok || err != nil {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	got, ok, err := p.Get(ctx, "p")
	if err != nil || !ok || got != (point{X: 1, Y: 2}) {
		t.Fatalf("Get = %+v,%v,%v", got, ok, err)
	}
	if p.Len() != 1 {
		t.Fatalf("Len = %d", p.Len())
	}
}

func TestEncodeFailureIsReported(t *testing.T) {
	ctx := context.Background()
	limited := codec.Limit[string]{Inner: codec.String{}, Max: 3}
	p, err := New[string](Config{Shards: 16, MaxEntriesInWindow: 1024}, limited)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = p.Close(ctx) })

	ok, err := p.Set(ctx, "k", "too long")
	if ok || !errors.Is(err, codec.ErrTooLarge) {
		t.Fatalf("Set = %v,%v; want false, ErrTooLarge", ok, err)
	}
}

func TestCodecRequired(t *testing.T) {
	if _, err := New[int](Config{}, nil); err == nil {
		t.Fatalf("expected error without codec")
	}
}
