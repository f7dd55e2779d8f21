package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nadlan-invest/portal/internal/core/domain"
)

type memoryActivityRepo struct {
	mu      sync.Mutex
	entries []domain.Activity
}

func (r *memoryActivityRepo) Record(_ context.Context, a domain.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, a)
	return nil
}

func (r *memoryActivityRepo) ListByUser(_ context.Context, userID string, _ int) ([]domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Activity
	for _, a := range r.entries {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func TestDispatcher_PreservesPerUserOrder(t *testing.T) {
	repo := &memoryActivityRepo{}
	d := NewDispatcher(3, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	for i := 0; i < 50; i++ {
		d.Enqueue(domain.Activity{UserID: "u-1", Kind: domain.ActivitySignedIn, Detail: string(rune('a' + i%26)), At: time.Unix(int64(i), 0)})
		d.Enqueue(domain.Activity{UserID: "u-2", Kind: domain.ActivitySignedIn, At: time.Unix(int64(i), 0)})
	}

	cancel()
	d.Wait()

	got, _ := repo.ListByUser(context.Background(), "u-1", 0)
	if len(got) != 50 {
		t.Fatalf("expected 50 entries for u-1, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].At.Before(got[i-1].At) {
			t.Fatalf("entries out of order at %d", i)
		}
	}
	if other, _ := repo.ListByUser(context.Background(), "u-2", 0); len(other) != 50 {
		t.Fatalf("expected 50 entries for u-2, got %d", len(other))
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(0, &memoryActivityRepo{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
	if d.shardIndex("u-42") != d.shardIndex("u-42") {
		t.Fatalf("shard index not deterministic")
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	d := NewDispatcher(1, &memoryActivityRepo{}, zerolog.Nop())

	// Not started: nothing consumes, so the queue fills up.
	for i := 0; i < channelBuffer+10; i++ {
		d.Enqueue(domain.Activity{UserID: "u-1"})
	}
	if got := len(d.workers[0]); got != channelBuffer {
		t.Fatalf("expected full queue of %d, got %d", channelBuffer, got)
	}
}
