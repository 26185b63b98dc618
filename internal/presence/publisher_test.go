package presence

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeStore struct {
	mu      sync.Mutex
	upserts []BotStatus
	ttls    []int
	deletes []string
}

func (s *fakeStore) Upsert(ctx context.Context, status BotStatus, ttlSeconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts = append(s.upserts, status)
	s.ttls = append(s.ttls, ttlSeconds)
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, botID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, botID)
	return nil
}

func (s *fakeStore) Close() error { return nil }

func (s *fakeStore) upsertCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.upserts)
}

func (s *fakeStore) lastUpsert() (BotStatus, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.upserts) == 0 {
		return BotStatus{}, 0
	}
	return s.upserts[len(s.upserts)-1], s.ttls[len(s.ttls)-1]
}

func (s *fakeStore) deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deletes...)
}

func waitUpserts(t *testing.T, store *fakeStore, want int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if store.upsertCount() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("saw %d upserts, want at least %d", store.upsertCount(), want)
}

func TestPublisherRefreshesAndWithdraws(t *testing.T) {
	store := &fakeStore{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub, err := StartPublisher(ctx, PublisherOptions{
		Store:      store,
		BotID:      "scraper",
		Every:      20 * time.Millisecond,
		TTLSeconds: 15,
		Status: func() BotStatus {
			return BotStatus{State: "running", PID: 4242}
		},
	})
	if err != nil {
		t.Fatalf("StartPublisher: %v", err)
	}

	waitUpserts(t, store, 3)
	last, ttl := store.lastUpsert()
	if last.BotID != "scraper" {
		t.Errorf("BotID = %q, want scraper", last.BotID)
	}
	if last.State != "running" {
		t.Errorf("State = %q, want running", last.State)
	}
	if last.PID != 4242 {
		t.Errorf("PID = %d, want 4242", last.PID)
	}
	if last.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not stamped")
	}
	if ttl != 15 {
		t.Errorf("ttl = %d, want 15", ttl)
	}

	cancel()
	select {
	case <-pub.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("publisher did not stop")
	}
	dels := store.deleted()
	if len(dels) != 1 || dels[0] != "scraper" {
		t.Errorf("deletes = %v, want [scraper]", dels)
	}
}

func TestStartPublisherValidatesOptions(t *testing.T) {
	if _, err := StartPublisher(context.Background(), PublisherOptions{
		Status: func() BotStatus { return BotStatus{} },
	}); err == nil {
		t.Error("nil store accepted")
	}
	if _, err := StartPublisher(context.Background(), PublisherOptions{
		Store: NoopStore{},
	}); err == nil {
		t.Error("nil status func accepted")
	}
}

func TestPublisherDoneNilSafe(t *testing.T) {
	var pub *Publisher
	select {
	case <-pub.Done():
	case <-time.After(time.Second):
		t.Fatal("nil publisher Done did not return a closed channel")
	}
}
