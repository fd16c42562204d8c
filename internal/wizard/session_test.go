package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSessionCreateAndGet(t *testing.T) {
	store := NewMemorySessionStore(0, nil)
	ctx := context.Background()

	created, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("empty session id")
	}
	if created.State != StateInitial || !created.Active {
		t.Fatalf("unexpected new session: %+v", created)
	}
	if created.Steps.BasicInfo != BasicInfoNotStarted || created.Steps.Pricing != PricingInitial {
		t.Fatalf("substeps not initialized: %+v", created.Steps)
	}

	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("got %s, want %s", got.ID, created.ID)
	}
}

func TestSessionGetUnknown(t *testing.T) {
	store := NewMemorySessionStore(0, nil)
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
	if store.IsActive(context.Background(), "missing") {
		t.Fatal("missing session reported active")
	}
}

func TestSessionUpdateIsIsolated(t *testing.T) {
	store := NewMemorySessionStore(0, nil)
	ctx := context.Background()
	created, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// a failing update must leave the stored session untouched
	_, err = store.Update(ctx, created.ID, func(sess *Session) error {
		sess.State = StateClientSelection
		sess.Extended["k"] = "v"
		return errors.New("abort")
	})
	if err == nil {
		t.Fatal("expected error from fn")
	}
	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.State != StateInitial || len(got.Extended) != 0 {
		t.Fatalf("aborted update leaked: %+v", got)
	}
}

func TestSessionCopiesDoNotAlias(t *testing.T) {
	store := NewMemorySessionStore(0, nil)
	ctx := context.Background()
	created, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.Extended["tamper"] = true

	fresh, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, ok := fresh.Extended["tamper"]; ok {
		t.Fatal("returned snapshot aliases stored state")
	}
}

func TestSessionCopiesDoNotAliasDraftInternals(t *testing.T) {
	store := NewMemorySessionStore(0, nil)
	ctx := context.Background()
	created, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = store.Update(ctx, created.ID, func(sess *Session) error {
		sess.Items = []ItemDraft{{
			ItemName:        "coat",
			Stains:          []string{"GREASE"},
			RangeSelections: map[string]int64{"WEAR": 2},
		}}
		sess.Draft = &ItemDraft{
			PhotoKeys:   []string{"sessions/s1/item-0/front.jpg"},
			FixedCounts: map[string]int64{"BUTTON": 1},
		}
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.Items[0].Stains[0] = "tampered"
	got.Items[0].RangeSelections["WEAR"] = 99
	got.Draft.PhotoKeys[0] = "tampered"
	got.Draft.FixedCounts["BUTTON"] = 99

	fresh, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fresh.Items[0].Stains[0] != "GREASE" || fresh.Items[0].RangeSelections["WEAR"] != 2 {
		t.Fatalf("stored item aliases snapshot: %+v", fresh.Items[0])
	}
	if fresh.Draft.PhotoKeys[0] != "sessions/s1/item-0/front.jpg" || fresh.Draft.FixedCounts["BUTTON"] != 1 {
		t.Fatalf("stored draft aliases snapshot: %+v", fresh.Draft)
	}
}

func TestSessionExpireBlocksUpdates(t *testing.T) {
	store := NewMemorySessionStore(0, nil)
	ctx := context.Background()
	created, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Expire(ctx, created.ID); err != nil {
		t.Fatalf("expire: %v", err)
	}
	if store.IsActive(ctx, created.ID) {
		t.Fatal("expired session reported active")
	}
	if _, err := store.Update(ctx, created.ID, func(*Session) error { return nil }); !errors.Is(err, ErrSessionInactive) {
		t.Fatalf("err = %v, want ErrSessionInactive", err)
	}
}

func TestSessionTTL(t *testing.T) {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	store := NewMemorySessionStore(30*time.Minute, clock)
	ctx := context.Background()
	created, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	mu.Lock()
	now = now.Add(29 * time.Minute)
	mu.Unlock()
	if !store.IsActive(ctx, created.ID) {
		t.Fatal("session expired before TTL")
	}

	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()
	if _, err := store.Get(ctx, created.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound after TTL", err)
	}
	if removed := store.Cleanup(ctx); removed != 1 {
		t.Fatalf("cleanup removed %d, want 1", removed)
	}
	if removed := store.Cleanup(ctx); removed != 0 {
		t.Fatalf("second cleanup removed %d, want 0", removed)
	}
}

func TestSessionUpdateRefreshesActivity(t *testing.T) {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	store := NewMemorySessionStore(30*time.Minute, clock)
	ctx := context.Background()
	created, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	mu.Lock()
	now = now.Add(20 * time.Minute)
	mu.Unlock()
	if _, err := store.Update(ctx, created.ID, func(*Session) error { return nil }); err != nil {
		t.Fatalf("update: %v", err)
	}

	// 20 more minutes is within TTL of the refreshed activity stamp
	mu.Lock()
	now = now.Add(20 * time.Minute)
	mu.Unlock()
	if !store.IsActive(ctx, created.ID) {
		t.Fatal("activity stamp not refreshed by update")
	}
}

func TestSessionConcurrentUpdates(t *testing.T) {
	store := NewMemorySessionStore(0, nil)
	ctx := context.Background()
	created, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	const workers = 16
	const perWorker = 25
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				_, _ = store.Update(ctx, created.ID, func(sess *Session) error {
					n, _ := sess.Extended["counter"].(int)
					sess.Extended["counter"] = n + 1
					return nil
				})
			}
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if n, _ := got.Extended["counter"].(int); n != workers*perWorker {
		t.Fatalf("counter = %d, want %d", n, workers*perWorker)
	}
}
