package quota

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestTryAdmitRefusesBeyondLimit(t *testing.T) {
	base := time.Date(2026, 3, 14, 10, 12, 0, 0, time.UTC)
	svc := NewServiceWithClock(func() time.Time { return base })

	for i := 0; i < limitFullModify; i++ {
		adm, err := svc.TryAdmit(context.Background(), "user-1", CategoryFullModify)
		if err != nil {
			t.Fatalf("TryAdmit %d: %v", i, err)
		}
		if !adm.Allowed {
			t.Fatalf("request %d should be admitted", i)
		}
		if want := limitFullModify - i - 1; adm.Remaining != want {
			t.Fatalf("request %d: remaining = %d, want %d", i, adm.Remaining, want)
		}
	}

	adm, err := svc.TryAdmit(context.Background(), "user-1", CategoryFullModify)
	if err != nil {
		t.Fatalf("TryAdmit overflow: %v", err)
	}
	if adm.Allowed {
		t.Fatalf("request beyond limit should be refused")
	}
	if adm.Remaining != 0 {
		t.Fatalf("remaining after refusal = %d, want 0", adm.Remaining)
	}
	if want := base.Truncate(time.Hour).Add(time.Hour); !adm.ResetAt.Equal(want) {
		t.Fatalf("resetAt = %s, want %s", adm.ResetAt, want)
	}
}

func TestWindowRolloverRestoresFullLimit(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 59, 0, 0, time.UTC)
	svc := NewServiceWithClock(func() time.Time { return now })

	for i := 0; i < limitQuickModify; i++ {
		if adm, _ := svc.TryAdmit(context.Background(), "user-1", CategoryQuickModify); !adm.Allowed {
			t.Fatalf("request %d should be admitted", i)
		}
	}
	if adm, _ := svc.TryAdmit(context.Background(), "user-1", CategoryQuickModify); adm.Allowed {
		t.Fatalf("exhausted window should refuse")
	}

	// Cross the hour boundary: a fresh window starts with the full limit.
	now = time.Date(2026, 3, 14, 11, 0, 1, 0, time.UTC)
	adm, err := svc.TryAdmit(context.Background(), "user-1", CategoryQuickModify)
	if err != nil {
		t.Fatalf("TryAdmit after rollover: %v", err)
	}
	if !adm.Allowed {
		t.Fatalf("new window should admit")
	}
	if adm.Remaining != limitQuickModify-1 {
		t.Fatalf("remaining = %d, want %d", adm.Remaining, limitQuickModify-1)
	}
}

func TestCategoriesTrackedIndependently(t *testing.T) {
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	svc := NewServiceWithClock(func() time.Time { return base })

	for i := 0; i < limitFullModify; i++ {
		svc.TryAdmit(context.Background(), "user-1", CategoryFullModify)
	}
	if adm, _ := svc.TryAdmit(context.Background(), "user-1", CategoryFullModify); adm.Allowed {
		t.Fatalf("full-modify window should be exhausted")
	}
	adm, err := svc.TryAdmit(context.Background(), "user-1", CategoryQuickModify)
	if err != nil {
		t.Fatalf("TryAdmit quick-modify: %v", err)
	}
	if !adm.Allowed {
		t.Fatalf("quick-modify should be unaffected by full-modify exhaustion")
	}
}

func TestUsersTrackedIndependently(t *testing.T) {
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	svc := NewServiceWithClock(func() time.Time { return base })

	for i := 0; i < limitFullModify; i++ {
		svc.TryAdmit(context.Background(), "user-a", CategoryFullModify)
	}
	adm, _ := svc.TryAdmit(context.Background(), "user-b", CategoryFullModify)
	if !adm.Allowed {
		t.Fatalf("user-b should not share user-a's window")
	}
}

func TestConcurrentAdmitsNeverExceedLimit(t *testing.T) {
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	svc := NewServiceWithClock(func() time.Time { return base })

	const attempts = 50
	var wg sync.WaitGroup
	results := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			adm, err := svc.TryAdmit(context.Background(), "user-1", CategoryFullModify)
			if err != nil {
				t.Errorf("TryAdmit: %v", err)
				return
			}
			results <- adm.Allowed
		}()
	}
	wg.Wait()
	close(results)

	admitted := 0
	for allowed := range results {
		if allowed {
			admitted++
		}
	}
	if admitted != limitFullModify {
		t.Fatalf("admitted %d concurrent requests, want exactly %d", admitted, limitFullModify)
	}
}

func TestRemainingDoesNotConsume(t *testing.T) {
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	svc := NewServiceWithClock(func() time.Time { return base })

	adm1, err := svc.Remaining(context.Background(), "user-1", CategoryQuickModify)
	if err != nil {
		t.Fatalf("Remaining: %v", err)
	}
	adm2, _ := svc.Remaining(context.Background(), "user-1", CategoryQuickModify)
	if adm1.Remaining != limitQuickModify || adm2.Remaining != limitQuickModify {
		t.Fatalf("Remaining consumed units: %d then %d", adm1.Remaining, adm2.Remaining)
	}
}

func TestStaleEntriesEvicted(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	store := newMemoryStore(func() time.Time { return now })

	if _, err := store.Admit(context.Background(), "user-1", CategoryFullModify); err != nil {
		t.Fatalf("Admit: %v", err)
	}
	store.mu.Lock()
	if len(store.entries) != 1 {
		store.mu.Unlock()
		t.Fatalf("expected 1 entry, got %d", len(store.entries))
	}
	store.mu.Unlock()

	now = now.Add(3 * time.Hour)
	if _, err := store.Admit(context.Background(), "user-2", CategoryFullModify); err != nil {
		t.Fatalf("Admit: %v", err)
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.entries[entryKey("user-1", CategoryFullModify)]; ok {
		t.Fatalf("stale entry for user-1 should have been evicted")
	}
}

func TestConcurrentAdmitsAgainstStaleEntryCountOnce(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	store := newMemoryStore(func() time.Time { return now })

	// Seed an entry, then let it go stale so the next burst races eviction
	// against admission.
	if _, err := store.Admit(context.Background(), "user-1", CategoryFullModify); err != nil {
		t.Fatalf("seed admit: %v", err)
	}
	now = now.Add(3 * time.Hour)

	const attempts = limitFullModify * 2
	var wg sync.WaitGroup
	results := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			adm, err := store.Admit(context.Background(), "user-1", CategoryFullModify)
			if err != nil {
				t.Errorf("Admit: %v", err)
				return
			}
			results <- adm.Allowed
		}()
	}
	wg.Wait()
	close(results)

	admitted := 0
	for allowed := range results {
		if allowed {
			admitted++
		}
	}
	if admitted != limitFullModify {
		t.Fatalf("admitted %d against the fresh window, want exactly %d", admitted, limitFullModify)
	}
}
