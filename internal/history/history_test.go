package history

import (
	"fmt"
	"sync"
	"testing"
)

func TestLog_EmptyLatest(t *testing.T) {
	log := NewLog(4)

	if _, ok := log.Latest(); ok {
		t.Error("Latest() on empty log reported ok")
	}
	if log.Len() != 0 {
		t.Errorf("Len() = %d, want 0", log.Len())
	}
}

func TestLog_AppendAndLatest(t *testing.T) {
	log := NewLog(4)

	log.Append(Entry{CycleID: "a"})
	log.Append(Entry{CycleID: "b"})

	latest, ok := log.Latest()
	if !ok {
		t.Fatal("Latest() reported no entries")
	}
	if latest.CycleID != "b" {
		t.Errorf("Latest().CycleID = %q, want %q", latest.CycleID, "b")
	}
}

func TestLog_EvictsOldestWhenFull(t *testing.T) {
	log := NewLog(3)

	for i := 1; i <= 5; i++ {
		log.Append(Entry{CycleID: fmt.Sprintf("c%d", i)})
	}

	all := log.All()
	if len(all) != 3 {
		t.Fatalf("len(All()) = %d, want 3", len(all))
	}
	// oldest first: c3, c4, c5
	want := []string{"c3", "c4", "c5"}
	for i, e := range all {
		if e.CycleID != want[i] {
			t.Errorf("All()[%d].CycleID = %q, want %q", i, e.CycleID, want[i])
		}
	}
}

func TestLog_AllReturnsCopy(t *testing.T) {
	log := NewLog(4)
	log.Append(Entry{CycleID: "original"})

	all := log.All()
	all[0].CycleID = "mutated"

	latest, _ := log.Latest()
	if latest.CycleID != "original" {
		t.Errorf("mutation of All() result leaked into log: %q", latest.CycleID)
	}
}

func TestLog_ZeroCapacityUsesDefault(t *testing.T) {
	log := NewLog(0)

	for i := 0; i < DefaultCapacity+10; i++ {
		log.Append(Entry{})
	}

	if log.Len() != DefaultCapacity {
		t.Errorf("Len() = %d, want %d", log.Len(), DefaultCapacity)
	}
}

func TestLog_ConcurrentAccess(t *testing.T) {
	log := NewLog(8)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				log.Append(Entry{})
				log.Latest()
				log.All()
			}
		}()
	}
	wg.Wait()

	if log.Len() != 8 {
		t.Errorf("Len() = %d, want 8", log.Len())
	}
}
