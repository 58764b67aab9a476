package sched

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// tagEnv is a minimal Environment for scenario tests: it never skips levels,
// and reports stop after a fixed number of AdvanceTagLocked calls.
type tagEnv struct {
	mu        sync.Mutex
	tagsLeft  int32
	advances  atomic.Int32
}

func newTagEnv(tags int) *tagEnv { return &tagEnv{tagsLeft: int32(tags)} }

func (e *tagEnv) Lock()                     { e.mu.Lock() }
func (e *tagEnv) Unlock()                   { e.mu.Unlock() }
func (e *tagEnv) TryAdvanceLevel(*uint32) {}
func (e *tagEnv) AdvanceTagLocked() bool {
	e.advances.Add(1)
	left := atomic.AddInt32(&e.tagsLeft, -1)
	return left < 0
}

func runWorkers(t *testing.T, s *Scheduler, numWorkers int, onReaction func(workerID int, id ReactionID)) *sync.WaitGroup {
	t.Helper()
	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		w := w
		go func() {
			defer wg.Done()
			ctx := context.Background()
			for {
				id, err := s.GetReadyReaction(ctx, w)
				if err != nil {
					return
				}
				onReaction(w, id)
				s.DoneWithReaction(w, id)
			}
		}()
	}
	return &wg
}

func waitOrFatal(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("workers did not finish within the deadline")
	}
}

// TestScenario_DeadlineOrderSingleWorker is spec scenario S1: three level-0
// reactions triggered out of deadline order must dispatch in ascending
// deadline order on a single worker.
func TestScenario_DeadlineOrderSingleWorker(t *testing.T) {
	s := New(WithoutLogging())
	env := newTagEnv(1)
	descs := []Descriptor{
		{Level: 0, Deadline: 3, Name: "A"},
		{Level: 0, Deadline: 1, Name: "B"},
		{Level: 0, Deadline: 2, Name: "C"},
	}
	if err := s.Init(env, 1, Params{Reactions: descs}); err != nil {
		t.Fatal(err)
	}

	// Trigger before any worker starts polling, so the dispatch order is
	// determined purely by deadline, not by a race against worker startup.
	_ = s.TriggerReaction(0, -1) // A
	_ = s.TriggerReaction(1, -1) // B
	_ = s.TriggerReaction(2, -1) // C

	var mu sync.Mutex
	var order []string
	wg := runWorkers(t, s, 1, func(_ int, id ReactionID) {
		mu.Lock()
		order = append(order, descs[id].Name)
		mu.Unlock()
	})

	waitOrFatal(t, wg)

	want := []string{"B", "C", "A"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

// TestScenario_LevelBarrier is spec scenario S2: two level-0 reactions must
// both complete before the level-1 reaction is dispatched, even with
// multiple workers available.
func TestScenario_LevelBarrier(t *testing.T) {
	s := New(WithoutLogging())
	env := newTagEnv(1)
	descs := []Descriptor{
		{Level: 0, Name: "R1"},
		{Level: 1, Name: "R2"},
		{Level: 0, Name: "R3"},
	}
	if err := s.Init(env, 2, Params{Reactions: descs}); err != nil {
		t.Fatal(err)
	}

	_ = s.TriggerReaction(0, -1)
	_ = s.TriggerReaction(1, -1)
	_ = s.TriggerReaction(2, -1)

	var mu sync.Mutex
	var level0Done, level1Started int32
	violation := false
	wg := runWorkers(t, s, 2, func(_ int, id ReactionID) {
		if descs[id].Level == 1 {
			mu.Lock()
			if atomic.LoadInt32(&level0Done) != 2 {
				violation = true
			}
			atomic.AddInt32(&level1Started, 1)
			mu.Unlock()
			return
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&level0Done, 1)
	})

	waitOrFatal(t, wg)

	if violation {
		t.Fatal("level-1 reaction started before both level-0 reactions completed")
	}
	if level1Started != 1 {
		t.Fatalf("level1Started = %d, want 1", level1Started)
	}
}

// TestScenario_DuplicateTrigger is spec scenario S3: the same reaction
// triggered concurrently from many callers before dispatch must be
// dispatched exactly once.
func TestScenario_DuplicateTrigger(t *testing.T) {
	s := New(WithoutLogging())
	env := newTagEnv(1)
	descs := []Descriptor{{Level: 0, Name: "R"}}
	if err := s.Init(env, 1, Params{Reactions: descs}); err != nil {
		t.Fatal(err)
	}

	// 5 threads race to trigger the same reaction before any worker starts
	// polling, so the only race that matters is the admission CAS itself.
	var triggerWg sync.WaitGroup
	triggerWg.Add(5)
	for i := 0; i < 5; i++ {
		go func() {
			defer triggerWg.Done()
			_ = s.TriggerReaction(0, -1)
		}()
	}
	triggerWg.Wait()

	var dispatched int32
	wg := runWorkers(t, s, 1, func(_ int, _ ReactionID) {
		atomic.AddInt32(&dispatched, 1)
	})

	waitOrFatal(t, wg)

	if dispatched != 1 {
		t.Fatalf("dispatched = %d, want exactly 1", dispatched)
	}
	diag := s.Diagnostics()
	if diag.DuplicateTriggers < 4 {
		t.Fatalf("DuplicateTriggers = %d, want at least 4", diag.DuplicateTriggers)
	}
}

// TestScenario_StopPropagation is spec scenario S4: four idle workers must
// all observe STOP once SignalStop is called.
func TestScenario_StopPropagation(t *testing.T) {
	s := New(WithoutLogging())
	// With no reactions, the last idle worker runs through these 1000 tags
	// on its own and may signal stop before SignalStop below is called;
	// either way every worker must end with ErrStopped.
	env := newTagEnv(1000)
	if err := s.Init(env, 4, Params{Reactions: nil}); err != nil {
		t.Fatal(err)
	}

	var stopped int32
	var wg sync.WaitGroup
	wg.Add(4)
	for w := 0; w < 4; w++ {
		w := w
		go func() {
			defer wg.Done()
			_, err := s.GetReadyReaction(context.Background(), w)
			if err == ErrStopped {
				atomic.AddInt32(&stopped, 1)
			}
		}()
	}

	time.Sleep(20 * time.Millisecond) // let all 4 go idle
	s.SignalStop()

	waitOrFatal(t, &wg)

	if stopped != 4 {
		t.Fatalf("stopped = %d, want 4", stopped)
	}
}
