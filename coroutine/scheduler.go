package coroutine

import "fmt"

// Scheduler runs a set of coroutines cooperatively, driven from the
// goroutine that calls Run, letting exactly one of them execute at a time.
type Scheduler struct {
	rng randState

	all      []*goroutine
	runnable []*goroutine
	current  *goroutine
	nextID   int
}

// NewScheduler creates a Scheduler whose runnable-pick order is derived from
// seed, so a run can be replayed exactly by reusing the same seed.
func NewScheduler(seed int64) *Scheduler {
	return &Scheduler{rng: newRandState(seed)}
}

// Spawn starts a new coroutine running f. f runs on its own goroutine but
// makes progress only while the Scheduler's Run loop schedules it; f must
// call Suspend (directly or transitively) at every point where it might
// need to wait on another coroutine.
//
// Spawn may be called before Run (to seed the initial set of coroutines) or
// from inside a running coroutine (to spawn a child).
func (s *Scheduler) Spawn(f func()) Handle {
	s.nextID++
	g := newGoroutine(s.nextID, f)
	s.all = append(s.all, g)
	s.addRunnable(g)
	return Handle{g: g}
}

func (s *Scheduler) addRunnable(g *goroutine) {
	if g.runnable || g.done {
		return
	}
	g.runnable = true
	s.runnable = append(s.runnable, g)
}

func (s *Scheduler) wakeup(g *goroutine) {
	s.addRunnable(g)
}

func (s *Scheduler) pickRunnable() *goroutine {
	n := len(s.runnable)
	idx := int(s.rng.uint32n(uint32(n)))
	pick := s.runnable[idx]
	s.runnable[idx] = s.runnable[n-1]
	s.runnable = s.runnable[:n-1]
	pick.runnable = false
	return pick
}

func (s *Scheduler) removeFinished(g *goroutine) {
	for i, other := range s.all {
		if other == g {
			s.all[i] = s.all[len(s.all)-1]
			s.all = s.all[:len(s.all)-1]
			return
		}
	}
}

// Run drives the scheduler until every spawned coroutine has finished, or
// until none are runnable while some are still alive, which it reports as a
// deadlock.
func (s *Scheduler) Run() error {
	if !active.CompareAndSwap(nil, s) {
		panic("coroutine: a Scheduler is already running in this process")
	}
	defer active.Store(nil)

	for len(s.all) > 0 {
		if len(s.runnable) == 0 {
			return fmt.Errorf("coroutine: deadlock: %d coroutine(s) blocked with nothing runnable", len(s.all))
		}
		pick := s.pickRunnable()
		s.current = pick
		pick.step()
		s.current = nil
		if pick.done {
			s.removeFinished(pick)
		}
	}
	return nil
}
