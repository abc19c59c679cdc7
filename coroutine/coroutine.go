// Package coroutine is a minimal cooperative coroutine runtime: a way to ask
// which coroutine is currently running, suspend it, and wake another one.
// Coroutines here are real goroutines paired with a Scheduler that lets only
// one of them run at a time, handed off through a two-channel rendezvous.
//
// Only one Scheduler may be running (via Run) at a time per process; Current,
// Suspend, and Wakeup all operate against whichever Scheduler is currently
// running.
package coroutine

import "sync/atomic"

// Handle is an opaque reference to a coroutine, borrowed (never owned) by
// whoever holds it. The zero Handle refers to no coroutine.
type Handle struct {
	g *goroutine
}

// Valid reports whether h refers to a coroutine.
func (h Handle) Valid() bool {
	return h.g != nil
}

type goroutine struct {
	id int

	// resume is signaled by the scheduler to let this coroutine's body run
	// until its next Suspend or return.
	resume chan struct{}
	// yielded is signaled by this coroutine's body when it pauses (Suspend)
	// or finishes, handing control back to the scheduler.
	yielded chan struct{}

	runnable bool
	done     bool
}

func newGoroutine(id int, f func()) *goroutine {
	g := &goroutine{
		resume:  make(chan struct{}),
		yielded: make(chan struct{}),
		id:      id,
	}
	go func() {
		<-g.resume
		f()
		g.done = true
		g.yielded <- struct{}{}
	}()
	return g
}

// step lets g run until it suspends or finishes.
func (g *goroutine) step() {
	g.resume <- struct{}{}
	<-g.yielded
}

var active atomic.Pointer[Scheduler]

func activeScheduler() *Scheduler {
	s := active.Load()
	if s == nil {
		panic("coroutine: no Scheduler is running (call this from inside a coroutine body)")
	}
	return s
}

// Current returns a handle to the coroutine currently running under the
// active Scheduler. It panics if called outside a running coroutine.
func Current() Handle {
	s := activeScheduler()
	if s.current == nil {
		panic("coroutine: Current called outside a running coroutine")
	}
	return Handle{g: s.current}
}

// Suspend pauses the calling coroutine until some other coroutine calls
// Wakeup on its Handle and the scheduler picks it to run again. It must be
// called from inside a coroutine body.
func Suspend() {
	s := activeScheduler()
	g := s.current
	if g == nil {
		panic("coroutine: Suspend called outside a running coroutine")
	}
	g.runnable = false
	g.yielded <- struct{}{}
	<-g.resume
}

// Wakeup marks h's coroutine runnable. It is idempotent: waking an already
// runnable or already finished coroutine does nothing.
func Wakeup(h Handle) {
	if !h.Valid() {
		return
	}
	activeScheduler().wakeup(h.g)
}
