package corobus

import "github.com/corobus-dev/corobus/coroutine"

// waiter is one record in a waitQueue: a borrowed reference to a suspended
// coroutine, plus the small amount of payload the capacity-0 rendezvous path
// needs to hand a word directly from sender to receiver without either side
// touching the ring buffer.
//
// A waiter's storage is owned by the stack frame that suspended it
// (suspendSelf's caller); the queue only links it in, never allocates or
// frees it.
type waiter struct {
	handle coroutine.Handle

	prev, next *waiter
	queue      *waitQueue

	// word/delivered are used only by capacity-0 channels: a blocked sender
	// stores its word here so a receiver that dequeues it can read the word
	// straight out of the waiter record, and vice versa. delivered reports
	// whether a peer actually completed the handoff (as opposed to the
	// waiter being detached by a close).
	word      Word
	delivered bool
}

// waitQueue is a FIFO of waiters blocked on one condition (channel-not-full
// or channel-not-empty). It never owns the coroutines it references.
type waitQueue struct {
	first, last *waiter
}

func (q *waitQueue) empty() bool {
	return q.first == nil
}

func (q *waitQueue) enqueue(w *waiter) {
	w.queue = q
	w.prev = q.last
	w.next = nil
	if q.last != nil {
		q.last.next = w
	}
	q.last = w
	if q.first == nil {
		q.first = w
	}
}

// remove detaches w from q. It is a no-op if w is not linked into any queue.
func (q *waitQueue) remove(w *waiter) {
	if w.queue != q {
		return
	}
	if w.prev != nil {
		w.prev.next = w.next
	} else {
		q.first = w.next
	}
	if w.next != nil {
		w.next.prev = w.prev
	} else {
		q.last = w.prev
	}
	w.prev, w.next, w.queue = nil, nil, nil
}

// suspendSelf appends a waiter for the current coroutine to the tail of q,
// suspends it, and detaches the record from q on every resumption path
// before returning it to the caller. word seeds the waiter's payload field
// for capacity-0 rendezvous sends (a blocked sender's own word, read
// directly by the receiver that eventually dequeues it); callers that don't
// need it pass 0. If afterEnqueue is non-nil it runs right after the waiter
// is linked into q but before suspending, for callers that need to fire a
// side-effect wakeup that depends on q's new non-empty state.
func suspendSelf(q *waitQueue, word Word, afterEnqueue func()) *waiter {
	w := &waiter{handle: coroutine.Current(), word: word}
	q.enqueue(w)
	if afterEnqueue != nil {
		afterEnqueue()
	}
	coroutine.Suspend()
	q.remove(w)
	return w
}

// wakeFirst marks q's first waiter runnable, if any, without unlinking it:
// the waiter detaches itself from q when it resumes in suspendSelf.
func (q *waitQueue) wakeFirst() {
	if q.first != nil {
		coroutine.Wakeup(q.first.handle)
	}
}

// wakeAllDetach pops every waiter off q, detaching each one before marking
// it runnable, until q is empty. This is the primitive close uses: it
// decouples every waiter's record from the queue before the queue's owning
// channel is freed, so a woken waiter's resumption never touches freed
// storage.
func (q *waitQueue) wakeAllDetach() {
	for q.first != nil {
		w := q.first
		q.remove(w)
		coroutine.Wakeup(w.handle)
	}
}
