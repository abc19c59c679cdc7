package corobus

// Word is the fixed message type every channel carries.
type Word uint64

// channel is a bounded ring buffer of Words plus the wait queues that back
// it. A channel is owned exclusively by the bus slot that holds it; once
// closed it is unreachable and its storage is released.
type channel struct {
	capacity int
	buf      []Word // nil when capacity == 0
	head     int
	size     int

	sendWaiters  waitQueue // coroutines blocked because size == capacity
	recvWaiters  waitQueue // coroutines blocked because size == 0
	spaceWaiters waitQueue // broadcasters blocked because full() is true

	closed bool
}

func newChannel(capacity int) *channel {
	c := &channel{capacity: capacity}
	if capacity > 0 {
		c.buf = make([]Word, capacity)
	}
	return c
}

// full reports whether a scalar or vectorised send would currently block.
func (c *channel) full() bool {
	if c.capacity == 0 {
		return c.recvWaiters.empty()
	}
	return c.size == c.capacity
}

// trySend never suspends. On a buffered channel it appends to the ring; on
// a capacity-0 channel it hands the word directly to an already-waiting
// receiver's own waiter record (see rendezvous in blocking.go for the other
// half of the handoff).
func (c *channel) trySend(w Word) error {
	if c.capacity == 0 {
		if c.recvWaiters.empty() {
			return ErrWouldBlock
		}
		c.recvWaiters.first.word = w
		c.recvWaiters.first.delivered = true
		c.recvWaiters.wakeFirst()
		return nil
	}
	if c.size == c.capacity {
		return ErrWouldBlock
	}
	c.buf[(c.head+c.size)%c.capacity] = w
	c.size++
	c.recvWaiters.wakeFirst()
	return nil
}

// tryRecv is the mirror image of trySend.
func (c *channel) tryRecv() (Word, error) {
	if c.capacity == 0 {
		if c.sendWaiters.empty() {
			return 0, ErrWouldBlock
		}
		w := c.sendWaiters.first.word
		c.sendWaiters.first.delivered = true
		c.sendWaiters.wakeFirst()
		return w, nil
	}
	if c.size == 0 {
		return 0, ErrWouldBlock
	}
	w := c.buf[c.head]
	c.head = (c.head + 1) % c.capacity
	c.size--
	c.sendWaiters.wakeFirst()
	c.spaceWaiters.wakeFirst()
	return w, nil
}

// tryVectorSend writes as many of words as fit, at least one or it fails;
// an empty words writes nothing and returns (0, nil). A capacity-0 channel can only ever hand off one word per call, the same
// as trySend.
func (c *channel) tryVectorSend(words []Word) (int, error) {
	if len(words) == 0 {
		return 0, nil
	}
	if c.capacity == 0 {
		if err := c.trySend(words[0]); err != nil {
			return 0, err
		}
		return 1, nil
	}
	slack := c.capacity - c.size
	if slack == 0 {
		return 0, ErrWouldBlock
	}
	n := min(len(words), slack)
	for i := 0; i < n; i++ {
		c.buf[(c.head+c.size)%c.capacity] = words[i]
		c.size++
	}
	c.recvWaiters.wakeFirst()
	return n, nil
}

// tryVectorRecv drains as many words as are available into out, at least
// one or it fails; an empty out reads nothing and returns (0, nil).
func (c *channel) tryVectorRecv(out []Word) (int, error) {
	if len(out) == 0 {
		return 0, nil
	}
	if c.capacity == 0 {
		w, err := c.tryRecv()
		if err != nil {
			return 0, err
		}
		out[0] = w
		return 1, nil
	}
	if c.size == 0 {
		return 0, ErrWouldBlock
	}
	n := min(len(out), c.size)
	for i := 0; i < n; i++ {
		out[i] = c.buf[(c.head+i)%c.capacity]
	}
	c.head = (c.head + n) % c.capacity
	c.size -= n
	c.sendWaiters.wakeFirst()
	c.spaceWaiters.wakeFirst()
	return n, nil
}

// chainSend wakes the next queued sender iff the channel still has room in
// the send direction, cascading a batch of freed slots through the whole
// backlog of blocked senders in enqueue order. Called only by the blocking
// wrappers, never by the try_* primitives themselves.
func (c *channel) chainSend() {
	if c.size < c.capacity {
		c.sendWaiters.wakeFirst()
	}
}

// chainRecv is chainSend's mirror for the receive direction.
func (c *channel) chainRecv() {
	if c.size > 0 {
		c.recvWaiters.wakeFirst()
	}
}

// close wakes and detaches every waiter on all three wait queues, then
// releases the buffer. The caller (bus.Close) is responsible for the slot-detach-first
// ordering; close itself only performs steps 2 and 3 of that sequence.
func (c *channel) close() {
	c.closed = true
	c.sendWaiters.wakeAllDetach()
	c.recvWaiters.wakeAllDetach()
	c.spaceWaiters.wakeAllDetach()
	c.buf = nil
}

// waitForSpace suspends the caller until the channel might no longer be
// full: a receiver frees a ring slot, or, on a capacity-0 channel, a
// receiver starts waiting. It is used only by Broadcast's retry loop — the
// caller is not a real sender, carries no deliverable word, and must never
// be dequeued by trySend/tryRecv's capacity-0 rendezvous path, which is why
// it parks on spaceWaiters rather than sendWaiters.
func (c *channel) waitForSpace() {
	suspendSelf(&c.spaceWaiters, 0, nil)
}
