package corobus

import (
	"errors"
	"log/slog"
)

// TrySend writes w to descriptor d's channel without suspending, failing
// with ErrWouldBlock if the channel is full (or, for a capacity-0 channel,
// if no receiver is currently waiting) and ErrNoChannel if d is invalid.
func (b *Bus) TrySend(d int, w Word) error {
	ch, err := b.lookup(d)
	if err != nil {
		return setErrnoFrom(err)
	}
	return setErrnoFrom(ch.trySend(w))
}

// Send blocks until w can be delivered to descriptor d's channel or the
// channel disappears out from under the caller.
func (b *Bus) Send(d int, w Word) error {
	for {
		ch, err := b.lookup(d)
		if err != nil {
			return setErrnoFrom(err)
		}
		if err := ch.trySend(w); err == nil {
			setErrno(ErrnoNone)
			ch.chainSend()
			return nil
		} else if !errors.Is(err, ErrWouldBlock) {
			return setErrnoFrom(err)
		}

		wt := suspendSelf(&ch.sendWaiters, w, nil)
		if ch.capacity == 0 {
			if wt.delivered {
				setErrno(ErrnoNone)
				return nil
			}
			// Woken without a handoff: the channel closed under us. Loop
			// back to the top, where lookup will report ErrNoChannel.
			continue
		}
	}
}

// TryRecv reads one word from descriptor d's channel without suspending.
func (b *Bus) TryRecv(d int) (Word, error) {
	ch, err := b.lookup(d)
	if err != nil {
		return 0, setErrnoFrom(err)
	}
	w, err := ch.tryRecv()
	return w, setErrnoFrom(err)
}

// Recv blocks until a word is available on descriptor d's channel or the
// channel disappears out from under the caller.
func (b *Bus) Recv(d int) (Word, error) {
	for {
		ch, err := b.lookup(d)
		if err != nil {
			return 0, setErrnoFrom(err)
		}
		w, err := ch.tryRecv()
		if err == nil {
			setErrno(ErrnoNone)
			ch.chainRecv()
			return w, nil
		}
		if !errors.Is(err, ErrWouldBlock) {
			return 0, setErrnoFrom(err)
		}

		wt := suspendSelf(&ch.recvWaiters, 0, func() { ch.spaceWaiters.wakeFirst() })
		if ch.capacity == 0 {
			if wt.delivered {
				setErrno(ErrnoNone)
				return wt.word, nil
			}
			continue
		}
	}
}

// TrySendV writes as many of words as currently fit, returning the count
// written (≥ 1 on success; an empty words writes nothing and returns 0 with
// no error).
func (b *Bus) TrySendV(d int, words []Word) (int, error) {
	ch, err := b.lookup(d)
	if err != nil {
		return 0, setErrnoFrom(err)
	}
	n, err := ch.tryVectorSend(words)
	if err != nil {
		return 0, setErrnoFrom(err)
	}
	setErrno(ErrnoNone)
	return n, nil
}

// SendV blocks until at least one word of words has been written. An empty
// words on a live channel returns 0 with no error at once.
func (b *Bus) SendV(d int, words []Word) (int, error) {
	for {
		ch, err := b.lookup(d)
		if err != nil {
			return 0, setErrnoFrom(err)
		}
		n, err := ch.tryVectorSend(words)
		if err == nil {
			setErrno(ErrnoNone)
			ch.chainSend()
			return n, nil
		}
		if !errors.Is(err, ErrWouldBlock) {
			return 0, setErrnoFrom(err)
		}

		wt := suspendSelf(&ch.sendWaiters, words[0], nil)
		if ch.capacity == 0 {
			if wt.delivered {
				setErrno(ErrnoNone)
				return 1, nil
			}
			continue
		}
	}
}

// TryRecvV drains as many words as are available into out, returning the
// count read (≥ 1 on success; an empty out reads nothing and returns 0 with
// no error).
func (b *Bus) TryRecvV(d int, out []Word) (int, error) {
	ch, err := b.lookup(d)
	if err != nil {
		return 0, setErrnoFrom(err)
	}
	n, err := ch.tryVectorRecv(out)
	if err != nil {
		return 0, setErrnoFrom(err)
	}
	setErrno(ErrnoNone)
	return n, nil
}

// RecvV blocks until at least one word has been drained into out. An empty
// out on a live channel returns 0 with no error at once.
func (b *Bus) RecvV(d int, out []Word) (int, error) {
	for {
		ch, err := b.lookup(d)
		if err != nil {
			return 0, setErrnoFrom(err)
		}
		n, err := ch.tryVectorRecv(out)
		if err == nil {
			setErrno(ErrnoNone)
			ch.chainRecv()
			return n, nil
		}
		if !errors.Is(err, ErrWouldBlock) {
			return 0, setErrnoFrom(err)
		}

		wt := suspendSelf(&ch.recvWaiters, 0, func() { ch.spaceWaiters.wakeFirst() })
		if ch.capacity == 0 {
			if wt.delivered {
				if len(out) > 0 {
					out[0] = wt.word
				}
				setErrno(ErrnoNone)
				return 1, nil
			}
			continue
		}
	}
}

// TryBroadcast delivers w to every open channel atomically: either every
// channel gains w at its tail, or (if any channel is currently full) none
// does.
func (b *Bus) TryBroadcast(w Word) error {
	b.log.Debug("broadcast attempted", slog.Uint64("word", uint64(w)))

	open := b.openChannels()
	if len(open) == 0 {
		return setErrnoFrom(ErrNoChannel)
	}
	for _, ch := range open {
		if ch.full() {
			return setErrnoFrom(ErrWouldBlock)
		}
	}
	for _, ch := range open {
		// Cannot fail: every channel above was just confirmed not full, and
		// no suspension point exists between that check and this delivery.
		_ = ch.trySend(w)
	}
	setErrno(ErrnoNone)
	return nil
}

// Broadcast blocks until w can be delivered to every open channel at once.
func (b *Bus) Broadcast(w Word) error {
	for {
		err := b.TryBroadcast(w)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrWouldBlock) {
			return err
		}

		full := b.firstFullChannel()
		if full == nil {
			// Nothing is actually full anymore. Can't happen under
			// cooperative scheduling (try_* never suspends between the
			// check above and here), but retry rather than suspend forever
			// if that guarantee is ever relaxed.
			continue
		}
		full.waitForSpace()
	}
}

func (b *Bus) firstFullChannel() *channel {
	for _, ch := range b.openChannels() {
		if ch.full() {
			return ch
		}
	}
	return nil
}
