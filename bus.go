package corobus

import (
	"log/slog"
)

// Bus is a container mapping small integer descriptors to channels. It owns
// every live channel's storage exclusively; closing a descriptor or
// deleting the bus tears down the channels it held.
type Bus struct {
	slots []*channel // nil entry means the slot is empty
	log   *slog.Logger
}

// Option configures a Bus constructed by NewBus.
type Option func(*Bus)

// WithLogger overrides the Bus's logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) { b.log = l }
}

// NewBus returns an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{log: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Open allocates a channel of the given capacity in the lowest free slot,
// growing the slot table if none is free, and returns its descriptor.
func (b *Bus) Open(capacity int) int {
	ch := newChannel(capacity)
	for d, slot := range b.slots {
		if slot == nil {
			b.slots[d] = ch
			setErrno(ErrnoNone)
			b.log.Debug("channel opened", slog.Int("descriptor", d), slog.Int("capacity", capacity))
			return d
		}
	}
	d := len(b.slots)
	b.slots = append(b.slots, ch)
	setErrno(ErrnoNone)
	b.log.Debug("channel opened", slog.Int("descriptor", d), slog.Int("capacity", capacity))
	return d
}

// lookup returns the channel at descriptor d, or ErrNoChannel if d is out
// of range or its slot is empty.
func (b *Bus) lookup(d int) (*channel, error) {
	if d < 0 || d >= len(b.slots) || b.slots[d] == nil {
		return nil, ErrNoChannel
	}
	return b.slots[d], nil
}

// Close detaches descriptor d's channel from the slot table, if any, then
// wakes and releases its waiters. It is a no-op on an invalid descriptor.
func (b *Bus) Close(d int) {
	if d < 0 || d >= len(b.slots) || b.slots[d] == nil {
		setErrno(ErrnoNone)
		return
	}
	ch := b.slots[d]
	b.slots[d] = nil
	ch.close()
	setErrno(ErrnoNone)
	b.log.Debug("channel closed", slog.Int("descriptor", d))
}

// Delete closes every open slot and releases the slot table.
func (b *Bus) Delete() {
	for d := range b.slots {
		b.Close(d)
	}
	b.slots = nil
	setErrno(ErrnoNone)
}

// openChannels returns every currently live channel, in descriptor order.
func (b *Bus) openChannels() []*channel {
	var open []*channel
	for _, ch := range b.slots {
		if ch != nil {
			open = append(open, ch)
		}
	}
	return open
}
