package corobus_test

import (
	"errors"
	"testing"

	"github.com/corobus-dev/corobus"
	"github.com/corobus-dev/corobus/coroutine"
)

func TestTrySendTryRecvNeverSuspend(t *testing.T) {
	b := corobus.NewBus()
	d := b.Open(1)

	if err := b.TrySend(d, 5); err != nil {
		t.Fatalf("TrySend: %v", err)
	}
	if err := b.TrySend(d, 6); !errors.Is(err, corobus.ErrWouldBlock) {
		t.Fatalf("TrySend on full channel: got %v, want ErrWouldBlock", err)
	}
	w, err := b.TryRecv(d)
	if err != nil || w != 5 {
		t.Fatalf("TryRecv: got (%d, %v), want (5, nil)", w, err)
	}
	if _, err := b.TryRecv(d); !errors.Is(err, corobus.ErrWouldBlock) {
		t.Fatalf("TryRecv on empty channel: got %v, want ErrWouldBlock", err)
	}
}

func TestSendRecvOnInvalidDescriptor(t *testing.T) {
	b := corobus.NewBus()
	if err := b.TrySend(99, 1); !errors.Is(err, corobus.ErrNoChannel) {
		t.Fatalf("TrySend on invalid descriptor: got %v, want ErrNoChannel", err)
	}
	if _, err := b.TryRecv(99); !errors.Is(err, corobus.ErrNoChannel) {
		t.Fatalf("TryRecv on invalid descriptor: got %v, want ErrNoChannel", err)
	}
}

func TestLastErrnoTracksMostRecentCall(t *testing.T) {
	b := corobus.NewBus()
	d := b.Open(1)

	b.TrySend(d, 1)
	if got := corobus.LastErrno(); got != corobus.ErrnoNone {
		t.Fatalf("LastErrno after success = %v, want ErrnoNone", got)
	}
	b.TrySend(d, 2)
	if got := corobus.LastErrno(); got != corobus.ErrnoWouldBlock {
		t.Fatalf("LastErrno after would-block = %v, want ErrnoWouldBlock", got)
	}
	b.TryRecv(99)
	if got := corobus.LastErrno(); got != corobus.ErrnoNoChannel {
		t.Fatalf("LastErrno after no-channel = %v, want ErrnoNoChannel", got)
	}
}

func TestTryBroadcastFailsOnEmptyBus(t *testing.T) {
	b := corobus.NewBus()
	if err := b.TryBroadcast(1); !errors.Is(err, corobus.ErrNoChannel) {
		t.Fatalf("TryBroadcast on an empty bus: got %v, want ErrNoChannel", err)
	}
}

func TestTryBroadcastIsAllOrNothing(t *testing.T) {
	b := corobus.NewBus()
	dA := b.Open(2)
	dB := b.Open(1)
	if err := b.TrySend(dB, 0); err != nil {
		t.Fatalf("pre-fill B: %v", err)
	}

	if err := b.TryBroadcast(5); !errors.Is(err, corobus.ErrWouldBlock) {
		t.Fatalf("TryBroadcast with B full: got %v, want ErrWouldBlock", err)
	}
	if _, err := b.TryRecv(dA); !errors.Is(err, corobus.ErrWouldBlock) {
		t.Fatalf("A must be untouched by a failed broadcast, got %v", err)
	}
}

func TestSendVWritesAtLeastOneWordOrBlocks(t *testing.T) {
	b := corobus.NewBus()
	d := b.Open(3)

	n, err := b.TrySendV(d, []corobus.Word{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("TrySendV: %v", err)
	}
	if n != 3 {
		t.Fatalf("TrySendV wrote %d, want 3", n)
	}
	if _, err := b.TrySendV(d, []corobus.Word{6}); !errors.Is(err, corobus.ErrWouldBlock) {
		t.Fatalf("TrySendV on a full channel: got %v, want ErrWouldBlock", err)
	}
}

func TestRecvVDrainsWhatIsThereAndBlocksOnEmpty(t *testing.T) {
	b := corobus.NewBus()
	d := b.Open(3)
	b.TrySendV(d, []corobus.Word{1, 2})

	out := make([]corobus.Word, 5)
	n, err := b.TryRecvV(d, out)
	if err != nil || n != 2 {
		t.Fatalf("TryRecvV: got (%d, %v), want (2, nil)", n, err)
	}
	if _, err := b.TryRecvV(d, out); !errors.Is(err, corobus.ErrWouldBlock) {
		t.Fatalf("TryRecvV on an empty channel: got %v, want ErrWouldBlock", err)
	}
}

func TestBlockingSendWakesQueuedReceiver(t *testing.T) {
	b := corobus.NewBus()
	d := b.Open(1)

	var recvErr error
	var got corobus.Word

	s := coroutine.NewScheduler(21)
	s.Spawn(func() {
		s.Spawn(func() { _ = b.Send(d, 123) })
		got, recvErr = b.Recv(d)
	})

	if err := s.Run(); err != nil {
		t.Fatalf("scheduler run: %v", err)
	}
	if recvErr != nil {
		t.Fatalf("Recv: %v", recvErr)
	}
	if got != 123 {
		t.Fatalf("got %d, want 123", got)
	}
}
