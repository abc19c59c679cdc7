// Package corobus implements a cooperative, in-process message bus: bounded
// FIFO channels identified by small integer descriptors, multiplexed
// between coroutines scheduled on a single thread by package coroutine (or
// any runtime satisfying its Current/Suspend/Wakeup contract).
//
// A Bus owns a table of channels, addressed by the descriptor returned from
// Open. Non-blocking operations (TrySend, TryRecv, TrySendV, TryRecvV,
// TryBroadcast) never suspend the caller; their blocking counterparts (Send,
// Recv, SendV, RecvV, Broadcast) retry through coroutine.Suspend until
// progress is possible or the descriptor stops referring to a live channel.
//
// Every Bus method also updates a process-wide last-error value retrievable
// through LastErrno, for callers that prefer that accessor over the
// returned error.
package corobus
