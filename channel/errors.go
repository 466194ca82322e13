package channel

import "errors"

// ErrClosed is returned by Send when the item can never be received: either the
// sending handle was already closed or every Receiver has been closed.
var ErrClosed = errors.New("channel: send on closed channel")

// ErrFull is returned by TrySend when a bounded channel has no free slot.
var ErrFull = errors.New("channel: channel is full")

// RecvError is the outcome of a receive that produced no item.
//
// The variants are deliberately distinct values so callers can branch on them:
//
//	item, err := rx.RecvTimeout(time.Second)
//	switch err {
//	case nil:
//	    handle(item)
//	case channel.ErrTimeout:
//	    // still open, poll again
//	case channel.ErrDisconnected:
//	    // permanently closed, stop polling
//	}
type RecvError uint8

const (
	// ErrEmpty is returned by TryRecv when nothing is buffered but senders remain.
	ErrEmpty RecvError = iota + 1

	// ErrTimeout is returned by RecvTimeout when the deadline elapsed while the
	// channel was still open. Retrying is always safe.
	ErrTimeout

	// ErrDisconnected is returned once every Sender is closed and the buffer is
	// drained. It is permanent: no later receive will ever yield an item.
	ErrDisconnected
)

func (e RecvError) Error() string {
	switch e {
	case ErrEmpty:
		return "channel: receive on empty channel"
	case ErrTimeout:
		return "channel: timed out waiting on receive operation"
	case ErrDisconnected:
		return "channel: receive on empty and disconnected channel"
	default:
		return "channel: unknown receive error"
	}
}

// Timeout reports whether the receive may succeed if retried later.
func (e RecvError) Timeout() bool {
	return e == ErrTimeout || e == ErrEmpty
}

// Disconnected reports whether the channel is permanently closed.
func (e RecvError) Disconnected() bool {
	return e == ErrDisconnected
}
