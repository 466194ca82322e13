// Package channel provides a multi-producer multi-consumer FIFO channel with
// explicit handles for each end.
//
// Unlike a native Go channel, a channel from this package is closed by reference
// counting rather than by a single owner: every Sender is a handle that must be
// closed, and the channel disconnects exactly when the last live Sender is
// closed. Receivers are reference counted the same way; once the last Receiver is
// closed, sending reports ErrClosed instead of buffering items nobody can read.
//
// # Basic Usage
//
//	tx, rx := channel.Unbounded[string]()
//
//	tx2 := tx.Clone()
//	go func() {
//	    defer tx2.Close()
//	    _ = tx2.Send("from A")
//	}()
//	go func() {
//	    defer tx.Close()
//	    _ = tx.Send("from B")
//	}()
//
//	for msg := range rx.All() {
//	    fmt.Println(msg)
//	}
//
// # Receiving With a Deadline
//
// RecvTimeout distinguishes a channel that is merely quiet from one that is gone:
//
//   - ErrTimeout: the deadline passed but senders remain. Poll again.
//   - ErrDisconnected: every sender is closed and the buffer is drained. Stop.
//
// A timeout alone must never be treated as the end of the stream; see package
// timeout for a consumer loop that gets this right.
//
// # Ordering
//
// Items from one Sender are received in the order they were sent. Items from
// different Senders interleave in arrival order, which is unspecified when
// senders race.
//
// # Capacity
//
// Channels are unbounded by default. WithCapacity bounds the buffer, making
// Send block while it is full (backpressure) and TrySend report ErrFull.
package channel
