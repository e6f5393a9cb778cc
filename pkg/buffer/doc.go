// Package buffer provides an unbounded FIFO queue for handing work from a
// producer that must never block to a single slow consumer.
//
// Producers call Add; the consumer loops on Next until it returns
// ErrIteratorDone. CloseWrite is the graceful shutdown: queued items are
// still delivered. CloseWithError drops queued items and unblocks the
// consumer immediately.
//
// Example usage:
//
//	q := buffer.NewQueue[string](16)
//	go func() {
//		for {
//			line, err := q.Next()
//			if err != nil {
//				return // ErrIteratorDone or the close error
//			}
//			speak(line)
//		}
//	}()
//	q.Add("Hello world.")
//	q.CloseWrite()
package buffer
