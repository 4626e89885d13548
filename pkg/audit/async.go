package audit

import (
	"context"
	"sync"
)

// AsyncSink decouples audit persistence from the business call path. Records
// are handed to a background writer through a bounded queue; when the queue
// is full the append happens synchronously instead, so no record is ever
// dropped. Close drains the queue before returning.
type AsyncSink struct {
	next    Sink
	queue   chan *Record
	wg      sync.WaitGroup
	closeMu sync.Mutex
	closed  bool
}

// NewAsyncSink wraps next with a bounded queue of the given size.
func NewAsyncSink(next Sink, size int) *AsyncSink {
	if size <= 0 {
		size = 256
	}
	s := &AsyncSink{
		next:  next,
		queue: make(chan *Record, size),
	}
	s.wg.Add(1)
	go s.drain()
	return s
}

func (s *AsyncSink) drain() {
	defer s.wg.Done()
	for rec := range s.queue {
		// Queue entries are flushed with a fresh context: the originating
		// request may already be done.
		_ = s.next.Append(context.Background(), rec)
	}
}

// Append enqueues the record, falling back to a synchronous write when the
// queue is full or the sink is closed.
func (s *AsyncSink) Append(ctx context.Context, rec *Record) error {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return s.next.Append(ctx, rec)
	}
	select {
	case s.queue <- rec:
		s.closeMu.Unlock()
		return nil
	default:
		s.closeMu.Unlock()
		return s.next.Append(ctx, rec)
	}
}

// Close stops the background writer after flushing queued records.
func (s *AsyncSink) Close() error {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.closeMu.Unlock()
	s.wg.Wait()
	return nil
}
