// Package scheduler staggers outbound message delivery. Handlers
// return a batch of messages; the scheduler spaces them out so they
// arrive in order and feel conversational rather than dumped at once.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/garyellow/coast-messenger-go/internal/config"
	"github.com/garyellow/coast-messenger-go/internal/graph"
	"github.com/garyellow/coast-messenger-go/internal/messenger"
)

// Sender delivers a single message. *graph.Client satisfies this.
type Sender interface {
	SendMessage(ctx context.Context, recipient graph.Recipient, msg *messenger.Message) error
}

// Scheduler delivers message batches with per-message delays. Sends are
// fire-and-forget: failures are logged, never returned, since the
// webhook has already been acknowledged by the time delivery runs.
type Scheduler struct {
	sender  Sender
	timeout time.Duration

	// after is a seam for tests; defaults to time.After.
	after func(time.Duration) <-chan time.Time

	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool
}

// New creates a scheduler around the given sender.
func New(sender Sender) *Scheduler {
	return &Scheduler{
		sender:  sender,
		timeout: config.WebhookProcessing,
		after:   time.After,
	}
}

// Deliver schedules the batch for the recipient. The k-th message goes
// out after k*config.DeliveryStagger, unless the message carries its
// own Delay, which takes precedence. Returns immediately.
func (s *Scheduler) Deliver(recipient graph.Recipient, msgs []*messenger.Message) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	for i, msg := range msgs {
		delay := time.Duration(i) * config.DeliveryStagger
		if msg.Delay > 0 {
			delay = msg.Delay
		}
		s.wg.Add(1)
		go s.send(recipient, msg, delay)
	}
	s.mu.Unlock()
}

// DeliverAfter schedules a single message after an explicit delay,
// used for follow-ups like recurring notification pushes.
func (s *Scheduler) DeliverAfter(recipient graph.Recipient, msg *messenger.Message, delay time.Duration) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	go s.send(recipient, msg, delay)
	s.mu.Unlock()
}

func (s *Scheduler) send(recipient graph.Recipient, msg *messenger.Message, delay time.Duration) {
	defer s.wg.Done()

	if delay > 0 {
		<-s.after(delay)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.sender.SendMessage(ctx, recipient, msg); err != nil {
		slog.WarnContext(ctx, "message delivery failed",
			"recipient", recipient.ID,
			"delay_ms", delay.Milliseconds(),
			"error", err)
	}
}

// Shutdown stops accepting new batches and waits for in-flight sends,
// or returns early when ctx expires.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
