package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/garyellow/coast-messenger-go/internal/config"
	"github.com/garyellow/coast-messenger-go/internal/graph"
	"github.com/garyellow/coast-messenger-go/internal/messenger"
)

type fakeSender struct {
	mu    sync.Mutex
	sent  []*messenger.Message
	recip []graph.Recipient
	err   error
}

func (f *fakeSender) SendMessage(_ context.Context, recipient graph.Recipient, msg *messenger.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	f.recip = append(f.recip, recipient)
	return f.err
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// fakeClock captures requested delays and fires timers on demand.
type fakeClock struct {
	mu     sync.Mutex
	delays []time.Duration
	chans  []chan time.Time
}

func (f *fakeClock) after(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan time.Time, 1)
	f.delays = append(f.delays, d)
	f.chans = append(f.chans, ch)
	return ch
}

func (f *fakeClock) fireAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.chans {
		ch <- time.Time{}
	}
	f.chans = nil
}

func (f *fakeClock) waitForTimers(t *testing.T, n int) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		f.mu.Lock()
		got := len(f.delays)
		f.mu.Unlock()
		if got >= n {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %d timers, have %d", n, got)
		case <-time.After(time.Millisecond):
		}
	}
}

func newTestScheduler(sender Sender, clock *fakeClock) *Scheduler {
	s := New(sender)
	if clock != nil {
		s.after = clock.after
	}
	return s
}

func TestDeliver_StaggersBatch(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	clock := &fakeClock{}
	s := newTestScheduler(sender, clock)

	msgs := []*messenger.Message{
		messenger.NewText("first"),
		messenger.NewText("second"),
		messenger.NewText("third"),
	}
	s.Deliver(graph.Recipient{ID: "psid-1"}, msgs)

	// Message 0 has no delay and sends straight away.
	clock.waitForTimers(t, 2)
	clock.fireAll()

	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if sender.count() != 3 {
		t.Fatalf("sent = %d, want 3", sender.count())
	}

	want := []time.Duration{config.DeliveryStagger, 2 * config.DeliveryStagger}
	for i, d := range clock.delays {
		if d != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, d, want[i])
		}
	}
}

func TestDeliver_ExplicitDelayOverridesStagger(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	clock := &fakeClock{}
	s := newTestScheduler(sender, clock)

	msgs := []*messenger.Message{
		messenger.NewText("lead ack").WithDelay(4 * time.Second),
		messenger.NewText("lead follow-up").WithDelay(6 * time.Second),
	}
	s.Deliver(graph.Recipient{ID: "psid-1"}, msgs)

	clock.waitForTimers(t, 2)
	clock.fireAll()
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	seen := map[time.Duration]bool{}
	for _, d := range clock.delays {
		seen[d] = true
	}
	if !seen[4*time.Second] || !seen[6*time.Second] {
		t.Errorf("delays = %v, want explicit 4s and 6s", clock.delays)
	}
}

func TestDeliverAfter(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	clock := &fakeClock{}
	s := newTestScheduler(sender, clock)

	s.DeliverAfter(graph.Recipient{NotificationMessagesToken: "tok-1"},
		messenger.NewText("weekly picks"), config.RecurringNotificationDelay)

	clock.waitForTimers(t, 1)
	if clock.delays[0] != config.RecurringNotificationDelay {
		t.Errorf("delay = %v, want %v", clock.delays[0], config.RecurringNotificationDelay)
	}
	clock.fireAll()
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	if sender.count() != 1 {
		t.Fatalf("sent = %d, want 1", sender.count())
	}
	if sender.recip[0].NotificationMessagesToken != "tok-1" {
		t.Errorf("recipient = %+v, want notification token", sender.recip[0])
	}
}

func TestDeliver_SendFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{err: errors.New("graph unavailable")}
	s := newTestScheduler(sender, nil)

	s.Deliver(graph.Recipient{ID: "psid-1"}, []*messenger.Message{messenger.NewText("hi")})
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if sender.count() != 1 {
		t.Errorf("sent = %d, want 1 attempt", sender.count())
	}
}

func TestShutdown_RejectsNewBatches(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	s := newTestScheduler(sender, nil)

	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	s.Deliver(graph.Recipient{ID: "psid-1"}, []*messenger.Message{messenger.NewText("late")})
	s.DeliverAfter(graph.Recipient{ID: "psid-1"}, messenger.NewText("later"), 0)

	time.Sleep(10 * time.Millisecond)
	if sender.count() != 0 {
		t.Errorf("sent = %d after shutdown, want 0", sender.count())
	}
}

func TestShutdown_TimesOutOnStuckSend(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	clock := &fakeClock{}
	s := newTestScheduler(sender, clock)

	s.DeliverAfter(graph.Recipient{ID: "psid-1"}, messenger.NewText("stuck"), time.Hour)
	clock.waitForTimers(t, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Shutdown = %v, want deadline exceeded", err)
	}
	clock.fireAll()
}
