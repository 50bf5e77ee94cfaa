package herdgate

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const (
	eventBootstrapSkipped  = "bootstrap_skipped"
	eventBootstrapSuccess  = "bootstrap_success"
	eventBootstrapRejected = "bootstrap_rejected"
	eventLoginSuccess      = "login_success"
	eventLoginFailure      = "login_failure"
	eventRegisterSuccess   = "register_success"
	eventRegisterFailure   = "register_failure"
	eventLogout            = "logout"
	eventProfilePatched    = "profile_patched"
)

type eventDispatcher struct {
	cfg       EventsConfig
	sink      EventSink
	ch        chan Event
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func newEventDispatcher(cfg EventsConfig, sink EventSink) *eventDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &eventDispatcher{
		cfg:  cfg,
		sink: sink,
		ch:   make(chan Event, cfg.BufferSize),
		done: make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *eventDispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.ch:
			d.sink.Emit(context.Background(), event)
		case <-d.done:
			for {
				select {
				case event := <-d.ch:
					d.sink.Emit(context.Background(), event)
				default:
					return
				}
			}
		}
	}
}

// Emit relays the event to the sink goroutine. With DropIfFull the call never
// blocks; otherwise it blocks until buffered, ctx is done, or the dispatcher
// closes.
func (d *eventDispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- event:
		case <-d.done:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.ch <- event:
	case <-ctx.Done():
	case <-d.done:
	}
}

// Close drains buffered events into the sink and stops the dispatcher.
func (d *eventDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped returns the number of events discarded because the buffer was full.
func (d *eventDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

func (e *Engine) emitEvent(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.events == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := Event{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		Success:   success,
		Metadata:  metadata,
	}
	if err != nil {
		event.Error = err.Error()
	}

	e.events.Emit(ctx, event)
}
