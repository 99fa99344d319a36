package wizard

import (
	"context"
	"sync"

	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/stepform/internal/form"
	"github.com/mark3labs/stepform/internal/logger"
)

// outbox delivers events to a sink one at a time, in emission order, off the
// UI loop. Outcomes are reported back as deliveredMsg. Both queues are
// unbounded: send never blocks and no outcome is dropped.
type outbox struct {
	ctx  context.Context
	sink EventSink

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []form.Event
	results  []deliveredMsg
	closed   bool // no more sends
	finished bool // run has returned
	done     chan struct{}
}

func newOutbox(ctx context.Context, sink EventSink) *outbox {
	o := &outbox{
		ctx:  ctx,
		sink: sink,
		done: make(chan struct{}),
	}
	o.cond = sync.NewCond(&o.mu)
	go o.run()
	return o
}

func (o *outbox) run() {
	defer close(o.done)
	for {
		o.mu.Lock()
		for len(o.queue) == 0 && !o.closed {
			o.cond.Wait()
		}
		if len(o.queue) == 0 {
			o.finished = true
			o.mu.Unlock()
			o.cond.Broadcast()
			return
		}
		ev := o.queue[0]
		o.queue = o.queue[1:]
		o.mu.Unlock()

		err := o.sink.Deliver(o.ctx, ev)
		if err != nil {
			logger.Warn("Delivering %s event failed: %v", ev.Type, err)
		}

		o.mu.Lock()
		o.results = append(o.results, deliveredMsg{event: ev, err: err})
		o.mu.Unlock()
		o.cond.Broadcast()
	}
}

// send queues ev for delivery. Events sent after close are ignored.
func (o *outbox) send(ev form.Event) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		logger.Debug("Outbox closed, dropping %s event", ev.Type)
		return
	}
	o.queue = append(o.queue, ev)
	o.mu.Unlock()
	o.cond.Broadcast()
}

// wait is a command that reports the next delivery outcome. It returns nil
// once the outbox is closed and every outcome has been reported.
func (o *outbox) wait() tea.Cmd {
	return func() tea.Msg {
		o.mu.Lock()
		defer o.mu.Unlock()
		for len(o.results) == 0 && !o.finished {
			o.cond.Wait()
		}
		if len(o.results) == 0 {
			return nil
		}
		msg := o.results[0]
		o.results = o.results[1:]
		return msg
	}
}

// close stops accepting events and blocks until queued ones are delivered.
func (o *outbox) close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	o.cond.Broadcast()
	<-o.done
}
