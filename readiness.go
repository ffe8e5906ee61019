// SPDX-License-Identifier: GPL-3.0-or-later

package tunnel

import (
	"errors"
	"net"
	"time"

	"github.com/tunneld-project/tunneld/errclass"
)

// acceptBackoff is how long the accept loop pauses after a
// resource-exhaustion error, on the order of one second.
const acceptBackoff = time.Second

// AcceptEvent is one result of a listener's Accept call: either a new
// connection, or a permanent accept error. An error wrapping
// net.ErrClosed means the listener itself is closed; any other error
// leaves the listener accepting.
//
// Transient accept errors (EINTR, resource exhaustion) never reach here:
// they are retried at the point Accept is actually called, inside the
// per-listener goroutine this type's producer runs (see
// [NewReadinessMultiplexer]). Go's net package already folds the C
// "select, then accept" two-step into one blocking Accept call, so the
// retry naturally lives next to that call instead of in a separate
// dispatch step.
type AcceptEvent struct {
	Listener *Listener
	Conn     net.Conn
	Err      error
}

// ReadinessEvent is the readable subset of the multiplexer's wait set:
// exactly one of Accept or Signal is set for any event this package's
// [*ReadinessMultiplexer] produces.
type ReadinessEvent struct {
	Accept *AcceptEvent
	Signal *SignalEvent
}

// ReadinessMultiplexer waits on the union of all listener descriptors
// plus the signal bridge, the only blocking point of the supervisor.
// Each bound [Listener] gets its own goroutine parked in
// Accept(); all of them and the signal bridge fan in to one channel this
// type's Wait method drains, reproducing "a single wait call returns the
// readable subset" as "one Wait call returns one ready event", which is
// the natural shape of a Go select over channels.
type ReadinessMultiplexer struct {
	signals  *SignalBridge
	logger   Logger
	accepted chan AcceptEvent
	done     chan struct{}
}

// NewReadinessMultiplexer starts one accept-loop goroutine per listener in
// listeners and returns a [*ReadinessMultiplexer] ready to [Wait] on them
// together with signals.
func NewReadinessMultiplexer(listeners []*Listener, signals *SignalBridge, logger Logger) *ReadinessMultiplexer {
	m := &ReadinessMultiplexer{
		signals:  signals,
		logger:   logger,
		accepted: make(chan AcceptEvent),
		done:     make(chan struct{}),
	}
	for _, l := range listeners {
		go m.acceptLoop(l)
	}
	return m
}

// acceptLoop repeatedly calls Accept on l, retrying transient errors
// in-place (EINTR retried immediately, resource exhaustion retried after
// a ~1s backoff). A permanent error is reported and the loop keeps
// calling Accept afterward: a one-off permanent error never retires the
// listener for the rest of the process's life. Only the listener's own
// closure (net.ErrClosed, from [ListenerSet.Close] or [Close]) ends this
// goroutine.
func (m *ReadinessMultiplexer) acceptLoop(l *Listener) {
	for {
		conn, err := l.Accept()
		if err != nil {
			if errclass.IsInterrupted(err) {
				continue
			}
			if errclass.IsResourceExhausted(err) {
				m.logger.Err("accept: resource exhaustion, pausing", "service", l.Service.Name, "err", err)
				time.Sleep(acceptBackoff)
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				select {
				case m.accepted <- AcceptEvent{Listener: l, Err: err}:
				case <-m.done:
				}
				return
			}
			select {
			case m.accepted <- AcceptEvent{Listener: l, Err: err}:
			case <-m.done:
				return
			}
			continue
		}
		select {
		case m.accepted <- AcceptEvent{Listener: l, Conn: conn}:
		case <-m.done:
			conn.Close()
			return
		}
	}
}

// Wait blocks until either a connection is accepted or a signal arrives,
// returning exactly one [ReadinessEvent]. Spurious wakeups are not
// possible in this channel-based design, so there is nothing to
// log-and-retry here: every Wait call returns real work.
func (m *ReadinessMultiplexer) Wait() ReadinessEvent {
	select {
	case ev := <-m.accepted:
		return ReadinessEvent{Accept: &ev}
	case sig := <-m.signals.Events():
		return ReadinessEvent{Signal: &sig}
	}
}

// Close stops accepting new events; in-flight acceptLoop goroutines exit
// once their owning listener is closed elsewhere (ListenerSet.Close).
func (m *ReadinessMultiplexer) Close() {
	close(m.done)
}
