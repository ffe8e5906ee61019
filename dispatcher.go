// SPDX-License-Identifier: GPL-3.0-or-later

package tunnel

import (
	"context"
	"syscall"
)

// AcceptDispatcher runs everything that happens after a connection has
// been accepted: admission control, fd-limit check, socket options, and
// handoff to the worker backend (the accept call itself, its EINTR retry,
// and its resource-exhaustion backoff live in [ReadinessMultiplexer]'s
// acceptLoop — see that type's doc comment for why).
type AcceptDispatcher struct {
	counter *ClientCounter
	limits  ResourceLimits
	backend WorkerBackend
	logger  Logger
}

// NewAcceptDispatcher returns an [*AcceptDispatcher] wired to counter,
// limits, and backend.
func NewAcceptDispatcher(counter *ClientCounter, limits ResourceLimits, backend WorkerBackend, logger Logger) *AcceptDispatcher {
	return &AcceptDispatcher{counter: counter, limits: limits, backend: backend, logger: logger}
}

// Dispatch runs admission control through worker handoff against one
// [AcceptEvent].
//
// A permanent accept error (ev.Err != nil, ev.Conn == nil) is only logged:
// the owning listener remains as-is and keeps accepting.
func (d *AcceptDispatcher) Dispatch(ctx context.Context, ev AcceptEvent) {
	if ev.Err != nil {
		d.logger.Err("accept failed", "service", ev.Listener.Service.Name, "err", ev.Err)
		return
	}
	conn := ev.Conn
	peerAddr := conn.RemoteAddr().String()
	d.logger.Debug("accepted connection", "service", ev.Listener.Service.Name, "peerAddr", peerAddr)

	// Step 2: admission control. TryAcquire folds the "check >= max_clients"
	// test and the increment into one critical section (see
	// [ClientCounter.TryAcquire]'s doc comment for why that matters).
	if !d.counter.TryAcquire() {
		conn.Close()
		d.logger.Warning(ErrAdmissionRejected.Error(), "service", ev.Listener.Service.Name, "peerAddr", peerAddr, "maxClients", d.counter.MaxClients())
		return
	}

	// Step 3: fd-limit check.
	if fd, ok := fdOf(conn); ok && d.limits.MaxFDs > 0 && fd >= d.limits.MaxFDs {
		conn.Close()
		d.counter.Release()
		d.logger.Err("accepted descriptor at or above max_fds, closing", "service", ev.Listener.Service.Name, "peerAddr", peerAddr, "fd", fd, "maxFDs", d.limits.MaxFDs)
		return
	}

	// Step 4 (close-on-exec/non-blocking) is a no-op: Go's net package
	// already configures every socket it creates this way.

	// Step 5: hand off to the worker supervisor.
	if sc, ok := conn.(syscall.Conn); ok {
		if err := applySocketOptions(sc, SocketRoleLocal, ev.Listener.Service.SocketOptions); err != nil {
			d.logger.Warning("failed to apply local socket options", "service", ev.Listener.Service.Name, "peerAddr", peerAddr, "err", err)
		}
	}
	session := &ClientSession{Service: ev.Listener.Service, PlaintextConn: conn, PeerAddr: peerAddr, SpanID: NewSpanID()}
	if err := d.backend.Spawn(ctx, session); err != nil {
		conn.Close()
		d.counter.Release()
		d.logger.Err("worker spawn failed", "service", ev.Listener.Service.Name, "peerAddr", peerAddr, "err", err)
		return
	}
	// Step 6's increment already happened inside TryAcquire above.
}
