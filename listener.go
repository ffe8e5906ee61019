// SPDX-License-Identifier: GPL-3.0-or-later

package tunnel

import (
	"context"
	"fmt"
	"net"
	"syscall"
)

// Listener pairs a [ServiceDefinition] with an OS socket descriptor. It
// exists iff its service is [Accepting] and the daemon has passed the
// bind phase; it is destroyed only at process exit.
type Listener struct {
	Service *ServiceDefinition
	net.Listener
}

// ListenerSet binds one [Listener] per [Accepting] [ServiceDefinition].
// Go's net package already marks every socket it creates non-blocking and
// close-on-exec internally (runtime-level, not something user code
// toggles), so the only work left for this component is: create, apply
// accept-role socket options, bind, and enforce the max_fds ceiling on
// the resulting descriptor.
type ListenerSet struct {
	listeners []*Listener
	logger    Logger
}

// NewListenerSet binds a listener for every accepting service in services,
// applying the accept-role socket-option table to each and rejecting any
// listener whose descriptor would land at or above limits.MaxFDs (when
// limits.MaxFDs > 0). Binding stops at the first failure: a bind failure
// is fatal for the whole startup, not just one service.
func NewListenerSet(ctx context.Context, services []*ServiceDefinition, limits ResourceLimits, logger Logger) (*ListenerSet, error) {
	set := &ListenerSet{logger: logger}
	for _, svc := range services {
		if svc.Direction != Accepting {
			continue
		}
		lc := net.ListenConfig{
			Control: listenControl(svc.SocketOptions),
		}
		ln, err := lc.Listen(ctx, "tcp", svc.Accept)
		if err != nil {
			set.Close()
			return nil, fmt.Errorf("listen %s on %q: %w", svc.Name, svc.Accept, err)
		}
		if fd, ok := fdOf(ln); ok && limits.MaxFDs > 0 && fd >= limits.MaxFDs {
			ln.Close()
			set.Close()
			return nil, fmt.Errorf("listen %s on %q: descriptor %d at or above max_fds %d", svc.Name, svc.Accept, fd, limits.MaxFDs)
		}
		logger.Notice("listening", "service", svc.Name, "address", ln.Addr().String())
		set.listeners = append(set.listeners, &Listener{Service: svc, Listener: ln})
	}
	return set, nil
}

// Listeners returns the bound listeners, one per accepting service.
func (s *ListenerSet) Listeners() []*Listener {
	return s.listeners
}

// Close releases every bound listener. Safe to call on a partially built
// set (e.g. after a bind failure partway through construction).
func (s *ListenerSet) Close() {
	for _, l := range s.listeners {
		l.Close()
	}
}

// fdOf extracts the underlying descriptor number from v (a [net.Listener]
// or a [net.Conn]), returning false if v does not expose one (e.g. a test
// double). syscall.RawConn's Control callback receives the raw fd/handle
// as a uintptr on every Go platform, so no unix/windows split is needed
// here. Shared by [NewListenerSet] (accept-role check) and
// [*AcceptDispatcher] (local-role check).
func fdOf(v any) (int, bool) {
	sc, ok := v.(syscall.Conn)
	if !ok {
		return 0, false
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return 0, false
	}
	var fd int
	if err := raw.Control(func(f uintptr) { fd = int(f) }); err != nil {
		return 0, false
	}
	return fd, true
}
