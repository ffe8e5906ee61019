// SPDX-License-Identifier: GPL-3.0-or-later

// Package tunnel implements the supervisor of a universal TLS tunnel
// daemon: it binds configured local endpoints, drops privileges, accepts
// and admits connections under a global concurrency cap, hands each one
// to a worker backend, and coordinates shutdown on signal.
//
// # Core Abstraction
//
// Connection-pipeline stages are expressed with a single interface:
//
//	type Func[A, B any] interface {
//		Call(ctx context.Context, input A) (B, error)
//	}
//
// Each Func represents an atomic operation with exactly one success mode
// and one failure mode, composable via [Compose2] through [Compose8].
//
// # Available Primitives
//
// Connection establishment:
//   - [ConnectFunc]: dials the remote endpoint of a relayed session
//   - [TLSHandshakeFunc]: performs the client half of a TLS handshake
//   - [TLSAcceptFunc]: performs the server half of a TLS handshake
//   - [ObserveConnFunc]: observes connections for structured I/O logging
//   - [CancelWatchFunc]: closes a connection when its context is done
//
// Supervisor components (spec §2):
//   - [SignalBridge]: converts process signals into an ordered event stream
//   - [ProbeResourceLimits]: discovers max_fds and derives max_clients
//   - [PrivilegeManager]: chroot/setgid/setuid and PID-file lifecycle
//   - [ListenerSet]: binds one listener per accepting service
//   - [ReadinessMultiplexer]: waits on listeners and the signal bridge
//   - [AcceptDispatcher]: admission control, socket options, worker handoff
//   - [WorkerBackend] / [GoroutineWorkerBackend]: runs sessions to completion
//   - [ClientCounter]: the single guarded num_clients counter
//   - [Logger]: the syslog-severity logging façade
//
// # Connection Lifecycle
//
// Dial and handshake operations ([ConnectFunc], [TLSHandshakeFunc],
// [TLSAcceptFunc]) create connections and transfer ownership to the next
// stage on success; on error they close the connection.
//
// Wrapper types observe their underlying connection without taking over
// its lifecycle: the caller still owns Close.
//
// # Observability
//
// Per-connection primitives log through [SLogger] (two levels: Debug for
// I/O, Info for lifecycle events), compatible with [log/slog]. The daemon
// supervisor itself logs through the wider [Logger] façade (syslog
// severities 0-7), rendered in the "YYYY.MM.DD HH:MM:SS LOG<level>[<pid>:<tid>]:
// <message>" line format.
//
// Use [NewSpanID] to generate a unique, time-ordered identifier for each
// operation and attach it to a logger with [*slog.Logger.With] to
// correlate log entries across pipeline stages.
//
// # Timeout and Context Philosophy
//
// Per-connection operations are context-transparent: they never modify
// the context they receive. [CancelWatchFunc] binds a connection's
// lifetime to its context so in-progress I/O fails promptly on
// cancellation; the supervisor's own cancellation is signal-driven (see
// [SignalBridge]) rather than context-driven, since its only blocking
// point is the readiness wait, not a per-operation timeout.
package tunnel
