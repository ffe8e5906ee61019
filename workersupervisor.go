// SPDX-License-Identifier: GPL-3.0-or-later

package tunnel

import "context"

// WorkerBackend is the concurrency capability the supervisor needs: it is
// polymorphic over how a session actually runs, so the accept dispatcher
// and connect-only startup path depend only on this interface, never on
// goroutines/threads/processes directly.
//
// The per-connection byte-shuffling a Spawn implementation performs is
// explicitly out of scope for this interface: WorkerBackend's contract is
// only that Spawn either accepts the session for independent execution or
// reports [ErrSpawnFailed], and that the completion callback fires
// exactly once per accepted session no matter how it ends.
type WorkerBackend interface {
	// Spawn begins processing session concurrently with the caller. A
	// non-nil error means the backend could not accept the session (e.g.
	// thread/process creation failure); the caller is then responsible for
	// closing the session's connection and must not count it as live.
	Spawn(ctx context.Context, session *ClientSession) error
}

// SessionFunc performs one session's worker loop to completion. Receiving
// an error from Call means the session ended abnormally; both outcomes
// still count as "completion" for on-completion accounting.
type SessionFunc = Func[*ClientSession, Unit]

// GoroutineWorkerBackend is the default [WorkerBackend]: one goroutine per
// session, a cooperative task on a shared scheduler rather than a thread
// or process per session (the Go runtime scheduler plays the role the
// original's thread pool / fork table played).
type GoroutineWorkerBackend struct {
	run     SessionFunc
	counter *ClientCounter
	logger  Logger
}

// NewGoroutineWorkerBackend returns a [*GoroutineWorkerBackend] that runs
// each session through run and decrements counter exactly once when run
// returns, regardless of outcome.
func NewGoroutineWorkerBackend(run SessionFunc, counter *ClientCounter, logger Logger) *GoroutineWorkerBackend {
	return &GoroutineWorkerBackend{run: run, counter: counter, logger: logger}
}

var _ WorkerBackend = &GoroutineWorkerBackend{}

// Spawn launches session's worker loop in its own goroutine. Spawn itself
// never fails in this backend: Go goroutine creation has no distinct
// failure mode the way fork(2) or thread creation does, so [ErrSpawnFailed]
// is unreachable here and is reserved for other [WorkerBackend]
// implementations (e.g. a process-per-session backend bounded by a
// process-table limit).
func (b *GoroutineWorkerBackend) Spawn(ctx context.Context, session *ClientSession) error {
	go func() {
		defer b.counter.Release()
		if _, err := b.run.Call(ctx, session); err != nil {
			b.logger.Info("session ended", "service", session.Service.Name, "peerAddr", session.PeerAddr, "err", err)
		} else {
			b.logger.Info("session ended", "service", session.Service.Name, "peerAddr", session.PeerAddr)
		}
	}()
	return nil
}
