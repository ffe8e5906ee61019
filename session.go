// SPDX-License-Identifier: GPL-3.0-or-later

package tunnel

import (
	"net"
	"sync"
)

// ClientSession is one live connection. PlaintextConn is the accepted
// descriptor for an [Accepting] service, or nil for a [ConnectOnly]
// service (the original's sentinel "-1" becomes Go's zero value for an
// interface).
type ClientSession struct {
	// Service is the originating service definition.
	Service *ServiceDefinition

	// PlaintextConn is the accepted plaintext connection, or nil for a
	// connect-only service.
	PlaintextConn net.Conn

	// PeerAddr is the printable form of the remote peer's address.
	PeerAddr string

	// SpanID correlates every log line the worker relay emits for this
	// session, set once by whatever constructs the session (the accept
	// dispatcher, or the lifecycle controller for a connect-only service)
	// via [NewSpanID].
	SpanID string
}

// ClientCounter guards num_clients, the single piece of shared mutable
// state the daemon touches from more than one goroutine. Both the accept
// dispatcher's admission check and the worker supervisor's completion
// callback take this same lock, and each holds it only for the instant
// needed to update the counter.
type ClientCounter struct {
	mu         sync.Mutex
	numClients int
	maxClients int
}

// NewClientCounter returns a [*ClientCounter] capped at maxClients.
// maxClients <= 0 means "no limit".
func NewClientCounter(maxClients int) *ClientCounter {
	return &ClientCounter{maxClients: maxClients}
}

// TryAcquire atomically checks the cap and increments num_clients in one
// critical section, closing the race a separate "check" and "increment"
// under two separate lock acquisitions would otherwise leave.
func (c *ClientCounter) TryAcquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.maxClients > 0 && c.numClients >= c.maxClients {
		return false
	}
	c.numClients++
	return true
}

// Release decrements num_clients. Called both when a handoff fails after a
// successful TryAcquire (fd-limit check, worker spawn failure) and when the
// worker supervisor reports session completion.
func (c *ClientCounter) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.numClients > 0 {
		c.numClients--
	}
}

// Count returns the current num_clients, for tests and diagnostics.
func (c *ClientCounter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.numClients
}

// MaxClients returns the configured cap (0 meaning "no limit").
func (c *ClientCounter) MaxClients() int {
	return c.maxClients
}
