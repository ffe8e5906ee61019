// SPDX-License-Identifier: GPL-3.0-or-later

package tunnel

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"syscall"
)

// RelaySessionFunc is the default worker-supervisor session loop: it adds
// or removes the TLS layer according to its [ServiceDefinition.Role] and
// copies bytes between the plaintext and TLS sides until either closes.
//
// Per-connection byte-shuffling between the plaintext and TLS endpoints is
// treated as a replaceable collaborator rather than a fixed algorithm, the
// same way a reverse proxy treats its handler: this type is the concrete,
// default implementation good enough to run the daemon end-to-end, wired
// the way [ConnectFunc]/[TLSHandshakeFunc]/[TLSAcceptFunc] are meant to be
// composed, but any other [SessionFunc] can stand in for it.
type RelaySessionFunc struct {
	cfg        *RuntimeConfig
	logger     SLogger
	tlsConfigs map[string]*tls.Config
}

// NewRelaySessionFunc builds a [*RelaySessionFunc] with one *tls.Config per
// service that carries a TLS role, loaded from its cert/key files.
func NewRelaySessionFunc(cfg *RuntimeConfig, services []*ServiceDefinition, logger SLogger) (*RelaySessionFunc, error) {
	r := &RelaySessionFunc{cfg: cfg, logger: logger, tlsConfigs: map[string]*tls.Config{}}
	for _, svc := range services {
		if svc.Role == "" {
			continue
		}
		// A server-role service must present a certificate. A client-role
		// service only needs one for mutual TLS, which is optional.
		if svc.CertFile == "" {
			if svc.Role == TLSRoleServer {
				return nil, fmt.Errorf("service %q: TLS server role requires a certificate", svc.Name)
			}
			r.tlsConfigs[svc.Name] = &tls.Config{}
			continue
		}
		cert, err := tls.LoadX509KeyPair(svc.CertFile, svc.KeyFileOrCert())
		if err != nil {
			return nil, fmt.Errorf("load certificate for service %q: %w", svc.Name, err)
		}
		r.tlsConfigs[svc.Name] = &tls.Config{Certificates: []tls.Certificate{cert}}
	}
	return r, nil
}

var _ Func[*ClientSession, Unit] = &RelaySessionFunc{}

// Call implements [SessionFunc]. It supports the two TLS roles for an
// accepting service:
//
//   - [TLSRoleServer]: session.PlaintextConn actually carries TLS traffic;
//     this side decrypts it and dials the configured remote endpoint in
//     the clear.
//   - [TLSRoleClient]: session.PlaintextConn is already plaintext; this
//     side dials the configured remote endpoint over TLS.
//
// A session without a PlaintextConn (a connect-only service spawned at
// startup) is not relayed: Call returns an error for it. With Exec set,
// the error says exec-backed sessions are not implemented, since a child
// process's standard streams are never wired as the plaintext side;
// without Exec there is no plaintext side to relay (see DESIGN.md).
func (r *RelaySessionFunc) Call(ctx context.Context, session *ClientSession) (Unit, error) {
	svc := session.Service
	r.logger.Info("session start", "spanID", session.SpanID, "service", svc.Name, "peerAddr", session.PeerAddr)
	defer r.logger.Info("session end", "spanID", session.SpanID, "service", svc.Name)

	if session.PlaintextConn == nil {
		if svc.Exec != "" {
			return Unit{}, fmt.Errorf("connect-only service %q: exec-backed sessions are not implemented", svc.Name)
		}
		return r.relayConnectOnly(ctx, svc)
	}

	near := session.PlaintextConn
	switch svc.Role {
	case TLSRoleServer:
		return r.relayAcceptingServer(ctx, session.SpanID, svc, near)
	default:
		return r.relayAcceptingClient(ctx, session.SpanID, svc, near)
	}
}

func (r *RelaySessionFunc) relayAcceptingServer(ctx context.Context, spanID string, svc *ServiceDefinition, near net.Conn) (Unit, error) {
	tlsConfig, ok := r.tlsConfigs[svc.Name]
	if !ok {
		near.Close()
		return Unit{}, fmt.Errorf("service %q has no TLS configuration", svc.Name)
	}
	accept := NewTLSAcceptFunc(r.cfg, tlsConfig, r.logger)
	nearTLS, err := accept.Call(ctx, near)
	if err != nil {
		near.Close()
		return Unit{}, fmt.Errorf("tls accept: %w", err)
	}

	far, err := r.dialPlain(ctx, svc)
	if err != nil {
		nearTLS.Close()
		return Unit{}, fmt.Errorf("connect %q: %w", svc.Connect, err)
	}

	return Unit{}, pumpBoth(r.instrument(ctx, spanID, nearTLS), r.instrument(ctx, spanID, far))
}

func (r *RelaySessionFunc) relayAcceptingClient(ctx context.Context, spanID string, svc *ServiceDefinition, near net.Conn) (Unit, error) {
	tlsConfig, ok := r.tlsConfigs[svc.Name]
	if !ok {
		tlsConfig = &tls.Config{}
	}
	handshake := NewTLSHandshakeFunc(r.cfg, tlsConfig, r.logger)

	far, err := r.dialPlain(ctx, svc)
	if err != nil {
		near.Close()
		return Unit{}, fmt.Errorf("connect %q: %w", svc.Connect, err)
	}
	farTLS, err := handshake.Call(ctx, far)
	if err != nil {
		far.Close()
		near.Close()
		return Unit{}, fmt.Errorf("tls handshake: %w", err)
	}

	return Unit{}, pumpBoth(r.instrument(ctx, spanID, near), r.instrument(ctx, spanID, farTLS))
}

func (r *RelaySessionFunc) relayConnectOnly(ctx context.Context, svc *ServiceDefinition) (Unit, error) {
	return Unit{}, errors.New("connect-only service without accepted connection requires an Exec backend")
}

// instrument wraps conn with the two generic observability/cancellation
// primitives every relayed half uses: [ObserveConnFunc] logs each I/O
// operation at debug level tagged with spanID, and [CancelWatchFunc]
// closes the connection the instant ctx is done so a context cancellation
// (process shutdown, in-flight session abandonment) unblocks whichever
// io.Copy is currently parked in Read, instead of waiting for it to time
// out on its own.
func (r *RelaySessionFunc) instrument(ctx context.Context, spanID string, conn net.Conn) net.Conn {
	observer := NewObserveConnFunc(r.cfg, spanTaggedLogger{inner: r.logger, spanID: spanID})
	observed, _ := observer.Call(ctx, conn) // never errors
	watched, _ := NewCancelWatchFunc().Call(ctx, observed)
	return watched
}

// spanTaggedLogger adapts an [SLogger] to append a spanID field to every
// record, so [ObserveConnFunc]'s per-I/O log lines carry the same
// correlation id as the session-start/session-end lines [RelaySessionFunc]
// emits directly.
type spanTaggedLogger struct {
	inner  SLogger
	spanID string
}

func (l spanTaggedLogger) Debug(msg string, args ...any) {
	l.inner.Debug(msg, append(args, "spanID", l.spanID)...)
}

func (l spanTaggedLogger) Info(msg string, args ...any) {
	l.inner.Info(msg, append(args, "spanID", l.spanID)...)
}

// dialPlain resolves svc.Connect and dials it in the clear, using
// [NewEndpointFunc] composed with [ConnectFunc] when the address parses
// as a literal ip:port (the common case for a tunnel endpoint) and
// falling back to the raw [Dialer] otherwise (e.g. a hostname:port pair
// needing system DNS resolution, left to the platform resolver rather
// than defined here). Either way, the remote-role socket-option table
// entries are applied to the dialed descriptor before it is handed to the
// relay, the same way the accept dispatcher applies the local-role
// entries to the accepted side.
func (r *RelaySessionFunc) dialPlain(ctx context.Context, svc *ServiceDefinition) (net.Conn, error) {
	var conn net.Conn
	var err error
	if ap, parseErr := netip.ParseAddrPort(svc.Connect); parseErr == nil {
		pipeline := Compose2(NewEndpointFunc(ap), NewConnectFunc(r.cfg, "tcp", r.logger))
		conn, err = pipeline.Call(ctx, Unit{})
	} else {
		conn, err = r.cfg.Dialer.DialContext(ctx, "tcp", svc.Connect)
	}
	if err != nil {
		return nil, err
	}
	if sc, ok := conn.(syscall.Conn); ok {
		if optErr := applySocketOptions(sc, SocketRoleRemote, svc.SocketOptions); optErr != nil {
			r.logger.Info("failed to apply remote socket options", "service", svc.Name, "err", optErr)
		}
	}
	return conn, nil
}

// pumpBoth copies bytes in both directions until one side's copy returns,
// then closes both connections to unblock the other direction's Read.
// Kept intentionally simple: no protocol awareness, just io.Copy both
// ways. Context-driven cancellation is the caller's responsibility (see
// [RelaySessionFunc.instrument]'s [CancelWatchFunc] wrapping): once either
// wrapped connection closes, the corresponding Read/Write fails and one of
// these two goroutines returns, which is all pumpBoth itself needs to
// notice.
func pumpBoth(a, b io.ReadWriteCloser) error {
	errc := make(chan error, 2)
	go func() {
		_, err := io.Copy(a, b)
		errc <- err
	}()
	go func() {
		_, err := io.Copy(b, a)
		errc <- err
	}()

	first := <-errc
	a.Close()
	b.Close()
	<-errc
	return first
}
