// SPDX-License-Identifier: GPL-3.0-or-later

package tunnel

import (
	"context"
	"fmt"
	"os"
	"runtime"
)

// Exit codes.
const (
	ExitNormal  = 0
	ExitFailure = 1
	ExitSignal  = 3
)

// LifecycleController sequences initialize -> execute -> shutdown. One
// controller runs exactly one daemon invocation.
type LifecycleController struct {
	Config *Configuration
	Logger Logger

	runtimeConfig *RuntimeConfig
	slogger       SLogger
	signals       *SignalBridge
	privilege     *PrivilegeManager
	listeners     *ListenerSet
	mux           *ReadinessMultiplexer
	pidCleanup    func()
}

// NewLifecycleController returns a [*LifecycleController] for config,
// logging through logger (the daemon-wide [Logger]) and slogger (the
// per-connection [SLogger] threaded through the relay's pipeline stages).
func NewLifecycleController(config *Configuration, logger Logger, slogger SLogger) *LifecycleController {
	return &LifecycleController{
		Config:        config,
		Logger:        logger,
		runtimeConfig: NewRuntimeConfig(),
		slogger:       slogger,
		privilege:     NewPrivilegeManager(logger),
		pidCleanup:    func() {},
	}
}

// Initialize validates configuration and installs the signal bridge.
// Configuration loading and log-sink opening happen in the caller, which
// already needs the parsed [GlobalOptions] to construct the [Logger] in
// the first place.
func (l *LifecycleController) Initialize() error {
	// ipv6 is always true: the net package dials/listens on IPv6 whenever
	// the platform resolver returns an AAAA/::1-style address, unlike the
	// original's separate --enable-ipv6 build-time toggle.
	l.Logger.Notice("tunneld starting", "goos", runtime.GOOS, "goarch", runtime.GOARCH, "ipv6", true)
	for _, svc := range l.Config.Services {
		if svc.Role == "" {
			continue
		}
		if err := checkKeyFilePermissions(svc.KeyFileOrCert(), l.Logger); err != nil {
			return fmt.Errorf("%w: %s", ErrConfiguration, err)
		}
	}
	l.signals = NewSignalBridge()
	return nil
}

// checkKeyFilePermissions verifies path exists and warns (but does not
// fail) when it is readable by users other than its owner.
func checkKeyFilePermissions(path string, logger Logger) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("key file %q: %w", path, err)
	}
	if info.Mode().Perm()&0077 != 0 {
		logger.Warning("key file is readable by group or others", "path", path, "mode", info.Mode().Perm().String())
	}
	return nil
}

// Execute runs the daemon or inetd session to completion and returns the
// process exit code: [ExitNormal], [ExitFailure], or [ExitSignal].
func (l *LifecycleController) Execute(ctx context.Context) int {
	relay, err := NewRelaySessionFunc(l.runtimeConfig, l.Config.Services, l.slogger)
	if err != nil {
		l.Logger.Err("failed to build TLS configuration", "err", err)
		return ExitFailure
	}

	if l.Config.HasAcceptingService() {
		return l.executeDaemon(ctx, relay)
	}
	return l.executeInetd(ctx, relay)
}

func (l *LifecycleController) executeDaemon(ctx context.Context, relay *RelaySessionFunc) int {
	limits := ProbeResourceLimits(l.Logger)

	listeners, err := NewListenerSet(ctx, l.Config.Services, limits, l.Logger)
	if err != nil {
		l.Logger.Err("failed to bind listeners", "err", err)
		return ExitFailure
	}
	l.listeners = listeners

	if !l.Config.Options.Foreground {
		if err := daemonize(); err != nil {
			l.Logger.Warning("failed to detach from controlling terminal", "err", err)
		}
	}

	cleanup, err := l.privilege.DropPrivileges(l.Config.Options)
	if err != nil {
		l.Logger.Err("failed to drop privileges", "err", err)
		listeners.Close()
		return ExitFailure
	}
	l.pidCleanup = cleanup

	counter := NewClientCounter(limits.MaxClients)
	backend := NewGoroutineWorkerBackend(relay, counter, l.Logger)

	for _, svc := range l.Config.Services {
		if svc.Direction != ConnectOnly {
			continue
		}
		if !counter.TryAcquire() {
			l.Logger.Warning(ErrAdmissionRejected.Error(), "service", svc.Name)
			continue
		}
		session := &ClientSession{Service: svc, SpanID: NewSpanID()}
		if err := backend.Spawn(ctx, session); err != nil {
			counter.Release()
			l.Logger.Err("failed to spawn connect-only session", "service", svc.Name, "err", err)
		}
	}

	dispatcher := NewAcceptDispatcher(counter, limits, backend, l.Logger)
	l.mux = NewReadinessMultiplexer(listeners.Listeners(), l.signals, l.Logger)

	for {
		ev := l.mux.Wait()
		if ev.Signal != nil {
			return l.handleSignal(*ev.Signal)
		}
		dispatcher.Dispatch(ctx, *ev.Accept)
	}
}

func (l *LifecycleController) executeInetd(ctx context.Context, relay *RelaySessionFunc) int {
	cleanup, err := l.privilege.DropPrivileges(l.Config.Options)
	if err != nil {
		l.Logger.Err("failed to drop privileges", "err", err)
		return ExitFailure
	}
	l.pidCleanup = cleanup

	if len(l.Config.Services) != 1 {
		l.Logger.Err("inetd mode requires exactly one configured service")
		return ExitFailure
	}
	svc := l.Config.Services[0]
	session := &ClientSession{
		Service:       svc,
		PlaintextConn: stdioConn{in: os.Stdin, out: os.Stdout},
		PeerAddr:      "stdio",
		SpanID:        NewSpanID(),
	}
	if _, err := relay.Call(ctx, session); err != nil {
		l.Logger.Err("inetd session ended with error", "service", svc.Name, "err", err)
		return ExitFailure
	}
	return ExitNormal
}

// handleSignal implements the multiplexer loop's signal semantics: it logs
// the signal (notice for Term, error otherwise) and returns [ExitSignal];
// Hangup is treated identically rather than reloading configuration. The
// PID file is released afterwards by [LifecycleController.Shutdown].
func (l *LifecycleController) handleSignal(ev SignalEvent) int {
	switch ev.Kind {
	case SignalTerm:
		l.Logger.Notice("received signal, terminating", "signal", ev.Kind.String())
	default:
		l.Logger.Err("received signal, terminating", "signal", ev.Kind.String())
	}
	return ExitSignal
}

// Shutdown tears down everything Execute built, in reverse order.
func (l *LifecycleController) Shutdown() {
	if l.mux != nil {
		l.mux.Close()
	}
	if l.listeners != nil {
		l.listeners.Close()
	}
	if l.signals != nil {
		l.signals.Close()
	}
	l.pidCleanup()
}
