// SPDX-License-Identifier: GPL-3.0-or-later

package tunnel

import (
	"net"
	"time"

	"github.com/tunneld-project/tunneld/errclass"
)

// RuntimeConfig holds common configuration for the pipeline primitives
// (dialing, TLS handshake, error classification, I/O observability) shared
// by every service regardless of its [ServiceDefinition].
//
// Pass this to constructor functions to pre-wire dependencies.
// All fields have sensible defaults set by [NewRuntimeConfig].
type RuntimeConfig struct {
	// Dialer dials the remote endpoint of a relayed session: through
	// [*ConnectFunc] when the address is a literal ip:port, directly
	// otherwise.
	//
	// Set by [NewRuntimeConfig] to [*net.Dialer].
	Dialer Dialer

	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewRuntimeConfig] to an [ErrClassifierFunc] wrapping
	// [errclass.New].
	ErrClassifier ErrClassifier

	// TimeNow returns the current time.
	//
	// Set by [NewRuntimeConfig] to [time.Now].
	TimeNow func() time.Time
}

// NewRuntimeConfig creates a [*RuntimeConfig] with sensible defaults.
func NewRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		Dialer:        &net.Dialer{},
		ErrClassifier: ErrClassifierFunc(errclass.New),
		TimeNow:       time.Now,
	}
}

// Direction is the direction flag of a [ServiceDefinition].
type Direction string

const (
	// Accepting means the service binds a local address and awaits
	// inbound connections.
	Accepting Direction = "accepting"

	// ConnectOnly means the service initiates its own outbound connection.
	ConnectOnly Direction = "connect-only"
)

// TLSRole is the role a [ServiceDefinition] plays in the TLS handshake.
type TLSRole string

const (
	// TLSRoleClient means the service's TLS side dials out and performs
	// the client half of the handshake.
	TLSRoleClient TLSRole = "client"

	// TLSRoleServer means the service's TLS side accepts connections and
	// performs the server half of the handshake.
	TLSRoleServer TLSRole = "server"
)

// SocketRole identifies which of the three roles in the socket-option
// table (see [SocketOptionOverride]) a descriptor plays.
type SocketRole string

const (
	// SocketRoleAccept identifies a listening descriptor.
	SocketRoleAccept SocketRole = "accept"

	// SocketRoleLocal identifies an accepted plaintext descriptor.
	SocketRoleLocal SocketRole = "local"

	// SocketRoleRemote identifies an outbound descriptor opened by a
	// worker session.
	SocketRoleRemote SocketRole = "remote"
)

// SocketOptionOverride overrides the value of one named socket option for
// one [SocketRole]. When an override for the role is present, its Value
// replaces the table default for that name, 0 included; if several
// overrides name the same option and role, the last one wins.
type SocketOptionOverride struct {
	// Role is the socket role this override applies to.
	Role SocketRole

	// Name is the socket option's name as it appears in the option table
	// (see socketopts.go), e.g. "SO_KEEPALIVE".
	Name string

	// Value is the integer form of the override. Interpretation depends
	// on the option's declared type (see socketOption.Type).
	Value int
}

// ServiceDefinition is one configured tunnel endpoint.
//
// Belongs to exactly one [Configuration]; owns at most one bound listening
// descriptor (via [Listener]) while the daemon is running and Direction is
// [Accepting].
type ServiceDefinition struct {
	// Name is a human-readable identifier used in log records.
	Name string

	// Direction selects accepting vs connect-only operation.
	Direction Direction

	// Accept is the local bind address. Required iff Direction is
	// [Accepting]; empty for connect-only services.
	Accept string

	// Connect is the remote endpoint address. Empty if Exec is set.
	Connect string

	// Exec is a program path used instead of Connect to obtain the
	// plaintext side of a connect-only service. Mutually exclusive with
	// Connect.
	Exec string

	// CertFile is the PEM certificate path.
	CertFile string

	// KeyFile is the PEM key path. Defaults to CertFile when empty.
	KeyFile string

	// Role is this service's TLS role.
	Role TLSRole

	// SocketOptions overrides entries in the default socket-option table
	// for this service, keyed by role (see [SocketOptionOverride]).
	SocketOptions []SocketOptionOverride
}

// KeyFileOrCert returns KeyFile if set, otherwise CertFile, matching the
// configuration file's documented default: the key defaults to the cert
// path when not given separately.
func (s *ServiceDefinition) KeyFileOrCert() string {
	if s.KeyFile != "" {
		return s.KeyFile
	}
	return s.CertFile
}

// GlobalOptions is the process-wide options record of a [Configuration].
type GlobalOptions struct {
	// Debug is the syslog-style verbosity level, 0-7.
	Debug int

	// Foreground, when true, disables daemonization and routes logs to
	// standard error instead of the syslog.
	Foreground bool

	// Output is the log file path. Empty means "no log file configured":
	// daemonized processes then log to syslog, foreground processes to
	// stderr.
	Output string

	// SyslogFacility is the syslog facility name (e.g. "daemon").
	SyslogFacility string

	// Chroot is the directory to chroot into before dropping privileges.
	// Empty means "do not chroot".
	Chroot string

	// SetuidUser is the symbolic name or decimal numeric id to setuid to.
	// Empty means "do not drop user privileges".
	SetuidUser string

	// SetgidGroup is the symbolic name or decimal numeric id to setgid to.
	// Empty means "do not drop group privileges".
	SetgidGroup string

	// PIDFile is the absolute path to write the daemon PID to. Empty means
	// "do not write a PID file".
	PIDFile string
}

// Configuration is a process-global, immutable-after-construction snapshot:
// an ordered sequence of [ServiceDefinition] plus [GlobalOptions].
//
// Mutated only by the configuration-file parser before the lifecycle
// controller's Execute phase begins; treated as immutable thereafter, so
// concurrent reads need no synchronization.
type Configuration struct {
	// Services is the ordered sequence of configured tunnel endpoints.
	Services []*ServiceDefinition

	// Options is the process-wide options record.
	Options GlobalOptions
}

// HasAcceptingService reports whether any configured service is
// [Accepting]. The lifecycle controller uses this to choose between the
// daemon and inetd execution paths.
func (c *Configuration) HasAcceptingService() bool {
	for _, svc := range c.Services {
		if svc.Direction == Accepting {
			return true
		}
	}
	return false
}
