// SPDX-License-Identifier: GPL-3.0-or-later

package tunnel

import "syscall"

// socketOptionType is the value type of a socket option: `int`, `linger`,
// `timeval`, `string`. Only `int` (including the common boolean-as-int
// case) is implemented: none of the default options below need
// `linger`/`timeval`/`string`, and no [ServiceDefinition] override in
// this repository's scope needs them either.
type socketOptionType int

const (
	optionTypeInt socketOptionType = iota
)

// socketOption is one entry of the socket-option table: name, protocol
// level/key (platform-specific, resolved by socketopts_unix.go /
// socketopts_windows.go), value type, and a default value per
// [SocketRole] for which the option applies.
//
// This is a data-driven table reconstructing stunnel.c's SOCK_OPT array
// without inlining option application in control flow.
type socketOption struct {
	Name           string
	Type           socketOptionType
	DefaultsByRole map[SocketRole]int
}

// defaultSocketOptions is the built-in option table. Values mirror
// stunnel.c's defaults: SO_REUSEADDR on accept sockets, TCP_NODELAY and
// SO_KEEPALIVE on local/remote sockets.
var defaultSocketOptions = []socketOption{
	{
		Name: "SO_REUSEADDR",
		Type: optionTypeInt,
		DefaultsByRole: map[SocketRole]int{
			SocketRoleAccept: 1,
		},
	},
	{
		Name: "SO_KEEPALIVE",
		Type: optionTypeInt,
		DefaultsByRole: map[SocketRole]int{
			SocketRoleLocal:  1,
			SocketRoleRemote: 1,
		},
	},
	{
		Name: "TCP_NODELAY",
		Type: optionTypeInt,
		DefaultsByRole: map[SocketRole]int{
			SocketRoleLocal:  1,
			SocketRoleRemote: 1,
		},
	},
}

// resolvedOptionValues merges the built-in table's defaults for role with
// any matching per-service [SocketOptionOverride]s, last override wins.
// Application of the result is idempotent: setting the same option value
// twice leaves the socket in the same state.
func resolvedOptionValues(role SocketRole, overrides []SocketOptionOverride) map[string]int {
	values := map[string]int{}
	for _, opt := range defaultSocketOptions {
		if v, ok := opt.DefaultsByRole[role]; ok {
			values[opt.Name] = v
		}
	}
	for _, ov := range overrides {
		if ov.Role == role {
			values[ov.Name] = ov.Value
		}
	}
	return values
}

// applySocketOptions applies the resolved socket-option table for role to
// conn's underlying descriptor. Applied at the three roles `accept`,
// `local`, `remote`.
func applySocketOptions(conn syscall.Conn, role SocketRole, overrides []SocketOptionOverride) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	return applySocketOptionsRawConn(raw, role, overrides)
}

// listenControl returns a [net.ListenConfig.Control] callback that applies
// the accept-role socket options to a listener before Listen returns.
func listenControl(overrides []SocketOptionOverride) func(network, address string, c syscall.RawConn) error {
	return func(network, address string, c syscall.RawConn) error {
		return applySocketOptionsRawConn(c, SocketRoleAccept, overrides)
	}
}
