//go:build unix

// SPDX-License-Identifier: GPL-3.0-or-later

package tunnel

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// socketOptionKeys maps a table entry's name to its (level, key) pair on
// Unix. Kept separate from [socketOption] itself so the table in
// socketopts.go stays platform-agnostic.
var socketOptionKeys = map[string]struct{ level, key int }{
	"SO_REUSEADDR": {unix.SOL_SOCKET, unix.SO_REUSEADDR},
	"SO_KEEPALIVE": {unix.SOL_SOCKET, unix.SO_KEEPALIVE},
	"TCP_NODELAY":  {unix.IPPROTO_TCP, unix.TCP_NODELAY},
}

// applySocketOptionsRawConn applies the resolved option values for role to
// the descriptor behind raw.
func applySocketOptionsRawConn(raw syscall.RawConn, role SocketRole, overrides []SocketOptionOverride) error {
	values := resolvedOptionValues(role, overrides)

	var applyErr error
	ctrlErr := raw.Control(func(fd uintptr) {
		for name, value := range values {
			keys, ok := socketOptionKeys[name]
			if !ok {
				continue
			}
			if err := unix.SetsockoptInt(int(fd), keys.level, keys.key, value); err != nil {
				applyErr = err
				return
			}
		}
	})
	if ctrlErr != nil {
		return ctrlErr
	}
	return applyErr
}
