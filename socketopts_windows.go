//go:build windows

// SPDX-License-Identifier: GPL-3.0-or-later

package tunnel

import (
	"syscall"

	"golang.org/x/sys/windows"
)

var socketOptionKeys = map[string]struct{ level, key int }{
	"SO_REUSEADDR": {windows.SOL_SOCKET, windows.SO_REUSEADDR},
	"SO_KEEPALIVE": {windows.SOL_SOCKET, windows.SO_KEEPALIVE},
	"TCP_NODELAY":  {windows.IPPROTO_TCP, windows.TCP_NODELAY},
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
			if err := windows.SetsockoptInt(windows.Handle(fd), uint32(keys.level), uint32(keys.key), value); err != nil {
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
