// SPDX-License-Identifier: GPL-3.0-or-later

package tunnel

import "errors"

// Error kinds the daemon distinguishes. Each is a sentinel suitable for
// errors.Is/errors.As, wrapped with context via fmt.Errorf("%w", ...) at
// the point of use rather than carrying its own message.
var (
	// ErrConfiguration covers a missing config file, a bad option, or a
	// relative PID path: reported at error severity, process exits 1.
	ErrConfiguration = errors.New("configuration error")

	// ErrStartupResource covers socket/bind/listen/chroot/setuid failure:
	// reported with the system error code, fatal.
	ErrStartupResource = errors.New("startup resource error")

	// ErrSpawnFailed means a [WorkerBackend] could not accept a session
	// (e.g. thread/process creation failure).
	ErrSpawnFailed = errors.New("worker spawn failed")

	// ErrAdmissionRejected means a session was refused solely because
	// num_clients had reached max_clients. Not a failure in itself: logged
	// at warning, the accepted socket is closed, nothing more.
	ErrAdmissionRejected = errors.New("connection rejected: too many clients")

	// errNoDeadlineSupport is returned by stdioConn's deadline methods.
	errNoDeadlineSupport = errors.New("stdio connection does not support deadlines")
)
