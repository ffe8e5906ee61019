//go:build unix

// SPDX-License-Identifier: GPL-3.0-or-later

package tunnel

import "golang.org/x/sys/unix"

// daemonize detaches the process from its controlling terminal by
// starting a new session (setsid).
//
// The original's double-fork additionally re-parents the process to
// init and closes the standard streams. This rewrite deliberately does
// neither: Go's runtime is multi-threaded from startup, and calling
// fork(2) without an immediate exec in a multi-threaded process is
// undefined behavior in the POSIX sense and unsupported by the Go
// runtime. The idiomatic Go equivalent is to run in the foreground
// under an external supervisor (systemd, runit, a container) that
// performs the detaching and stream redirection. setsid is still useful
// on its own: it drops the controlling terminal so the process no longer
// receives terminal-generated signals (SIGHUP on terminal close, job
// control SIGTSTP), which is the operationally relevant half of
// daemonization.
func daemonize() error {
	_, err := unix.Setsid()
	if err != nil && err != unix.EPERM {
		return err
	}
	return nil
}
