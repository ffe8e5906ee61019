// SPDX-License-Identifier: GPL-3.0-or-later

package tunnel

import (
	"fmt"
	"os"
)

// PrivilegeManager performs chroot, setgid/setgroups, setuid, and PID-file
// lifecycle management, in the order:
//
//  1. chroot to the configured directory, followed by chdir("/");
//  2. setgid to the resolved group, followed by setgroups to that group;
//  3. write the PID file, while still privileged (chosen over writing it
//     after setuid so the file can live in a directory the unprivileged
//     user cannot write to);
//  4. setuid to the resolved user.
//
// Each resolution failure is fatal.
type PrivilegeManager struct {
	logger Logger
}

// NewPrivilegeManager returns a [*PrivilegeManager] that logs through logger.
func NewPrivilegeManager(logger Logger) *PrivilegeManager {
	return &PrivilegeManager{logger: logger}
}

// DropPrivileges applies opts' chroot/setgid/setuid/PID-file configuration.
// Returns a cleanup function that removes the PID file (a no-op if no PID
// file was configured); the caller must invoke it at normal process exit.
func (m *PrivilegeManager) DropPrivileges(opts GlobalOptions) (cleanup func(), err error) {
	cleanup = func() {}

	if opts.Chroot != "" {
		if err := platformChroot(opts.Chroot); err != nil {
			return cleanup, fmt.Errorf("chroot %q: %w", opts.Chroot, err)
		}
		m.logger.Notice("chrooted", "directory", opts.Chroot)
	}

	if opts.SetgidGroup != "" {
		gid, err := resolveGroup(opts.SetgidGroup)
		if err != nil {
			return cleanup, fmt.Errorf("resolve group %q: %w", opts.SetgidGroup, err)
		}
		if err := platformSetgid(gid); err != nil {
			return cleanup, fmt.Errorf("setgid %d: %w", gid, err)
		}
		m.logger.Notice("setgid", "gid", gid)
	}

	if opts.PIDFile != "" {
		if !isAbsolutePath(opts.PIDFile) {
			return cleanup, fmt.Errorf("pid file path must be absolute: %q", opts.PIDFile)
		}
		if err := writePIDFile(opts.PIDFile); err != nil {
			return cleanup, fmt.Errorf("write pid file %q: %w", opts.PIDFile, err)
		}
		pid := os.Getpid()
		m.logger.Notice("wrote pid file", "path", opts.PIDFile, "pid", pid)
		cleanup = func() { removePIDFile(opts.PIDFile, pid) }
	}

	if opts.SetuidUser != "" {
		uid, err := resolveUser(opts.SetuidUser)
		if err != nil {
			return cleanup, fmt.Errorf("resolve user %q: %w", opts.SetuidUser, err)
		}
		if err := platformSetuid(uid); err != nil {
			return cleanup, fmt.Errorf("setuid %d: %w", uid, err)
		}
		m.logger.Notice("setuid", "uid", uid)
	}

	return cleanup, nil
}

func isAbsolutePath(path string) bool {
	return len(path) > 0 && path[0] == '/'
}

// writePIDFile creates path with O_WRONLY|O_CREAT|O_TRUNC|O_EXCL semantics
// and mode 0644, unlinking any stale file first (stunnel.c's create_pid
// unlinks unconditionally before creating).
func writePIDFile(path string) error {
	_ = os.Remove(path)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%d\n", os.Getpid())
	return err
}

// removePIDFile unlinks path only if it still records pid, matching
// stunnel.c's delete_pid guard ("getpid() != options.dpid").
func removePIDFile(path string, pid int) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var recorded int
	if _, err := fmt.Sscanf(string(data), "%d", &recorded); err != nil {
		return
	}
	if recorded != pid {
		return
	}
	_ = os.Remove(path)
}
