//go:build unix

// SPDX-License-Identifier: GPL-3.0-or-later

package tunnel

import (
	"fmt"
	"os/user"
	"strconv"

	"golang.org/x/sys/unix"
)

func platformChroot(dir string) error {
	if err := unix.Chroot(dir); err != nil {
		return err
	}
	return unix.Chdir("/")
}

func platformSetgid(gid int) error {
	if err := unix.Setgid(gid); err != nil {
		return err
	}
	return unix.Setgroups([]int{gid})
}

func platformSetuid(uid int) error {
	return unix.Setuid(uid)
}

// resolveGroup accepts either a symbolic group name or a decimal numeric
// id, trying the symbolic lookup first since a purely-numeric group name
// is the rare case.
func resolveGroup(name string) (int, error) {
	if g, err := user.LookupGroup(name); err == nil {
		return strconv.Atoi(g.Gid)
	}
	gid, err := strconv.Atoi(name)
	if err != nil {
		return 0, fmt.Errorf("unknown group %q", name)
	}
	return gid, nil
}

// resolveUser accepts either a symbolic user name or a decimal numeric id,
// trying the symbolic lookup first since a purely-numeric user name is
// the rare case.
func resolveUser(name string) (int, error) {
	if u, err := user.Lookup(name); err == nil {
		return strconv.Atoi(u.Uid)
	}
	uid, err := strconv.Atoi(name)
	if err != nil {
		return 0, fmt.Errorf("unknown user %q", name)
	}
	return uid, nil
}
