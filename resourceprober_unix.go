//go:build unix

// SPDX-License-Identifier: GPL-3.0-or-later

package tunnel

import "golang.org/x/sys/unix"

// probeMaxFDs queries the current (soft) RLIMIT_NOFILE limit; no other
// interface is consulted. If that limit is unlimited (RLIM_INFINITY),
// above 2^30, or the query fails, it returns 0 ("unknown/unlimited").
func probeMaxFDs() int {
	var rlim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlim); err != nil {
		return 0
	}
	if rlim.Cur == unix.RLIM_INFINITY || rlim.Cur > 1<<30 {
		return 0
	}
	return int(rlim.Cur)
}
