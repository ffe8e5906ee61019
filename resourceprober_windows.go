//go:build windows

// SPDX-License-Identifier: GPL-3.0-or-later

package tunnel

// probeMaxFDs returns 0 ("unknown/unlimited") on Windows: there is no
// analogue of RLIMIT_NOFILE to query.
func probeMaxFDs() int {
	return 0
}
