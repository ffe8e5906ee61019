//go:build unix

// SPDX-License-Identifier: GPL-3.0-or-later

package tunnel

import "syscall"

// genericStrerror falls back to the platform's own errno-to-string
// translation for codes outside [windowsErrorMnemonics]'s range, mirroring
// my_strerror's "default: return strerror(code)" branch on Unix.
func genericStrerror(code int) string {
	return syscall.Errno(code).Error()
}
