//go:build windows

// SPDX-License-Identifier: GPL-3.0-or-later

package tunnel

import "golang.org/x/sys/windows"

// genericStrerror falls back to the platform's own errno-to-string
// translation for codes outside [windowsErrorMnemonics]'s range.
func genericStrerror(code int) string {
	return windows.Errno(code).Error()
}
