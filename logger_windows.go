//go:build windows

// SPDX-License-Identifier: GPL-3.0-or-later

package tunnel

import (
	"errors"

	"golang.org/x/sys/windows"
)

// currentThreadID returns the Windows thread id, matching stunnel.c's
// "[pid:tid]" log prefix on the Winsock build.
func currentThreadID() int {
	return int(windows.GetCurrentThreadId())
}

// NewSyslogLogger is unavailable on Windows: there is no local syslog
// daemon to dial. Callers on this platform must use [NewLogger] with
// os.Stderr instead; this always fails so a misconfiguration is caught
// rather than silently falling back.
func NewSyslogLogger(facility string, debugLevel int) (Logger, error) {
	return nil, errors.New("syslog is not available on windows")
}
