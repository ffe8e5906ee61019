//go:build unix

// SPDX-License-Identifier: GPL-3.0-or-later

package tunnel

import (
	"fmt"
	"log/syslog"

	"golang.org/x/sys/unix"
)

// currentThreadID returns the OS-level thread id of the calling goroutine's
// underlying M, matching stunnel.c's "[pid:tid]" log prefix. Go goroutines
// migrate between OS threads, so this value may differ between calls on
// the same goroutine; it is diagnostic, not an identity.
func currentThreadID() int {
	return unix.Gettid()
}

// syslogLogger adapts a [*syslog.Writer] to [Logger], for daemonized
// POSIX processes without a configured log file: records go to the
// system log instead.
type syslogLogger struct {
	w     *syslog.Writer
	level int
}

var _ Logger = &syslogLogger{}

// NewSyslogLogger dials the local syslog daemon under the given facility
// and returns a [Logger] that writes to it, gating records below
// debugLevel the same way [NewLogger] does.
func NewSyslogLogger(facility string, debugLevel int) (Logger, error) {
	prio, err := syslogFacility(facility)
	if err != nil {
		return nil, err
	}
	w, err := syslog.New(prio|syslog.LOG_INFO, "tunneld")
	if err != nil {
		return nil, err
	}
	return &syslogLogger{w: w, level: debugLevel}, nil
}

func syslogFacility(name string) (syslog.Priority, error) {
	switch name {
	case "", "daemon":
		return syslog.LOG_DAEMON, nil
	case "user":
		return syslog.LOG_USER, nil
	case "local0":
		return syslog.LOG_LOCAL0, nil
	case "local1":
		return syslog.LOG_LOCAL1, nil
	case "local2":
		return syslog.LOG_LOCAL2, nil
	case "local3":
		return syslog.LOG_LOCAL3, nil
	case "local4":
		return syslog.LOG_LOCAL4, nil
	case "local5":
		return syslog.LOG_LOCAL5, nil
	case "local6":
		return syslog.LOG_LOCAL6, nil
	case "local7":
		return syslog.LOG_LOCAL7, nil
	default:
		return 0, fmt.Errorf("unknown syslog facility: %q", name)
	}
}

func (l *syslogLogger) write(sev Severity, prio func(string) error, msg string, args ...any) {
	if int(sev) > l.level {
		return
	}
	prio(formatArgs(msg, args...))
}

func formatArgs(msg string, args ...any) string {
	out := msg
	for i := 0; i+1 < len(args); i += 2 {
		out += fmt.Sprintf(" %v=%v", args[i], args[i+1])
	}
	return out
}

func (l *syslogLogger) Emerg(msg string, args ...any)   { l.write(SeverityEmerg, l.w.Emerg, msg, args...) }
func (l *syslogLogger) Alert(msg string, args ...any)   { l.write(SeverityAlert, l.w.Alert, msg, args...) }
func (l *syslogLogger) Crit(msg string, args ...any)    { l.write(SeverityCrit, l.w.Crit, msg, args...) }
func (l *syslogLogger) Err(msg string, args ...any)     { l.write(SeverityErr, l.w.Err, msg, args...) }
func (l *syslogLogger) Warning(msg string, args ...any) { l.write(SeverityWarning, l.w.Warning, msg, args...) }
func (l *syslogLogger) Notice(msg string, args ...any)  { l.write(SeverityNotice, l.w.Notice, msg, args...) }
func (l *syslogLogger) Info(msg string, args ...any)    { l.write(SeverityInfo, l.w.Info, msg, args...) }
func (l *syslogLogger) Debug(msg string, args ...any)   { l.write(SeverityDebug, l.w.Debug, msg, args...) }
