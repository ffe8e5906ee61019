// SPDX-License-Identifier: GPL-3.0-or-later

package tunnel

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// maxLineLength is the line-truncation threshold: lines longer than 255
// characters are truncated.
const maxLineLength = 255

// lineHandler is a [slog.Handler] that renders records as
//
//	YYYY.MM.DD HH:MM:SS LOG<level>[<pid>:<tid>]: <message>
//
// serializing writes so each line is appended atomically, guaranteeing
// whole-record atomicity on the log file when one is configured.
type lineHandler struct {
	mu  *sync.Mutex
	w   io.Writer
	pid int
}

var _ slog.Handler = &lineHandler{}

func newLineHandler(w io.Writer) *lineHandler {
	return &lineHandler{mu: &sync.Mutex{}, w: w, pid: os.Getpid()}
}

// Enabled implements [slog.Handler]. The actual severity gate lives in
// [slogLogger.log]; this handler accepts everything it is handed.
func (h *lineHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true
}

// Handle implements [slog.Handler].
func (h *lineHandler) Handle(ctx context.Context, record slog.Record) error {
	sev := severityFromRecord(record)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s LOG%d[%d:%d]: %s",
		record.Time.Format("2006.01.02 15:04:05"),
		sev,
		h.pid,
		currentThreadID(),
		record.Message,
	)
	record.Attrs(func(attr slog.Attr) bool {
		if attr.Key == severityAttrKey {
			return true
		}
		fmt.Fprintf(&buf, " %s=%v", attr.Key, attr.Value)
		return true
	})

	line := buf.Bytes()
	if len(line) > maxLineLength {
		line = line[:maxLineLength]
	}
	line = append(line, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(line)
	return err
}

// WithAttrs implements [slog.Handler]. Pre-bound attrs are not supported by
// this façade: every call site passes its fields explicitly (matching the
// teacher's own call style throughout tls.go/observeconn.go/connect.go), so
// this method returns the receiver unchanged.
func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

// WithGroup implements [slog.Handler]. Groups are not used by this façade.
func (h *lineHandler) WithGroup(name string) slog.Handler {
	return h
}

func severityFromRecord(record slog.Record) int {
	sev := int(SeverityInfo)
	record.Attrs(func(attr slog.Attr) bool {
		if attr.Key == severityAttrKey {
			sev = int(attr.Value.Int64())
			return false
		}
		return true
	})
	return sev
}
