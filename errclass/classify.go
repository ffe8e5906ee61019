//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: https://github.com/rbmk-project/rbmk/blob/v0.17.0/pkg/common/errclass/errclass.go
//

// Package errclass classifies network errors into short categorical tags,
// platform by platform, the way [unix.go] and [windows.go] each define the
// raw errno constants for their platform and this file maps them to names.
package errclass

import (
	"context"
	"errors"
)

// Categorical tags returned by [New]. These are stable strings suitable for
// structured logging and for grouping errors across many connections.
const (
	EADDRNOTAVAIL   = "EADDRNOTAVAIL"
	EADDRINUSE      = "EADDRINUSE"
	ECONNABORTED    = "ECONNABORTED"
	ECONNREFUSED    = "ECONNREFUSED"
	ECONNRESET      = "ECONNRESET"
	EHOSTUNREACH    = "EHOSTUNREACH"
	EINVAL          = "EINVAL"
	EINTR           = "EINTR"
	ENETDOWN        = "ENETDOWN"
	ENETUNREACH     = "ENETUNREACH"
	ENOBUFS         = "ENOBUFS"
	ENOTCONN        = "ENOTCONN"
	EPROTONOSUPPORT = "EPROTONOSUPPORT"
	ETIMEDOUT       = "ETIMEDOUT"
	EMFILE          = "EMFILE"
	ENFILE          = "ENFILE"
	ENOMEM          = "ENOMEM"

	// EGENERIC is returned for errors that do not match any known errno.
	EGENERIC = "EGENERIC"
)

// New classifies err into one of the tags declared above, or "" if err is
// nil. Unknown errors classify as [EGENERIC], never as "".
func New(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ETIMEDOUT
	case errors.Is(err, context.Canceled):
		return EINTR
	case errors.Is(err, errEADDRNOTAVAIL):
		return EADDRNOTAVAIL
	case errors.Is(err, errEADDRINUSE):
		return EADDRINUSE
	case errors.Is(err, errECONNABORTED):
		return ECONNABORTED
	case errors.Is(err, errECONNREFUSED):
		return ECONNREFUSED
	case errors.Is(err, errECONNRESET):
		return ECONNRESET
	case errors.Is(err, errEHOSTUNREACH):
		return EHOSTUNREACH
	case errors.Is(err, errEINVAL):
		return EINVAL
	case errors.Is(err, errEINTR):
		return EINTR
	case errors.Is(err, errENETDOWN):
		return ENETDOWN
	case errors.Is(err, errENETUNREACH):
		return ENETUNREACH
	case errors.Is(err, errENOBUFS):
		return ENOBUFS
	case errors.Is(err, errENOTCONN):
		return ENOTCONN
	case errors.Is(err, errEPROTONOSUPPORT):
		return EPROTONOSUPPORT
	case errors.Is(err, errETIMEDOUT):
		return ETIMEDOUT
	case errors.Is(err, errEMFILE):
		return EMFILE
	case errors.Is(err, errENFILE):
		return ENFILE
	case errors.Is(err, errENOMEM):
		return ENOMEM
	default:
		return EGENERIC
	}
}

// IsResourceExhausted reports whether err's classification belongs to the
// accept-loop resource-exhaustion group (EMFILE, ENFILE, ENOBUFS, ENOMEM).
// The readiness multiplexer's accept loop sleeps briefly and retries for
// this group instead of treating it as a permanent accept error.
func IsResourceExhausted(err error) bool {
	switch New(err) {
	case EMFILE, ENFILE, ENOBUFS, ENOMEM:
		return true
	default:
		return false
	}
}

// IsInterrupted reports whether err's classification is EINTR.
func IsInterrupted(err error) bool {
	return New(err) == EINTR
}
