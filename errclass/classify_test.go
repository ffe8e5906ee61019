//
// SPDX-License-Identifier: GPL-3.0-or-later
//

package errclass

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("nil error classifies as empty string", func(t *testing.T) {
		if got := New(nil); got != "" {
			t.Fatalf("got %q, want empty string", got)
		}
	})

	t.Run("unknown error classifies as EGENERIC", func(t *testing.T) {
		if got := New(errors.New("mystery")); got != EGENERIC {
			t.Fatalf("got %q, want %q", got, EGENERIC)
		}
	})

	t.Run("context.DeadlineExceeded classifies as ETIMEDOUT", func(t *testing.T) {
		if got := New(context.DeadlineExceeded); got != ETIMEDOUT {
			t.Fatalf("got %q, want %q", got, ETIMEDOUT)
		}
	})

	t.Run("context.Canceled classifies as EINTR", func(t *testing.T) {
		if got := New(context.Canceled); got != EINTR {
			t.Fatalf("got %q, want %q", got, EINTR)
		}
	})

	t.Run("wrapped errno classifies the same as the bare errno", func(t *testing.T) {
		wrapped := fmt.Errorf("accept: %w", errEMFILE)
		if got := New(wrapped); got != EMFILE {
			t.Fatalf("got %q, want %q", got, EMFILE)
		}
	})
}

func TestIsResourceExhausted(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"EMFILE", errEMFILE, true},
		{"ENFILE", errENFILE, true},
		{"ENOBUFS", errENOBUFS, true},
		{"ENOMEM", errENOMEM, true},
		{"ECONNRESET", errECONNRESET, false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsResourceExhausted(tc.err); got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsInterrupted(t *testing.T) {
	if !IsInterrupted(errEINTR) {
		t.Fatal("errEINTR should classify as interrupted")
	}
	if IsInterrupted(errECONNRESET) {
		t.Fatal("errECONNRESET should not classify as interrupted")
	}
}
