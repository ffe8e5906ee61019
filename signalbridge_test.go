// SPDX-License-Identifier: GPL-3.0-or-later

package tunnel

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalKindString(t *testing.T) {
	assert.Equal(t, "SIGTERM", SignalTerm.String())
	assert.Equal(t, "SIGINT", SignalInterrupt.String())
	assert.Equal(t, "SIGHUP", SignalHangup.String())
	assert.Equal(t, "SIGQUIT", SignalQuit.String())
	assert.Equal(t, "SIGUNKNOWN", SignalKind(99).String())
}

func TestClassifySignal(t *testing.T) {
	cases := []struct {
		sig      os.Signal
		wantKind SignalKind
		wantOK   bool
	}{
		{syscall.SIGTERM, SignalTerm, true},
		{syscall.SIGINT, SignalInterrupt, true},
		{syscall.SIGHUP, SignalHangup, true},
		{syscall.SIGQUIT, SignalQuit, true},
		{syscall.SIGUSR1, 0, false},
	}
	for _, tc := range cases {
		kind, ok := classifySignal(tc.sig)
		assert.Equal(t, tc.wantOK, ok)
		if tc.wantOK {
			assert.Equal(t, tc.wantKind, kind)
		}
	}
}

func TestSignalBridgeDeliversTerm(t *testing.T) {
	bridge := NewSignalBridge()
	defer bridge.Close()

	proc, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.NoError(t, proc.Signal(syscall.SIGTERM))

	select {
	case ev := <-bridge.Events():
		assert.Equal(t, SignalTerm, ev.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for SignalEvent")
	}
}

func TestSignalBridgeCloseStopsDelivery(t *testing.T) {
	bridge := NewSignalBridge()
	bridge.Close()

	// Close deregisters signal.Notify and stops the pump goroutine; no
	// event should ever arrive on a closed bridge.
	select {
	case <-bridge.Events():
		t.Fatal("no event should be delivered after Close")
	case <-time.After(200 * time.Millisecond):
		// No delivery, as expected.
	}
}
