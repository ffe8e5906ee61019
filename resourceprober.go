// SPDX-License-Identifier: GPL-3.0-or-later

package tunnel

// ResourceLimits is the result of probing the host for descriptor limits.
// MaxFDs == 0 means "unknown/unlimited"; MaxClients == 0 means "no limit".
type ResourceLimits struct {
	MaxFDs     int
	MaxClients int
}

// deriveMaxClients implements the formula:
//
//	max_clients = max_fds>=256 ? max_fds*125/256 : (max_fds-6)/2
//
// clamped so that max_fds is treated as at least 16 when known (maxFDs > 0).
// maxFDs == 0 ("unknown") returns 0 ("no limit").
func deriveMaxClients(maxFDs int) int {
	if maxFDs <= 0 {
		return 0
	}
	if maxFDs < 16 {
		maxFDs = 16
	}
	if maxFDs >= 256 {
		return maxFDs * 125 / 256
	}
	return (maxFDs - 6) / 2
}

// ProbeResourceLimits queries the host for the maximum number of open file
// descriptors and derives max_clients from it. It runs once, before
// binding, and its result is immutable thereafter.
func ProbeResourceLimits(logger Logger) ResourceLimits {
	maxFDs := probeMaxFDs()
	if maxFDs > 0 && maxFDs < 16 {
		maxFDs = 16
	}
	limits := ResourceLimits{
		MaxFDs:     maxFDs,
		MaxClients: deriveMaxClients(maxFDs),
	}
	logger.Notice("resource limits probed",
		"maxFDs", limits.MaxFDs,
		"maxClients", limits.MaxClients,
	)
	return limits
}
