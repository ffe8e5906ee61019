// SPDX-License-Identifier: GPL-3.0-or-later

package tunnel

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseConfigFile reads the ini-style configuration file format and
// returns a [*Configuration]. Lines before the first `[service]` header
// set [GlobalOptions]; everything after a header sets that
// [ServiceDefinition]'s fields. Blank lines and lines beginning with `;`
// or `#` are ignored. Configuration is treated as an external
// collaborator the supervisor parses once at startup and never
// re-enters.
//
// This bespoke per-service-block format doesn't match any general-purpose
// config/INI library's conventions closely enough to reuse one (see
// DESIGN.md), so this is a small hand-written line scanner.
func ParseConfigFile(path string) (*Configuration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfiguration, err)
	}
	defer f.Close()
	return parseConfigReader(f)
}

func parseConfigReader(r io.Reader) (*Configuration, error) {
	config := &Configuration{}
	var current *ServiceDefinition

	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			if current != nil {
				config.Services = append(config.Services, current)
			}
			current = &ServiceDefinition{Name: strings.TrimSpace(line[1 : len(line)-1])}
			continue
		}
		key, value, ok := splitDirective(line)
		if !ok {
			return nil, fmt.Errorf("%w: line %d: expected \"key = value\", got %q", ErrConfiguration, lineno, line)
		}
		var directiveErr error
		if current == nil {
			directiveErr = applyGlobalDirective(&config.Options, key, value)
		} else {
			directiveErr = applyServiceDirective(current, key, value)
		}
		if directiveErr != nil {
			return nil, fmt.Errorf("%w: line %d: %s", ErrConfiguration, lineno, directiveErr)
		}
	}
	if current != nil {
		config.Services = append(config.Services, current)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfiguration, err)
	}
	return config, nil
}

func splitDirective(line string) (key, value string, ok bool) {
	idx := strings.IndexByte(line, '=')
	if idx < 0 {
		return "", "", false
	}
	key = strings.ToLower(strings.TrimSpace(line[:idx]))
	value = strings.TrimSpace(line[idx+1:])
	return key, value, true
}

func applyGlobalDirective(opts *GlobalOptions, key, value string) error {
	switch key {
	case "debug":
		level, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("debug: %w", err)
		}
		opts.Debug = level
	case "foreground":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("foreground: %w", err)
		}
		opts.Foreground = b
	case "output":
		opts.Output = value
	case "pid":
		opts.PIDFile = value
	case "chroot":
		opts.Chroot = value
	case "setuid":
		opts.SetuidUser = value
	case "setgid":
		opts.SetgidGroup = value
	default:
		return fmt.Errorf("unrecognized global option %q", key)
	}
	return nil
}

func applyServiceDirective(svc *ServiceDefinition, key, value string) error {
	switch key {
	case "accept":
		svc.Accept = value
		svc.Direction = Accepting
	case "connect":
		svc.Connect = value
		if svc.Direction == "" {
			svc.Direction = ConnectOnly
		}
	case "exec":
		svc.Exec = value
		if svc.Direction == "" {
			svc.Direction = ConnectOnly
		}
	case "cert":
		svc.CertFile = value
	case "key":
		svc.KeyFile = value
	case "client":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("client: %w", err)
		}
		if b {
			svc.Role = TLSRoleClient
		} else {
			svc.Role = TLSRoleServer
		}
	case "chroot", "setuid", "setgid", "pid", "foreground", "debug", "output":
		return fmt.Errorf("option %q is global, not per-service", key)
	case "socket":
		override, err := parseSocketOption(value)
		if err != nil {
			return fmt.Errorf("socket: %w", err)
		}
		svc.SocketOptions = append(svc.SocketOptions, override)
	default:
		return fmt.Errorf("unrecognized service option %q", key)
	}
	return nil
}

// parseSocketOption parses the "role:NAME=value" form of a socket-option
// directive, e.g. "accept:SO_REUSEADDR=1" or "local:TCP_NODELAY=0".
func parseSocketOption(value string) (SocketOptionOverride, error) {
	rolePart, rest, ok := strings.Cut(value, ":")
	if !ok {
		return SocketOptionOverride{}, fmt.Errorf("expected \"role:NAME=value\", got %q", value)
	}
	name, numeric, ok := strings.Cut(rest, "=")
	if !ok {
		return SocketOptionOverride{}, fmt.Errorf("expected \"role:NAME=value\", got %q", value)
	}
	role := SocketRole(strings.ToLower(strings.TrimSpace(rolePart)))
	switch role {
	case SocketRoleAccept, SocketRoleLocal, SocketRoleRemote:
	default:
		return SocketOptionOverride{}, fmt.Errorf("unrecognized socket role %q", rolePart)
	}
	n, err := strconv.Atoi(strings.TrimSpace(numeric))
	if err != nil {
		return SocketOptionOverride{}, fmt.Errorf("value: %w", err)
	}
	return SocketOptionOverride{Role: role, Name: strings.TrimSpace(name), Value: n}, nil
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q", value)
	}
}
