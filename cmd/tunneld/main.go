// SPDX-License-Identifier: GPL-3.0-or-later

// Command tunneld runs the TLS tunnel daemon supervisor: it reads a
// configuration file, binds the configured listeners, and relays
// connections through TLS to (or from) their configured remote endpoints.
package main

import (
	"context"
	"fmt"
	"os"

	tunnel "github.com/tunneld-project/tunneld"
)

// defaultConfigPath is the compiled-in configuration file path used when
// no positional argument overrides it.
const defaultConfigPath = "/etc/tunneld/tunneld.conf"

func main() {
	os.Exit(run(os.Args[1:]))
}

// run implements the command-line surface: up to two positional
// arguments (configuration file path, and a secondary argument reserved
// for platforms that select a configuration section — accepted but not
// yet interpreted by this supervisor), exit codes 0/1/3.
func run(args []string) int {
	configPath := defaultConfigPath
	if len(args) >= 1 {
		configPath = args[0]
	}
	if len(args) > 2 {
		fmt.Fprintln(os.Stderr, "usage: tunneld [config-file] [section]")
		return tunnel.ExitFailure
	}

	config, err := tunnel.ParseConfigFile(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return tunnel.ExitFailure
	}

	logger, err := openLogger(config.Options)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return tunnel.ExitFailure
	}

	controller := tunnel.NewLifecycleController(config, logger, tunnel.DefaultSLogger())
	if err := controller.Initialize(); err != nil {
		logger.Err("initialization failed", "err", err)
		return tunnel.ExitFailure
	}
	defer controller.Shutdown()

	return controller.Execute(context.Background())
}

// openLogger opens the log sink every other component expects to exist
// before it runs: a file when Output is set, standard error when running
// in the foreground without one, or the platform syslog otherwise.
func openLogger(opts tunnel.GlobalOptions) (tunnel.Logger, error) {
	if opts.Output != "" {
		f, err := os.OpenFile(opts.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		return tunnel.NewLogger(f, opts.Debug), nil
	}
	if opts.Foreground {
		return tunnel.NewLogger(os.Stderr, opts.Debug), nil
	}
	facility := opts.SyslogFacility
	if facility == "" {
		facility = "daemon"
	}
	return tunnel.NewSyslogLogger(facility, opts.Debug)
}
