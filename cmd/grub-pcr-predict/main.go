// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 Canonical Ltd
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/johnwallace123/tpm-luks/config"
)

type options struct {
	Config  string `long:"config" description:"Read default settings from the specified YAML file" value-name:"FILE"`
	Verbose []bool `short:"v" long:"verbose" description:"Log debug output to stderr. Specify twice for trace output"`

	Predict     predictCommand     `command:"predict" description:"Predict the value of the GRUB command PCR for the next boot"`
	SaveHistory saveHistoryCommand `command:"save-history" description:"Save the digests measured by GRUB during the current boot for the next prediction"`
}

var (
	opts options

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// sourceOptions are the options that select where the digest history comes
// from, shared by all commands.
type sourceOptions struct {
	EventLog  string `long:"event-log" description:"Read the history from the specified binary TCG event log" value-name:"FILE"`
	PCR       *int   `long:"pcr" description:"The PCR that GRUB measures commands to (default: 8)" value-name:"N"`
	Algorithm string `long:"algorithm" description:"The PCR bank digest algorithm (default: sha1)" choice:"sha1" choice:"sha256" choice:"sha384" choice:"sha512"`
}

func (o *sourceOptions) apply(cfg *config.Config) {
	if o.EventLog != "" {
		cfg.EventLog = o.EventLog
	}
	if o.PCR != nil {
		cfg.PCR = *o.PCR
	}
	if o.Algorithm != "" {
		cfg.Algorithm = o.Algorithm
	}
}

var configLoad = config.Load

func loadConfig() (*config.Config, error) {
	if opts.Config == "" {
		return config.Default(), nil
	}
	return configLoad(opts.Config)
}

func configureLogging() {
	logrus.SetOutput(stderr)
	switch len(opts.Verbose) {
	case 0:
		logrus.SetLevel(logrus.InfoLevel)
	case 1:
		logrus.SetLevel(logrus.DebugLevel)
	default:
		logrus.SetLevel(logrus.TraceLevel)
	}
}

func run(args []string) error {
	opts = options{}

	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		configureLogging()
		return cmd.Execute(args)
	}
	_, err := parser.ParseArgs(args)
	return err
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		var flagsErr *flags.Error
		if xerrors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, err)
			return
		}
		fmt.Fprintln(stderr, "error:", err)
		os.Exit(1)
	}
}
