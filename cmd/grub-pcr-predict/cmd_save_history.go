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
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/johnwallace123/tpm-luks/history"
)

type saveHistoryCommand struct {
	Output string `short:"o" long:"output" description:"Write the history to the specified file, or - for stdout" value-name:"FILE"`

	Source sourceOptions
}

func (c *saveHistoryCommand) Execute(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected argument %q", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c.Source.apply(cfg)
	if c.Output != "" {
		cfg.History = c.Output
	}
	if cfg.History == "" {
		return xerrors.New("no history file specified")
	}

	alg, err := cfg.PCRAlgorithm()
	if err != nil {
		return err
	}

	digests, err := readEventLogDigests(cfg, alg)
	if err != nil {
		return xerrors.Errorf("cannot obtain digests from TCG event log: %w", err)
	}

	if cfg.History == "-" {
		return history.WriteDigestList(stdout, digests)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.History), 0755); err != nil {
		return xerrors.Errorf("cannot create directory: %w", err)
	}
	release, err := history.Lock(cfg.History, true)
	if err != nil {
		return err
	}
	defer release()

	if err := history.WriteDigestListFile(cfg.History, digests); err != nil {
		return xerrors.Errorf("cannot save history: %w", err)
	}
	logrus.Debugf("saved %d digests to %s", len(digests), cfg.History)
	return nil
}
