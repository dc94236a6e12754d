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
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/canonical/go-tpm2"
	"github.com/sirupsen/logrus"

	tpmluks "github.com/johnwallace123/tpm-luks"
	"github.com/johnwallace123/tpm-luks/config"
	"github.com/johnwallace123/tpm-luks/grubenv"
	"github.com/johnwallace123/tpm-luks/history"
	"github.com/johnwallace123/tpm-luks/internal/tcg"
)

var (
	osOpen                  = os.Open
	historyReadEventLogFile = history.ReadEventLogFile
)

type predictCommand struct {
	Script   string `long:"script" description:"The GRUB configuration to evaluate" value-name:"FILE"`
	Grubenv  string `long:"grubenv" description:"Read the initial variables from the specified GRUB environment block" value-name:"FILE"`
	Editenv  string `long:"editenv" description:"Obtain the initial variables by running the specified grub-editenv tool" value-name:"PATH"`
	History  string `long:"history" description:"Read the history from the specified file of hex encoded digests" value-name:"FILE"`
	MaxDepth *int   `long:"max-depth" description:"The maximum nesting depth of blocks in the script" value-name:"N"`

	Source sourceOptions
}

func (c *predictCommand) Execute(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected argument %q", args[0])
	}
	if c.Grubenv != "" && c.Editenv != "" {
		return errors.New("cannot specify both --grubenv and --editenv")
	}
	if c.History != "" && c.Source.EventLog != "" {
		return errors.New("cannot specify both --history and --event-log")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if c.Script != "" {
		cfg.Script = c.Script
	}
	switch {
	case c.Grubenv != "":
		cfg.Grubenv = c.Grubenv
	case c.Editenv != "":
		cfg.Grubenv = ""
		cfg.Editenv = c.Editenv
	}
	switch {
	case c.History != "":
		cfg.History = c.History
	case c.Source.EventLog != "":
		cfg.History = ""
	}
	if c.MaxDepth != nil {
		cfg.MaxDepth = *c.MaxDepth
	}
	c.Source.apply(cfg)

	alg, err := cfg.PCRAlgorithm()
	if err != nil {
		return err
	}

	env, err := readEnvironment(context.Background(), cfg)
	if err != nil {
		return &tpmluks.InputError{Input: tpmluks.InputEnvironment, Err: err}
	}

	digests, err := readHistory(cfg, alg)
	if err != nil {
		return &tpmluks.InputError{Input: tpmluks.InputHistory, Err: err}
	}

	script, err := osOpen(cfg.Script)
	if err != nil {
		return &tpmluks.InputError{Input: tpmluks.InputScript, Err: err}
	}
	defer script.Close()

	prediction, err := tpmluks.PredictPCRValue(&tpmluks.PredictParams{
		Script:       script,
		Env:          env,
		History:      digests,
		PCRAlgorithm: alg,
		MaxDepth:     cfg.MaxDepth})
	if err != nil {
		return err
	}

	logrus.WithField("misses", prediction.Misses).Debugf("predicted %d measurements", len(prediction.Digests))
	fmt.Fprintf(stdout, "%x\n", prediction.Value)
	return nil
}

func readEnvironment(ctx context.Context, cfg *config.Config) (map[string]string, error) {
	if cfg.Grubenv != "" {
		logrus.Debugf("reading environment from %s", cfg.Grubenv)
		return grubenv.ReadFile(cfg.Grubenv)
	}
	logrus.Debugf("reading environment with %s", cfg.Editenv)
	return grubenv.List(ctx, cfg.Editenv, "")
}

// readHistory returns the digests measured during the previous boot. These
// come from the history file if one is configured, else from the TCG event
// log of the current boot.
func readHistory(cfg *config.Config, alg tpm2.HashAlgorithmId) (tpm2.DigestList, error) {
	if cfg.History != "" {
		logrus.Debugf("reading history from %s", cfg.History)
		release, err := history.Lock(cfg.History, false)
		if err != nil {
			return nil, err
		}
		defer release()
		return history.ReadDigestListFile(cfg.History, alg)
	}
	return readEventLogDigests(cfg, alg)
}

func readEventLogDigests(cfg *config.Config, alg tpm2.HashAlgorithmId) (tpm2.DigestList, error) {
	if !tcg.IsGrubPCR(cfg.PCRHandle()) {
		logrus.Warnf("PCR %d is not one that GRUB measures to", cfg.PCR)
	}
	logrus.Debugf("reading history for PCR %d from %s", cfg.PCR, cfg.EventLog)
	log, err := historyReadEventLogFile(cfg.EventLog)
	if err != nil {
		return nil, err
	}
	return history.DigestsFromEventLog(log, alg, cfg.PCRHandle())
}
