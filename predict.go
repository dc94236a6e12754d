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

package tpmluks

import (
	"errors"
	"fmt"
	"io"

	"github.com/canonical/go-tpm2"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/johnwallace123/tpm-luks/grubcfg"
	"github.com/johnwallace123/tpm-luks/measure"
)

var log = logrus.WithField("service", "tpmluks")

// DefaultPCRAlgorithm is the digest algorithm used when none is specified.
const DefaultPCRAlgorithm = tpm2.HashAlgorithmSHA1

// PredictParams contains the inputs to PredictPCRValue.
type PredictParams struct {
	// Script is the GRUB configuration that will run on the next boot.
	Script io.Reader

	// Env contains the initial values of the script variables, normally
	// obtained from the GRUB environment block.
	Env map[string]string

	// History contains the digests measured by GRUB during the previous
	// boot, in order. These are used to decide which side of each
	// conditional block in the script is most likely to run.
	History tpm2.DigestList

	// PCRAlgorithm is the digest algorithm of the PCR bank. If not set,
	// DefaultPCRAlgorithm is used.
	PCRAlgorithm tpm2.HashAlgorithmId

	// MaxDepth is the maximum nesting depth of blocks in the script. If
	// zero, a default is used.
	MaxDepth int
}

// Prediction is the result of PredictPCRValue.
type Prediction struct {
	Digests tpm2.DigestList // the sequence of digests expected to be measured
	Misses  int             // the number of expected digests that weren't in the history
	Value   tpm2.Digest     // the expected PCR value after the script has run
}

// PredictPCRValue predicts the value of the PCR that GRUB measures commands to
// after the supplied script runs on the next boot.
//
// The script is parsed and statically evaluated to obtain the commands that
// will be measured, including conditional blocks whose outcome is unknown.
// The outcome of each conditional block is decided by aligning the commands
// with the digests measured during the previous boot. Only the first menu
// entry is considered. The resulting sequence of digests is then used to
// compute the PCR value, starting from a PCR that has been reset.
//
// A *MalformedScriptError is returned if the script cannot be parsed. An
// *InputError is returned if the script cannot be read or the history
// isn't consistent with the digest algorithm.
func PredictPCRValue(params *PredictParams) (*Prediction, error) {
	if params == nil {
		return nil, errors.New("no params")
	}

	alg := params.PCRAlgorithm
	if alg == tpm2.HashAlgorithmNull {
		alg = DefaultPCRAlgorithm
	}
	if !alg.Available() {
		return nil, fmt.Errorf("unsupported digest algorithm %v", alg)
	}

	for i, d := range params.History {
		if len(d) != alg.Size() {
			return nil, &InputError{
				Input: InputHistory,
				Err:   fmt.Errorf("digest %d has the wrong size (got %d bytes, expected %d bytes for %v)", i, len(d), alg.Size(), alg)}
		}
	}

	script, err := grubcfg.Parse(params.Script, params.Env, &grubcfg.ParseOptions{MaxDepth: params.MaxDepth})
	var mse *grubcfg.MalformedScriptError
	switch {
	case xerrors.As(err, &mse):
		return nil, err
	case err != nil:
		return nil, &InputError{Input: InputScript, Err: err}
	}

	if log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		log.Debugf("parsed commands:\n%s", script.Commands)
		for _, entry := range script.Menu {
			log.Debugf("parsed menu entry %q:\n%s", entry.Name, entry.Commands)
		}
	}

	commands := measure.HashTree(alg, script.Commands)
	var menu []measure.DigestTree
	for _, entry := range script.Menu {
		menu = append(menu, measure.HashTree(alg, entry.Commands))
	}

	path := measure.ResolvePath(commands, menu, params.History)
	value := measure.ComputePCRValue(alg, path.Digests)

	log.WithFields(logrus.Fields{
		"algorithm": alg,
		"digests":   len(path.Digests),
		"misses":    path.Misses,
		"consumed":  path.Consumed,
		"history":   len(params.History),
	}).Debugf("predicted PCR value %x", value)

	return &Prediction{
		Digests: path.Digests,
		Misses:  path.Misses,
		Value:   value}, nil
}
