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
	"fmt"

	"github.com/johnwallace123/tpm-luks/grubcfg"
)

// Names of the inputs that may be reported in an InputError.
const (
	InputScript      = "script"
	InputEnvironment = "environment"
	InputHistory     = "history"
)

// MalformedScriptError is returned when the boot script cannot be parsed.
type MalformedScriptError = grubcfg.MalformedScriptError

// InputError is returned when one of the inputs to a prediction cannot be
// read or decoded.
type InputError struct {
	Input string // the name of the input
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.Input, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}
