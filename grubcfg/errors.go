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

package grubcfg

import "fmt"

// MalformedScriptError is returned from Parse when the script cannot be
// parsed, eg, because a block is not closed before the end of the input.
type MalformedScriptError struct {
	Line      int    // the line on which the problem was detected, or the opening line of an unclosed block
	Construct string // the construct being parsed
	Reason    string
}

func (e *MalformedScriptError) Error() string {
	return fmt.Sprintf("malformed script at line %d: %s: %s", e.Line, e.Construct, e.Reason)
}
