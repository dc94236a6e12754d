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

package testutil

import (
	"encoding/hex"
	"fmt"
	"reflect"

	. "gopkg.in/check.v1"
)

type hexEqualsChecker struct {
	*CheckerInfo
}

// HexEquals checks that a byte slice (eg, a tpm2.Digest) is equal to the
// supplied hex string.
var HexEquals Checker = &hexEqualsChecker{
	&CheckerInfo{Name: "HexEquals", Params: []string{"obtained", "expected"}}}

func (checker *hexEqualsChecker) Check(params []interface{}, names []string) (result bool, error string) {
	value := reflect.ValueOf(params[0])
	if value.Kind() != reflect.Slice || value.Type().Elem().Kind() != reflect.Uint8 {
		return false, names[0] + " is not a byte slice"
	}
	expected, ok := params[1].(string)
	if !ok {
		return false, names[1] + " is not a string"
	}
	if _, err := hex.DecodeString(expected); err != nil {
		return false, fmt.Sprintf("%s is not a valid hex string: %v", names[1], err)
	}

	return hex.EncodeToString(value.Bytes()) == expected, ""
}

// DecodeHexString decodes the supplied hex string, failing the test if it
// is invalid.
func DecodeHexString(c *C, s string) []byte {
	b, err := hex.DecodeString(s)
	c.Assert(err, IsNil)
	return b
}
