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

package measure

import "github.com/canonical/go-tpm2"

// ComputePCRValue computes the value of a PCR, starting from its reset value
// of all zeroes, after it has been extended with each of the supplied
// digests in turn.
func ComputePCRValue(alg tpm2.HashAlgorithmId, digests tpm2.DigestList) tpm2.Digest {
	value := make(tpm2.Digest, alg.Size())
	for _, d := range digests {
		h := alg.NewHash()
		h.Write(value)
		h.Write(d)
		value = h.Sum(nil)
	}
	return value
}
