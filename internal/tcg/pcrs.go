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

package tcg

import "github.com/canonical/go-tpm2"

const (
	// GrubCommandPCR is the PCR that GRUB extends with the commands it
	// executes and the kernel command line.
	GrubCommandPCR tpm2.Handle = 8

	// GrubFilePCR is the PCR that GRUB extends with the files it loads.
	GrubFilePCR tpm2.Handle = 9
)

// IsGrubPCR indicates whether the supplied PCR is one that GRUB measures to.
func IsGrubPCR(pcr tpm2.Handle) bool {
	return pcr == GrubCommandPCR || pcr == GrubFilePCR
}
