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

package paths

import (
	"path/filepath"

	"github.com/snapcore/snapd/osutil"
)

var osutilFileExists = osutil.FileExists

var (
	// GrubDirs are the candidate GRUB directories, in order of preference.
	GrubDirs = []string{"/boot/grub2", "/boot/grub"}

	// VarLibDir is where the history of measured commands is kept.
	VarLibDir = "/var/lib/tpm-luks"

	// GrubHistoryPath is the default location of the hex encoded list of
	// digests measured by GRUB during the previous boot.
	GrubHistoryPath = filepath.Join(VarLibDir, "grub-history")

	// EventLogPath is the default location of the kernel's binary TCG event log.
	EventLogPath = "/sys/kernel/security/tpm0/binary_bios_measurements"
)

// GrubDir returns the first of GrubDirs that exists, falling back to the
// first entry if none do.
func GrubDir() string {
	for _, dir := range GrubDirs {
		if osutilFileExists(dir) {
			return dir
		}
	}
	return GrubDirs[0]
}

// GrubConfigPath returns the default location of grub.cfg.
func GrubConfigPath() string {
	return filepath.Join(GrubDir(), "grub.cfg")
}

// GrubEnvPath returns the default location of the GRUB environment block.
func GrubEnvPath() string {
	return filepath.Join(GrubDir(), "grubenv")
}

// GrubEditenv returns the name of the grub-editenv tool that matches the
// GRUB directory. Distributions that use /boot/grub2 also rename the tools.
func GrubEditenv() string {
	if filepath.Base(GrubDir()) == "grub2" {
		return "grub2-editenv"
	}
	return "grub-editenv"
}
