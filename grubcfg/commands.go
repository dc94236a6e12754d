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

// measuredCommands are the commands that GRUB measures when it executes
// them.
var measuredCommands = map[string]bool{
	"insmod":          true,
	"set":             true,
	"echo":            true,
	"linux":           true,
	"initrd":          true,
	"export":          true,
	"terminal_output": true,
	"search":          true,
	"source":          true,
	"load_env":        true,
}

// reservedCommands are the measured commands plus the words that only
// affect parsing.
var reservedCommands = map[string]bool{
	"menuentry": true,
	"submenu":   true,
	"function":  true,
	"if":        true,
	"else":      true,
	"elif":      true,
	"fi":        true,
	"}":         true,
	"save_env":  true,
}

func init() {
	for cmd := range measuredCommands {
		reservedCommands[cmd] = true
	}
}

// IsMeasuredCommand indicates whether GRUB measures the named command.
func IsMeasuredCommand(name string) bool {
	return measuredCommands[name]
}

// IsReservedCommand indicates whether the supplied word is a recognized
// command or part of the script grammar.
func IsReservedCommand(name string) bool {
	return reservedCommands[name]
}
