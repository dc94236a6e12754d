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

// Package grubenv reads the GRUB environment, which provides the initial
// values of the variables seen by a GRUB script.
package grubenv

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/xerrors"
)

var osOpen = os.Open

// Read decodes a GRUB environment from r. This accepts both an environment
// block as written by grub-editenv, where escaped newlines and backslashes
// within values are decoded, and a plain list of NAME=VALUE lines. Lines
// starting with '#' (such as the header and padding of an environment
// block) are ignored, as are lines without a '='. If a variable appears more
// than once, the last value is used.
func Read(r io.Reader) (map[string]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, xerrors.Errorf("cannot read environment: %w", err)
	}

	env := make(map[string]string)
	for len(data) > 0 {
		if data[0] == '#' {
			i := bytes.IndexByte(data, '\n')
			if i < 0 {
				break
			}
			data = data[i+1:]
			continue
		}

		var entry []byte
		escaped := false
	Entry:
		for len(data) > 0 {
			c := data[0]
			data = data[1:]
			switch {
			case escaped:
				entry = append(entry, c)
				escaped = false
			case c == '\\':
				escaped = true
			case c == '\n':
				break Entry
			default:
				entry = append(entry, c)
			}
		}

		name, value, ok := strings.Cut(strings.TrimSuffix(string(entry), "\r"), "=")
		if !ok || name == "" {
			continue
		}
		env[name] = value
	}

	return env, nil
}

// ReadFile decodes the GRUB environment stored in the file at the specified
// path.
func ReadFile(path string) (map[string]string, error) {
	f, err := osOpen(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f)
}

// List obtains the GRUB environment by running "<editenv> [file] list". If
// file is empty, the tool's default environment file is used.
func List(ctx context.Context, editenv, file string) (map[string]string, error) {
	var args []string
	if file != "" {
		args = append(args, file)
	}
	args = append(args, "list")

	cmd := exec.CommandContext(ctx, editenv, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, xerrors.Errorf("cannot run %s: %w (stderr: %q)", editenv, err, strings.TrimSpace(stderr.String()))
	}

	env := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		name, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok || name == "" {
			continue
		}
		env[name] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, xerrors.Errorf("cannot parse output of %s: %w", editenv, err)
	}

	return env, nil
}
