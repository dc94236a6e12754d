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

// Package history provides access to the sequence of digests that were
// measured to a PCR during a previous boot.
package history

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/canonical/go-tpm2"
	"github.com/snapcore/snapd/osutil"
	"github.com/snapcore/snapd/osutil/sys"
	"golang.org/x/xerrors"
)

// ReadDigestList reads a list of digests from r, which must contain one hex
// encoded digest per line. Blank lines are ignored. Each digest must have the
// size of the supplied algorithm.
func ReadDigestList(r io.Reader, alg tpm2.HashAlgorithmId) (tpm2.DigestList, error) {
	var digests tpm2.DigestList

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		s := strings.TrimSpace(scanner.Text())
		if s == "" {
			continue
		}

		digest, err := hex.DecodeString(s)
		if err != nil {
			return nil, xerrors.Errorf("cannot decode digest on line %d: %w", line, err)
		}
		if len(digest) != alg.Size() {
			return nil, fmt.Errorf("invalid digest size on line %d (got %d bytes, expected %d bytes for %v)", line, len(digest), alg.Size(), alg)
		}
		digests = append(digests, digest)
	}
	if err := scanner.Err(); err != nil {
		return nil, xerrors.Errorf("cannot read digests: %w", err)
	}

	return digests, nil
}

// ReadDigestListFile reads a list of digests from the file at the specified
// path. See ReadDigestList.
func ReadDigestListFile(path string, alg tpm2.HashAlgorithmId) (tpm2.DigestList, error) {
	f, err := osOpen(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadDigestList(f, alg)
}

// WriteDigestList writes the supplied digests to w in the format understood
// by ReadDigestList.
func WriteDigestList(w io.Writer, digests tpm2.DigestList) error {
	for _, digest := range digests {
		if _, err := fmt.Fprintf(w, "%x\n", digest); err != nil {
			return err
		}
	}
	return nil
}

// WriteDigestListFile atomically replaces the file at the specified path with
// the supplied digests, in the format understood by ReadDigestList.
func WriteDigestListFile(path string, digests tpm2.DigestList) error {
	f, err := osutil.NewAtomicFile(path, 0644, 0, sys.UserID(osutil.NoChown), sys.GroupID(osutil.NoChown))
	if err != nil {
		return xerrors.Errorf("cannot create new atomic file: %w", err)
	}
	defer f.Cancel()

	if err := WriteDigestList(f, digests); err != nil {
		return xerrors.Errorf("cannot write digests: %w", err)
	}
	if err := f.Commit(); err != nil {
		return xerrors.Errorf("cannot commit file: %w", err)
	}
	return nil
}
