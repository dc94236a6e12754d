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

package history

import (
	"fmt"
	"io"
	"os"

	"github.com/canonical/go-tpm2"
	"github.com/canonical/tcglog-parser"
	"golang.org/x/xerrors"
)

var osOpen = os.Open

// ReadEventLog decodes a binary TCG event log.
func ReadEventLog(r io.Reader) (*tcglog.Log, error) {
	return tcglog.ReadLog(r, &tcglog.LogOptions{})
}

// ReadEventLogFile decodes the binary TCG event log at the specified path,
// eg, /sys/kernel/security/tpm0/binary_bios_measurements.
func ReadEventLogFile(path string) (*tcglog.Log, error) {
	f, err := osOpen(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	log, err := ReadEventLog(f)
	if err != nil {
		return nil, xerrors.Errorf("cannot decode event log: %w", err)
	}
	return log, nil
}

// DigestsFromEventLog returns the digests of the EV_IPL events measured to the
// specified PCR, in the order in which they were measured. For GRUB's command
// PCR, these are the commands that GRUB executed.
func DigestsFromEventLog(log *tcglog.Log, alg tpm2.HashAlgorithmId, pcr tpm2.Handle) (tpm2.DigestList, error) {
	if !log.Algorithms.Contains(alg) {
		return nil, fmt.Errorf("the TCG event log does not have the requested algorithm %v", alg)
	}

	var digests tpm2.DigestList
	for i, ev := range log.Events {
		if ev.PCRIndex != pcr || ev.EventType != tcglog.EventTypeIPL {
			continue
		}
		digest, ok := ev.Digests[alg]
		if !ok {
			return nil, fmt.Errorf("event %d has no %v digest", i, alg)
		}
		digests = append(digests, tpm2.Digest(digest))
	}

	return digests, nil
}
