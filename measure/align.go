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

import (
	"bytes"

	"github.com/canonical/go-tpm2"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("service", "measure")

// AlignResult is the result of aligning a DigestTree with a previously
// measured sequence of digests.
type AlignResult struct {
	Misses   int             // the number of digests in the path that weren't found in the history
	Consumed int             // the number of history entries consumed
	Digests  tpm2.DigestList // the resolved path, in measurement order
}

// betterThan indicates whether r explains the history better than other.
// Fewer misses wins, followed by more history consumed.
func (r *AlignResult) betterThan(other *AlignResult) bool {
	if r.Misses != other.Misses {
		return r.Misses < other.Misses
	}
	return r.Consumed > other.Consumed
}

func indexDigest(digests tpm2.DigestList, digest tpm2.Digest) int {
	for i, d := range digests {
		if bytes.Equal(d, digest) {
			return i
		}
	}
	return -1
}

// Align computes the path through the supplied tree that best matches the
// history of a previous boot. Every command in the tree is part of the path.
// Each command is searched for in the unconsumed part of the history,
// consuming up to and including the first match, or counting as a miss if
// there is no match.
//
// Both sides of each branch are aligned independently against the same
// unconsumed history. The side with the fewest misses is selected, then the
// side that consumes the most history, and then the true side. This is a
// heuristic which only considers one branch at a time.
func Align(tree DigestTree, history tpm2.DigestList) *AlignResult {
	result := new(AlignResult)

	for _, n := range tree {
		switch n := n.(type) {
		case *DigestLeaf:
			result.Digests = append(result.Digests, n.Digest)

			i := indexDigest(history[result.Consumed:], n.Digest)
			if i < 0 {
				log.Tracef("no match in history for %x (%s)", n.Digest, n.Cmd)
				result.Misses++
				continue
			}
			result.Consumed += i + 1
		case *DigestBranch:
			b := alignBranch(n, history[result.Consumed:])
			result.Misses += b.Misses
			result.Consumed += b.Consumed
			result.Digests = append(result.Digests, b.Digests...)
		}
	}

	return result
}

func alignBranch(branch *DigestBranch, history tpm2.DigestList) *AlignResult {
	t := Align(branch.True, history)
	f := Align(branch.False, history)

	fields := logrus.Fields{
		"condition":      branch.Condition,
		"true-misses":    t.Misses,
		"true-consumed":  t.Consumed,
		"false-misses":   f.Misses,
		"false-consumed": f.Consumed,
	}
	if f.betterThan(t) {
		log.WithFields(fields).Debug("selected false branch")
		return f
	}
	log.WithFields(fields).Debug("selected true branch")
	return t
}

// ResolvePath computes the path for the next boot from the top-level commands
// of a script and its menu entries. The top-level commands are aligned with
// the history first. Only the first menu entry is considered, which is aligned
// with the remaining history. Any other menu entries are ignored.
func ResolvePath(commands DigestTree, menu []DigestTree, history tpm2.DigestList) *AlignResult {
	result := Align(commands, history)
	if len(menu) == 0 {
		return result
	}

	entry := Align(menu[0], history[result.Consumed:])
	return &AlignResult{
		Misses:   result.Misses + entry.Misses,
		Consumed: result.Consumed + entry.Consumed,
		Digests:  append(result.Digests, entry.Digests...)}
}
