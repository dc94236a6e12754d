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
	_ "crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"fmt"
	"io"

	"github.com/canonical/go-tpm2"

	"github.com/johnwallace123/tpm-luks/grubcfg"
)

// HashCommand computes the digest that GRUB measures for the supplied
// command string, which must be in its canonical form (see
// grubcfg.Command.String).
func HashCommand(alg tpm2.HashAlgorithmId, cmd string) tpm2.Digest {
	h := alg.NewHash()
	io.WriteString(h, cmd)
	return h.Sum(nil)
}

// DigestNode is an element of a DigestTree. It is either a *DigestLeaf or a
// *DigestBranch.
type DigestNode interface {
	digestNode()
}

// DigestLeaf is the measurement of a single command.
type DigestLeaf struct {
	Digest tpm2.Digest
	Cmd    string // the measured command, for diagnostics
}

func (*DigestLeaf) digestNode() {}

// DigestBranch corresponds to a grubcfg.Branch.
type DigestBranch struct {
	Condition string
	True      DigestTree
	False     DigestTree
}

func (*DigestBranch) digestNode() {}

// DigestTree has the same shape as the grubcfg.Tree it was computed from,
// with each command replaced by its digest.
type DigestTree []DigestNode

// HashTree computes the DigestTree for the supplied command tree.
func HashTree(alg tpm2.HashAlgorithmId, tree grubcfg.Tree) DigestTree {
	var out DigestTree
	for _, n := range tree {
		switch n := n.(type) {
		case *grubcfg.Leaf:
			cmd := n.Cmd.String()
			out = append(out, &DigestLeaf{Digest: HashCommand(alg, cmd), Cmd: cmd})
		case *grubcfg.Branch:
			out = append(out, &DigestBranch{
				Condition: n.Condition,
				True:      HashTree(alg, n.True),
				False:     HashTree(alg, n.False)})
		default:
			panic(fmt.Sprintf("unexpected node type %T", n))
		}
	}
	return out
}

func (t DigestTree) format(b *bytes.Buffer, depth int) {
	for _, n := range t {
		switch n := n.(type) {
		case *DigestLeaf:
			fmt.Fprintf(b, "%*s%x (%s)\n", depth*3, "", n.Digest, n.Cmd)
		case *DigestBranch:
			fmt.Fprintf(b, "%*sif %s {\n", depth*3, "", n.Condition)
			n.True.format(b, depth+1)
			fmt.Fprintf(b, "%*s} else {\n", depth*3, "")
			n.False.format(b, depth+1)
			fmt.Fprintf(b, "%*s}\n", depth*3, "")
		}
	}
}

func (t DigestTree) String() string {
	var b bytes.Buffer
	t.format(&b, 0)
	return b.String()
}
