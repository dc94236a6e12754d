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

package measure_test

import (
	"github.com/canonical/go-tpm2"
	. "gopkg.in/check.v1"

	"github.com/johnwallace123/tpm-luks/grubcfg"
	"github.com/johnwallace123/tpm-luks/internal/testutil"
	. "github.com/johnwallace123/tpm-luks/measure"
)

type digestSuite struct{}

var _ = Suite(&digestSuite{})

func (s *digestSuite) TestHashCommandSHA1(c *C) {
	c.Check(HashCommand(tpm2.HashAlgorithmSHA1, "abc"), testutil.HexEquals, "a9993e364706816aba3e25717850c26c9cd0d89d")
	c.Check(HashCommand(tpm2.HashAlgorithmSHA1, "echo bar"), testutil.HexEquals, "18583f66ab2fc9fe3535c87adc6290490c89eac4")
}

func (s *digestSuite) TestHashCommandSHA256(c *C) {
	c.Check(HashCommand(tpm2.HashAlgorithmSHA256, "abc"), testutil.HexEquals, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")
}

func (s *digestSuite) TestHashCommandIsExact(c *C) {
	c.Check(HashCommand(tpm2.HashAlgorithmSHA1, "echo bar"), Not(DeepEquals), HashCommand(tpm2.HashAlgorithmSHA1, "echo  bar"))
	c.Check(HashCommand(tpm2.HashAlgorithmSHA1, "echo bar"), Not(DeepEquals), HashCommand(tpm2.HashAlgorithmSHA1, "ECHO bar"))
}

func (s *digestSuite) TestHashTreeEmpty(c *C) {
	c.Check(HashTree(tpm2.HashAlgorithmSHA1, nil), IsNil)
}

func (s *digestSuite) TestHashTree(c *C) {
	tree := grubcfg.Tree{
		&grubcfg.Leaf{Cmd: grubcfg.Command{"insmod", "part_gpt"}},
		&grubcfg.Branch{
			Condition: "[ -n 1 ]",
			True: grubcfg.Tree{
				&grubcfg.Leaf{Cmd: grubcfg.Command{"echo", "a"}}},
			False: grubcfg.Tree{
				&grubcfg.Branch{
					Condition: "b",
					True: grubcfg.Tree{
						&grubcfg.Leaf{Cmd: grubcfg.Command{"echo", "b"}}}}}},
		&grubcfg.Leaf{Cmd: grubcfg.Command{"echo", "Loading Linux ..."}}}

	c.Check(HashTree(tpm2.HashAlgorithmSHA1, tree), DeepEquals, DigestTree{
		leaf("insmod part_gpt"),
		&DigestBranch{
			Condition: "[ -n 1 ]",
			True:      leaves("echo a"),
			False: DigestTree{
				&DigestBranch{
					Condition: "b",
					True:      leaves("echo b")}}},
		leaf("echo Loading Linux ...")})
}

func (s *digestSuite) TestDigestTreeString(c *C) {
	tree := DigestTree{
		&DigestLeaf{Digest: tpm2.Digest{0x01, 0x02}, Cmd: "echo a"},
		&DigestBranch{
			Condition: "x",
			False:     DigestTree{&DigestLeaf{Digest: tpm2.Digest{0x03}, Cmd: "echo b"}}}}
	c.Check(tree.String(), Equals, `0102 (echo a)
if x {
} else {
   03 (echo b)
}
`)
}
