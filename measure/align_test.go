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

	. "github.com/johnwallace123/tpm-luks/measure"
)

type alignSuite struct{}

var _ = Suite(&alignSuite{})

type testAlignData struct {
	tree    DigestTree
	history tpm2.DigestList

	expectedMisses   int
	expectedConsumed int
	expectedDigests  tpm2.DigestList
}

func (s *alignSuite) testAlign(c *C, data *testAlignData) {
	result := Align(data.tree, data.history)
	c.Check(result.Misses, Equals, data.expectedMisses)
	c.Check(result.Consumed, Equals, data.expectedConsumed)
	c.Check(result.Digests, DeepEquals, data.expectedDigests)
}

func (s *alignSuite) TestAlignEmpty(c *C) {
	s.testAlign(c, &testAlignData{
		history: hashAll("a", "b")})
}

func (s *alignSuite) TestAlignExactMatch(c *C) {
	s.testAlign(c, &testAlignData{
		tree:             leaves("a", "b", "c"),
		history:          hashAll("a", "b", "c"),
		expectedConsumed: 3,
		expectedDigests:  hashAll("a", "b", "c")})
}

func (s *alignSuite) TestAlignSameRelativeOrder(c *C) {
	s.testAlign(c, &testAlignData{
		tree:             leaves("a", "b", "c"),
		history:          hashAll("x", "a", "y", "b", "c", "z"),
		expectedConsumed: 5,
		expectedDigests:  hashAll("a", "b", "c")})
}

func (s *alignSuite) TestAlignMissing(c *C) {
	s.testAlign(c, &testAlignData{
		tree:             leaves("a", "new", "b"),
		history:          hashAll("a", "b"),
		expectedMisses:   1,
		expectedConsumed: 2,
		expectedDigests:  hashAll("a", "new", "b")})
}

func (s *alignSuite) TestAlignOutOfOrder(c *C) {
	s.testAlign(c, &testAlignData{
		tree:             leaves("a", "b"),
		history:          hashAll("b", "a"),
		expectedMisses:   1,
		expectedConsumed: 2,
		expectedDigests:  hashAll("a", "b")})
}

func (s *alignSuite) TestAlignNoHistory(c *C) {
	s.testAlign(c, &testAlignData{
		tree:            leaves("a", "b"),
		expectedMisses:  2,
		expectedDigests: hashAll("a", "b")})
}

func (s *alignSuite) TestAlignBranchTrueMatches(c *C) {
	s.testAlign(c, &testAlignData{
		tree: DigestTree{
			&DigestBranch{
				Condition: "[ -n 1 ]",
				True:      leaves("insmod part_gpt"),
				False:     leaves("insmod part_msdos")}},
		history:          hashAll("insmod part_gpt"),
		expectedConsumed: 1,
		expectedDigests:  hashAll("insmod part_gpt")})
}

func (s *alignSuite) TestAlignBranchFalseMatches(c *C) {
	s.testAlign(c, &testAlignData{
		tree: DigestTree{
			&DigestBranch{
				Condition: "[ -n 1 ]",
				True:      leaves("insmod part_gpt"),
				False:     leaves("insmod part_msdos")}},
		history:          hashAll("insmod part_msdos"),
		expectedConsumed: 1,
		expectedDigests:  hashAll("insmod part_msdos")})
}

func (s *alignSuite) TestAlignBranchFewerMisses(c *C) {
	// The false branch consumes more history, but has more misses.
	s.testAlign(c, &testAlignData{
		tree: DigestTree{
			&DigestBranch{
				Condition: "x",
				True:      leaves("a"),
				False:     leaves("b", "missing")}},
		history:          hashAll("a", "b"),
		expectedConsumed: 1,
		expectedDigests:  hashAll("a")})
}

func (s *alignSuite) TestAlignBranchMoreConsumed(c *C) {
	s.testAlign(c, &testAlignData{
		tree: DigestTree{
			&DigestBranch{
				Condition: "x",
				True:      leaves("b"),
				False:     leaves("c")}},
		history:          hashAll("a", "b", "c"),
		expectedConsumed: 3,
		expectedDigests:  hashAll("c")})
}

func (s *alignSuite) TestAlignBranchTieSelectsTrue(c *C) {
	s.testAlign(c, &testAlignData{
		tree: DigestTree{
			&DigestBranch{
				Condition: "x",
				True:      leaves("a"),
				False:     leaves("b")}},
		history:         hashAll("c"),
		expectedMisses:  1,
		expectedDigests: hashAll("a")})
}

func (s *alignSuite) TestAlignBranchEmptyFalse(c *C) {
	// An empty false branch has no misses, so it beats a true branch which
	// isn't in the history.
	s.testAlign(c, &testAlignData{
		tree: DigestTree{
			leaf("a"),
			&DigestBranch{
				Condition: "x",
				True:      leaves("load_env")},
			leaf("b")},
		history:          hashAll("a", "b"),
		expectedConsumed: 2,
		expectedDigests:  hashAll("a", "b")})
}

func (s *alignSuite) TestAlignBranchCommitsSelectedConsumption(c *C) {
	// The true branch is selected because it consumes more history, and
	// the following command is aligned after it. There is no backtracking.
	s.testAlign(c, &testAlignData{
		tree: DigestTree{
			&DigestBranch{
				Condition: "x",
				True:      leaves("c"),
				False:     leaves("a")},
			leaf("b")},
		history:          hashAll("a", "b", "c"),
		expectedMisses:   1,
		expectedConsumed: 3,
		expectedDigests:  hashAll("c", "b")})
}

func (s *alignSuite) TestAlignBranchLosingSideDiscarded(c *C) {
	s.testAlign(c, &testAlignData{
		tree: DigestTree{
			leaf("a"),
			&DigestBranch{
				Condition: "x",
				True:      leaves("b", "c"),
				False:     leaves("e")},
			leaf("d")},
		history:          hashAll("a", "b", "c", "d"),
		expectedConsumed: 4,
		expectedDigests:  hashAll("a", "b", "c", "d")})
}

func (s *alignSuite) TestAlignNestedBranches(c *C) {
	// if a; elif b; else c
	s.testAlign(c, &testAlignData{
		tree: DigestTree{
			&DigestBranch{
				Condition: "a",
				True:      leaves("echo a"),
				False: DigestTree{
					&DigestBranch{
						Condition: "b",
						True:      leaves("echo b"),
						False:     leaves("echo c")}}},
			leaf("echo d")},
		history:          hashAll("echo c", "echo d"),
		expectedConsumed: 2,
		expectedDigests:  hashAll("echo c", "echo d")})
}

func (s *alignSuite) TestAlignBranchInBranch(c *C) {
	s.testAlign(c, &testAlignData{
		tree: DigestTree{
			&DigestBranch{
				Condition: "a",
				True: DigestTree{
					leaf("x"),
					&DigestBranch{
						Condition: "b",
						True:      leaves("y"),
						False:     leaves("z")}},
				False: leaves("w")}},
		history:          hashAll("x", "z"),
		expectedConsumed: 2,
		expectedDigests:  hashAll("x", "z")})
}

func (s *alignSuite) TestResolvePathNoMenu(c *C) {
	result := ResolvePath(leaves("a", "b"), nil, hashAll("a", "b"))
	c.Check(result.Misses, Equals, 0)
	c.Check(result.Consumed, Equals, 2)
	c.Check(result.Digests, DeepEquals, hashAll("a", "b"))
}

func (s *alignSuite) TestResolvePathFirstMenuEntry(c *C) {
	menu := []DigestTree{
		leaves("setparams Ubuntu", "linux /vmlinuz"),
		leaves("setparams Other", "linux /other")}
	result := ResolvePath(leaves("a", "b"), menu, hashAll("a", "b", "setparams Ubuntu", "linux /vmlinuz"))
	c.Check(result.Misses, Equals, 0)
	c.Check(result.Consumed, Equals, 4)
	c.Check(result.Digests, DeepEquals, hashAll("a", "b", "setparams Ubuntu", "linux /vmlinuz"))
}

func (s *alignSuite) TestResolvePathMenuUsesRemainingHistory(c *C) {
	// "a" appears in the history before the top-level commands finish, so
	// it can't be matched by the menu entry.
	menu := []DigestTree{leaves("a")}
	result := ResolvePath(leaves("b"), menu, hashAll("a", "b"))
	c.Check(result.Misses, Equals, 1)
	c.Check(result.Consumed, Equals, 2)
	c.Check(result.Digests, DeepEquals, hashAll("b", "a"))
}

func (s *alignSuite) TestResolvePathMenuBranch(c *C) {
	menu := []DigestTree{
		{
			leaf("setparams Ubuntu"),
			&DigestBranch{
				Condition: "[ x$grub_platform = xxen ]",
				True:      leaves("insmod xzio"),
				False:     leaves("insmod gzio")}}}
	result := ResolvePath(leaves("a"), menu, hashAll("a", "setparams Ubuntu", "insmod gzio"))
	c.Check(result.Misses, Equals, 0)
	c.Check(result.Consumed, Equals, 3)
	c.Check(result.Digests, DeepEquals, hashAll("a", "setparams Ubuntu", "insmod gzio"))
}
