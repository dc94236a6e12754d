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

import (
	"bytes"
	"fmt"
	"strings"
)

// Command is a single tokenized script line after variable substitution.
type Command []string

// String returns the canonical form of the command, which is the form that
// GRUB measures: the tokens joined by single spaces.
func (c Command) String() string {
	return strings.Join(c, " ")
}

// Node is an element of a Tree. It is either a *Leaf or a *Branch.
type Node interface {
	node()
}

// Leaf is a command that will be measured when it runs.
type Leaf struct {
	Cmd Command
}

func (*Leaf) node() {}

// Branch corresponds to a conditional block in the script. The branch that
// will be taken isn't known until the script runs. An elif chain is
// represented by a nested Branch as the only element of False.
type Branch struct {
	Condition string
	True      Tree
	False     Tree
}

func (*Branch) node() {}

// Tree is an ordered sequence of commands and conditional blocks.
type Tree []Node

func (t Tree) format(b *bytes.Buffer, depth int) {
	for _, n := range t {
		switch n := n.(type) {
		case *Leaf:
			fmt.Fprintf(b, "%*s%s\n", depth*3, "", n.Cmd)
		case *Branch:
			fmt.Fprintf(b, "%*sif %s {\n", depth*3, "", n.Condition)
			n.True.format(b, depth+1)
			fmt.Fprintf(b, "%*s} else {\n", depth*3, "")
			n.False.format(b, depth+1)
			fmt.Fprintf(b, "%*s}\n", depth*3, "")
		}
	}
}

func (t Tree) String() string {
	var b bytes.Buffer
	t.format(&b, 0)
	return b.String()
}
