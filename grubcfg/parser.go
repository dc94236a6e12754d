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

// Package grubcfg statically evaluates a GRUB configuration script to
// recover the commands that GRUB will measure when it runs the script.
package grubcfg

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/snapcore/snapd/strutil/shlex"
	"golang.org/x/xerrors"
)

const defaultMaxDepth = 64

var shlexSplit = shlex.Split

// MenuEntry corresponds to a menuentry block. The first command of an entry
// is a synthetic "setparams <name>" command.
type MenuEntry struct {
	Name     string
	Commands Tree
}

// Script is the result of parsing a GRUB configuration file.
type Script struct {
	Commands  Tree            // top-level commands, in the order in which they run
	Functions map[string]Tree // function bodies, keyed by name
	Menu      []*MenuEntry    // menu entries, in the order in which they are defined
	Vars      Vars            // variables after parsing the whole script
}

// ParseOptions provides options for Parse.
type ParseOptions struct {
	// MaxDepth is the maximum nesting depth of blocks. Zero selects a
	// default of 64.
	MaxDepth int
}

type parser struct {
	r    *bufio.Reader
	line int
	eof  bool

	depth    int
	maxDepth int

	vars      Vars
	functions map[string]Tree
	menu      []*MenuEntry
}

// Parse parses the GRUB script read from r. The variable store is seeded
// from env, which isn't modified.
//
// A *MalformedScriptError is returned if a block is not closed before the end
// of the input, if an if block has more than one else or elif, if a submenu
// contains anything other than menuentry or submenu blocks, or if the
// nesting depth exceeds the limit.
func Parse(r io.Reader, env map[string]string, opts *ParseOptions) (*Script, error) {
	if opts == nil {
		opts = new(ParseOptions)
	}
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	p := &parser{
		r:         bufio.NewReader(r),
		maxDepth:  maxDepth,
		vars:      NewVars(env),
		functions: make(map[string]Tree)}

	commands, err := p.parseTopLevel()
	if err != nil {
		return nil, err
	}

	return &Script{
		Commands:  commands,
		Functions: p.functions,
		Menu:      p.menu,
		Vars:      p.vars}, nil
}

// next returns the tokens for the next line of the script, or false if the
// end of the input has been reached.
func (p *parser) next() ([]string, bool, error) {
	if p.eof {
		return nil, false, nil
	}

	line, err := p.r.ReadString('\n')
	switch {
	case err == io.EOF:
		p.eof = true
		if line == "" {
			return nil, false, nil
		}
	case err != nil:
		return nil, false, xerrors.Errorf("cannot read line %d: %w", p.line+1, err)
	}
	p.line++

	args, err := shlexSplit(keepQuotedEscapes(strings.TrimSpace(line)))
	if err != nil {
		return nil, false, &MalformedScriptError{
			Line:      p.line,
			Construct: "line",
			Reason:    fmt.Sprintf("cannot tokenize: %v", err)}
	}
	return args, true, nil
}

// keepQuotedEscapes doubles every backslash inside double quotes that doesn't
// escape a '"' or another backslash. The tokenizer would otherwise drop it,
// and an escaped '$' such as "\$foo" must still be escaped when the token
// reaches Vars.Expand.
func keepQuotedEscapes(line string) string {
	if !strings.Contains(line, `\`) {
		return line
	}

	const (
		unquoted = iota
		singleQuoted
		doubleQuoted
	)

	var b strings.Builder
	state := unquoted
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch state {
		case unquoted:
			switch c {
			case '\\':
				b.WriteByte(c)
				if i+1 < len(line) {
					i++
					b.WriteByte(line[i])
				}
				continue
			case '\'':
				state = singleQuoted
			case '"':
				state = doubleQuoted
			}
		case singleQuoted:
			if c == '\'' {
				state = unquoted
			}
		case doubleQuoted:
			switch c {
			case '"':
				state = unquoted
			case '\\':
				if i+1 < len(line) && (line[i+1] == '"' || line[i+1] == '\\') {
					b.WriteByte(c)
					i++
					b.WriteByte(line[i])
					continue
				}
				b.WriteString(`\\`)
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func (p *parser) enter(line int, construct string) error {
	if p.depth >= p.maxDepth {
		return &MalformedScriptError{
			Line:      line,
			Construct: construct,
			Reason:    fmt.Sprintf("nesting depth exceeds %d", p.maxDepth)}
	}
	p.depth++
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func isIgnored(args []string) bool {
	return len(args) == 0 || strings.HasPrefix(args[0], "#")
}

func (p *parser) parseTopLevel() (Tree, error) {
	var out Tree
	for {
		args, ok, err := p.next()
		switch {
		case err != nil:
			return nil, err
		case !ok:
			return out, nil
		case isIgnored(args):
			continue
		}

		switch args[0] {
		case "function":
			err = p.parseFunction(args)
		case "menuentry":
			err = p.parseMenuEntry(args)
		case "submenu":
			err = p.parseSubmenu(args)
		default:
			err = p.parseLine(args, &out)
		}
		if err != nil {
			return nil, err
		}
	}
}

// parseLine handles a single line that isn't the start of a function,
// menuentry or submenu block, appending any resulting nodes to out.
func (p *parser) parseLine(args []string, out *Tree) error {
	if isIgnored(args) {
		return nil
	}

	if len(args) == 1 && !IsReservedCommand(args[0]) {
		if name, value, ok := parseAssignment(args[0]); ok {
			p.vars[name] = value
		}
	}

	cmd := make(Command, len(args))
	for i, arg := range args {
		cmd[i] = p.vars.Expand(arg)
	}

	if cmd[0] == "set" && len(cmd) == 2 {
		if name, value, ok := parseAssignment(cmd[1]); ok {
			p.vars[name] = value
		}
	}

	if IsMeasuredCommand(cmd[0]) {
		*out = append(*out, &Leaf{Cmd: cmd})
		return nil
	}
	if body, ok := p.functions[cmd[0]]; ok {
		// The commands in the function body are measured before the
		// function call completes.
		*out = append(*out, body...)
		*out = append(*out, &Leaf{Cmd: cmd})
		return nil
	}
	if cmd[0] == "if" && cmd[len(cmd)-1] == "then" {
		branch, err := p.parseIf(strings.Join(cmd[1:len(cmd)-1], " "), p.line)
		if err != nil {
			return err
		}
		*out = append(*out, branch)
	}

	// Anything else isn't measured.
	return nil
}

// parseBody consumes the lines of a function or menuentry block up to and
// including the closing brace.
func (p *parser) parseBody(construct string, start int, out *Tree) error {
	for {
		args, ok, err := p.next()
		switch {
		case err != nil:
			return err
		case !ok:
			return &MalformedScriptError{Line: start, Construct: construct, Reason: "missing closing '}'"}
		case len(args) == 0:
			continue
		case args[0] == "}":
			return nil
		}

		if err := p.parseLine(args, out); err != nil {
			return err
		}
	}
}

func (p *parser) parseFunction(args []string) error {
	start := p.line
	if len(args) < 2 {
		return &MalformedScriptError{Line: start, Construct: "function", Reason: "missing name"}
	}
	name := args[1]
	construct := fmt.Sprintf("function %q", name)

	if err := p.enter(start, construct); err != nil {
		return err
	}
	defer p.leave()

	var body Tree
	if err := p.parseBody(construct, start, &body); err != nil {
		return err
	}
	p.functions[name] = body
	return nil
}

func (p *parser) parseMenuEntry(args []string) error {
	start := p.line
	if len(args) < 2 {
		return &MalformedScriptError{Line: start, Construct: "menuentry", Reason: "missing title"}
	}
	name := args[1]
	construct := fmt.Sprintf("menuentry %q", name)

	if err := p.enter(start, construct); err != nil {
		return err
	}
	defer p.leave()

	entry := &MenuEntry{
		Name:     name,
		Commands: Tree{&Leaf{Cmd: Command{"setparams", name}}}}
	if err := p.parseBody(construct, start, &entry.Commands); err != nil {
		return err
	}
	p.menu = append(p.menu, entry)
	return nil
}

func (p *parser) parseSubmenu(args []string) error {
	start := p.line
	if len(args) < 2 {
		return &MalformedScriptError{Line: start, Construct: "submenu", Reason: "missing title"}
	}
	construct := fmt.Sprintf("submenu %q", args[1])

	if err := p.enter(start, construct); err != nil {
		return err
	}
	defer p.leave()

	for {
		args, ok, err := p.next()
		switch {
		case err != nil:
			return err
		case !ok:
			return &MalformedScriptError{Line: start, Construct: construct, Reason: "missing closing '}'"}
		case isIgnored(args):
			continue
		}

		switch args[0] {
		case "submenu":
			err = p.parseSubmenu(args)
		case "menuentry":
			err = p.parseMenuEntry(args)
		case "}":
			return nil
		default:
			err = &MalformedScriptError{
				Line:      p.line,
				Construct: construct,
				Reason:    fmt.Sprintf("unsupported command %q", args[0])}
		}
		if err != nil {
			return err
		}
	}
}

// parseIf consumes the lines of an if block up to and including the
// closing fi. An elif starts a nested block which becomes the false branch,
// and whose fi also terminates this block.
func (p *parser) parseIf(condition string, start int) (*Branch, error) {
	construct := fmt.Sprintf("if %q", condition)
	if err := p.enter(start, construct); err != nil {
		return nil, err
	}
	defer p.leave()

	branch := &Branch{Condition: condition}
	out := &branch.True

	for {
		args, ok, err := p.next()
		switch {
		case err != nil:
			return nil, err
		case !ok:
			return nil, &MalformedScriptError{Line: start, Construct: construct, Reason: "missing 'fi'"}
		case len(args) == 0:
			continue
		}

		switch args[0] {
		case "fi":
			return branch, nil
		case "else", "elif":
			if out == &branch.False {
				return nil, &MalformedScriptError{
					Line:      p.line,
					Construct: construct,
					Reason:    fmt.Sprintf("unexpected %q after else", args[0])}
			}
			out = &branch.False

			if args[0] == "elif" && args[len(args)-1] == "then" {
				cmd := make(Command, len(args))
				for i, arg := range args {
					cmd[i] = p.vars.Expand(arg)
				}
				nested, err := p.parseIf(strings.Join(cmd[1:len(cmd)-1], " "), p.line)
				if err != nil {
					return nil, err
				}
				branch.False = append(branch.False, nested)
				return branch, nil
			}
		default:
			if err := p.parseLine(args, out); err != nil {
				return nil, err
			}
		}
	}
}
