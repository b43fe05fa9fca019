// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package command parses the text commands that define fields, such as
// "add fields a b scale_factors 1 -1", the same commands that
// [field.Field.CommandString] returns.
//
// A command starts with the type name of the field, followed by
// options in any order. Each option is a keyword followed by its
// values: field names, numbers or a file name. Tokens are split as in
// a shell, so names with spaces can be quoted.
package command

import (
	"bufio"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mattn/go-shellwords"

	"github.com/hsorby/cmgui-sub001/base/errors"
	"github.com/hsorby/cmgui-sub001/field"
	"github.com/hsorby/cmgui-sub001/imagecache"
)

// Options are the options for defining fields from commands.
type Options struct {

	// Locator is given to image field types to find where their
	// texture coordinate field takes the coordinates of each pixel.
	// If nil, pixels are sampled at their coordinates.
	Locator imagecache.Locator
}

// Error is an error in a command, at the given token.
type Error struct {

	// Command is the full command.
	Command string

	// Index is the index of the offending token, which is the number
	// of tokens when the command ended too soon.
	Index int

	// Token is the offending token, or "" at the end of the command.
	Token string

	Err error
}

func (e *Error) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("command %q: at end: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("command %q: token %d %q: %v", e.Command, e.Index, e.Token, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Parse parses the given command, returning the core and the sources of
// the field it defines, which are looked up by name in the manager.
// Nothing is modified.
func Parse(mgr *field.Manager, cmd string, opts *Options) (field.Core, []*field.Field, error) {
	if mgr == nil {
		return nil, nil, fmt.Errorf("command.Parse: nil manager: %w", field.ErrInvalidArgument)
	}
	args, err := shellwords.Parse(cmd)
	if err != nil {
		return nil, nil, &Error{Command: cmd, Err: fmt.Errorf("%w: %w", err, field.ErrInvalidArgument)}
	}
	return parseArgs(mgr, cmd, args, 0, opts)
}

// parseArgs parses the tokens of the given command, starting with the
// type name at the given token.
func parseArgs(mgr *field.Manager, cmd string, args []string, start int, opts *Options) (field.Core, []*field.Field, error) {
	if opts == nil {
		opts = &Options{}
	}
	p := &parser{mgr: mgr, opts: opts, cmd: cmd, args: args, pos: start}
	name, ok := p.next()
	if !ok {
		return nil, nil, p.errorf("no field type")
	}
	parse, ok := types[name]
	if !ok {
		p.pos--
		return nil, nil, p.errorf("unknown field type")
	}
	return parse(p)
}

// Define defines the field with the given name in the manager from the
// given command, creating it if it does not exist. On error the
// manager and its fields are unchanged.
func Define(mgr *field.Manager, name, cmd string, opts *Options) (*field.Field, error) {
	core, sources, err := Parse(mgr, cmd, opts)
	if err != nil {
		return nil, err
	}
	f, err := mgr.Define(name, core, sources...)
	if err != nil {
		return nil, err
	}
	slog.Debug("command: defined field", "field", name, "command", cmd)
	return f, nil
}

// Run runs a script of commands, one per line, of the form
//
//	define <name> <command>
//
// Blank lines and lines starting with # are skipped. Notifications are
// batched until the script ends. Running stops at the first error,
// which is logged and returned with its line number; the fields defined
// by the lines before it remain.
func Run(mgr *field.Manager, script string, opts *Options) error {
	if mgr == nil {
		return fmt.Errorf("command.Run: nil manager: %w", field.ErrInvalidArgument)
	}
	mgr.BeginChange()
	defer mgr.EndChange()
	sc := bufio.NewScanner(strings.NewReader(script))
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := runLine(mgr, line, opts); err != nil {
			return errors.Log(fmt.Errorf("command.Run: line %d: %w", ln, err))
		}
	}
	return sc.Err()
}

// runLine runs one define line.
func runLine(mgr *field.Manager, line string, opts *Options) error {
	args, err := shellwords.Parse(line)
	if err != nil {
		return &Error{Command: line, Err: fmt.Errorf("%w: %w", err, field.ErrInvalidArgument)}
	}
	switch {
	case len(args) == 0 || args[0] != "define":
		tok := ""
		if len(args) > 0 {
			tok = args[0]
		}
		return &Error{Command: line, Token: tok, Err: fmt.Errorf("expected define: %w", field.ErrInvalidArgument)}
	case len(args) < 3:
		return &Error{Command: line, Index: len(args), Err: fmt.Errorf("expected define <name> <command>: %w", field.ErrInvalidArgument)}
	}
	core, sources, err := parseArgs(mgr, line, args, 2, opts)
	if err != nil {
		return err
	}
	if _, err := mgr.Define(args[1], core, sources...); err != nil {
		return err
	}
	slog.Debug("command: defined field", "field", args[1], "command", line)
	return nil
}

// parser is the state of parsing one command.
type parser struct {
	mgr  *field.Manager
	opts *Options
	cmd  string
	args []string
	pos  int
}

// errorf returns an [Error] at the current token.
func (p *parser) errorf(format string, a ...any) error {
	e := &Error{Command: p.cmd, Index: p.pos, Err: fmt.Errorf(format+": %w", append(a, field.ErrInvalidArgument)...)}
	if p.pos < len(p.args) {
		e.Token = p.args[p.pos]
	}
	return e
}

func (p *parser) done() bool { return p.pos >= len(p.args) }

// next returns the next token, if any.
func (p *parser) next() (string, bool) {
	if p.done() {
		return "", false
	}
	p.pos++
	return p.args[p.pos-1], true
}

// options parses options until the end of the command, calling the
// parser of each option keyword with the parser positioned after it.
func (p *parser) options(opts map[string]func() error) error {
	for !p.done() {
		kw := p.args[p.pos]
		parse, ok := opts[kw]
		if !ok {
			return p.errorf("unknown option")
		}
		p.pos++
		if err := parse(); err != nil {
			return err
		}
	}
	return nil
}

// fields parses n field names, or all remaining tokens if n < 0.
func (p *parser) fields(n int) ([]*field.Field, error) {
	if n < 0 {
		n = len(p.args) - p.pos
	}
	fs := make([]*field.Field, n)
	for i := range fs {
		name, ok := p.next()
		if !ok {
			return nil, p.errorf("expected %d field names", n)
		}
		f := p.mgr.FindByName(name)
		if f == nil {
			p.pos--
			return nil, p.errorf("unknown field")
		}
		fs[i] = f
	}
	return fs, nil
}

// field parses one field name.
func (p *parser) field() (*field.Field, error) {
	fs, err := p.fields(1)
	if err != nil {
		return nil, err
	}
	return fs[0], nil
}

// floats parses all of the following tokens that are numbers,
// requiring at least one.
func (p *parser) floats() ([]float64, error) {
	var vals []float64
	for !p.done() {
		v, err := strconv.ParseFloat(p.args[p.pos], 64)
		if err != nil {
			break
		}
		vals = append(vals, v)
		p.pos++
	}
	if len(vals) == 0 {
		return nil, p.errorf("expected numbers")
	}
	return vals, nil
}

// ints parses all of the following tokens that are integers,
// requiring at least one.
func (p *parser) ints() ([]int, error) {
	var vals []int
	for !p.done() {
		v, err := strconv.Atoi(p.args[p.pos])
		if err != nil {
			break
		}
		vals = append(vals, v)
		p.pos++
	}
	if len(vals) == 0 {
		return nil, p.errorf("expected integers")
	}
	return vals, nil
}

// integer parses one integer.
func (p *parser) integer() (int, error) {
	if p.done() {
		return 0, p.errorf("expected an integer")
	}
	v, err := strconv.Atoi(p.args[p.pos])
	if err != nil {
		return 0, p.errorf("expected an integer")
	}
	p.pos++
	return v, nil
}

// number parses one number.
func (p *parser) number() (float64, error) {
	if p.done() {
		return 0, p.errorf("expected a number")
	}
	v, err := strconv.ParseFloat(p.args[p.pos], 64)
	if err != nil {
		return 0, p.errorf("expected a number")
	}
	p.pos++
	return v, nil
}

// word parses one token of any kind.
func (p *parser) word(what string) (string, error) {
	w, ok := p.next()
	if !ok {
		return "", p.errorf("expected %s", what)
	}
	return w, nil
}

// require returns an error at the end of the command for each missing
// option keyword, whose value is nil or zero.
func (p *parser) require(missing ...string) error {
	if len(missing) == 0 {
		return nil
	}
	return p.errorf("missing %s", strings.Join(missing, ", "))
}
