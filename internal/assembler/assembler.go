/*
	acme65 - Two-pass assembler driver

	Copyright (c) 2024, Richard Cornwell

	Permission is hereby granted, free of charge, to any person obtaining a
	copy of this software and associated documentation files (the "Software"),
	to deal in the Software without restriction, including without limitation
	the rights to use, copy, modify, merge, publish, distribute, sublicense,
	and/or sell copies of the Software, and to permit persons to whom the
	Software is furnished to do so, subject to the following conditions:

	The above copyright notice and this permission notice shall be included in
	all copies or substantial portions of the Software.

	THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
	IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
	FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
	RICHARD CORNWELL BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
	IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
	CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*/

// Package assembler orchestrates the two-pass run described by the
// pass driver: it owns the one symbol table, segment image, include
// stack, and diagnostic sink for a run (Design Notes' "exactly one
// assembler instance per run"), dispatches each logical statement to
// either a label definition, a directive, or the instruction encoder,
// and detects the addressing-width phase error between passes.
package assembler

import (
	"fmt"
	"strings"

	"github.com/rcornwell/acme65/internal/convtab"
	"github.com/rcornwell/acme65/internal/diag"
	"github.com/rcornwell/acme65/internal/encoder"
	"github.com/rcornwell/acme65/internal/eval"
	"github.com/rcornwell/acme65/internal/macro"
	"github.com/rcornwell/acme65/internal/output"
	"github.com/rcornwell/acme65/internal/segment"
	"github.com/rcornwell/acme65/internal/source"
	"github.com/rcornwell/acme65/internal/symtab"
	"github.com/rcornwell/acme65/internal/token"
	"github.com/rcornwell/acme65/internal/value"
)

// Limits holds the configurable safety ceilings referenced throughout
// §5: loop iteration count, macro recursion depth, and include-stack
// depth. Zero selects the documented default for that limit.
type Limits struct {
	MaxIterations int64
	MaxMacroDepth int
	MaxIncludes   int
}

// Options configures one assembly run.
type Options struct {
	SearchPath []string
	InitialPC  int64
	HavePC     bool
	Variant    encoder.Variant
	OutFormat  output.Format
	OutPath    string
	Limits     Limits
}

type pendingLine struct {
	text   string
	lineNo int
}

// Assembler is the single per-run instance owning every piece of
// mutable state the two passes touch.
type Assembler struct {
	opts Options

	symtab  *symtab.Table
	image   *segment.Image
	sink    *diag.Sink
	srcFile *fileCursor
	input   []cursor
	pending []pendingLine

	macros     *macro.Table
	macroStack *macro.CallStack
	loopStack  []*macro.Frame
	loopSignal macro.Signal

	convTable *convtab.Table

	variant encoder.Variant

	pass     int
	curFile  string
	curLine  int
	curText  string

	// widths records, in visitation order, whether each instruction
	// with a zero-page/absolute choice took the compact (zero-page)
	// encoding. Pass 1 appends; pass 2 reuses the same choice and raises
	// a phase error if a compact operand no longer fits — the
	// addressing-width stability invariant of §4.C.
	widths     []bool
	widthIndex int

	stopped bool // true once a !serious diagnostic fired
	outPath string
	outFmt  output.Format
}

// New returns an assembler ready to run src with the given options.
func New(opts Options) *Assembler {
	if opts.Limits.MaxIncludes <= 0 {
		opts.Limits.MaxIncludes = 255
	}
	a := &Assembler{
		opts:       opts,
		symtab:     symtab.New(),
		image:      segment.New(),
		sink:       diag.NewSink(),
		macros:     macro.NewTable(),
		macroStack: macro.NewCallStack(opts.Limits.MaxMacroDepth),
		variant:    opts.Variant,
		outPath:    opts.OutPath,
		outFmt:     opts.OutFormat,
	}
	return a
}

// Sink exposes the diagnostic sink so the CLI can render it after Run.
func (a *Assembler) Sink() *diag.Sink { return a.sink }

// Image exposes the finished byte image for the CLI's output-writing
// step.
func (a *Assembler) Image() *segment.Image { return a.image }

// Symtab exposes the symbol table for "-s" and "!symbollist".
func (a *Assembler) Symtab() *symtab.Table { return a.symtab }

// Run assembles path across both passes. It returns an error only for
// conditions that abort the run outright (a Serious diagnostic, a
// resource-limit violation, or a phase error); ordinary Error-severity
// diagnostics are recorded in the Sink and Run still returns nil so
// the CLI can report every accumulated diagnostic from one invocation.
func (a *Assembler) Run(path string) error {
	for pass := 1; pass <= 2; pass++ {
		a.beginPass(pass, path)
		if err := a.runPass(); err != nil {
			return err
		}
		if a.stopped {
			return nil
		}
	}
	return nil
}

func (a *Assembler) beginPass(pass int, path string) {
	a.pass = pass
	a.symtab.SetPass(pass)
	a.image.SetRealPC(0)
	a.loopStack = nil
	a.widthIndex = 0
	stack := source.New(a.opts.SearchPath, a.opts.Limits.MaxIncludes)
	a.srcFile = &fileCursor{stack: stack}
	a.input = []cursor{a.srcFile}
	a.pending = nil
	if a.opts.HavePC {
		a.image.SetRealPC(a.opts.InitialPC)
	}
	_ = stack.Push(path)
}

func (a *Assembler) runPass() error {
	for {
		line, lineNo, ok := a.nextLine()
		if !ok {
			break
		}
		if err := a.processLine(line, lineNo); err != nil {
			if fatal, ok2 := err.(fatalError); ok2 {
				return fatal.err
			}
			return err
		}
		if a.stopped {
			return nil
		}
	}
	return nil
}

// fatalError wraps an error that must abort Run immediately (Serious
// diagnostics and resource-limit violations); every other error
// returned by a directive handler is instead recorded as an Error
// diagnostic and assembly continues.
type fatalError struct{ err error }

func (f fatalError) Error() string { return f.err.Error() }

// nextLine pulls the next raw source line, draining any pushed-back
// line first, then the top of the input-cursor stack (which holds only
// the file cursor; macro and loop bodies are replayed through
// runCapturedLines instead).
func (a *Assembler) nextLine() (string, int, bool) {
	if n := len(a.pending); n > 0 {
		p := a.pending[n-1]
		a.pending = a.pending[:n-1]
		a.curFile, a.curLine, a.curText = a.top().name(), p.lineNo, p.text
		return p.text, p.lineNo, true
	}
	for len(a.input) > 0 {
		top := a.input[len(a.input)-1]
		text, lineNo, ok := top.nextRaw()
		if ok {
			a.curFile, a.curLine, a.curText = top.name(), lineNo, text
			return text, lineNo, true
		}
		if len(a.input) == 1 {
			return "", 0, false
		}
		a.input = a.input[:len(a.input)-1]
	}
	return "", 0, false
}

func (a *Assembler) top() cursor { return a.input[len(a.input)-1] }

func (a *Assembler) pushback(text string, lineNo int) {
	a.pending = append(a.pending, pendingLine{text: text, lineNo: lineNo})
}

func (a *Assembler) report(sev diag.Severity, format string, args ...interface{}) error {
	d := diag.Diagnostic{
		Severity:   sev,
		File:       a.curFile,
		Line:       a.curLine,
		Message:    fmt.Sprintf(format, args...),
		SourceText: a.curText,
	}
	if fatal := a.sink.Report(d); fatal {
		a.stopped = true
		return fatalError{fmt.Errorf("%s", d.Message)}
	}
	return nil
}

// processLine tokenizes one logical source line — which may contain
// several ':'-separated statements — and dispatches each in turn: a
// leading label definition, then a directive or instruction.
//
// Directive statements ("!xxx ...") are intercepted before
// tokenization and handed to handleDirective as raw text rather than
// tokens: several directives ("!if", "!macro", "!for", ...) open a
// brace-delimited block whose contents must be scanned character by
// character (block.go's braceScanner) to respect string and comment
// boundaries, which only works against the original source text.
// Everything else — labels, instructions, macro invocations,
// assignments — still goes through the token-based dispatch used
// since before this split existed.
func (a *Assembler) processLine(text string, lineNo int) error {
	for _, stmt := range splitStatements(text) {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if name, rest, ok := directivePrefix(stmt); ok {
			if err := a.handleDirective(strings.ToLower(name), rest, lineNo); err != nil {
				if fatal, isFatal := err.(fatalError); isFatal {
					return fatal
				}
				if rerr := a.report(diag.Error, "%v", err); rerr != nil {
					return rerr
				}
			}
			if a.stopped {
				return nil
			}
			continue
		}
		toks, err := token.Lex(stmt, lineNo)
		if err != nil {
			if rerr := a.report(diag.Error, "%v", err); rerr != nil {
				return rerr
			}
			continue
		}
		if err := a.dispatch(toks); err != nil {
			if fatal, isFatal := err.(fatalError); isFatal {
				return fatal
			}
			if rerr := a.report(diag.Error, "%v", err); rerr != nil {
				return rerr
			}
		}
		if a.stopped {
			return nil
		}
	}
	return nil
}

// directivePrefix reports whether stmt (after leading whitespace) is a
// "!xxx" directive, returning its name and the raw, untokenized text
// that follows.
func directivePrefix(stmt string) (name, rest string, ok bool) {
	i := 0
	for i < len(stmt) && (stmt[i] == ' ' || stmt[i] == '\t') {
		i++
	}
	if i >= len(stmt) || stmt[i] != '!' {
		return "", "", false
	}
	i++
	start := i
	for i < len(stmt) && isDirIdentChar(stmt[i]) {
		i++
	}
	if i == start {
		return "", "", false
	}
	return stmt[start:i], stmt[i:], true
}

func isDirIdentChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// runCapturedLines executes a captured macro/loop/conditional body
// immediately, line by line, through the same processLine path as
// ordinary source — so a body can itself contain labels, directives,
// nested blocks, or further macro invocations with no special case.
func (a *Assembler) runCapturedLines(file string, baseLine int, lines []string) error {
	for i, line := range lines {
		a.curFile = file
		a.curLine = baseLine + i
		a.curText = line
		if err := a.processLine(line, a.curLine); err != nil {
			return err
		}
		if a.stopped || a.loopSignal != macro.SignalNone {
			return nil
		}
	}
	return nil
}

// splitStatements breaks a raw line on unquoted ':' separators, since
// ACME allows multiple statements on one physical line. A ':' inside a
// "{ ... }" block is left in place; the block's body is split when it
// is replayed.
func splitStatements(line string) []string {
	var out []string
	start := 0
	depth := 0
	inString := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if inString {
			if c == '\\' && i+1 < len(line) {
				i++
				continue
			}
			if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
		case ';':
			out = append(out, line[start:i])
			return out
		case ':':
			if depth > 0 {
				continue
			}
			out = append(out, line[start:i])
			start = i + 1
		}
	}
	out = append(out, line[start:])
	return out
}

// resolver adapts the assembler's symbol table, segment image, and
// current CPU-label bookkeeping to eval.Resolver.
type resolver struct{ a *Assembler }

func (r *resolver) Ident(tok token.Token) (value.Value, error) {
	a := r.a
	switch tok.Kind {
	case token.ZoneLocal:
		if v, ok := a.symtab.LookupZoneLocal(tok.Text); ok {
			return v, nil
		}
		return value.Und, nil
	case token.CheapLocal:
		if v, ok := a.symtab.LookupCheapLocal(tok.Text); ok {
			return v, nil
		}
		return value.Und, nil
	default:
		if v, ok := a.symtab.LookupBare(tok.Text); ok {
			return v, nil
		}
		return value.Und, nil
	}
}

func (r *resolver) PC() (value.Value, error) { return value.Int(r.a.image.PC()), nil }

func (r *resolver) AnonForward(line, col int) (value.Value, error) {
	if v, ok := r.a.symtab.ResolveAnonForward(line, col); ok {
		return v, nil
	}
	return value.Und, nil
}

func (r *resolver) AnonBackward(line, col int) (value.Value, error) {
	if v, ok := r.a.symtab.ResolveAnonBackward(line, col); ok {
		return v, nil
	}
	return value.Und, nil
}

// evalExpr evaluates one expression occupying toks[0:], returning the
// value and how many tokens it consumed.
func (a *Assembler) evalExpr(toks []token.Token) (value.Value, int, bool, error) {
	ctx := &eval.Context{Resolver: &resolver{a: a}, InPass1: a.pass == 1}
	v, n, err := eval.Eval(toks, ctx)
	return v, n, ctx.SawUndefined, err
}
