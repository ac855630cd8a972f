/*
	acme65 - Directive dispatch

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

package assembler

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rcornwell/acme65/internal/convtab"
	"github.com/rcornwell/acme65/internal/diag"
	"github.com/rcornwell/acme65/internal/encoder"
	"github.com/rcornwell/acme65/internal/macro"
	"github.com/rcornwell/acme65/internal/output"
	"github.com/rcornwell/acme65/internal/token"
)

// handleDirective is the single entry point for every "!xxx"
// directive, reached either directly from processLine (the common
// case, operating on raw untokenized text so block-opening directives
// can brace-scan) or indirectly from dispatch's token-based path when
// a directive follows a label on the same statement.
func (a *Assembler) handleDirective(name, rest string, lineNo int) error {
	switch name {
	case "if":
		return a.handleIf(rest, lineNo)
	case "ifdef":
		return a.handleIfdef(rest, lineNo, true)
	case "ifndef":
		return a.handleIfdef(rest, lineNo, false)
	case "for":
		return a.handleFor(rest, lineNo)
	case "while":
		return a.handleWhile(rest, lineNo)
	case "do":
		return a.handleDo(rest, lineNo)
	case "break":
		if len(a.loopStack) == 0 {
			return fmt.Errorf("!break outside of a loop")
		}
		a.loopSignal = macro.SignalBreak
		return nil
	case "continue":
		if len(a.loopStack) == 0 {
			return fmt.Errorf("!continue outside of a loop")
		}
		a.loopSignal = macro.SignalContinue
		return nil
	case "macro":
		return a.defineMacro(rest, lineNo)
	case "byte", "8":
		return a.emitInts(rest, lineNo, 1, false)
	case "word", "16":
		return a.emitInts(rest, lineNo, 2, false)
	case "24":
		return a.emitInts(rest, lineNo, 3, false)
	case "32":
		return a.emitInts(rest, lineNo, 4, false)
	case "16be":
		return a.emitInts(rest, lineNo, 2, true)
	case "24be":
		return a.emitInts(rest, lineNo, 3, true)
	case "32be":
		return a.emitInts(rest, lineNo, 4, true)
	case "hex":
		return a.emitHex(rest, lineNo)
	case "fill":
		return a.emitFill(rest, lineNo)
	case "skip":
		return a.emitSkip(rest, lineNo)
	case "align":
		return a.emitAlign(rest, lineNo)
	case "pet":
		return a.emitConvString(rest, lineNo, "pet")
	case "scr":
		return a.emitConvString(rest, lineNo, "scr")
	case "scrxor":
		return a.emitScrXor(rest, lineNo)
	case "convtab":
		return a.setConvtab(rest)
	case "ct":
		return a.loadConvtab(rest, lineNo)
	case "source", "src":
		return a.pushSource(rest, lineNo)
	case "binary", "bin":
		return a.loadBinary(rest, lineNo)
	case "warn":
		return a.diagDirective(diag.Warn, rest, lineNo)
	case "error":
		return a.diagDirective(diag.Error, rest, lineNo)
	case "serious":
		return a.diagDirective(diag.Serious, rest, lineNo)
	case "zone", "zn":
		a.symtab.EnterZone(strings.Trim(strings.TrimSpace(rest), "\""))
		return nil
	case "cpu":
		return a.setCPU(rest)
	case "set":
		return a.setVariable(rest, lineNo)
	case "initmem":
		return a.setInitMem(rest, lineNo)
	case "xor":
		return a.setXor(rest, lineNo)
	case "pseudopc":
		return a.pseudoPC(rest, lineNo)
	case "realpc":
		a.image.ExitPseudoPC()
		return nil
	case "to":
		return a.setOutput(rest, lineNo)
	case "symbollist", "sl":
		return a.writeSymbolList(rest)
	default:
		return fmt.Errorf("unknown directive '!%s'", name)
	}
}

// dispatchDirective is the token-based fallback used when a directive
// trails a label on the same statement (e.g. "here !byte 1"), where
// the raw text has already been consumed into tokens by the time
// dispatch sees it; it re-renders those tokens back to source text and
// routes through the same handleDirective every top-level directive
// uses.
func (a *Assembler) dispatchDirective(t token.Token, rest []token.Token) error {
	return a.handleDirective(strings.ToLower(t.Text), renderTokens(trimEOL(rest)), t.Line)
}

// ---- conditionals ----------------------------------------------------

func (a *Assembler) handleIf(rest string, lineNo int) error {
	header, body, trailer, err := a.captureBlock(rest)
	if err != nil {
		return err
	}
	toks, err := token.Lex(header, lineNo)
	if err != nil {
		return err
	}
	cond, _, _, err := a.evalExpr(trimEOL(toks))
	if err != nil {
		return err
	}
	elseBody, hasElse, err := a.elseClause(trailer)
	if err != nil {
		return err
	}
	if cond.Truthy() {
		return a.runCapturedLines(a.curFile, lineNo+1, body)
	}
	if hasElse {
		return a.runCapturedLines(a.curFile, lineNo+1, elseBody)
	}
	return nil
}

func (a *Assembler) handleIfdef(rest string, lineNo int, wantDefined bool) error {
	header, body, trailer, err := a.captureBlock(rest)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(header)
	_, defined := a.symtab.LookupBare(name)
	elseBody, hasElse, err := a.elseClause(trailer)
	if err != nil {
		return err
	}
	if defined == wantDefined {
		return a.runCapturedLines(a.curFile, lineNo+1, body)
	}
	if hasElse {
		return a.runCapturedLines(a.curFile, lineNo+1, elseBody)
	}
	return nil
}

// ---- loops -------------------------------------------------------------

func (a *Assembler) loopMaxIters() int64 {
	if a.opts.Limits.MaxIterations > 0 {
		return a.opts.Limits.MaxIterations
	}
	return 1 << 32
}

// runLoopBody executes one pass over a loop's body and reports the
// break/continue signal (if any) a nested "!break"/"!continue" left
// pending, consuming it so it does not leak to an outer loop.
func (a *Assembler) runLoopBody(file string, baseLine int, body []string) (macro.Signal, error) {
	if err := a.runCapturedLines(file, baseLine, body); err != nil {
		return macro.SignalNone, err
	}
	sig := a.loopSignal
	a.loopSignal = macro.SignalNone
	return sig, nil
}

func (a *Assembler) handleFor(rest string, lineNo int) error {
	header, body, _, err := a.captureBlock(rest)
	if err != nil {
		return err
	}
	iterVar, start, end, step, err := a.parseForHeader(header, lineNo)
	if err != nil {
		return err
	}
	frame := macro.NewFrame(macro.ForLoop, body, a.loopMaxIters())
	if err := frame.ForBounds(iterVar, start, end, step); err != nil {
		return err
	}
	iterations, err := frame.Iterations()
	if err != nil {
		return fatalError{err}
	}
	a.loopStack = append(a.loopStack, frame)
	defer func() { a.loopStack = a.loopStack[:len(a.loopStack)-1] }()

	for _, v := range iterations {
		lines, err := substituteIdents(body, map[string]string{iterVar: strconv.FormatInt(v, 10)})
		if err != nil {
			return err
		}
		sig, err := a.runLoopBody(a.curFile, lineNo+1, lines)
		if err != nil {
			return err
		}
		if a.stopped {
			return nil
		}
		if sig == macro.SignalBreak {
			break
		}
	}
	return nil
}

// parseForHeader parses "var = start to end [step s]".
func (a *Assembler) parseForHeader(header string, lineNo int) (iterVar string, start, end, step int64, err error) {
	toks, err := token.Lex(header, lineNo)
	if err != nil {
		return "", 0, 0, 0, err
	}
	toks = trimEOL(toks)
	if len(toks) < 2 || toks[0].Kind != token.Ident || toks[1].Kind != token.Operator || toks[1].Text != "=" {
		return "", 0, 0, 0, fmt.Errorf("!for requires 'var = start to end'")
	}
	iterVar = toks[0].Text
	rest := toks[2:]
	startV, n, _, err := a.evalExpr(rest)
	if err != nil {
		return "", 0, 0, 0, err
	}
	if n >= len(rest) || rest[n].Kind != token.Ident || !strings.EqualFold(rest[n].Text, "to") {
		return "", 0, 0, 0, fmt.Errorf("!for requires 'to' between bounds")
	}
	endToks := rest[n+1:]
	endV, n2, _, err := a.evalExpr(endToks)
	if err != nil {
		return "", 0, 0, 0, err
	}
	step = 1
	if n2 < len(endToks) && endToks[n2].Kind == token.Ident && strings.EqualFold(endToks[n2].Text, "step") {
		stepV, _, _, err := a.evalExpr(endToks[n2+1:])
		if err != nil {
			return "", 0, 0, 0, err
		}
		step = stepV.AsInt()
	} else if startV.AsInt() > endV.AsInt() {
		step = -1
	}
	return iterVar, startV.AsInt(), endV.AsInt(), step, nil
}

func (a *Assembler) handleWhile(rest string, lineNo int) error {
	header, body, _, err := a.captureBlock(rest)
	if err != nil {
		return err
	}
	frame := macro.NewFrame(macro.WhileLoop, body, a.loopMaxIters())
	a.loopStack = append(a.loopStack, frame)
	defer func() { a.loopStack = a.loopStack[:len(a.loopStack)-1] }()

	max := a.loopMaxIters()
	for i := int64(0); ; i++ {
		if i >= max {
			return fatalError{fmt.Errorf("!while exceeded the maximum iteration count (%d)", max)}
		}
		toks, err := token.Lex(header, lineNo)
		if err != nil {
			return err
		}
		cond, _, _, err := a.evalExpr(trimEOL(toks))
		if err != nil {
			return err
		}
		if !cond.Truthy() {
			return nil
		}
		sig, err := a.runLoopBody(a.curFile, lineNo+1, body)
		if err != nil {
			return err
		}
		if a.stopped {
			return nil
		}
		if sig == macro.SignalBreak {
			return nil
		}
	}
}

func (a *Assembler) handleDo(rest string, lineNo int) error {
	header, body, trailer, err := a.captureBlock(rest)
	if err != nil {
		return err
	}
	if strings.TrimSpace(header) != "" {
		return fmt.Errorf("!do takes no header; use '!do { ... } !until expr'")
	}
	condText, err := a.untilClause(trailer)
	if err != nil {
		return err
	}
	frame := macro.NewFrame(macro.DoUntilLoop, body, a.loopMaxIters())
	a.loopStack = append(a.loopStack, frame)
	defer func() { a.loopStack = a.loopStack[:len(a.loopStack)-1] }()

	max := a.loopMaxIters()
	for i := int64(0); ; i++ {
		sig, err := a.runLoopBody(a.curFile, lineNo+1, body)
		if err != nil {
			return err
		}
		if a.stopped {
			return nil
		}
		if sig == macro.SignalBreak {
			return nil
		}
		toks, err := token.Lex(condText, lineNo)
		if err != nil {
			return err
		}
		cond, _, _, err := a.evalExpr(trimEOL(toks))
		if err != nil {
			return err
		}
		if cond.Truthy() {
			return nil
		}
		if i+1 >= max {
			return fatalError{fmt.Errorf("!do/!until exceeded the maximum iteration count (%d)", max)}
		}
	}
}

// untilClause expects trailer (the text after "!do { ... }"'s closing
// brace) to hold, or immediately precede, an "!until expr" clause,
// mirroring elseClause's "next physical line" fallback.
func (a *Assembler) untilClause(trailer string) (string, error) {
	text := strings.TrimSpace(trailer)
	if text == "" {
		line, _, ok := a.nextLine()
		if !ok {
			return "", fmt.Errorf("!do block missing matching '!until'")
		}
		text = strings.TrimSpace(line)
	}
	name, rest, ok := directivePrefix(text)
	if !ok || !strings.EqualFold(name, "until") {
		return "", fmt.Errorf("!do block must be followed by '!until expr'")
	}
	return rest, nil
}

// ---- macros --------------------------------------------------------

func (a *Assembler) defineMacro(rest string, lineNo int) error {
	header, body, _, err := a.captureBlock(rest)
	if err != nil {
		return err
	}
	name, params, defaults, err := parseMacroSignature(header)
	if err != nil {
		return err
	}
	if a.pass != 1 {
		// Already registered from pass 1; the capture above only needed
		// to consume the body lines so the cursor stays aligned.
		return nil
	}
	return a.macros.Define(&macro.Macro{
		Name:     name,
		Params:   params,
		Defaults: defaults,
		Body:     body,
		DefLine:  lineNo,
		DefFile:  a.curFile,
	})
}

// parseMacroSignature parses "name(p1, p2=default, p3)", the same list
// without parentheses ("name p1, p2"), or a bare "name" with no
// parameters.
func parseMacroSignature(header string) (name string, params, defaults []string, err error) {
	s := strings.TrimSpace(header)
	i := 0
	for i < len(s) && isDirIdentChar(s[i]) {
		i++
	}
	if i == 0 {
		return "", nil, nil, fmt.Errorf("!macro requires a name")
	}
	name = s[:i]
	rest := strings.TrimSpace(s[i:])
	if rest == "" {
		return name, nil, nil, nil
	}
	inner := rest
	if rest[0] == '(' {
		if rest[len(rest)-1] != ')' {
			return "", nil, nil, fmt.Errorf("!macro parameter list is missing ')'")
		}
		inner = strings.TrimSpace(rest[1 : len(rest)-1])
	}
	if inner == "" {
		return name, nil, nil, nil
	}
	for _, p := range strings.Split(inner, ",") {
		p = strings.TrimSpace(p)
		if eq := strings.IndexByte(p, '='); eq >= 0 {
			params = append(params, strings.TrimSpace(p[:eq]))
			defaults = append(defaults, strings.TrimSpace(p[eq+1:]))
		} else {
			params = append(params, p)
			defaults = append(defaults, "")
		}
	}
	return name, params, defaults, nil
}

// invokeMacro handles a "+name arg,arg" statement: parameters are
// bound to the caller's raw argument text (not evaluated values), and
// the body is replayed with each parameter identifier textually
// substituted before re-lexing, matching Macro.BindArgs' string-keyed
// signature.
func (a *Assembler) invokeMacro(t token.Token, rest []token.Token) error {
	m, ok := a.macros.Lookup(t.Text)
	if !ok {
		return fmt.Errorf("macro %q not defined", t.Text)
	}
	argToks := trimEOL(rest)
	argTexts, err := splitArgTokens(argToks)
	if err != nil {
		return err
	}
	bound, err := m.BindArgs(argTexts)
	if err != nil {
		return err
	}
	if err := a.macroStack.Enter(t.Text); err != nil {
		return fatalError{err}
	}
	defer a.macroStack.Leave()

	body, err := substituteIdents(m.Body, bound)
	if err != nil {
		return err
	}
	return a.runCapturedLines(m.DefFile, m.DefLine+1, body)
}

// splitArgTokens splits a macro invocation's argument tokens on
// top-level commas (respecting nested parens/brackets), rendering
// each argument back to source text.
func splitArgTokens(toks []token.Token) ([]string, error) {
	if len(toks) == 0 {
		return nil, nil
	}
	var args []string
	depth := 0
	start := 0
	for i, t := range toks {
		switch t.Kind {
		case token.LParen, token.LBracket, token.LBrace:
			depth++
		case token.RParen, token.RBracket, token.RBrace:
			depth--
		case token.Comma:
			if depth == 0 {
				args = append(args, renderTokens(toks[start:i]))
				start = i + 1
			}
		}
	}
	args = append(args, renderTokens(toks[start:]))
	return args, nil
}

// renderToken reconstructs the source text a token was lexed from,
// well enough to re-lex to the same meaning (exact original spacing
// and comments are not preserved).
func renderToken(t token.Token) string {
	switch t.Kind {
	case token.StringLit:
		return "\"" + strings.ReplaceAll(strings.ReplaceAll(t.Text, "\\", "\\\\"), "\"", "\\\"") + "\""
	case token.ZoneLocal:
		return "." + t.Text
	case token.CheapLocal:
		return "@" + t.Text
	case token.Directive:
		return "!" + t.Text
	case token.MacroInvoke:
		return "+" + t.Text
	case token.AnonForward:
		return "+"
	case token.AnonBackward:
		return "-"
	default:
		return t.Text
	}
}

func renderTokens(toks []token.Token) string {
	parts := make([]string, 0, len(toks))
	for _, t := range toks {
		if t.Kind == token.EOL {
			continue
		}
		parts = append(parts, renderToken(t))
	}
	return strings.Join(parts, " ")
}

// substituteIdents re-lexes each captured body line and replaces every
// Ident token whose text matches a key of subs with that key's raw
// replacement text, then re-renders the line. Used for both macro
// parameter binding and "!for" iterator-variable substitution.
func substituteIdents(lines []string, subs map[string]string) ([]string, error) {
	if len(subs) == 0 {
		return lines, nil
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		toks, err := token.Lex(line, 0)
		if err != nil {
			return nil, err
		}
		parts := make([]string, 0, len(toks))
		for _, t := range toks {
			if t.Kind == token.EOL {
				continue
			}
			if t.Kind == token.Ident {
				if rep, ok := subs[t.Text]; ok {
					parts = append(parts, rep)
					continue
				}
			}
			parts = append(parts, renderToken(t))
		}
		out[i] = strings.Join(parts, " ")
	}
	return out, nil
}

// ---- data emission ---------------------------------------------------

func (a *Assembler) emitInts(rest string, lineNo int, width int, bigEndian bool) error {
	toks, err := token.Lex(rest, lineNo)
	if err != nil {
		return err
	}
	toks = trimEOL(toks)
	if len(toks) == 0 {
		return fmt.Errorf("directive requires at least one value")
	}
	pos := 0
	for pos < len(toks) {
		if toks[pos].Kind == token.StringLit && width == 1 {
			if err := a.image.EmitBytes([]byte(toks[pos].Text)); err != nil {
				return err
			}
			pos++
		} else {
			v, n, _, err := a.evalExpr(toks[pos:])
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("expected a value")
			}
			pos += n
			if err := a.image.EmitBytes(intBytes(v.AsInt(), width, bigEndian)); err != nil {
				return err
			}
		}
		if pos < len(toks) {
			if toks[pos].Kind != token.Comma {
				return fmt.Errorf("expected ',' between values")
			}
			pos++
		}
	}
	return nil
}

func intBytes(v int64, width int, bigEndian bool) []byte {
	out := make([]byte, width)
	for i := 0; i < width; i++ {
		out[i] = byte(v >> (8 * i))
	}
	if bigEndian {
		for i, j := 0, width-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

func (a *Assembler) emitHex(rest string, lineNo int) error {
	toks, err := token.Lex(rest, lineNo)
	if err != nil {
		return err
	}
	toks = trimEOL(toks)
	if len(toks) != 1 || toks[0].Kind != token.StringLit {
		return fmt.Errorf("!hex requires a single quoted string of hex digits")
	}
	digits := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, toks[0].Text)
	if len(digits)%2 != 0 {
		return fmt.Errorf("!hex string has an odd number of digits")
	}
	bs := make([]byte, len(digits)/2)
	for i := range bs {
		n, err := strconv.ParseUint(digits[2*i:2*i+2], 16, 8)
		if err != nil {
			return fmt.Errorf("!hex: invalid hex digit pair %q", digits[2*i:2*i+2])
		}
		bs[i] = byte(n)
	}
	return a.image.EmitBytes(bs)
}

func (a *Assembler) emitFill(rest string, lineNo int) error {
	toks, err := token.Lex(rest, lineNo)
	if err != nil {
		return err
	}
	toks = trimEOL(toks)
	countV, n, _, err := a.evalExpr(toks)
	if err != nil {
		return err
	}
	count := countV.AsInt()
	if n < len(toks) {
		if toks[n].Kind != token.Comma {
			return fmt.Errorf("!fill expects 'count[,value]'")
		}
		fillV, _, _, err := a.evalExpr(toks[n+1:])
		if err != nil {
			return err
		}
		fb := byte(fillV.AsInt())
		bs := make([]byte, count)
		for i := range bs {
			bs[i] = fb
		}
		return a.image.EmitBytes(bs)
	}
	return a.image.Skip(count)
}

func (a *Assembler) emitSkip(rest string, lineNo int) error {
	toks, err := token.Lex(rest, lineNo)
	if err != nil {
		return err
	}
	v, _, _, err := a.evalExpr(trimEOL(toks))
	if err != nil {
		return err
	}
	return a.image.Skip(v.AsInt())
}

func (a *Assembler) emitAlign(rest string, lineNo int) error {
	toks, err := token.Lex(rest, lineNo)
	if err != nil {
		return err
	}
	toks = trimEOL(toks)
	maskV, n, _, err := a.evalExpr(toks)
	if err != nil {
		return err
	}
	if n >= len(toks) || toks[n].Kind != token.Comma {
		return fmt.Errorf("!align expects 'mask,value[,fill]'")
	}
	valV, n2, _, err := a.evalExpr(toks[n+1:])
	if err != nil {
		return err
	}
	idx := n + 1 + n2
	var fill *byte
	if idx < len(toks) {
		if toks[idx].Kind != token.Comma {
			return fmt.Errorf("!align expects 'mask,value[,fill]'")
		}
		fillV, _, _, err := a.evalExpr(toks[idx+1:])
		if err != nil {
			return err
		}
		fb := byte(fillV.AsInt())
		fill = &fb
	}
	return a.image.Align(maskV.AsInt(), valV.AsInt(), fill)
}

// ---- text conversion -------------------------------------------------

func (a *Assembler) emitConvString(rest string, lineNo int, tableName string) error {
	toks, err := token.Lex(rest, lineNo)
	if err != nil {
		return err
	}
	toks = trimEOL(toks)
	if len(toks) != 1 || toks[0].Kind != token.StringLit {
		return fmt.Errorf("!%s requires a single quoted string", tableName)
	}
	table, _ := convtab.Lookup(tableName)
	return a.image.EmitBytes(table.Convert([]byte(toks[0].Text)))
}

func (a *Assembler) setConvtab(rest string) error {
	name := strings.ToLower(strings.Trim(strings.TrimSpace(rest), "\""))
	table, ok := convtab.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown conversion table %q", name)
	}
	a.convTable = table
	return nil
}

func (a *Assembler) loadConvtab(rest string, lineNo int) error {
	toks, err := token.Lex(rest, lineNo)
	if err != nil {
		return err
	}
	toks = trimEOL(toks)
	if len(toks) != 1 || toks[0].Kind != token.StringLit {
		return fmt.Errorf("!ct requires a quoted file path")
	}
	table, err := convtab.LoadFile(toks[0].Text)
	if err != nil {
		return err
	}
	a.convTable = table
	return nil
}

func (a *Assembler) activeConvtab() *convtab.Table {
	if a.convTable != nil {
		return a.convTable
	}
	t, _ := convtab.Lookup("raw")
	return t
}

func (a *Assembler) emitScrXor(rest string, lineNo int) error {
	toks, err := token.Lex(rest, lineNo)
	if err != nil {
		return err
	}
	toks = trimEOL(toks)
	v, n, _, err := a.evalExpr(toks)
	if err != nil {
		return err
	}
	if n >= len(toks) || toks[n].Kind != token.Comma {
		return fmt.Errorf("!scrxor expects 'value,\"string\"'")
	}
	strToks := toks[n+1:]
	if len(strToks) != 1 || strToks[0].Kind != token.StringLit {
		return fmt.Errorf("!scrxor requires a quoted string")
	}
	converted := a.activeConvtab().Convert([]byte(strToks[0].Text))
	return a.image.EmitBytes(convtab.ScrXor(converted, byte(v.AsInt())))
}

// ---- file inclusion ---------------------------------------------------

func (a *Assembler) pushSource(rest string, lineNo int) error {
	toks, err := token.Lex(rest, lineNo)
	if err != nil {
		return err
	}
	toks = trimEOL(toks)
	if len(toks) != 1 || toks[0].Kind != token.StringLit {
		return fmt.Errorf("!source requires a quoted file path")
	}
	if err := a.srcFile.stack.Push(toks[0].Text); err != nil {
		return fatalError{err}
	}
	return nil
}

func (a *Assembler) loadBinary(rest string, lineNo int) error {
	toks, err := token.Lex(rest, lineNo)
	if err != nil {
		return err
	}
	toks = trimEOL(toks)
	if len(toks) != 1 || toks[0].Kind != token.StringLit {
		return fmt.Errorf("!binary requires a quoted file path")
	}
	data, err := os.ReadFile(toks[0].Text)
	if err != nil {
		return fmt.Errorf("!binary: %w", err)
	}
	return a.image.EmitBytes(data)
}

// ---- diagnostics -------------------------------------------------------

func (a *Assembler) diagDirective(sev diag.Severity, rest string, lineNo int) error {
	toks, err := token.Lex(rest, lineNo)
	if err != nil {
		return err
	}
	toks = trimEOL(toks)
	if len(toks) != 1 || toks[0].Kind != token.StringLit {
		return fmt.Errorf("directive requires a single quoted message")
	}
	return a.report(sev, "%s", toks[0].Text)
}

// ---- CPU / memory / PC control -----------------------------------------

func (a *Assembler) setCPU(rest string) error {
	name := strings.Trim(strings.TrimSpace(rest), "\"")
	v, err := encoder.ParseVariant(name)
	if err != nil {
		return err
	}
	a.variant = v
	return nil
}

func (a *Assembler) setVariable(rest string, lineNo int) error {
	toks, err := token.Lex(rest, lineNo)
	if err != nil {
		return err
	}
	toks = trimEOL(toks)
	if len(toks) < 2 || toks[1].Kind != token.Operator || toks[1].Text != "=" {
		return fmt.Errorf("!set requires 'name = expr'")
	}
	return a.assignSymbol(toks[0], toks[2:], true)
}

func (a *Assembler) setInitMem(rest string, lineNo int) error {
	toks, err := token.Lex(rest, lineNo)
	if err != nil {
		return err
	}
	v, _, _, err := a.evalExpr(trimEOL(toks))
	if err != nil {
		return err
	}
	a.image.SetInitByte(byte(v.AsInt()))
	return nil
}

func (a *Assembler) setXor(rest string, lineNo int) error {
	toks, err := token.Lex(rest, lineNo)
	if err != nil {
		return err
	}
	v, _, _, err := a.evalExpr(trimEOL(toks))
	if err != nil {
		return err
	}
	a.image.SetXor(byte(v.AsInt()))
	return nil
}

// pseudoPC implements both forms of "!pseudopc": "!pseudopc addr { ... }"
// enters and automatically leaves the remap around body, while a bare
// "!pseudopc addr" leaves it active until an explicit "!realpc".
func (a *Assembler) pseudoPC(rest string, lineNo int) error {
	header, after, hasBrace := splitAtFirstBrace(rest)
	if !hasBrace {
		toks, err := token.Lex(rest, lineNo)
		if err != nil {
			return err
		}
		v, _, _, err := a.evalExpr(trimEOL(toks))
		if err != nil {
			return err
		}
		a.image.EnterPseudoPC(v.AsInt())
		return nil
	}
	toks, err := token.Lex(header, lineNo)
	if err != nil {
		return err
	}
	v, _, _, err := a.evalExpr(trimEOL(toks))
	if err != nil {
		return err
	}
	scanner := &braceScanner{depth: 1}
	var body []string
	text, _, closed, err := scanner.feed(after)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) != "" {
		body = append(body, text)
	}
	for !closed {
		line, _, ok := a.nextLine()
		if !ok {
			return fmt.Errorf("unterminated !pseudopc block: missing closing '}'")
		}
		text, _, closed, err = scanner.feed(line)
		if err != nil {
			return err
		}
		if closed {
			if strings.TrimSpace(text) != "" {
				body = append(body, text)
			}
		} else {
			body = append(body, line)
		}
	}
	a.image.EnterPseudoPC(v.AsInt())
	if err := a.runCapturedLines(a.curFile, lineNo+1, body); err != nil {
		return err
	}
	a.image.ExitPseudoPC()
	return nil
}

// ---- output -------------------------------------------------------------

func (a *Assembler) setOutput(rest string, lineNo int) error {
	toks, err := token.Lex(rest, lineNo)
	if err != nil {
		return err
	}
	toks = trimEOL(toks)
	if len(toks) == 0 || toks[0].Kind != token.StringLit {
		return fmt.Errorf("!to requires 'path\"[,format]'")
	}
	path := toks[0].Text
	format := a.outFmt
	if len(toks) >= 3 && toks[1].Kind == token.Comma {
		name := strings.ToLower(strings.Trim(renderTokens(toks[2:]), "\""))
		f, err := output.ParseFormat(name)
		if err != nil {
			return err
		}
		format = f
	}
	if a.outPath == "" {
		a.outPath = path
	}
	a.outFmt = format
	return nil
}

// OutPath and OutFormat expose the effective "-o"/"-f"/"!to" choice
// for the CLI's output-writing step, CLI flags having already won any
// conflict by pre-populating outPath/outFmt before the run starts.
func (a *Assembler) OutPath() string          { return a.outPath }
func (a *Assembler) OutFormat() output.Format { return a.outFmt }

func (a *Assembler) writeSymbolList(rest string) error {
	path := strings.Trim(strings.TrimSpace(rest), "\"")
	if path == "" {
		return fmt.Errorf("!symbollist requires a quoted file path")
	}
	if a.pass != 2 {
		return nil
	}
	var b strings.Builder
	for _, s := range a.symtab.AllSymbols() {
		fmt.Fprintf(&b, "%-24s = $%04X\n", s.Name, s.Value.AsInt())
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
