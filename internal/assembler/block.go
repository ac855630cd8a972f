package assembler

import (
	"fmt"
	"strings"
)

// braceScanner tracks nesting depth across however many physical lines
// a block spans, so "!macro"/"!for"/"!while"/"!do"/"!if" bodies can
// open and close on one line (as the data model's worked examples all
// do) or across many, with no separate code path for either shape.
type braceScanner struct {
	depth int
}

// feed scans one line for brace/string/comment structure. If the
// scanner's depth returns to zero within line, it returns the text
// before the matching '}' (closed=true) plus whatever trails it on
// the same line; otherwise it returns the whole line as body text and
// closed=false, meaning the caller must feed another line.
func (b *braceScanner) feed(line string) (body, trailer string, closed bool, err error) {
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
		case ';':
			return line[:i], "", false, nil
		case '{':
			b.depth++
		case '}':
			b.depth--
			if b.depth == 0 {
				return line[:i], line[i+1:], true, nil
			}
			if b.depth < 0 {
				return "", "", false, fmt.Errorf("unmatched '}'")
			}
		}
	}
	return line, "", false, nil
}

// splitAtFirstBrace locates the first unquoted, uncommented '{' in s,
// returning the text before it and after it.
func splitAtFirstBrace(s string) (before, after string, found bool) {
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			if c == '\\' && i+1 < len(s) {
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
		case ';':
			return s[:i], "", false
		case '{':
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

// captureBlock reads headerRest (the text following a block directive
// on its own line, after the directive's own arguments) and returns
// the header text preceding '{', the raw body lines between the
// braces, and whatever trails the matching '}' — which for "!if ...
// else { ... }" and "!do { ... } !until expr" carries the next clause.
func (a *Assembler) captureBlock(headerRest string) (header string, body []string, trailer string, err error) {
	header, afterOpen, found := splitAtFirstBrace(headerRest)
	if !found {
		return "", nil, "", fmt.Errorf("expected '{' to open block")
	}
	scanner := &braceScanner{depth: 1}
	text, trail, closed, err := scanner.feed(afterOpen)
	if err != nil {
		return "", nil, "", err
	}
	if strings.TrimSpace(text) != "" {
		body = append(body, text)
	}
	for !closed {
		line, _, ok := a.nextLine()
		if !ok {
			return "", nil, "", fmt.Errorf("unterminated block: missing closing '}'")
		}
		text, trail, closed, err = scanner.feed(line)
		if err != nil {
			return "", nil, "", err
		}
		if closed {
			if strings.TrimSpace(text) != "" {
				body = append(body, text)
			}
		} else {
			body = append(body, line)
		}
	}
	return header, body, trail, nil
}

// elseClause inspects the trailer following a "!if" block's closing
// brace (possibly empty, in which case the "else" keyword may start
// the next physical line instead) and, if an else branch is present,
// captures its body too.
func (a *Assembler) elseClause(trailer string) (body []string, hasElse bool, err error) {
	text := strings.TrimSpace(trailer)
	if text == "" {
		line, lineNo, ok := a.nextLine()
		if !ok {
			return nil, false, nil
		}
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "else") {
			a.pushback(line, lineNo)
			return nil, false, nil
		}
		text = trimmed
	}
	if !strings.HasPrefix(text, "else") {
		a.pushback(text, a.curLine)
		return nil, false, nil
	}
	rest := strings.TrimSpace(text[len("else"):])
	_, elseBody, _, err := a.captureBlock(rest)
	if err != nil {
		return nil, false, err
	}
	return elseBody, true, nil
}
