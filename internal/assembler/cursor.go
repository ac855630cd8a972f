package assembler

import "github.com/rcornwell/acme65/internal/source"

// cursor supplies raw source lines to the statement loop. The
// assembler's input stack holds a single fileCursor backed by
// internal/source, which transparently handles "!source"/"!src"
// pushes and pops on its own; macro and loop bodies are instead
// replayed synchronously through runCapturedLines, not as a pushed
// cursor.
type cursor interface {
	nextRaw() (text string, lineNo int, ok bool)
	name() string
}

type fileCursor struct {
	stack *source.Stack
}

func (f *fileCursor) nextRaw() (string, int, bool) { return f.stack.NextLine() }

func (f *fileCursor) name() string {
	if top := f.stack.Top(); top != nil {
		return top.Path
	}
	return "<unknown>"
}
