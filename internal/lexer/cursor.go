package lexer

// cursor walks a source file one rune at a time while tracking 0-based
// line/column position. Lines are kept as their original text (newlines
// stripped) so diagnostics can quote the offending source line verbatim.
type cursor struct {
	chars []rune
	lines []string

	pos  int
	ch   rune
	eof  bool

	line int
	col  int
}

func newCursor(source string) *cursor {
	lines := splitLines(source)

	var chars []rune
	for i, l := range lines {
		chars = append(chars, []rune(l)...)
		if i != len(lines)-1 {
			chars = append(chars, '\n')
		}
	}

	c := &cursor{chars: chars, lines: lines}
	if len(chars) == 0 {
		c.eof = true
	} else {
		c.ch = chars[0]
	}
	return c
}

func splitLines(source string) []string {
	if source == "" {
		return []string{""}
	}
	var lines []string
	start := 0
	for i, r := range source {
		if r == '\n' {
			lines = append(lines, source[start:i])
			start = i + 1
		}
	}
	lines = append(lines, source[start:])
	return lines
}

func (c *cursor) current() rune {
	if c.eof {
		return 0
	}
	return c.ch
}

func (c *cursor) isEOF() bool { return c.eof }

// peekNext returns the character `step` positions ahead of the cursor
// without consuming it, or 0 if that position is past the end of input.
func (c *cursor) peekNext(step int) rune {
	idx := c.pos + step
	if idx < 0 || idx >= len(c.chars) {
		return 0
	}
	return c.chars[idx]
}

// advance consumes the current character and returns the new current one.
// Advancing past a '\n' moves to the next line at column 0.
func (c *cursor) advance() rune {
	if c.eof {
		return 0
	}
	if c.ch == '\n' {
		c.line++
		c.col = 0
	} else {
		c.col++
	}
	c.pos++
	if c.pos >= len(c.chars) {
		c.eof = true
		c.ch = 0
		return 0
	}
	c.ch = c.chars[c.pos]
	return c.ch
}

// rewind steps the cursor back n positions within the current line; it does
// not handle crossing a line boundary. The lexer does not call it: the
// number-literal '.' check peeks ahead instead of consuming and rewinding.
func (c *cursor) rewind(n int) {
	for i := 0; i < n; i++ {
		if c.pos == 0 {
			break
		}
		c.pos--
		c.col--
	}
	c.eof = false
	c.ch = c.chars[c.pos]
}

func (c *cursor) skipWhitespace() {
	for !c.eof && (c.ch == ' ' || c.ch == '\t' || c.ch == '\r') {
		c.advance()
	}
}

// lineText returns the text of source line n (0-based), or "" if out of range.
func (c *cursor) lineText(n int) string {
	if n < 0 || n >= len(c.lines) {
		return ""
	}
	return c.lines[n]
}
