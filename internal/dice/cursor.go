package dice

import (
	"unicode"
	"unicode/utf8"
)

// cursor is a lookahead-1 view over an expression.
//
// It is a plain value: backup returns a copy and restore assigns it back, so
// a failed grammar alternative can be rolled back without side effects.
type cursor struct {
	src string
	off int // byte offset of the next character
	at  int // character offset of the next character
}

func newCursor(src string) cursor {
	return cursor{src: src}
}

// peek returns the next character without consuming it.
func (c *cursor) peek() (rune, bool) {
	if c.off >= len(c.src) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(c.src[c.off:])
	return r, true
}

// advance consumes one character. It is a no-op at end of input.
func (c *cursor) advance() {
	if c.off >= len(c.src) {
		return
	}
	_, size := utf8.DecodeRuneInString(c.src[c.off:])
	c.off += size
	c.at++
}

func (c *cursor) pos() int { return c.at }

func (c *cursor) backup() cursor { return *c }

func (c *cursor) restore(saved cursor) { *c = saved }

// skipSpace consumes whitespace. Only the expect operations call it, so
// positions recorded on failure point at the first non-space mismatch.
func (c *cursor) skipSpace() {
	for {
		r, ok := c.peek()
		if !ok || !unicode.IsSpace(r) {
			return
		}
		c.advance()
	}
}

// done reports whether only whitespace remains.
func (c *cursor) done() bool {
	c.skipSpace()
	_, ok := c.peek()
	return !ok
}
