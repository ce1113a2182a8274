package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCursorSeek(t *testing.T) {
	c := newCursor("alpha\nbeta marker gamma\ndelta\n")

	line, ok := c.seek("marker")
	assert.True(t, ok)
	assert.Equal(t, "beta marker gamma", line)

	next, ok := c.next()
	assert.True(t, ok)
	assert.Equal(t, "delta", next)
}

func TestCursorSeekMissing(t *testing.T) {
	c := newCursor("alpha\nbeta\n")

	_, ok := c.seek("nope")
	assert.False(t, ok)

	_, ok = c.next()
	assert.False(t, ok, "cursor is exhausted after a failed seek")
}

func TestCursorCollectUntil(t *testing.T) {
	c := newCursor("one\n\ntwo\nEND\nthree\n")

	lines := c.collectUntil("END")
	assert.Equal(t, []string{"one", "two"}, lines, "blank lines are dropped")

	next, ok := c.next()
	assert.True(t, ok)
	assert.Equal(t, "three", next, "terminator line is consumed")
}

func TestCursorCollectUntilRunsOffEnd(t *testing.T) {
	c := newCursor("one\ntwo")
	assert.Equal(t, []string{"one", "two"}, c.collectUntil("never"))
}

func TestCursorTrimsLineEndings(t *testing.T) {
	c := newCursor("padded   \r\nnext\r\n")
	line, ok := c.next()
	assert.True(t, ok)
	assert.Equal(t, "padded", line)
}
