package parser

import "strings"

// cursor is a forward position over an indexed sequence of lines. Seeks and
// next-line fallbacks are explicit, bounded operations; nothing is consumed
// implicitly.
type cursor struct {
	lines []string
	pos   int
}

func newCursor(text string) *cursor {
	raw := strings.Split(text, "\n")
	lines := make([]string, len(raw))
	for i, line := range raw {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return &cursor{lines: lines}
}

// seek advances until a line containing marker is found and returns it.
// The cursor is left positioned after the matching line.
func (c *cursor) seek(marker string) (string, bool) {
	for c.pos < len(c.lines) {
		line := c.lines[c.pos]
		c.pos++
		if strings.Contains(line, marker) {
			return line, true
		}
	}
	return "", false
}

// next returns the line at the current position and advances past it.
func (c *cursor) next() (string, bool) {
	if c.pos >= len(c.lines) {
		return "", false
	}
	line := c.lines[c.pos]
	c.pos++
	return line, true
}

// collectUntil gathers non-empty lines until one containing terminator is
// reached (the terminator line is consumed but not returned). Running off
// the end of the message ends collection.
func (c *cursor) collectUntil(terminator string) []string {
	var lines []string
	for c.pos < len(c.lines) {
		line := c.lines[c.pos]
		c.pos++
		if strings.Contains(line, terminator) {
			break
		}
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
