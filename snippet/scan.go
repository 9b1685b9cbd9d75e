package snippet

import "strings"

// scanComments walks one line of code and returns the index of the first
// line comment outside string, template and regular expression literals
// (-1 if none), and whether a block comment is still open at the end of the
// line. open reports whether a block comment was open at its start.
//
// Literals are assumed to end on the line they start on.
func scanComments(line string, open bool) (int, bool) {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		next := byte(0)
		if i+1 < len(line) {
			next = line[i+1]
		}

		switch {
		case open:
			if c == '*' && next == '/' {
				open = false
				i++
			}
		case quote != 0:
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
		case c == '"' || c == '\'' || c == '`':
			quote = c
		case c == '/' && next == '/':
			return i, false
		case c == '/' && next == '*':
			open = true
			i++
		case c == '/' && regexAllowed(line[:i]):
			i = skipRegex(line, i)
		}
	}
	return -1, open
}

// commentOpenAfter reports whether a block comment is still open at the end
// of line, given whether one was open at its start.
func commentOpenAfter(line string, open bool) bool {
	_, open = scanComments(line, open)
	return open
}

// regexAllowed reports whether a slash following prefix starts a regular
// expression literal rather than a division.
func regexAllowed(prefix string) bool {
	p := strings.TrimRight(prefix, " \t")
	if p == "" {
		return true
	}
	if strings.ContainsRune("(,=:[!&|?{};+-*%<>~^", rune(p[len(p)-1])) {
		return true
	}
	for _, kw := range []string{"return", "typeof", "case", "void", "delete", "in", "of", "yield", "await"} {
		if strings.HasSuffix(p, kw) {
			rest := p[:len(p)-len(kw)]
			if rest == "" || !isIdentByte(rest[len(rest)-1]) {
				return true
			}
		}
	}
	return false
}

// skipRegex returns the index of the slash closing the regular expression
// literal opened at start, or start itself when the literal is unterminated.
func skipRegex(line string, start int) int {
	inClass := false
	for i := start + 1; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				return i
			}
		}
	}
	return start
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
