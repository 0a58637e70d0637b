// Copyright 2024 The sqlbind authors.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package sqltext provides lexical utilities over raw SQL text:
// splitting a multi-statement string at top-level semicolons and
// scanning parameter placeholders. Both are quote- and comment-aware
// but otherwise know nothing about SQL grammar.
package sqltext

import "strings"

// SplitFirst splits query into its first statement and the remaining
// text. The terminating semicolon is consumed but not returned. A first
// statement consisting only of whitespace and comments is returned as
// the empty string.
func SplitFirst(query string) (stmt, tail string) {
	end, rest := scan(query)
	stmt = strings.TrimSpace(query[:end])
	if onlyComments(stmt) {
		stmt = ""
	}
	return stmt, rest
}

// Params returns the statement's parameter slots in positional order.
// Positional "?" placeholders occupy the next free 1-based index and
// are listed as the empty string; "?NNN" addresses index NNN directly;
// named placeholders keep their leading sigil (':', '@' or '$') and
// repeated uses of one name share a single index.
func Params(stmt string) []string {
	var slots []string
	s := newScanner(stmt)
	for s.next() {
		c := s.cur()
		switch c {
		case '?':
			s.advance()
			if n, ok := s.number(); ok {
				for len(slots) < n {
					slots = append(slots, "")
				}
				continue
			}
			slots = append(slots, "")
		case ':', '@', '$':
			s.advance()
			name := s.name()
			if name == "" {
				continue
			}
			token := string(c) + name
			if indexOf(slots, token) == 0 {
				slots = append(slots, token)
			}
		default:
			s.advance()
		}
	}
	return slots
}

// indexOf returns the 1-based slot index of token, or zero.
func indexOf(slots []string, token string) int {
	for i, s := range slots {
		if s != "" && s == token {
			return i + 1
		}
	}
	return 0
}

// scan walks query respecting quotes and comments, stopping after the
// first top-level semicolon. It returns the end offset of the scanned
// region (semicolon excluded) and the remainder.
func scan(query string) (end int, rest string) {
	s := newScanner(query)
	for s.next() {
		if s.cur() == ';' {
			return s.pos, query[s.pos+1:]
		}
		s.advance()
	}
	return len(query), ""
}

// onlyComments reports whether s holds no SQL outside comments.
func onlyComments(s string) bool {
	sc := newScanner(s)
	for sc.next() {
		if sc.state == stateText && !isSpace(sc.cur()) {
			return false
		}
		sc.advance()
	}
	return true
}

const (
	stateText = iota
	stateSingle  // '...'
	stateDouble  // "..."
	stateBack    // `...`
	stateBracket // [...]
	stateLine    // -- comment
	stateBlock   // /* ... */
)

// scanner is a byte-position lexer over SQL text. next positions it on
// the next top-level byte; advance consumes the current byte together
// with any quoted or commented run it opens.
type scanner struct {
	s     string
	pos   int
	state int
}

func newScanner(s string) *scanner {
	return &scanner{s: s}
}

func (s *scanner) cur() byte {
	return s.s[s.pos]
}

// next reports whether a byte is available at the current position,
// first consuming any non-text state entered by the previous advance.
func (s *scanner) next() bool {
	for s.pos < len(s.s) {
		if s.state == stateText {
			if s.enters() {
				continue
			}
			return true
		}
		s.consume()
	}
	return false
}

// enters detects the opening of a quoted or commented run, switching
// state and consuming the opener. It reports whether it did so.
func (s *scanner) enters() bool {
	c := s.s[s.pos]
	switch c {
	case '\'':
		s.state, s.pos = stateSingle, s.pos+1
	case '"':
		s.state, s.pos = stateDouble, s.pos+1
	case '`':
		s.state, s.pos = stateBack, s.pos+1
	case '[':
		s.state, s.pos = stateBracket, s.pos+1
	case '-':
		if s.pos+1 < len(s.s) && s.s[s.pos+1] == '-' {
			s.state, s.pos = stateLine, s.pos+2
		} else {
			return false
		}
	case '/':
		if s.pos+1 < len(s.s) && s.s[s.pos+1] == '*' {
			s.state, s.pos = stateBlock, s.pos+2
		} else {
			return false
		}
	default:
		return false
	}
	return true
}

// consume eats one byte of a non-text run, leaving the run when its
// closer is found. Doubled quotes escape themselves inside quoted runs.
func (s *scanner) consume() {
	c := s.s[s.pos]
	switch s.state {
	case stateSingle, stateDouble, stateBack:
		q := map[int]byte{stateSingle: '\'', stateDouble: '"', stateBack: '`'}[s.state]
		if c == q {
			if s.pos+1 < len(s.s) && s.s[s.pos+1] == q {
				s.pos += 2
				return
			}
			s.state = stateText
		}
		s.pos++
	case stateBracket:
		if c == ']' {
			s.state = stateText
		}
		s.pos++
	case stateLine:
		if c == '\n' {
			s.state = stateText
		}
		s.pos++
	case stateBlock:
		if c == '*' && s.pos+1 < len(s.s) && s.s[s.pos+1] == '/' {
			s.state = stateText
			s.pos += 2
			return
		}
		s.pos++
	}
}

func (s *scanner) advance() {
	s.pos++
}

// number reads a run of digits at the current position.
func (s *scanner) number() (int, bool) {
	start := s.pos
	n := 0
	for s.pos < len(s.s) && s.s[s.pos] >= '0' && s.s[s.pos] <= '9' {
		n = n*10 + int(s.s[s.pos]-'0')
		s.pos++
	}
	return n, s.pos > start
}

// name reads a parameter name: letters, digits and underscores.
func (s *scanner) name() string {
	start := s.pos
	for s.pos < len(s.s) && isNameByte(s.s[s.pos]) {
		s.pos++
	}
	return s.s[start:s.pos]
}

func isNameByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' ||
		c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
