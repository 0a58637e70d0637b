// Copyright 2024 The sqlbind authors.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package timeparse parses the broad ISO-8601-like textual form used
// for date and time values stored as text.
//
// The accepted shape is a mandatory 4-digit year, optionally followed
// by a 2-digit month and then a 2-digit day, optionally followed by a
// time of day introduced by a space, 'T' or 't': 2-digit hour, then
// optional minute, second and fractional seconds, optionally followed
// by a zone designator: 'Z'/'z', or a sign and a 2-digit hour offset
// with an optional 2-digit minute offset. Separators between components
// may be present or absent, so "2024-01-02" and "20240102" parse
// identically.
package timeparse

import (
	"strings"
	"time"
)

// unicodeMinus is accepted as an offset sign alongside the ASCII
// hyphen-minus.
const unicodeMinus = '−'

// Parse parses a single textual token into an instant in the Gregorian
// calendar. Absent trailing time fields default to zero; absent month
// and day default to the first. The zone offset, when present, is
// preserved in the returned time's location; otherwise the instant is
// in UTC. Parse reports ok=false when the token does not match the
// pattern, never a partial instant.
func Parse(s string) (t time.Time, ok bool) {
	p := &parser{s: s}

	year, ok := p.digits(4)
	if !ok {
		return time.Time{}, false
	}
	month, day := 1, 1
	p.skipSep('-')
	if m, ok := p.digits(2); ok {
		month = m
		p.skipSep('-')
		if d, ok := p.digits(2); ok {
			day = d
		}
	}

	var hour, min, sec, nsec int
	if p.time() {
		hour, ok = p.digits(2)
		if !ok {
			return time.Time{}, false
		}
		p.skipSep(':')
		if m, ok := p.digits(2); ok {
			min = m
			p.skipSep(':')
			if v, ok := p.digits(2); ok {
				sec = v
				if p.skip('.') {
					nsec, ok = p.fraction()
					if !ok {
						return time.Time{}, false
					}
				}
			}
		}
	}

	loc := time.UTC
	if !p.done() {
		offset, ok := p.zone()
		if !ok || !p.done() {
			return time.Time{}, false
		}
		if offset != 0 {
			loc = time.FixedZone("", offset)
		}
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	if hour > 23 || min > 59 || sec > 59 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, hour, min, sec, nsec, loc), true
}

type parser struct {
	s   string
	pos int
}

func (p *parser) done() bool {
	return p.pos == len(p.s)
}

func (p *parser) skip(c byte) bool {
	if p.pos < len(p.s) && p.s[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

// skipSep consumes a field separator only when a 2-digit group
// follows. A trailing separator stays put, so the zone and
// end-of-input checks reject it.
func (p *parser) skipSep(c byte) {
	if p.pos+2 < len(p.s) && p.s[p.pos] == c &&
		'0' <= p.s[p.pos+1] && p.s[p.pos+1] <= '9' &&
		'0' <= p.s[p.pos+2] && p.s[p.pos+2] <= '9' {
		p.pos++
	}
}

// digits reads exactly n ASCII digits.
func (p *parser) digits(n int) (int, bool) {
	if p.pos+n > len(p.s) {
		return 0, false
	}
	v := 0
	for i := 0; i < n; i++ {
		c := p.s[p.pos+i]
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + int(c-'0')
	}
	p.pos += n
	return v, true
}

// time consumes the separator introducing the time of day.
func (p *parser) time() bool {
	return p.skip(' ') || p.skip('T') || p.skip('t')
}

// fraction reads a run of at least one digit and returns it scaled to
// nanoseconds. Digits beyond nanosecond precision are dropped.
func (p *parser) fraction() (int, bool) {
	start := p.pos
	nsec, scale := 0, 100_000_000
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if c < '0' || c > '9' {
			break
		}
		if scale > 0 {
			nsec += int(c-'0') * scale
			scale /= 10
		}
		p.pos++
	}
	return nsec, p.pos > start
}

// zone reads the zone designator and returns the offset in seconds.
func (p *parser) zone() (int, bool) {
	if p.skip('Z') || p.skip('z') {
		return 0, true
	}
	sign := 0
	switch {
	case p.skip('+'):
		sign = 1
	case p.skip('-'):
		sign = -1
	case strings.HasPrefix(p.s[p.pos:], string(unicodeMinus)):
		p.pos += len(string(unicodeMinus))
		sign = -1
	default:
		return 0, false
	}
	h, ok := p.digits(2)
	if !ok {
		return 0, false
	}
	p.skipSep(':')
	m, _ := p.digits(2)
	if h > 23 || m > 59 {
		return 0, false
	}
	return sign * (h*3600 + m*60), true
}
