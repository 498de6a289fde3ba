// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package parser

import (
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokString
	tokOp
)

type token struct {
	kind tokenKind
	str  string
	pos  int
}

// scanner splits an expression into tokens. Identifiers are lower-cased
// unless quoted.
type scanner struct {
	in  string
	pos int
}

func (s *scanner) next() (token, error) {
	for s.pos < len(s.in) && unicode.IsSpace(rune(s.in[s.pos])) {
		s.pos++
	}
	start := s.pos
	if s.pos >= len(s.in) {
		return token{kind: tokEOF, pos: start}, nil
	}
	ch := s.in[s.pos]
	switch {
	case ch == '\'':
		return s.scanString(start)
	case ch == '"':
		end := strings.IndexByte(s.in[s.pos+1:], '"')
		if end < 0 {
			return token{}, errors.Newf("at or near %d: unterminated quoted identifier", start)
		}
		s.pos += end + 2
		return token{kind: tokIdent, str: s.in[start+1 : s.pos-1], pos: start}, nil
	case isIdentStart(ch):
		for s.pos < len(s.in) && isIdentMiddle(s.in[s.pos]) {
			s.pos++
		}
		return token{kind: tokIdent, str: strings.ToLower(s.in[start:s.pos]), pos: start}, nil
	case ch >= '0' && ch <= '9':
		for s.pos < len(s.in) && s.in[s.pos] >= '0' && s.in[s.pos] <= '9' {
			s.pos++
		}
		return token{kind: tokInt, str: s.in[start:s.pos], pos: start}, nil
	}
	for _, op := range []string{"::", "<=", ">=", "<>", "!=", "=", "<", ">", "+", "-", "(", ")", ","} {
		if strings.HasPrefix(s.in[s.pos:], op) {
			s.pos += len(op)
			return token{kind: tokOp, str: op, pos: start}, nil
		}
	}
	return token{}, errors.Newf("at or near %d: unexpected character %q", start, ch)
}

func (s *scanner) scanString(start int) (token, error) {
	var b strings.Builder
	s.pos++
	for s.pos < len(s.in) {
		ch := s.in[s.pos]
		s.pos++
		if ch != '\'' {
			b.WriteByte(ch)
			continue
		}
		if s.pos < len(s.in) && s.in[s.pos] == '\'' {
			// Doubled quote.
			b.WriteByte('\'')
			s.pos++
			continue
		}
		return token{kind: tokString, str: b.String(), pos: start}, nil
	}
	return token{}, errors.Newf("at or near %d: unterminated string", start)
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentMiddle(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9') || ch == '$'
}
