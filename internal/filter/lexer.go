package filter

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type kind int

const (
	kindEnd kind = iota
	kindWord
	kindQuoted
	kindCompare
	kindOpen
	kindClose
	kindAnd
	kindOr
	kindNot
)

type token struct {
	kind kind
	text string
	op   Op // kindCompare only
	pos  int
}

// tokenize splits input into tokens ending with a kindEnd token.
func tokenize(input string) ([]token, error) {
	var toks []token
	for i := 0; i < len(input); {
		r, size := utf8.DecodeRuneInString(input[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case r == '(':
			toks = append(toks, token{kind: kindOpen, text: "(", pos: i})
			i++
		case r == ')':
			toks = append(toks, token{kind: kindClose, text: ")", pos: i})
			i++
		case r == ':':
			toks = append(toks, token{kind: kindCompare, text: ":", op: OpEq, pos: i})
			i++
		case r == '~':
			toks = append(toks, token{kind: kindCompare, text: "~", op: OpContains, pos: i})
			i++
		case r == '!' && strings.HasPrefix(input[i:], "!="):
			toks = append(toks, token{kind: kindCompare, text: "!=", op: OpNeq, pos: i})
			i += 2
		case r == '"':
			text, n, ok := unquote(input[i:])
			if !ok {
				return nil, fmt.Errorf("filter: unterminated quote at %d", i)
			}
			toks = append(toks, token{kind: kindQuoted, text: text, pos: i})
			i += n
		case isWordRune(r):
			start := i
			for i < len(input) {
				r, size := utf8.DecodeRuneInString(input[i:])
				if !isWordRune(r) {
					break
				}
				i += size
			}
			toks = append(toks, word(input[start:i], start))
		default:
			return nil, fmt.Errorf("filter: unexpected %q at %d", r, i)
		}
	}
	return append(toks, token{kind: kindEnd, pos: len(input)}), nil
}

// word recognises the keywords in any case.
func word(text string, pos int) token {
	switch strings.ToUpper(text) {
	case "AND":
		return token{kind: kindAnd, text: text, pos: pos}
	case "OR":
		return token{kind: kindOr, text: text, pos: pos}
	case "NOT":
		return token{kind: kindNot, text: text, pos: pos}
	}
	return token{kind: kindWord, text: text, pos: pos}
}

// unquote reads a double quoted string at the start of s, with backslash
// escaping the next byte. It returns the text and the bytes consumed.
func unquote(s string) (string, int, bool) {
	var sb strings.Builder
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '"':
			return sb.String(), i + 1, true
		case '\\':
			if i+1 < len(s) {
				i++
			}
		}
		sb.WriteByte(s[i])
	}
	return "", 0, false
}

// isWordRune admits the characters of field names, levels and property values
// such as "api/v1", "req-42" or "@mt".
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("_-.@/", r)
}
