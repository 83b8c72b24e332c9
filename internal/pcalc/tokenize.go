package pcalc

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TokenKind classifies a Token.
type TokenKind int

const (
	Ident TokenKind = iota
	Number
	Symbol
)

// Token is one lexical element of a formula. Num holds the value of a
// Number token; Signed marks a number whose leading minus was folded in.
type Token struct {
	Kind   TokenKind
	Text   string
	Num    float64
	Signed bool
}

func (t Token) String() string {
	if t.Kind == Number {
		return strconv.FormatFloat(t.Num, 'g', -1, 64)
	}
	return t.Text
}

func (t Token) is(texts ...string) bool {
	if t.Kind == Number {
		return false
	}
	for _, s := range texts {
		if t.Text == s {
			return true
		}
	}
	return false
}

// Tokenize splits a formula into identifiers, numbers and one-character
// symbols. Whitespace and '?' separate tokens and are dropped. A '%' right
// after a number divides it by 100. Tokenize never fails: anything it does
// not recognize becomes a symbol of one UTF-8 character.
func Tokenize(s string) []Token {
	var out []Token
	i := 0
	for i < len(s) {
		ch := s[i]
		switch {
		case isSeparator(ch):
			i++
		case isIdentStart(ch):
			start := i
			for i < len(s) && isIdentPart(s[i]) {
				i++
			}
			out = append(out, Token{Kind: Ident, Text: s[start:i]})
		default:
			if n := scanNumber(s[i:]); n > 0 {
				out = append(out, numberToken(s[i:i+n]))
				i += n
				if i < len(s) && s[i] == '%' {
					last := &out[len(out)-1]
					last.Num /= 100
					last.Text += "%"
					i++
				}
				continue
			}
			_, size := utf8.DecodeRuneInString(s[i:])
			out = append(out, Token{Kind: Symbol, Text: s[i : i+size]})
			i += size
		}
	}
	return out
}

func isSeparator(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '?'
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// scanNumber returns the length of the number literal at the start of s,
// or 0. A literal is -?(.d+|d+(.d+)?) optionally followed by e-?d+(.d+)?.
func scanNumber(s string) int {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	mantissa := scanDecimal(s[i:])
	if mantissa == 0 {
		return 0
	}
	i += mantissa
	if i < len(s) && s[i] == 'e' {
		j := i + 1
		if j < len(s) && s[j] == '-' {
			j++
		}
		if n := scanDecimal(s[j:]); n > 0 {
			i = j + n
		}
	}
	return i
}

func scanDecimal(s string) int {
	digits := func(from int) int {
		j := from
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		return j - from
	}
	if len(s) > 0 && s[0] == '.' {
		if n := digits(1); n > 0 {
			return 1 + n
		}
		return 0
	}
	n := digits(0)
	if n == 0 {
		return 0
	}
	if n < len(s) && s[n] == '.' {
		if m := digits(n + 1); m > 0 {
			return n + 1 + m
		}
	}
	return n
}

func numberToken(text string) Token {
	t := Token{Kind: Number, Text: text, Signed: strings.HasPrefix(text, "-")}
	mantissa, exponent := text, ""
	if k := strings.IndexByte(text, 'e'); k >= 0 {
		mantissa, exponent = text[:k], text[k+1:]
	}
	// The scanner only admits well-formed literals.
	t.Num, _ = strconv.ParseFloat(mantissa, 64)
	if exponent != "" {
		e, _ := strconv.ParseFloat(exponent, 64)
		t.Num *= math.Pow(10, e)
	}
	return t
}
