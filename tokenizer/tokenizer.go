// Package tokenizer splits raw text into the tokens the tagger expects.
package tokenizer

import (
	"strings"
	"unicode"
)

type class int

const (
	classPunct class = iota
	classWord
	classCJK
)

func classOf(r rune) class {
	switch {
	case isCJK(r):
		return classCJK
	case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r):
		return classWord
	}
	return classPunct
}

func isCJK(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}

// IsPunctuation reports whether s consists entirely of punctuation or
// symbols, CJK punctuation and full-width forms included.
func IsPunctuation(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isPunct(r) {
			return false
		}
	}
	return true
}

func isPunct(r rune) bool {
	if unicode.IsPunct(r) || unicode.IsSymbol(r) {
		return true
	}
	// CJK Symbols and Punctuation
	if r >= 0x3000 && r <= 0x303F {
		return true
	}
	// Full-width forms; full-width letters and digits are words.
	if r >= 0xFF00 && r <= 0xFFEF {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}
	return false
}

// joins reports whether the punctuation rune at i glues the word runs on
// either side of it: "don't", "e-mail", "3.14", "1,000".
func joins(runes []rune, i int) bool {
	if i == 0 || i == len(runes)-1 {
		return false
	}
	prev, next := runes[i-1], runes[i+1]
	switch runes[i] {
	case '\'', '’', '-':
		return classOf(prev) == classWord && classOf(next) == classWord
	case '.', ',':
		return unicode.IsDigit(prev) && unicode.IsDigit(next)
	}
	return false
}

// Tokenize splits line on white space and then at every change between
// word characters, CJK characters and punctuation. Runs of the same
// punctuation character stay together ("...", "--"); different punctuation
// characters become separate tokens.
func Tokenize(line string) []string {
	var tokens []string
	for _, field := range strings.Fields(line) {
		tokens = append(tokens, splitField([]rune(field))...)
	}
	return tokens
}

func splitField(runes []rune) []string {
	var tokens []string
	start := 0
	last := classOf(runes[0])
	for i := 1; i < len(runes); i++ {
		c := classOf(runes[i])
		if c == classPunct && joins(runes, i) {
			c = classWord
		}
		same := c == last
		if same && c == classPunct && runes[i] != runes[i-1] {
			same = false
		}
		if !same {
			tokens = append(tokens, string(runes[start:i]))
			start = i
			last = c
		}
	}
	return append(tokens, string(runes[start:]))
}
