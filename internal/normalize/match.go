package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// isWordRune reports whether r continues a word.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// matchFoldAt reports whether word occurs in s at byte offset i, comparing
// runes case-insensitively. end is the offset just past the match.
func matchFoldAt(s string, i int, word string) (end int, ok bool) {
	j := i
	for _, wr := range word {
		if j >= len(s) {
			return 0, false
		}
		sr, size := utf8.DecodeRuneInString(s[j:])
		if sr != wr && unicode.ToLower(sr) != unicode.ToLower(wr) {
			return 0, false
		}
		j += size
	}
	return j, true
}

// wordAt reports whether word occurs at i as a whole word: neither the rune
// before i nor the rune at end is a letter or digit.
func wordAt(s string, i int, word string) (end int, ok bool) {
	if i > 0 {
		prev, _ := utf8.DecodeLastRuneInString(s[:i])
		if isWordRune(prev) {
			return 0, false
		}
	}
	end, ok = matchFoldAt(s, i, word)
	if !ok {
		return 0, false
	}
	if end < len(s) {
		next, _ := utf8.DecodeRuneInString(s[end:])
		if isWordRune(next) {
			return 0, false
		}
	}
	return end, true
}

// containsWord reports whether word occurs in s as a whole word, ignoring case.
func containsWord(s, word string) bool {
	if word == "" {
		return false
	}
	for i := range s {
		if _, ok := wordAt(s, i, word); ok {
			return true
		}
	}
	return false
}

// replaceWord replaces every whole-word, case-insensitive occurrence of word
// in s with repl.
func replaceWord(s, word, repl string) string {
	if word == "" {
		return s
	}

	var b strings.Builder
	last := 0
	for i := 0; i < len(s); {
		if end, ok := wordAt(s, i, word); ok {
			b.WriteString(s[last:i])
			b.WriteString(repl)
			last = end
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	if last == 0 {
		return s
	}
	b.WriteString(s[last:])
	return b.String()
}
