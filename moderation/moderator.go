// Package moderation masks censored words in relayed chat text.
package moderation

import (
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

var leet = map[rune]rune{
	'4': 'a', '@': 'a',
	'3': 'e', '€': 'e',
	'1': 'i', '!': 'i', '|': 'i',
	'0': 'o',
	'5': 's', '$': 's',
}

// Moderator matches every censored word at once with an Aho-Corasick
// automaton built over folded text (lower case, leet speak undone,
// punctuation and spaces skipped). A zero Moderator censors nothing.
type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
}

// folded is the searchable form of a text; origin[i] is the rune index in
// the input text of folded rune i.
type folded struct {
	runes  []rune
	origin []int
}

func NewModerator(censoredWords []string, replacement rune) (*Moderator, error) {
	var patterns [][]rune
	for _, word := range censoredWords {
		if f := fold(strings.TrimSpace(word)); len(f.runes) > 0 {
			patterns = append(patterns, f.runes)
		}
	}
	if len(patterns) == 0 {
		return &Moderator{replacement: replacement}, nil
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, replacement: replacement}, nil
}

// Censor replaces each censored word, including the noise inside it, with
// the replacement rune. It returns the number of matches.
func (m *Moderator) Censor(text string) (string, int) {
	if m == nil || m.matcher == nil {
		return text, 0
	}
	f := fold(text)
	if len(f.runes) == 0 {
		return text, 0
	}
	terms := m.matcher.MultiPatternSearch(f.runes, false)
	if len(terms) == 0 {
		return text, 0
	}

	out := []rune(text)
	for _, term := range terms {
		first, last := term.Pos, term.Pos+len(term.Word)-1
		if first < 0 || last >= len(f.origin) {
			continue
		}
		for i := f.origin[first]; i <= f.origin[last]; i++ {
			out[i] = m.replacement
		}
	}
	return string(out), len(terms)
}

func fold(text string) folded {
	src := []rune(text)
	f := folded{runes: make([]rune, 0, len(src)), origin: make([]int, 0, len(src))}
	for i, r := range src {
		if plain, ok := leet[r]; ok {
			r = plain
		}
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		f.runes = append(f.runes, unicode.ToLower(r))
		f.origin = append(f.origin, i)
	}
	return f
}
