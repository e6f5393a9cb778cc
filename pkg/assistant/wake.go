package assistant

import (
	"strings"
	"unicode"
)

// DefaultWakeWords are "hey frame" and the ways transcription tends to
// mishear it.
const DefaultWakeWords = "hey frame,hey rain,hey brain,hey frank,hey fraim,hey graham"

// ParseWakeWords splits a comma separated wake word list.
func ParseWakeWords(s string) []string {
	var out []string
	for w := range strings.SplitSeq(s, ",") {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}
	return out
}

// WakeGate passes transcripts that contain a wake word.
type WakeGate struct {
	words [][]string
	raw   []string
}

// NewWakeGate creates a gate for words. Matching ignores case and
// punctuation.
func NewWakeGate(words []string) *WakeGate {
	g := &WakeGate{}
	for _, w := range words {
		toks := normalizeTokens(w)
		if len(toks) == 0 {
			continue
		}
		g.words = append(g.words, toks)
		g.raw = append(g.raw, w)
	}
	return g
}

// Words returns the configured wake words.
func (g *WakeGate) Words() []string {
	return g.raw
}

// Match finds the earliest wake word in transcript. query is the text
// following it, with leading punctuation and surrounding space removed.
func (g *WakeGate) Match(transcript string) (word, query string, ok bool) {
	toks := tokenize(transcript)
	for i := range toks {
		for wi, w := range g.words {
			if !matchAt(toks, i, w) {
				continue
			}
			rest := transcript[toks[i+len(w)-1].end:]
			query = strings.TrimSpace(strings.TrimLeftFunc(rest, func(r rune) bool {
				return unicode.IsSpace(r) || unicode.IsPunct(r)
			}))
			return g.raw[wi], query, true
		}
	}
	return "", "", false
}

type token struct {
	text       string
	start, end int
}

func tokenize(s string) []token {
	var toks []token
	start := -1
	for i, r := range s {
		word := unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\''
		switch {
		case word && start < 0:
			start = i
		case !word && start >= 0:
			toks = append(toks, token{strings.ToLower(s[start:i]), start, i})
			start = -1
		}
	}
	if start >= 0 {
		toks = append(toks, token{strings.ToLower(s[start:]), start, len(s)})
	}
	return toks
}

func normalizeTokens(s string) []string {
	var out []string
	for _, t := range tokenize(s) {
		out = append(out, t.text)
	}
	return out
}

func matchAt(toks []token, i int, w []string) bool {
	if i+len(w) > len(toks) {
		return false
	}
	for j, want := range w {
		if toks[i+j].text != want {
			return false
		}
	}
	return true
}
