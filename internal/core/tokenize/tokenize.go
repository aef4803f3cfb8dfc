// Package tokenize splits text into folded word tokens that keep their byte spans.
//
// A token is a maximal run of word runes (letters, numbers, combining marks,
// connector punctuation). Everything else is a delimiter. Each token's text is
// folded so that comparisons ignore case, width, diacritics and compatibility forms:
//  1. Unicode NFKD, so precomposed letters split into base plus marks
//  2. case folding
//  3. combining marks removed
//  4. fullwidth forms mapped to ASCII
//  5. Unicode NFC
//
// Spans always refer to the original, unfolded input.
package tokenize

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Token is one folded word with its [Start,End) byte span in the source text
type Token struct {
	Text  string
	Start int
	End   int
}

// transform chains are stateful; pool them so Tokenize is safe for concurrent use
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKD,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Mn)),
			width.Fold,
			norm.NFC,
		)
	},
}

// isWord reports whether r belongs inside a token
func isWord(r rune) bool {
	if r == utf8.RuneError || r == 0 {
		return false
	}
	return unicode.IsLetter(r) ||
		unicode.IsNumber(r) ||
		unicode.In(r, unicode.Mn, unicode.Pc)
}

// Tokenize returns the tokens of s in order
func Tokenize(s string) []Token {
	if s == "" {
		return nil
	}
	out := make([]Token, 0, len(s)/6+1)

	tr := chainPool.Get().(transform.Transformer)
	defer chainPool.Put(tr)

	start := -1
	emit := func(end int) {
		txt := fold(tr, s[start:end])
		if txt != "" {
			out = append(out, Token{Text: txt, Start: start, End: end})
		}
		start = -1
	}

	for i, r := range s {
		if isWord(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			emit(i)
		}
	}
	if start >= 0 {
		emit(len(s))
	}
	return out
}

// Fold applies the token folding pipeline to a single word
func Fold(w string) string {
	tr := chainPool.Get().(transform.Transformer)
	defer chainPool.Put(tr)
	return fold(tr, w)
}

func fold(tr transform.Transformer, w string) string {
	if isASCIILowerWord(w) {
		return w
	}
	tr.Reset()
	f, _, err := transform.String(tr, w)
	if err != nil {
		return strings.ToLower(w)
	}
	return f
}

// isASCIILowerWord short-circuits the common case where folding is a no-op
func isASCIILowerWord(w string) bool {
	for i := 0; i < len(w); i++ {
		c := w[i]
		if c >= utf8.RuneSelf || (c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}

// Texts returns the folded text of each token, handy for logs and tests
func Texts(ts []Token) []string {
	out := make([]string, len(ts))
	for i := range ts {
		out[i] = ts[i].Text
	}
	return out
}
