// Package matcher implements the default full-match collaborator: a reference
// matches when its entire token sequence occurs contiguously in the content.
// Token-level tolerance (diffs, gaps, substitutions) is not attempted here
package matcher

import (
	"bulkscan/internal/core/tokenize"
	"bulkscan/internal/services/bulk/domain"
)

// Exact is a stateless full-match matcher, safe for concurrent use
type Exact struct{}

// New returns an Exact matcher
func New() Exact { return Exact{} }

// Match returns every non-overlapping full occurrence of each reference in content
func (Exact) Match(content string, refs []*domain.ReferenceLicense) ([]domain.Match, error) {
	if content == "" || len(refs) == 0 {
		return nil, nil
	}
	toks := tokenize.Tokenize(content)
	if len(toks) == 0 {
		return nil, nil
	}

	var out []domain.Match
	for _, ref := range refs {
		if ref == nil || len(ref.Tokens) == 0 || len(ref.Tokens) > len(toks) {
			continue
		}
		for _, at := range find(toks, ref.Tokens) {
			last := toks[at+len(ref.Tokens)-1]
			out = append(out, domain.Match{
				License: ref,
				Start:   toks[at].Start,
				Length:  last.End - toks[at].Start,
			})
		}
	}
	return out, nil
}

// find runs KMP over token texts and returns the start index of each non-overlapping hit
func find(text, pat []tokenize.Token) []int {
	m := len(pat)
	fail := make([]int, m)
	for i, k := 1, 0; i < m; i++ {
		for k > 0 && pat[i].Text != pat[k].Text {
			k = fail[k-1]
		}
		if pat[i].Text == pat[k].Text {
			k++
		}
		fail[i] = k
	}

	var hits []int
	for i, k := 0, 0; i < len(text); i++ {
		for k > 0 && text[i].Text != pat[k].Text {
			k = fail[k-1]
		}
		if text[i].Text == pat[k].Text {
			k++
		}
		if k == m {
			hits = append(hits, i-m+1)
			k = 0 // no overlap
		}
	}
	return hits
}
