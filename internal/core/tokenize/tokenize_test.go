package tokenize

import (
	"reflect"
	"sync"
	"testing"
)

func TestTokenize_Table(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: []string{}},
		{name: "only delimiters", in: " \t--//;;\n", want: []string{}},
		{name: "simple words", in: "MIT License", want: []string{"mit", "license"}},
		{name: "punctuation splits", in: "Copyright (c) 2024, Foo-Bar.", want: []string{"copyright", "c", "2024", "foo", "bar"}},
		{name: "comment markers ignored", in: "/* Permission is granted */", want: []string{"permission", "is", "granted"}},
		{name: "underscore stays inside", in: "snake_case word", want: []string{"snake_case", "word"}},
		{name: "fullwidth folds", in: "ＭＩＴ license", want: []string{"mit", "license"}},
		{name: "combining marks dropped", in: "café ok", want: []string{"cafe", "ok"}},
		{name: "precomposed accents dropped", in: "café ok", want: []string{"cafe", "ok"}},
		{name: "uppercase accents", in: "ÉCOLE Ångström", want: []string{"ecole", "angstrom"}},
		{name: "ligature nfkc", in: "oﬃce", want: []string{"office"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Texts(Tokenize(tc.in))
			if len(got) == 0 && len(tc.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Tokenize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTokenize_SpansReferToSource(t *testing.T) {
	t.Parallel()

	in := "  Hello,\tWÖRLD!  "
	ts := Tokenize(in)
	if len(ts) != 2 {
		t.Fatalf("want 2 tokens, got %d (%v)", len(ts), ts)
	}
	if got := in[ts[0].Start:ts[0].End]; got != "Hello" {
		t.Fatalf("span 0 = %q, want %q", got, "Hello")
	}
	if got := in[ts[1].Start:ts[1].End]; got != "WÖRLD" {
		t.Fatalf("span 1 = %q, want %q", got, "WÖRLD")
	}
	if ts[1].Text != "world" {
		t.Fatalf("folded text = %q, want %q", ts[1].Text, "world")
	}
}

func TestFold(t *testing.T) {
	t.Parallel()

	if got := Fold("GPL"); got != "gpl" {
		t.Fatalf("Fold(GPL) = %q", got)
	}
	if got := Fold("already"); got != "already" {
		t.Fatalf("Fold(already) = %q", got)
	}
}

func TestTokenize_ConcurrentUse(t *testing.T) {
	t.Parallel()

	const in = "Permission is hereby granted, free of charge"
	want := Texts(Tokenize(in))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if got := Texts(Tokenize(in)); !reflect.DeepEqual(got, want) {
					t.Errorf("concurrent tokenize mismatch: %q", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}
