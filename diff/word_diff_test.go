package diff

import (
	"reflect"
	"testing"
)

func TestComputeWordDiff(t *testing.T) {
	tests := []struct {
		name    string
		oldLine string
		newLine string
		wantOld []WordSpan
		wantNew []WordSpan
	}{
		{
			name:    "single word replaced",
			oldLine: "the cat sat",
			newLine: "the bat sat",
			wantOld: []WordSpan{{"the ", false}, {"cat", true}, {" sat", false}},
			wantNew: []WordSpan{{"the ", false}, {"bat", true}, {" sat", false}},
		},
		{
			name:    "identical lines stay unhighlighted",
			oldLine: "same text",
			newLine: "same text",
			wantOld: []WordSpan{{"same text", false}},
			wantNew: []WordSpan{{"same text", false}},
		},
		{
			name:    "disjoint lines fully highlighted",
			oldLine: "abc",
			newLine: "xyz",
			wantOld: []WordSpan{{"abc", true}},
			wantNew: []WordSpan{{"xyz", true}},
		},
		{
			name:    "empty old side",
			oldLine: "",
			newLine: "x",
			wantOld: nil,
			wantNew: []WordSpan{{"x", true}},
		},
		{
			name:    "empty new side",
			oldLine: "x",
			newLine: "",
			wantOld: []WordSpan{{"x", true}},
			wantNew: nil,
		},
		{
			name:    "tab replaced by space",
			oldLine: "a\tb",
			newLine: "a b",
			wantOld: []WordSpan{{"a", false}, {"\t", true}, {"b", false}},
			wantNew: []WordSpan{{"a", false}, {" ", true}, {"b", false}},
		},
		{
			name:    "words appended",
			oldLine: "one two",
			newLine: "one two three four",
			wantOld: []WordSpan{{"one two", false}},
			wantNew: []WordSpan{{"one two", false}, {" three four", true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeWordDiff(tt.oldLine, tt.newLine)
			if !reflect.DeepEqual(got.Old, tt.wantOld) {
				t.Errorf("old spans: got %v, want %v", got.Old, tt.wantOld)
			}
			if !reflect.DeepEqual(got.New, tt.wantNew) {
				t.Errorf("new spans: got %v, want %v", got.New, tt.wantNew)
			}
		})
	}
}

func TestWordDiffSpansAreLossless(t *testing.T) {
	pairs := [][2]string{
		{"", ""},
		{"a", ""},
		{"the cat sat", "the bat sat"},
		{"   ", "\t\t"},
		{"a  b", "a b"},
		{"héllo wörld", "héllo there wörld"},
		{"tabs\tand spaces ", " tabs and\ttabs"},
		{"trailing space ", "trailing space"},
	}

	concat := func(spans []WordSpan) string {
		var s string
		for _, span := range spans {
			s += span.Text
		}
		return s
	}

	for _, pair := range pairs {
		wd := ComputeWordDiff(pair[0], pair[1])
		if got := concat(wd.Old); got != pair[0] {
			t.Errorf("old spans concat to %q, want %q", got, pair[0])
		}
		if got := concat(wd.New); got != pair[1] {
			t.Errorf("new spans concat to %q, want %q", got, pair[1])
		}
	}
}

func TestWordDiffMergesAdjacentSpans(t *testing.T) {
	wd := ComputeWordDiff("x", "p q r")

	// No token is shared, so each side collapses to one span even
	// though the new side tokenizes into five tokens.
	if len(wd.Old) != 1 || !wd.Old[0].Highlighted {
		t.Errorf("old side: got %v, want one highlighted span", wd.Old)
	}
	if len(wd.New) != 1 || !wd.New[0].Highlighted {
		t.Errorf("new side: got %v, want one highlighted span", wd.New)
	}
	if wd.New[0].Text != "p q r" {
		t.Errorf("new span text: got %q, want %q", wd.New[0].Text, "p q r")
	}
}

func TestTokenizeWords(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"empty", "", nil},
		{"single word", "abc", []string{"abc"}},
		{"words and space", "a b", []string{"a", " ", "b"}},
		{"spaces split singly", "a  b", []string{"a", " ", " ", "b"}},
		{"tabs and spaces", "a\t b", []string{"a", "\t", " ", "b"}},
		{"whitespace only", " \t ", []string{" ", "\t", " "}},
		{"leading and trailing", " ab ", []string{" ", "ab", " "}},
		{"punctuation stays in word runs", "f(x, y)", []string{"f(x,", " ", "y)"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenizeWords(tt.line)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
