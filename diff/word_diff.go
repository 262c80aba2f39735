package diff

// WordSpan is a run of characters within one line sharing a highlight
// state. Concatenating a side's spans reproduces that side's line.
type WordSpan struct {
	Text        string `json:"text"`
	Highlighted bool   `json:"highlighted"`
}

// WordDiff holds the intra-line highlight spans for a paired old/new
// line, one span sequence per side.
type WordDiff struct {
	Old []WordSpan `json:"old"`
	New []WordSpan `json:"new"`
}

// ComputeWordDiff diffs a single old/new line pair at token
// granularity, typically a delete line paired with the add line that
// replaced it. Tokens unique to the old side are highlighted as
// deletions, tokens unique to the new side as additions; tokens on the
// common subsequence stay unhighlighted. Adjacent same-state tokens are
// merged so each side carries the minimal number of spans.
func ComputeWordDiff(oldLine, newLine string) WordDiff {
	oldTokens := tokenizeWords(oldLine)
	newTokens := tokenizeWords(newLine)

	edits := diffSequences(oldTokens, newTokens)

	var wd WordDiff
	for _, e := range edits {
		switch e.kind {
		case Equal:
			wd.Old = appendSpan(wd.Old, oldTokens[e.aIndex], false)
			wd.New = appendSpan(wd.New, newTokens[e.bIndex], false)
		case Delete:
			wd.Old = appendSpan(wd.Old, oldTokens[e.aIndex], true)
		case Add:
			wd.New = appendSpan(wd.New, newTokens[e.bIndex], true)
		}
	}

	return wd
}

// appendSpan extends the last span when the highlight state matches,
// otherwise starts a new one.
func appendSpan(spans []WordSpan, text string, highlighted bool) []WordSpan {
	if n := len(spans); n > 0 && spans[n-1].Highlighted == highlighted {
		spans[n-1].Text += text
		return spans
	}
	return append(spans, WordSpan{Text: text, Highlighted: highlighted})
}

// tokenizeWords splits a line into maximal runs of non-blank characters
// plus single space/tab characters, in order. The split is lossless:
// concatenating the tokens reproduces the line exactly.
func tokenizeWords(line string) []string {
	var tokens []string
	start := -1 // start of the current non-blank run, -1 when none

	for i := 0; i < len(line); i++ {
		c := line[i]
		if c != ' ' && c != '\t' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, line[start:i])
			start = -1
		}
		tokens = append(tokens, string(c))
	}
	if start >= 0 {
		tokens = append(tokens, line[start:])
	}

	return tokens
}
