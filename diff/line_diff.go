package diff

import (
	"encoding/json"
	"strings"

	"github.com/rohanthewiz/serr"
)

// Kind classifies a line in an edit script. It is a closed three-way
// tag; every consumer switches exhaustively over it.
type Kind int

const (
	Equal Kind = iota
	Add
	Delete
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case Equal:
		return "equal"
	case Add:
		return "add"
	case Delete:
		return "delete"
	}
	return "unknown"
}

// MarshalJSON serializes the kind as its wire name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON parses a kind from its wire name.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return serr.Wrap(err, "failed to parse diff line kind")
	}
	switch s {
	case "equal":
		*k = Equal
	case "add":
		*k = Add
	case "delete":
		*k = Delete
	default:
		return serr.New("unknown diff line kind", "kind", s)
	}
	return nil
}

// DiffLine is one entry of an edit script.
// Line numbers are 1-based; a nil number means the line has no
// counterpart on that side. Equal lines carry identical text on both
// sides; added lines have empty OldText, deleted lines empty NewText.
type DiffLine struct {
	Kind    Kind   `json:"kind"`
	OldLine *int   `json:"oldLine,omitempty"` // line number in the old document
	NewLine *int   `json:"newLine,omitempty"` // line number in the new document
	OldText string `json:"oldText"`
	NewText string `json:"newText"`
}

// ComputeLineDiff generates the edit script between two text documents.
// Documents are split on '\n' only (no CR normalization, so a trailing
// newline yields a trailing empty line). The result covers every line
// of both inputs: each old line appears exactly once as equal or
// delete, each new line exactly once as equal or add, both in
// increasing order.
func ComputeLineDiff(oldText, newText string) []DiffLine {
	oldLines := splitLines(oldText)
	newLines := splitLines(newText)

	edits := diffSequences(oldLines, newLines)

	script := make([]DiffLine, 0, len(edits))
	for _, e := range edits {
		switch e.kind {
		case Equal:
			oldNo, newNo := e.aIndex+1, e.bIndex+1
			script = append(script, DiffLine{
				Kind:    Equal,
				OldLine: &oldNo,
				NewLine: &newNo,
				OldText: oldLines[e.aIndex],
				NewText: newLines[e.bIndex],
			})
		case Add:
			newNo := e.bIndex + 1
			script = append(script, DiffLine{
				Kind:    Add,
				NewLine: &newNo,
				NewText: newLines[e.bIndex],
			})
		case Delete:
			oldNo := e.aIndex + 1
			script = append(script, DiffLine{
				Kind:    Delete,
				OldLine: &oldNo,
				OldText: oldLines[e.aIndex],
			})
		}
	}

	return script
}

// splitLines splits text into lines on '\n' boundaries.
// Empty text yields no lines.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// seqEdit is one step of an edit script over two string sequences.
// aIndex/bIndex are -1 when the step has no counterpart on that side.
type seqEdit struct {
	kind   Kind
	aIndex int
	bIndex int
}

// diffSequences computes an LCS-based edit script between two string
// sequences. cell[i][j] holds the LCS length of a[0:i] and b[0:j];
// backtracking from cell[m][n] recovers the script.
//
// When LCS values tie during backtracking, the add is taken before the
// delete (the >= below). The tie-break is a fixed policy: changing it
// yields a different, though still minimal, edit script.
func diffSequences(a, b []string) []seqEdit {
	m, n := len(a), len(b)

	cell := make([][]int, m+1)
	for i := range cell {
		cell[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				cell[i][j] = cell[i-1][j-1] + 1
			} else if cell[i-1][j] > cell[i][j-1] {
				cell[i][j] = cell[i-1][j]
			} else {
				cell[i][j] = cell[i][j-1]
			}
		}
	}

	edits := make([]seqEdit, 0, m+n)
	i, j := m, n
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && a[i-1] == b[j-1]:
			i--
			j--
			edits = append(edits, seqEdit{kind: Equal, aIndex: i, bIndex: j})
		case j > 0 && (i == 0 || cell[i][j-1] >= cell[i-1][j]):
			j--
			edits = append(edits, seqEdit{kind: Add, aIndex: -1, bIndex: j})
		default:
			i--
			edits = append(edits, seqEdit{kind: Delete, aIndex: i, bIndex: -1})
		}
	}

	// Backtracking walks tail to head; restore script order.
	for l, r := 0, len(edits)-1; l < r; l, r = l+1, r-1 {
		edits[l], edits[r] = edits[r], edits[l]
	}

	return edits
}
