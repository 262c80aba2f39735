package diff

// SplitRow is one rendered row in side-by-side mode. Either side may be
// nil when the row has no counterpart there; an equal line fills both
// sides.
type SplitRow struct {
	Left  *DiffLine `json:"left,omitempty"`
	Right *DiffLine `json:"right,omitempty"`
}

// BuildSplitRows projects an edit script onto left/right paired rows
// for side-by-side display. A run of deletes immediately followed by a
// run of adds is paired index-by-index up to the shorter run; the
// excess becomes one-sided rows. Pairing is purely positional — it does
// not compare the paired texts for similarity.
func BuildSplitRows(lines []DiffLine) []SplitRow {
	rows := make([]SplitRow, 0, len(lines))

	for i := 0; i < len(lines); {
		switch lines[i].Kind {
		case Equal:
			rows = append(rows, SplitRow{Left: &lines[i], Right: &lines[i]})
			i++
		case Delete:
			start := i
			for i < len(lines) && lines[i].Kind == Delete {
				i++
			}
			deletes := lines[start:i]

			start = i
			for i < len(lines) && lines[i].Kind == Add {
				i++
			}
			adds := lines[start:i]

			for k := 0; k < len(deletes) || k < len(adds); k++ {
				var row SplitRow
				if k < len(deletes) {
					row.Left = &deletes[k]
				}
				if k < len(adds) {
					row.Right = &adds[k]
				}
				rows = append(rows, row)
			}
		case Add:
			// An add with no preceding delete run stays one-sided.
			rows = append(rows, SplitRow{Right: &lines[i]})
			i++
		}
	}

	return rows
}
