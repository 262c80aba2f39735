package diff

// DefaultContextLines is the number of equal lines kept visible on each
// side of a collapsed run.
const DefaultContextLines = 3

// DiffGroup is a run of consecutive script lines shown together.
// A collapsed group is hidden by default; its ID is the opaque handle a
// caller keys expand/collapse state on and is only meaningful when
// Collapsed is true. IDs are assigned in discovery order starting at 0,
// so the same script always yields the same IDs, but they are not
// stable across edits of the underlying documents.
type DiffGroup struct {
	Collapsed bool       `json:"collapsed"`
	ID        int        `json:"id"`
	Lines     []DiffLine `json:"lines"`
}

// GroupLines partitions an edit script into visible and collapsed
// groups for progressive disclosure. A run of equal lines of at least
// 2*contextLines+1 lines keeps contextLines visible on each side and
// collapses the middle; shorter runs stay visible. Changed lines extend
// the current visible group, opening a new one after a collapse.
func GroupLines(script []DiffLine, contextLines int) []DiffGroup {
	if contextLines < 0 {
		contextLines = DefaultContextLines
	}
	threshold := 2*contextLines + 1

	var groups []DiffGroup
	var visible []DiffLine // visible group under construction
	var run []DiffLine     // uncommitted trailing run of equal lines
	nextID := 0

	closeVisible := func() {
		if len(visible) > 0 {
			groups = append(groups, DiffGroup{Lines: visible})
			visible = nil
		}
	}

	flushRun := func() {
		if len(run) == 0 {
			return
		}
		if len(run) >= threshold {
			visible = append(visible, run[:contextLines]...)
			closeVisible()
			groups = append(groups, DiffGroup{
				Collapsed: true,
				ID:        nextID,
				Lines:     run[contextLines : len(run)-contextLines],
			})
			nextID++
			visible = append(visible, run[len(run)-contextLines:]...)
		} else {
			visible = append(visible, run...)
		}
		run = nil
	}

	for _, line := range script {
		if line.Kind == Equal {
			run = append(run, line)
			continue
		}
		flushRun()
		visible = append(visible, line)
	}
	flushRun()
	closeVisible()

	return groups
}
