package web

import (
	"encoding/json"
	"fmt"

	"github.com/rohanthewiz/element"
	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"
	"github.com/rohanthewiz/serr"

	"diffview/diff"
)

// rootHandler serves the compose page: two text areas diffed on submit.
// GET /
func rootHandler(c rweb.Context) error {
	return c.WriteHTML(generateComposePage())
}

// previewDiffHandler renders a diff page directly from submitted texts.
// POST /diff/preview
func previewDiffHandler(c rweb.Context) error {
	var req struct {
		OldText string `json:"oldText"`
		NewText string `json:"newText"`
		Mode    string `json:"mode"`
	}

	body := c.Request().Body()
	if err := json.Unmarshal(body, &req); err != nil {
		return c.WriteError(serr.Wrap(err, "invalid request body"), 400)
	}

	result := diffService.Compute(req.OldText, req.NewText)
	return c.WriteHTML(generateDiffPage("Diff preview", result, req.Mode))
}

// viewDiffPageHandler renders a stored diff as an HTML page.
// GET /diff/:id?mode=side-by-side|inline
func viewDiffPageHandler(c rweb.Context) error {
	record, errResp := loadDiff(c)
	if record == nil {
		return errResp
	}

	var result diff.Result
	if err := json.Unmarshal(record.DiffData, &result); err != nil {
		logger.LogErr(err, "failed to parse diff data")
		return c.WriteError(serr.Wrap(err, "failed to parse diff data"), 500)
	}
	diffService.Hydrate(&result)

	mode := c.Request().QueryParam("mode")
	title := fmt.Sprintf("Diff %d: %s", record.ID, record.FilePath)
	return c.WriteHTML(generateDiffPage(title, &result, mode))
}

// generateComposePage builds the old/new input page
func generateComposePage() string {
	b := element.NewBuilder()

	b.Html().R(
		b.Head().R(
			b.Title().T("diffview"),
			b.Meta("charset", "UTF-8"),
			b.Style().T(diffCSS),
		),
		b.Body().R(
			b.Header().R(
				b.H1().T("diffview"),
			),
			b.Div("class", "compose").R(
				b.Div("class", "compose-pane").R(
					b.Label("for", "old-text").T("Original"),
					b.TextArea("id", "old-text", "placeholder", "Paste the original text").T(""),
				),
				b.Div("class", "compose-pane").R(
					b.Label("for", "new-text").T("Modified"),
					b.TextArea("id", "new-text", "placeholder", "Paste the modified text").T(""),
				),
			),
			b.Div("class", "compose-actions").R(
				b.Button("id", "compare-split").T("Compare side by side"),
				b.Button("id", "compare-inline").T("Compare inline"),
			),
			b.Script().T(composeJS),
		),
	)

	return b.String()
}

// generateDiffPage builds the full diff page for a computed result.
// mode is "inline" or "side-by-side" (the default).
func generateDiffPage(title string, result *diff.Result, mode string) string {
	b := element.NewBuilder()

	b.Html().R(
		b.Head().R(
			b.Title().T(title),
			b.Meta("charset", "UTF-8"),
			b.Style().T(diffCSS),
		),
		b.Body().R(
			b.Header().R(
				b.H1().T(title),
				b.Div("class", "diff-stats").R(
					b.Span("class", "stat-added").T(fmt.Sprintf("+%d", result.Stats.Added)),
					b.Span("class", "stat-deleted").T(fmt.Sprintf("−%d", result.Stats.Deleted)),
					b.Span("class", "stat-unchanged").T(fmt.Sprintf("%d unchanged", result.Stats.Unchanged)),
				),
			),
			b.Div("class", "diff-container").R(
				func() (x any) {
					if mode == "inline" {
						renderInline(b, result.Groups)
						return
					}
					renderSideBySide(b, result.Groups)
					return
				}(),
			),
			b.Script().T(collapseJS),
		),
	)

	return b.String()
}

// renderSideBySide renders groups as paired left/right rows
func renderSideBySide(b *element.Builder, groups []diff.DiffGroup) {
	element.ForEach(groups, func(group diff.DiffGroup) {
		if group.Collapsed {
			renderCollapsed(b, group, func() {
				renderSplitRows(b, diff.BuildSplitRows(group.Lines))
			})
			return
		}
		renderSplitRows(b, diff.BuildSplitRows(group.Lines))
	})
}

// renderSplitRows renders one row per SplitRow, left and right cells
func renderSplitRows(b *element.Builder, rows []diff.SplitRow) {
	element.ForEach(rows, func(row diff.SplitRow) {
		// A delete paired with an add gets intra-line highlights
		var spans diff.WordDiff
		paired := row.Left != nil && row.Right != nil &&
			row.Left.Kind == diff.Delete && row.Right.Kind == diff.Add
		if paired {
			spans = diff.ComputeWordDiff(row.Left.OldText, row.Right.NewText)
		}

		b.Div("class", "diff-row split").R(
			func() (x any) {
				renderSplitCell(b, row.Left, true, paired, spans.Old)
				renderSplitCell(b, row.Right, false, paired, spans.New)
				return
			}(),
		)
	})
}

// renderSplitCell renders one side of a split row
func renderSplitCell(b *element.Builder, line *diff.DiffLine, left, paired bool, spans []diff.WordSpan) {
	if line == nil {
		b.Div("class", "cell empty").R(
			b.Span("class", "lineno").T(""),
		)
		return
	}

	lineNo, text := line.NewLine, line.NewText
	if left {
		lineNo, text = line.OldLine, line.OldText
	}

	b.Div("class", "cell "+kindClass(line.Kind)).R(
		b.Span("class", "lineno").T(lineNoText(lineNo)),
		b.Span("class", "content").R(
			func() (x any) {
				if paired {
					renderWordSpans(b, spans)
					return
				}
				b.Span().T(text)
				return
			}(),
		),
	)
}

// renderInline renders groups as a single column of script lines
func renderInline(b *element.Builder, groups []diff.DiffGroup) {
	element.ForEach(groups, func(group diff.DiffGroup) {
		if group.Collapsed {
			renderCollapsed(b, group, func() {
				renderInlineLines(b, group.Lines)
			})
			return
		}
		renderInlineLines(b, group.Lines)
	})
}

// renderInlineLines renders script lines with +/- markers
func renderInlineLines(b *element.Builder, lines []diff.DiffLine) {
	element.ForEach(lines, func(line diff.DiffLine) {
		marker, text := " ", line.NewText
		switch line.Kind {
		case diff.Add:
			marker = "+"
		case diff.Delete:
			marker, text = "-", line.OldText
		case diff.Equal:
			// keep the new side; both sides are identical
		}

		b.Div("class", "diff-row inline "+kindClass(line.Kind)).R(
			b.Span("class", "lineno").T(lineNoText(line.OldLine)),
			b.Span("class", "lineno").T(lineNoText(line.NewLine)),
			b.Span("class", "marker").T(marker),
			b.Span("class", "content").T(text),
		)
	})
}

// renderCollapsed wraps hidden rows with an expander bar. Expand state
// lives entirely client-side, keyed on the group id.
func renderCollapsed(b *element.Builder, group diff.DiffGroup, renderBody func()) {
	groupID := fmt.Sprintf("%d", group.ID)
	b.Div("class", "collapsed-group", "data-group-id", groupID).R(
		b.Div("class", "collapse-bar", "data-group-id", groupID).R(
			b.Span("class", "collapse-label").T(
				fmt.Sprintf("… %d unchanged lines …", len(group.Lines)),
			),
		),
		b.Div("class", "collapse-body hidden", "data-group-id", groupID).R(
			func() (x any) {
				renderBody()
				return
			}(),
		),
	)
}

// renderWordSpans renders merged word spans, highlighted or plain
func renderWordSpans(b *element.Builder, spans []diff.WordSpan) {
	element.ForEach(spans, func(span diff.WordSpan) {
		if span.Highlighted {
			b.Span("class", "word-hl").T(span.Text)
			return
		}
		b.Span().T(span.Text)
	})
}

// kindClass maps a line kind to its CSS class
func kindClass(k diff.Kind) string {
	switch k {
	case diff.Add:
		return "kind-add"
	case diff.Delete:
		return "kind-delete"
	case diff.Equal:
		return "kind-equal"
	}
	return ""
}

// lineNoText formats a nullable line number for display
func lineNoText(n *int) string {
	if n == nil {
		return ""
	}
	return fmt.Sprintf("%d", *n)
}

// collapseJS toggles collapsed runs open and closed
const collapseJS = `
document.querySelectorAll('.collapse-bar').forEach(function(bar) {
	bar.addEventListener('click', function() {
		var id = bar.getAttribute('data-group-id');
		var body = document.querySelector('.collapse-body[data-group-id="' + id + '"]');
		if (body) body.classList.toggle('hidden');
	});
});
`

// composeJS submits the compose form and swaps in the rendered page
const composeJS = `
function compare(mode) {
	fetch('/diff/preview', {
		method: 'POST',
		headers: {'Content-Type': 'application/json'},
		body: JSON.stringify({
			oldText: document.getElementById('old-text').value,
			newText: document.getElementById('new-text').value,
			mode: mode
		})
	}).then(function(resp) { return resp.text(); }).then(function(html) {
		document.open(); document.write(html); document.close();
	});
}
document.getElementById('compare-split').addEventListener('click', function() { compare('side-by-side'); });
document.getElementById('compare-inline').addEventListener('click', function() { compare('inline'); });
`

// diffCSS styles both the compose and diff pages
const diffCSS = `
body { font-family: -apple-system, sans-serif; margin: 0; background: #1e1e1e; color: #d4d4d4; }
header { display: flex; align-items: center; gap: 16px; padding: 8px 16px; background: #252526; }
header h1 { font-size: 16px; margin: 0; }
.diff-stats span { margin-right: 8px; font-family: monospace; }
.stat-added { color: #4ec9b0; }
.stat-deleted { color: #f48771; }
.stat-unchanged { color: #808080; }
.diff-container { font-family: monospace; font-size: 13px; }
.diff-row.split { display: flex; }
.diff-row .cell { flex: 1 1 50%; display: flex; white-space: pre; overflow-x: auto; }
.diff-row .lineno { min-width: 42px; text-align: right; padding-right: 8px; color: #6e6e6e; user-select: none; }
.diff-row .marker { width: 14px; user-select: none; }
.cell.kind-add, .diff-row.inline.kind-add { background: #203524; }
.cell.kind-delete, .diff-row.inline.kind-delete { background: #3a2323; }
.cell.empty { background: #252526; }
.word-hl { background: #6a4a1f; border-radius: 2px; }
.collapse-bar { background: #2d2d30; color: #8a8a8a; text-align: center; padding: 2px; cursor: pointer; }
.collapse-bar:hover { color: #d4d4d4; }
.hidden { display: none; }
.compose { display: flex; gap: 12px; padding: 12px; }
.compose-pane { flex: 1; display: flex; flex-direction: column; }
.compose-pane textarea { min-height: 320px; background: #1e1e1e; color: #d4d4d4; font-family: monospace; }
.compose-actions { padding: 0 12px 12px; display: flex; gap: 8px; }
`
