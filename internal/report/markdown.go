package report

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/petrotools/deckqc/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and review threads.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.QCReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSections(md, report)
	w.writeIssues(md, report)
	w.writePlan(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteAll outputs each report in sequence as one Markdown document.
func (w *MarkdownWriter) WriteAll(reports []*model.QCReport) (int, error) {
	var total int
	for _, report := range reports {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// writeHeader writes the report header with check information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.QCReport) {
	md.H1("Deck QC Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Deck", "`" + report.Deck + "`"},
			{"Checked", report.DateChecked.Format("2006-01-02 15:04:05 MST")},
			{"Issues", strconv.Itoa(report.IssueCount())},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.QCReport) string {
	if report.TimedOut {
		return "⚠️ Timed Out (partial results)"
	}
	if report.ErrorMessage != "" {
		return "❌ Error - " + report.ErrorMessage
	}
	if report.Passed() {
		return "✅ Passed"
	}
	return "⚠️ Issues Found"
}

// writeSections writes the section inventory table.
func (w *MarkdownWriter) writeSections(md *markdown.Markdown, report *model.QCReport) {
	md.H2("Sections")
	md.PlainText("")

	if len(report.SectionNames) == 0 {
		md.PlainText("No recognized sections found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.SectionNames))
	for i, name := range report.SectionNames {
		rows[i] = []string{name, strconv.Itoa(report.SectionLines[name])}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Section", "Lines"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(report.PVTTables) > 0 {
		tables := append([]string(nil), report.PVTTables...)
		sort.Strings(tables)
		md.PlainTextf("PVT tables in PROPS: %s", strings.Join(tables, ", "))
		md.PlainText("")
	}
}

// writeIssues writes the QC issue list with an appropriate alert.
func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, report *model.QCReport) {
	md.H2("Issues")
	md.PlainText("")

	switch {
	case report.ErrorMessage != "":
		md.Cautionf("The check did not complete: %s", report.ErrorMessage)
	case len(report.Issues) == 0:
		md.Tip("Deck passed every QC rule.")
	default:
		md.Warningf("%d issue(s) require attention before simulation.", report.IssueCount())
	}
	md.PlainText("")

	if len(report.Issues) > 0 {
		md.OrderedList(report.Issues...)
		md.PlainText("")
	}
}

// writePlan writes the remediation plan when one exists.
func (w *MarkdownWriter) writePlan(md *markdown.Markdown, report *model.QCReport) {
	if len(report.Plan) == 0 {
		return
	}

	md.H2("Remediation Plan")
	md.PlainText("")
	md.OrderedList(report.Plan...)
	md.PlainText("")

	if report.PlanSource != "" {
		md.PlainTextf("*Plan source: %s*", report.PlanSource)
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [deckqc](https://github.com/petrotools/deckqc)*")
}
