// Package report renders QC results for people and tools.
//
// A Writer takes a completed QCReport and emits one of three formats:
// plain text for terminals (SimpleWriter), JSON for integration
// (JSONWriter), and Markdown for documentation and review threads
// (MarkdownWriter). MultiWriter fans a report out to several writers,
// which is how the CLI writes to both stdout and a file.
package report
