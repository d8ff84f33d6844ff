package insights

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Markdown renders the report as a markdown document.
func (r *Report) Markdown() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Analysis Report: %s\n\n", r.DatasetName)

	fmt.Fprintf(&sb, "## Executive Summary\n\n%s\n\n", r.ExecutiveSummary)

	writeSection(&sb, "Overview", r.Overview)
	writeSection(&sb, "Key Findings", r.KeyFindings)
	writeSection(&sb, "Patterns", r.Patterns)
	writeSection(&sb, "Data Quality", r.DataQuality)

	if len(r.Recommendations) > 0 {
		sb.WriteString("## Recommendations\n\n")
		sb.WriteString("| Priority | Category | Recommendation | Action |\n")
		sb.WriteString("|----------|----------|----------------|--------|\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
				rec.Priority, rec.Category, rec.Recommendation, rec.Action)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeSection(sb *strings.Builder, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(sb, "## %s\n\n", title)
	for _, line := range lines {
		fmt.Fprintf(sb, "- %s\n", line)
	}
	sb.WriteString("\n")
}

// HTML renders the report as an HTML fragment for the web UI.
func (r *Report) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(r.Markdown()))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}
