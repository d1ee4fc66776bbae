// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-builder/internal/assist"
	"github.com/jonathan/resume-builder/internal/format"
	"github.com/jonathan/resume-builder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to n runes, ending in "..." when cut.
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// PrintDocumentOverview outputs the name line, theme and entry count per section.
func (p *Printer) PrintDocumentOverview(doc *types.ResumeDocument, settings types.PresentationSettings) {
	if doc == nil {
		return
	}

	var sb strings.Builder
	name := strings.TrimSpace(doc.Personal.FirstName + " " + doc.Personal.LastName)
	if name == "" {
		name = "(no name)"
	}
	sb.WriteString(fmt.Sprintf("Name:     %s\n", name))
	if doc.Personal.JobTitle != "" {
		sb.WriteString(fmt.Sprintf("Role:     %s\n", doc.Personal.JobTitle))
	}
	if doc.Title != "" {
		sb.WriteString(fmt.Sprintf("Title:    %s\n", doc.Title))
	}
	sb.WriteString(fmt.Sprintf("Theme:    %s\n", settings.ThemeColor))
	sb.WriteString(fmt.Sprintf("Summary:  %d words\n", len(strings.Fields(doc.Summary))))
	sb.WriteString("\n")

	counts := []struct {
		label string
		n     int
	}{
		{"Experience", len(doc.Experience)},
		{"Education", len(doc.Education)},
		{"Projects", len(doc.Projects)},
		{"Skills", len(doc.Skills)},
		{"Certifications", len(doc.Certifications)},
		{"Achievements", len(doc.Achievements)},
	}
	for i, c := range counts {
		sb.WriteString(fmt.Sprintf("%-16s %d", c.label+":", c.n))
		if i < len(counts)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("RESUME DOCUMENT", sb.String())
}

// PrintSkillCategories outputs the categorized skills, a few names per category.
func (p *Printer) PrintSkillCategories(categories []format.SkillCategory) {
	if len(categories) == 0 {
		return
	}

	var sb strings.Builder
	for i, c := range categories {
		sb.WriteString(fmt.Sprintf("%s (%d)\n", c.Name, len(c.Skills)))
		count := min(len(c.Skills), maxItemsToShow)
		names := make([]string, 0, count)
		for _, s := range c.Skills[:count] {
			names = append(names, s.Name)
		}
		line := "  " + strings.Join(names, ", ")
		if len(c.Skills) > maxItemsToShow {
			line += fmt.Sprintf(" +%d more", len(c.Skills)-maxItemsToShow)
		}
		sb.WriteString(line)
		if i < len(categories)-1 {
			sb.WriteString("\n\n")
		}
	}

	p.printBox("SKILL CATEGORIES", sb.String())
}

// PrintDocumentReview outputs the proofreading results section by section.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintDocumentReview(review *assist.DocumentReview) {
	if review == nil || len(review.Sections) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NOTHING TO REVIEW")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	total := 0
	for _, s := range review.Sections {
		total += len(s.Suggestions)
	}
	sb.WriteString(fmt.Sprintf("Reviewed %d sections, %d suggestions:\n\n", len(review.Sections), total))

	for i, s := range review.Sections {
		sb.WriteString(s.SectionName + "\n")
		switch {
		case s.Error != "":
			sb.WriteString(fmt.Sprintf("  ✗ %s\n", s.Error))
		case len(s.Suggestions) == 0:
			sb.WriteString("  ✓ no issues\n")
		default:
			count := min(len(s.Suggestions), maxItemsToShow)
			for _, sug := range s.Suggestions[:count] {
				sb.WriteString(fmt.Sprintf("  ⚠ [%s] %s\n", sug.Type, sug.Suggestion))
			}
			if len(s.Suggestions) > maxItemsToShow {
				sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(s.Suggestions)-maxItemsToShow))
			}
		}
		if i < len(review.Sections)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("SECTION REVIEW", strings.TrimSuffix(sb.String(), "\n"))
}
