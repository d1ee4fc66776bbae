package rendering

import (
	"strings"
)

// RenderText renders the preview as plain text, one block per section.
func RenderText(p *Preview) string {
	if p == nil {
		return ""
	}

	var b strings.Builder
	for i, s := range p.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		switch s.Kind {
		case KindHeader:
			writeHeaderText(&b, s.Header)
		case KindSummary:
			writeHeading(&b, s.Title)
			b.WriteString(s.Text + "\n")
		case KindSkills:
			writeHeading(&b, s.Title)
			for _, g := range s.SkillGroups {
				b.WriteString(g.Name + ": " + strings.Join(g.Skills, ", ") + "\n")
			}
		case KindAchievements, KindCertifications:
			writeHeading(&b, s.Title)
			for _, item := range s.Items {
				b.WriteString("- " + inlineText(item) + "\n")
			}
		default:
			writeHeading(&b, s.Title)
			for _, item := range s.Items {
				writeItemText(&b, item)
			}
		}
	}
	return b.String()
}

func writeHeading(b *strings.Builder, title string) {
	b.WriteString(strings.ToUpper(title) + "\n")
}

func writeHeaderText(b *strings.Builder, h *Header) {
	if h == nil {
		return
	}
	if h.Name != "" {
		b.WriteString(h.Name + "\n")
	}
	if h.JobTitle != "" {
		b.WriteString(h.JobTitle + "\n")
	}
	if len(h.Contacts) > 0 {
		parts := make([]string, 0, len(h.Contacts))
		for _, c := range h.Contacts {
			parts = append(parts, c.Text)
		}
		b.WriteString(strings.Join(parts, " | ") + "\n")
	}
}

func writeItemText(b *strings.Builder, item Item) {
	line := item.Title
	if item.Dates != "" {
		line += " (" + item.Dates + ")"
	}
	b.WriteString(line + "\n")

	var meta []string
	for _, v := range []string{item.Subtitle, item.Location, item.Extra} {
		if v != "" {
			meta = append(meta, v)
		}
	}
	if len(meta) > 0 {
		b.WriteString("  " + strings.Join(meta, " | ") + "\n")
	}
	for _, l := range item.Links {
		b.WriteString("  " + l.Label + ": " + l.Href + "\n")
	}
	if item.Description != "" {
		b.WriteString("  " + item.Description + "\n")
	}
	for _, bullet := range item.Bullets {
		b.WriteString("  • " + bullet + "\n")
	}
}

func inlineText(item Item) string {
	if item.Title == "" {
		return item.Description
	}
	text := item.Title
	if item.Subtitle != "" {
		text += ", " + item.Subtitle
	}
	if item.Dates != "" {
		text += " (" + item.Dates + ")"
	}
	for _, l := range item.Links {
		text += " | " + l.Href
	}
	return text
}
