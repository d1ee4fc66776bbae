package assist

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/resume-builder/internal/types"
	"golang.org/x/sync/errgroup"
)

// SectionReview is the outcome of proofreading one field of a document
type SectionReview struct {
	Section     types.Section      `json:"section"`
	ItemID      string             `json:"itemId,omitempty"`
	SectionName string             `json:"sectionName"`
	Suggestions []ReviewSuggestion `json:"suggestions"`
	Error       string             `json:"error,omitempty"`
}

// DocumentReview collects section reviews in document order
type DocumentReview struct {
	Sections []SectionReview `json:"sections"`
}

type reviewTarget struct {
	section types.Section
	itemID  string
	name    string
	text    string
}

// ReviewDocument proofreads the summary, each experience summary and each project
// description concurrently. A failing section records its error and does not stop
// the others. Blank fields are skipped.
func (s *Service) ReviewDocument(ctx context.Context, doc *types.ResumeDocument) (*DocumentReview, error) {
	if doc == nil {
		return nil, &ValidationError{Field: "document", Message: "No document provided"}
	}

	targets := reviewTargets(doc)
	results := make([]SectionReview, len(targets))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, target := range targets {
		g.Go(func() error {
			result := SectionReview{
				Section:     target.section,
				ItemID:      target.itemID,
				SectionName: target.name,
				Suggestions: []ReviewSuggestion{},
			}
			resp, err := s.ReviewSection(ctx, ReviewRequest{SectionName: target.name, Text: target.text})
			if err != nil {
				result.Error = err.Error()
			} else {
				result.Suggestions = resp.Suggestions
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("review cancelled: %w", err)
	}
	return &DocumentReview{Sections: results}, nil
}

func reviewTargets(doc *types.ResumeDocument) []reviewTarget {
	var targets []reviewTarget
	if strings.TrimSpace(doc.Summary) != "" {
		targets = append(targets, reviewTarget{section: types.SectionSummary, name: "Summary", text: doc.Summary})
	}
	for _, e := range doc.Experience {
		if strings.TrimSpace(e.Summary) == "" {
			continue
		}
		name := "Experience"
		if label := joinNonEmpty(" at ", e.Title, e.Company); label != "" {
			name += ": " + label
		}
		targets = append(targets, reviewTarget{section: types.SectionExperience, itemID: e.ID, name: name, text: e.Summary})
	}
	for _, p := range doc.Projects {
		if strings.TrimSpace(p.Description) == "" {
			continue
		}
		name := "Project"
		if p.Title != "" {
			name += ": " + p.Title
		}
		targets = append(targets, reviewTarget{section: types.SectionProjects, itemID: p.ID, name: name, text: p.Description})
	}
	return targets
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
