package format

import (
	"net/url"
	"strings"
)

const (
	maxLabelLen       = 35
	truncatedLabelLen = 32
)

// FormattedLink is a navigable href plus its short display label
type FormattedLink struct {
	Href  string `json:"href"`
	Label string `json:"label"`
}

// Link normalizes a user-entered URL. It returns nil for blank input.
// The label is host plus path without a leading "www." or trailing "/", shortened
// to 32 characters plus "..." past 35, and replaced by fallback when empty.
func Link(raw, fallback string) *FormattedLink {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	href := trimmed
	if !hasHTTPScheme(href) {
		href = "https://" + href
	}

	label := trimmed
	if u, err := url.Parse(href); err == nil && u.Host != "" {
		label = strings.ToLower(u.Hostname()) + u.EscapedPath()
		label = strings.TrimPrefix(label, "www.")
		label = strings.TrimSuffix(label, "/")
	} else {
		debugLog().Debug().Str("value", trimmed).Msg("unparseable link, using raw value")
	}

	label = truncateLabel(label)
	if label == "" {
		label = fallback
	}
	return &FormattedLink{Href: href, Label: label}
}

func hasHTTPScheme(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func truncateLabel(label string) string {
	runes := []rune(label)
	if len(runes) <= maxLabelLen {
		return label
	}
	return string(runes[:truncatedLabelLen]) + "..."
}
