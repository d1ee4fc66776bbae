package format

import (
	"strings"
	"unicode"

	"github.com/jonathan/resume-builder/internal/types"
)

const bulletMarker = "•"

// SplitBulletLines splits free text into cleaned lines, dropping one leading bullet
// marker per line and any line left empty. The result is never nil.
func SplitBulletLines(text string) []string {
	lines := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, bulletMarker) {
			line = strings.TrimLeftFunc(strings.TrimPrefix(line, bulletMarker), unicode.IsSpace)
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Location joins city and state, with the comma only when both are present.
func Location(city, state string) string {
	city, state = strings.TrimSpace(city), strings.TrimSpace(state)
	if city != "" && state != "" {
		return city + ", " + state
	}
	return city + state
}

// ContactKind identifies one entry of the header contact line
type ContactKind string

// Contact kinds in display order.
const (
	ContactPhone     ContactKind = "phone"
	ContactEmail     ContactKind = "email"
	ContactAddress   ContactKind = "address"
	ContactLinkedIn  ContactKind = "linkedin"
	ContactGitHub    ContactKind = "github"
	ContactPortfolio ContactKind = "portfolio"
)

// ContactItem is one present contact value. Link is set for URL-valued kinds.
type ContactItem struct {
	Kind ContactKind    `json:"kind"`
	Text string         `json:"text"`
	Link *FormattedLink `json:"link,omitempty"`
}

// ContactItems returns phone, email and address followed by the formatted profile
// links, skipping anything blank.
func ContactItems(personal types.PersonalInfo) []ContactItem {
	items := make([]ContactItem, 0, 6)

	for _, plain := range []struct {
		kind  ContactKind
		value string
	}{
		{ContactPhone, personal.Phone},
		{ContactEmail, personal.Email},
		{ContactAddress, personal.Address},
	} {
		if v := strings.TrimSpace(plain.value); v != "" {
			items = append(items, ContactItem{Kind: plain.kind, Text: v})
		}
	}

	for _, linked := range []struct {
		kind     ContactKind
		value    string
		fallback string
	}{
		{ContactLinkedIn, personal.LinkedIn, "LinkedIn"},
		{ContactGitHub, personal.GitHub, "GitHub"},
		{ContactPortfolio, personal.Portfolio, "Portfolio"},
	} {
		if link := Link(linked.value, linked.fallback); link != nil {
			items = append(items, ContactItem{Kind: linked.kind, Text: link.Label, Link: link})
		}
	}
	return items
}
