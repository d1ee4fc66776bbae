package rendering

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-builder/internal/format"
	"github.com/jonathan/resume-builder/internal/types"
)

// SectionKind identifies a preview section
type SectionKind string

// Section kinds in display order.
const (
	KindHeader         SectionKind = "header"
	KindSummary        SectionKind = "summary"
	KindEducation      SectionKind = "education"
	KindExperience     SectionKind = "experience"
	KindProjects       SectionKind = "projects"
	KindSkills         SectionKind = "skills"
	KindAchievements   SectionKind = "achievements"
	KindCertifications SectionKind = "certifications"
)

// Preview is the structured, display-ready view of a document
type Preview struct {
	ThemeColor      string    `json:"themeColor"`
	TaxonomyVersion string    `json:"taxonomyVersion"`
	Sections        []Section `json:"sections"`
}

// Section is one present section. Only the fields relevant to its kind are set.
type Section struct {
	Kind        SectionKind  `json:"kind"`
	Title       string       `json:"title,omitempty"`
	Header      *Header      `json:"header,omitempty"`
	Text        string       `json:"text,omitempty"`
	Items       []Item       `json:"items,omitempty"`
	SkillGroups []SkillGroup `json:"skillGroups,omitempty"`
}

// Header holds the name line and contact items
type Header struct {
	Name     string               `json:"name,omitempty"`
	JobTitle string               `json:"jobTitle,omitempty"`
	Contacts []format.ContactItem `json:"contacts,omitempty"`
}

// Item is one entry of a list section
type Item struct {
	ID          string     `json:"id"`
	Title       string     `json:"title,omitempty"`
	Subtitle    string     `json:"subtitle,omitempty"`
	Dates       string     `json:"dates,omitempty"`
	Location    string     `json:"location,omitempty"`
	Extra       string     `json:"extra,omitempty"`
	Description string     `json:"description,omitempty"`
	Bullets     []string   `json:"bullets,omitempty"`
	Links       []ItemLink `json:"links,omitempty"`
}

// ItemLink is a formatted link attached to an item
type ItemLink struct {
	Kind string `json:"kind"`
	format.FormattedLink
}

// SkillGroup is one category of the skills section
type SkillGroup struct {
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}

// Item-level placeholders for entries missing their primary field.
const (
	DefaultInstitution       = "Institution"
	DefaultPosition          = "Position"
	DefaultProjectTitle      = "Project Title"
	DefaultCertificationName = "Certification Name"
)

var themeColorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]{3,20})$`)

// BuildPreview builds the preview tree for doc. Sections appear in a fixed order and
// only when their backing data is non-empty.
func BuildPreview(doc types.ResumeDocument, settings types.PresentationSettings, taxonomy format.Taxonomy) *Preview {
	p := &Preview{
		ThemeColor:      safeThemeColor(settings.ThemeColor),
		TaxonomyVersion: taxonomy.Version,
		Sections:        make([]Section, 0, 8),
	}

	if header := buildHeader(doc.Personal); header != nil {
		p.Sections = append(p.Sections, Section{Kind: KindHeader, Header: header})
	}
	if summary := strings.TrimSpace(doc.Summary); summary != "" {
		p.Sections = append(p.Sections, Section{Kind: KindSummary, Title: "Summary", Text: summary})
	}
	if len(doc.Education) > 0 {
		p.Sections = append(p.Sections, Section{Kind: KindEducation, Title: "Education", Items: educationItems(doc.Education)})
	}
	if len(doc.Experience) > 0 {
		p.Sections = append(p.Sections, Section{Kind: KindExperience, Title: "Experience", Items: experienceItems(doc.Experience)})
	}
	if len(doc.Projects) > 0 {
		p.Sections = append(p.Sections, Section{Kind: KindProjects, Title: "Projects", Items: projectItems(doc.Projects)})
	}
	if groups := skillGroups(doc.Skills, taxonomy); len(groups) > 0 {
		p.Sections = append(p.Sections, Section{Kind: KindSkills, Title: "Skills", SkillGroups: groups})
	}
	if items := achievementItems(doc.Achievements); len(items) > 0 {
		p.Sections = append(p.Sections, Section{Kind: KindAchievements, Title: "Achievements", Items: items})
	}
	if len(doc.Certifications) > 0 {
		p.Sections = append(p.Sections, Section{Kind: KindCertifications, Title: "Certifications", Items: certificationItems(doc.Certifications)})
	}
	return p
}

// Section returns the section of the given kind.
func (p *Preview) Section(kind SectionKind) (Section, bool) {
	for _, s := range p.Sections {
		if s.Kind == kind {
			return s, true
		}
	}
	return Section{}, false
}

func safeThemeColor(color string) string {
	color = strings.TrimSpace(color)
	if !themeColorPattern.MatchString(color) {
		return types.DefaultThemeColor
	}
	return color
}

func buildHeader(personal types.PersonalInfo) *Header {
	name := strings.TrimSpace(strings.TrimSpace(personal.FirstName) + " " + strings.TrimSpace(personal.LastName))
	contacts := format.ContactItems(personal)
	if name == "" && len(contacts) == 0 {
		return nil
	}
	return &Header{
		Name:     name,
		JobTitle: strings.TrimSpace(personal.JobTitle),
		Contacts: contacts,
	}
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func educationItems(entries []types.EducationEntry) []Item {
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		subtitle := strings.TrimSpace(e.Degree)
		if major := strings.TrimSpace(e.Major); major != "" {
			subtitle = strings.TrimSpace(subtitle + " in " + major)
		}
		item := Item{
			ID:          e.ID,
			Title:       orDefault(e.University, DefaultInstitution),
			Subtitle:    subtitle,
			Dates:       format.DateRange(e.StartDate, e.EndDate, format.MonthYear),
			Description: strings.TrimSpace(e.Description),
		}
		if gpa := strings.TrimSpace(e.GPA); gpa != "" {
			item.Extra = "CGPA: " + gpa
		}
		items = append(items, item)
	}
	return items
}

func experienceItems(entries []types.ExperienceEntry) []Item {
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, Item{
			ID:       e.ID,
			Title:    orDefault(e.Title, DefaultPosition),
			Subtitle: strings.TrimSpace(e.Company),
			Dates:    format.DateRange(e.StartDate, e.EndDate, format.MonthYear),
			Location: format.Location(e.City, e.State),
			Bullets:  format.SplitBulletLines(e.Summary),
		})
	}
	return items
}

func projectItems(entries []types.ProjectEntry) []Item {
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		item := Item{
			ID:       e.ID,
			Title:    orDefault(e.Title, DefaultProjectTitle),
			Subtitle: strings.TrimSpace(e.Tech),
			Bullets:  format.SplitBulletLines(e.Description),
		}
		if link := format.Link(e.SourceLink, "GitHub"); link != nil {
			item.Links = append(item.Links, ItemLink{Kind: "source", FormattedLink: *link})
		}
		if link := format.Link(e.DeployLink, "Live Demo"); link != nil {
			item.Links = append(item.Links, ItemLink{Kind: "deploy", FormattedLink: *link})
		}
		items = append(items, item)
	}
	return items
}

// skillGroups leaves blank skill names out of the preview before categorizing.
func skillGroups(skills []types.SkillEntry, taxonomy format.Taxonomy) []SkillGroup {
	named := make([]types.SkillEntry, 0, len(skills))
	for _, s := range skills {
		if strings.TrimSpace(s.Name) != "" {
			named = append(named, s)
		}
	}
	categories := format.CategorizeSkills(named, taxonomy)
	groups := make([]SkillGroup, 0, len(categories))
	for _, c := range categories {
		names := make([]string, 0, len(c.Skills))
		for _, s := range c.Skills {
			names = append(names, strings.TrimSpace(s.Name))
		}
		groups = append(groups, SkillGroup{Name: c.Name, Skills: names})
	}
	return groups
}

func achievementItems(entries []types.AchievementEntry) []Item {
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		description := strings.TrimSpace(e.Description)
		if description == "" {
			continue
		}
		items = append(items, Item{ID: e.ID, Description: description})
	}
	return items
}

func certificationItems(entries []types.CertificationEntry) []Item {
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		item := Item{
			ID:       e.ID,
			Title:    orDefault(e.Name, DefaultCertificationName),
			Subtitle: strings.TrimSpace(e.Organization),
		}
		if strings.TrimSpace(e.Date) != "" {
			item.Dates = format.Date(e.Date, format.MonthYear)
		}
		if link := format.Link(e.Link, "Verify"); link != nil {
			item.Links = append(item.Links, ItemLink{Kind: "verify", FormattedLink: *link})
		}
		items = append(items, item)
	}
	return items
}
