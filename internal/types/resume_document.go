// Package types provides type definitions for structured data used throughout the resume-builder system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// DefaultThemeColor is the accent color a fresh or reset document is presented with.
const DefaultThemeColor = "#A78BFA"

// ResumeDocument is the single in-progress resume aggregate
type ResumeDocument struct {
	Title          string               `json:"title"`
	Personal       PersonalInfo         `json:"personal"`
	Summary        string               `json:"summary"`
	Experience     []ExperienceEntry    `json:"experience"`
	Education      []EducationEntry     `json:"education"`
	Projects       []ProjectEntry       `json:"projects"`
	Skills         []SkillEntry         `json:"skills"`
	Certifications []CertificationEntry `json:"certifications"`
	Achievements   []AchievementEntry   `json:"achievements"`
}

// PersonalInfo holds contact and profile fields shown in the preview header
type PersonalInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	JobTitle  string `json:"jobTitle"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	LinkedIn  string `json:"linkedin"`
	GitHub    string `json:"github"`
	Portfolio string `json:"portfolio"`
}

// Entry is implemented by every list-section item
type Entry interface {
	EntryID() string
}

// ExperienceEntry is one position in the experience section
type ExperienceEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Company   string `json:"company"`
	City      string `json:"city"`
	State     string `json:"state"`
	StartDate string `json:"startDate"` // YYYY-MM or empty
	EndDate   string `json:"endDate"`   // YYYY-MM, empty means current
	Summary   string `json:"summary"`   // newline separated, optional "• " bullets
}

// EducationEntry is one degree or program in the education section
type EducationEntry struct {
	ID          string `json:"id"`
	University  string `json:"university"`
	Degree      string `json:"degree"`
	Major       string `json:"major"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
	GPA         string `json:"gpa,omitempty"`
}

// ProjectEntry is one project in the projects section
type ProjectEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Tech        string `json:"tech"`
	Description string `json:"description"`
	DeployLink  string `json:"deployLink"`
	SourceLink  string `json:"sourceLink"`
}

// SkillEntry is one skill name
type SkillEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CertificationEntry is one certification
type CertificationEntry struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Organization string `json:"organization"`
	Date         string `json:"date"`
	Link         string `json:"link"`
}

// AchievementEntry is one achievement line
type AchievementEntry struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// EntryID implements Entry.
func (e ExperienceEntry) EntryID() string { return e.ID }

// EntryID implements Entry.
func (e EducationEntry) EntryID() string { return e.ID }

// EntryID implements Entry.
func (e ProjectEntry) EntryID() string { return e.ID }

// EntryID implements Entry.
func (e SkillEntry) EntryID() string { return e.ID }

// EntryID implements Entry.
func (e CertificationEntry) EntryID() string { return e.ID }

// EntryID implements Entry.
func (e AchievementEntry) EntryID() string { return e.ID }

// PresentationSettings holds display settings with a lifecycle independent of the document
type PresentationSettings struct {
	ThemeColor string `json:"themeColor"`
}
