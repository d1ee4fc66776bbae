package types

// Section names a top-level field of a ResumeDocument
type Section string

// Section constants use the document's JSON keys
const (
	SectionTitle          Section = "title"
	SectionPersonal       Section = "personal"
	SectionSummary        Section = "summary"
	SectionExperience     Section = "experience"
	SectionEducation      Section = "education"
	SectionProjects       Section = "projects"
	SectionSkills         Section = "skills"
	SectionCertifications Section = "certifications"
	SectionAchievements   Section = "achievements"
)

// AllSections lists every section in document order.
var AllSections = []Section{
	SectionTitle,
	SectionPersonal,
	SectionSummary,
	SectionExperience,
	SectionEducation,
	SectionProjects,
	SectionSkills,
	SectionCertifications,
	SectionAchievements,
}

// IsValid reports whether s names a document field.
func (s Section) IsValid() bool {
	for _, known := range AllSections {
		if s == known {
			return true
		}
	}
	return false
}

// IsList reports whether s names one of the six list sections.
func (s Section) IsList() bool {
	switch s {
	case SectionExperience, SectionEducation, SectionProjects,
		SectionSkills, SectionCertifications, SectionAchievements:
		return true
	default:
		return false
	}
}

// IsObject reports whether s names an object-valued section.
func (s Section) IsObject() bool {
	return s == SectionPersonal
}
