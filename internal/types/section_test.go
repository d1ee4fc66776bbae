package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSection_Classification(t *testing.T) {
	tests := []struct {
		section  Section
		valid    bool
		isList   bool
		isObject bool
	}{
		{SectionTitle, true, false, false},
		{SectionPersonal, true, false, true},
		{SectionSummary, true, false, false},
		{SectionExperience, true, true, false},
		{SectionEducation, true, true, false},
		{SectionProjects, true, true, false},
		{SectionSkills, true, true, false},
		{SectionCertifications, true, true, false},
		{SectionAchievements, true, true, false},
		{Section("hobbies"), false, false, false},
		{Section(""), false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.section), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.section.IsValid())
			assert.Equal(t, tt.isList, tt.section.IsList())
			assert.Equal(t, tt.isObject, tt.section.IsObject())
		})
	}
}

func TestResumeDocument_JSONKeys(t *testing.T) {
	doc := ResumeDocument{
		Personal: PersonalInfo{FirstName: "Ada", LinkedIn: "linkedin.com/in/ada"},
		Projects: []ProjectEntry{{ID: "item-1", DeployLink: "ada.dev", SourceLink: "github.com/ada"}},
	}

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	personal := raw["personal"].(map[string]any)
	assert.Equal(t, "Ada", personal["firstName"])
	assert.Equal(t, "linkedin.com/in/ada", personal["linkedin"])

	project := raw["projects"].([]any)[0].(map[string]any)
	assert.Equal(t, "ada.dev", project["deployLink"])
	assert.Equal(t, "github.com/ada", project["sourceLink"])
}

func TestEntryID(t *testing.T) {
	entries := []Entry{
		ExperienceEntry{ID: "a"},
		EducationEntry{ID: "b"},
		ProjectEntry{ID: "c"},
		SkillEntry{ID: "d"},
		CertificationEntry{ID: "e"},
		AchievementEntry{ID: "f"},
	}
	var ids []string
	for _, e := range entries {
		ids = append(ids, e.EntryID())
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, ids)
}
