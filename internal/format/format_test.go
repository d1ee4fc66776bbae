package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/types"
)

func TestDate(t *testing.T) {
	tests := []struct {
		name  string
		value string
		mode  DateMode
		want  string
	}{
		{"empty is present", "", MonthYear, "Present"},
		{"blank is present", "   ", Year, "Present"},
		{"month year", "2024-03", MonthYear, "Mar 2024"},
		{"year only", "2024-03", Year, "2024"},
		{"with day", "2024-12-15", MonthYear, "Dec 2024"},
		{"single digit month", "2021-1", MonthYear, "Jan 2021"},
		{"raw fallback", "not-a-date", MonthYear, "not-a-date"},
		{"month out of range", "2024-13", MonthYear, "2024-13"},
		{"trailing junk after month", "2024-03abc", MonthYear, "2024-03abc"},
		{"trailing junk after year", "2024x-03", MonthYear, "2024x-03"},
		{"month name layout", "March 2020", MonthYear, "Mar 2020"},
		{"abbreviated layout year mode", "Sep 2019", Year, "2019"},
		{"rfc3339", "2023-07-01T00:00:00Z", MonthYear, "Jul 2023"},
		{"bare year", "2018", MonthYear, "Jan 2018"},
		{"free text", "Summer 2020", MonthYear, "Summer 2020"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Date(tt.value, tt.mode))
		})
	}
}

func TestDate_Idempotent(t *testing.T) {
	for _, v := range []string{"", "2024-03", "not-a-date", "Mar 2024"} {
		once := Date(v, MonthYear)
		assert.Equal(t, once, Date(v, MonthYear))
	}
}

func TestParseDateMode(t *testing.T) {
	mode, err := ParseDateMode("")
	require.NoError(t, err)
	assert.Equal(t, MonthYear, mode)

	mode, err = ParseDateMode("YEAR")
	require.NoError(t, err)
	assert.Equal(t, Year, mode)

	_, err = ParseDateMode("weekday")
	assert.Error(t, err)
}

func TestDateRange(t *testing.T) {
	assert.Equal(t, "Jan 2020 - Present", DateRange("2020-01", "", MonthYear))
	assert.Equal(t, "2018 - 2022", DateRange("2018-09", "2022-06", Year))
}

func TestLink(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		fallback  string
		wantHref  string
		wantLabel string
	}{
		{"bare host path", "github.com/foo", "GitHub", "https://github.com/foo", "github.com/foo"},
		{"keeps http", "http://example.com/a/", "Link", "http://example.com/a/", "example.com/a"},
		{"uppercase scheme", "HTTPS://Example.com", "Link", "HTTPS://Example.com", "example.com"},
		{"strips www", "  www.linkedin.com/in/ada  ", "LinkedIn", "https://www.linkedin.com/in/ada", "linkedin.com/in/ada"},
		{"drops query", "https://ada.dev/work?ref=cv", "Portfolio", "https://ada.dev/work?ref=cv", "ada.dev/work"},
		{
			"truncates long label",
			"https://example.com/a/very/long/path/that/keeps/going",
			"Link",
			"https://example.com/a/very/long/path/that/keeps/going",
			"example.com/a/very/long/path/tha...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := Link(tt.url, tt.fallback)
			require.NotNil(t, link)
			assert.Equal(t, tt.wantHref, link.Href)
			assert.Equal(t, tt.wantLabel, link.Label)
		})
	}
}

func TestLink_Blank(t *testing.T) {
	assert.Nil(t, Link("", "GitHub"))
	assert.Nil(t, Link("  \t", "GitHub"))
}

func TestLink_UnparseableUsesTrimmedInput(t *testing.T) {
	link := Link("  foo bar  ", "Link")
	require.NotNil(t, link)
	assert.Equal(t, "https://foo bar", link.Href)
	assert.Equal(t, "foo bar", link.Label)
}

func TestLink_LabelLength(t *testing.T) {
	long := "https://" + strings.Repeat("x", 60) + ".com"
	link := Link(long, "Link")
	require.NotNil(t, link)
	assert.Len(t, []rune(link.Label), 35)
	assert.True(t, strings.HasSuffix(link.Label, "..."))

	exact := "https://" + strings.Repeat("y", 31) + ".com"
	link = Link(exact, "Link")
	require.NotNil(t, link)
	assert.Equal(t, strings.Repeat("y", 31)+".com", link.Label)
}

func TestSplitBulletLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"bullets and blanks", "• Did X\n\nDid Y", []string{"Did X", "Did Y"}},
		{"empty", "", []string{}},
		{"only whitespace", " \n\t\n", []string{}},
		{"single bullet stripped", "•• Twice", []string{"• Twice"}},
		{"bare bullet dropped", "•\n• kept", []string{"kept"}},
		{"crlf", "• One\r\n• Two", []string{"One", "Two"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitBulletLines(tt.text)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocation(t *testing.T) {
	assert.Equal(t, "Austin, TX", Location("Austin", "TX"))
	assert.Equal(t, "Austin", Location("Austin", ""))
	assert.Equal(t, "TX", Location(" ", "TX"))
	assert.Equal(t, "", Location("", ""))
}

func TestCategorizeSkills(t *testing.T) {
	skills := []types.SkillEntry{
		{ID: "1", Name: "Python"},
		{ID: "2", Name: "Docker"},
		{ID: "3", Name: "Mysql"},
	}

	got := CategorizeSkills(skills, DefaultTaxonomy())

	require.Len(t, got, 3)
	assert.Equal(t, CategoryLanguages, got[0].Name)
	assert.Equal(t, "Python", got[0].Skills[0].Name)
	assert.Equal(t, CategoryDatabases, got[1].Name)
	assert.Equal(t, "Mysql", got[1].Skills[0].Name)
	assert.Equal(t, CategoryTools, got[2].Name)
	assert.Equal(t, "Docker", got[2].Skills[0].Name)
}

func TestCategorizeSkills_FirstMatchWins(t *testing.T) {
	got := CategorizeSkills([]types.SkillEntry{{Name: "JavaScript ES6"}}, DefaultTaxonomy())
	require.Len(t, got, 1)
	assert.Equal(t, CategoryLanguages, got[0].Name)
}

func TestCategorizeSkills_ExactMatchBeforeSubstring(t *testing.T) {
	got := CategorizeSkills([]types.SkillEntry{{Name: "Django"}, {Name: "MongoDB"}}, DefaultTaxonomy())
	require.Len(t, got, 2)
	assert.Equal(t, CategoryFrameworks, got[0].Name)
	assert.Equal(t, CategoryDatabases, got[1].Name)
}

func TestCategorizeSkills_OtherFolding(t *testing.T) {
	small := []types.SkillEntry{{Name: "Docker"}, {Name: "Leadership"}, {Name: "Scrum"}}
	got := CategorizeSkills(small, DefaultTaxonomy())
	require.Len(t, got, 1)
	assert.Equal(t, CategoryTools, got[0].Name)
	assert.Len(t, got[0].Skills, 3)

	large := []types.SkillEntry{{Name: "Leadership"}, {Name: "Scrum"}, {Name: "Mentoring"}}
	got = CategorizeSkills(large, DefaultTaxonomy())
	require.Len(t, got, 1)
	assert.Equal(t, CategoryOther, got[0].Name)
	assert.Len(t, got[0].Skills, 3)
}

func TestCategorizeSkills_SubstringBeatsLaterExactBucket(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"MySQL", CategoryDatabases},
		{"SQL Server", CategoryDatabases},
		{"MySQL 8", CategoryLanguages},
		{"SQL Server 2019", CategoryLanguages},
		{"PostgreSQL", CategoryDatabases},
		{"PostgreSQL 15", CategoryLanguages},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CategorizeSkills([]types.SkillEntry{{Name: tt.name}}, DefaultTaxonomy())
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].Name)
		})
	}
}

func TestCategorizeSkills_BlankNamesGoToOther(t *testing.T) {
	assert.Empty(t, CategorizeSkills(nil, DefaultTaxonomy()))

	got := CategorizeSkills([]types.SkillEntry{{ID: "1", Name: "  "}}, DefaultTaxonomy())
	require.Len(t, got, 1)
	assert.Equal(t, CategoryTools, got[0].Name, "a lone blank folds into tools")

	blanks := []types.SkillEntry{{ID: "1"}, {ID: "2", Name: " "}, {ID: "3", Name: "\t"}}
	got = CategorizeSkills(blanks, DefaultTaxonomy())
	require.Len(t, got, 1)
	assert.Equal(t, CategoryOther, got[0].Name)
	assert.Len(t, got[0].Skills, 3)
}

func TestCategorizeSkills_CustomTaxonomy(t *testing.T) {
	taxonomy := Taxonomy{
		Version:    "test",
		Categories: []Category{{Name: "Cloud", Keywords: []string{"aws"}}},
		Other:      "Misc",
	}
	got := CategorizeSkills([]types.SkillEntry{{Name: "AWS Lambda"}, {Name: "Go"}}, taxonomy)

	require.Len(t, got, 2)
	assert.Equal(t, "Cloud", got[0].Name)
	assert.Equal(t, "Misc", got[1].Name)
}

func TestContactItems(t *testing.T) {
	personal := types.PersonalInfo{
		Phone:    "555-0100",
		Email:    "ada@example.com",
		LinkedIn: "linkedin.com/in/ada",
		GitHub:   "https://github.com/",
	}

	items := ContactItems(personal)

	require.Len(t, items, 4)
	assert.Equal(t, ContactPhone, items[0].Kind)
	assert.Equal(t, ContactEmail, items[1].Kind)
	assert.Equal(t, ContactLinkedIn, items[2].Kind)
	assert.Equal(t, "linkedin.com/in/ada", items[2].Text)
	assert.Equal(t, "https://linkedin.com/in/ada", items[2].Link.Href)
	assert.Equal(t, ContactGitHub, items[3].Kind)
	assert.Equal(t, "github.com", items[3].Text)
	assert.Nil(t, items[0].Link)
}

func TestContactItems_Empty(t *testing.T) {
	assert.Empty(t, ContactItems(types.PersonalInfo{}))
}
