package format

import (
	"strings"

	"github.com/jonathan/resume-builder/internal/types"
)

// Skill bucket names used by DefaultTaxonomy.
const (
	CategoryLanguages  = "Languages"
	CategoryFrameworks = "Frameworks & Libraries"
	CategoryDatabases  = "Databases"
	CategoryTools      = "Tools & Technologies"
	CategoryOther      = "Other"
)

// Category is one named bucket and the lowercase keywords that select it
type Category struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// Taxonomy is the keyword configuration for CategorizeSkills.
// Categories are checked in order; unmatched skills land in Other.
// When Other ends up with 1..FoldMax skills they move into FoldInto.
type Taxonomy struct {
	Version    string     `json:"version"`
	Categories []Category `json:"categories"`
	Other      string     `json:"other"`
	FoldInto   string     `json:"foldInto"`
	FoldMax    int        `json:"foldMax"`
}

// DefaultTaxonomy returns the built-in keyword tables.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		Version: "2024.1",
		Categories: []Category{
			{Name: CategoryLanguages, Keywords: []string{
				"java", "python", "javascript", "c#", "c++", "sql", "php", "typescript", "swift", "kotlin", "go", "ruby",
			}},
			{Name: CategoryFrameworks, Keywords: []string{
				"spring boot", "angular", "react", "vue", "django", "flask", ".net", "node.js", "express", "laravel",
				"ruby on rails", "vuforia", "bootstrap",
			}},
			{Name: CategoryDatabases, Keywords: []string{
				"mongodb", "mysql", "postgresql", "sql server", "oracle", "redis", "sqlite", "firebase", "dynamodb",
			}},
			{Name: CategoryTools, Keywords: []string{
				"git", "github", "docker", "kubernetes", "aws", "azure", "gcp", "jenkins", "jira", "postman", "intellij",
				"visual studio code", "blender", "unity", "linux", "figma", "chart.js", "cloudinary", "razorpay",
			}},
		},
		Other:    CategoryOther,
		FoldInto: CategoryTools,
		FoldMax:  2,
	}
}

// SkillCategory is one non-empty bucket of the categorized skill list
type SkillCategory struct {
	Name   string             `json:"name"`
	Skills []types.SkillEntry `json:"skills"`
}

// CategorizeSkills partitions skills into the taxonomy's buckets, keeping input order
// inside each bucket. Every entry lands in exactly one bucket; blank names match no
// keyword and go to Other.
//
// A name equal to some keyword goes to that keyword's bucket. Otherwise the first
// bucket with a keyword contained in the name wins, so the exact pass only rescues bare
// names: "MySQL" is a database, while "MySQL 8" and "SQL Server 2019" contain the
// language keyword "sql" and land in Languages.
//
// Only non-empty buckets are returned, in taxonomy order with Other last.
func CategorizeSkills(skills []types.SkillEntry, taxonomy Taxonomy) []SkillCategory {
	buckets := make(map[string][]types.SkillEntry, len(taxonomy.Categories)+1)

	for _, skill := range skills {
		name := strings.ToLower(strings.TrimSpace(skill.Name))
		bucket := taxonomy.match(name)
		buckets[bucket] = append(buckets[bucket], skill)
	}

	if other := buckets[taxonomy.Other]; len(other) > 0 && len(other) <= taxonomy.FoldMax && taxonomy.has(taxonomy.FoldInto) {
		buckets[taxonomy.FoldInto] = append(buckets[taxonomy.FoldInto], other...)
		delete(buckets, taxonomy.Other)
	}

	order := make([]string, 0, len(taxonomy.Categories)+1)
	for _, c := range taxonomy.Categories {
		order = append(order, c.Name)
	}
	order = append(order, taxonomy.Other)

	result := make([]SkillCategory, 0, len(order))
	for _, name := range order {
		if list := buckets[name]; len(list) > 0 {
			result = append(result, SkillCategory{Name: name, Skills: list})
		}
	}
	return result
}

func (t Taxonomy) has(name string) bool {
	for _, c := range t.Categories {
		if c.Name == name {
			return true
		}
	}
	return false
}

func (t Taxonomy) match(name string) string {
	if name == "" {
		return t.Other
	}
	for _, c := range t.Categories {
		for _, k := range c.Keywords {
			if name == k {
				return c.Name
			}
		}
	}
	for _, c := range t.Categories {
		for _, k := range c.Keywords {
			if strings.Contains(name, k) {
				return c.Name
			}
		}
	}
	return t.Other
}
