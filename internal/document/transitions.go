package document

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/jonathan/resume-builder/internal/types"
)

// New returns the default empty document. List sections are empty, never nil.
func New() types.ResumeDocument {
	return types.ResumeDocument{
		Experience:     []types.ExperienceEntry{},
		Education:      []types.EducationEntry{},
		Projects:       []types.ProjectEntry{},
		Skills:         []types.SkillEntry{},
		Certifications: []types.CertificationEntry{},
		Achievements:   []types.AchievementEntry{},
	}
}

// SetSection replaces a whole top-level field with value.
// The value is only decoded into the field's type; its content is not validated.
func SetSection(doc types.ResumeDocument, section types.Section, value json.RawMessage) (types.ResumeDocument, error) {
	next := doc
	var err error

	switch section {
	case types.SectionTitle:
		next.Title, err = decodeValue[string](value)
	case types.SectionSummary:
		next.Summary, err = decodeValue[string](value)
	case types.SectionPersonal:
		next.Personal, err = decodeValue[types.PersonalInfo](value)
	case types.SectionExperience:
		next.Experience, err = decodeList[types.ExperienceEntry](value)
	case types.SectionEducation:
		next.Education, err = decodeList[types.EducationEntry](value)
	case types.SectionProjects:
		next.Projects, err = decodeList[types.ProjectEntry](value)
	case types.SectionSkills:
		next.Skills, err = decodeList[types.SkillEntry](value)
	case types.SectionCertifications:
		next.Certifications, err = decodeList[types.CertificationEntry](value)
	case types.SectionAchievements:
		next.Achievements, err = decodeList[types.AchievementEntry](value)
	default:
		return doc, &InvalidSectionError{Section: section, Reason: "unknown section"}
	}

	if err != nil {
		return doc, &DecodeError{Section: section, Cause: err}
	}
	return next, nil
}

// SetNestedField replaces one field of an object-valued section, keeping its siblings.
func SetNestedField(doc types.ResumeDocument, section types.Section, field, value string) (types.ResumeDocument, error) {
	if !section.IsObject() {
		return doc, &InvalidSectionError{Section: section, Reason: "not an object section"}
	}

	fields, err := toFields(doc.Personal)
	if err != nil {
		return doc, &DecodeError{Section: section, Cause: err}
	}
	if _, ok := fields[field]; !ok {
		return doc, &InvalidFieldError{Section: section, Field: field}
	}
	fields[field] = value

	personal, err := fromFields[types.PersonalInfo](fields)
	if err != nil {
		return doc, &DecodeError{Section: section, Cause: err}
	}

	next := doc
	next.Personal = personal
	return next, nil
}

// AddListItem appends a new entry built from itemData to a list section.
// The given id always replaces any id carried by itemData.
func AddListItem(doc types.ResumeDocument, section types.Section, itemData map[string]any, id string) (types.ResumeDocument, error) {
	return editList(doc, section, listEdit{kind: editAdd, id: id, data: itemData})
}

// RemoveListItem removes the entry with itemID. Unknown ids are a no-op.
func RemoveListItem(doc types.ResumeDocument, section types.Section, itemID string) (types.ResumeDocument, error) {
	return editList(doc, section, listEdit{kind: editRemove, id: itemID})
}

// UpdateListItem shallow-merges patch into the entry with itemID, preserving its id.
// Unknown ids are a no-op, so late responses for deleted entries are discarded.
func UpdateListItem(doc types.ResumeDocument, section types.Section, itemID string, patch map[string]any) (types.ResumeDocument, error) {
	return editList(doc, section, listEdit{kind: editUpdate, id: itemID, data: patch})
}

// Load builds a document from a full or partial payload overlaid on the default shape.
// Top-level keys present in data override defaults; absent or null keys keep them.
// Personal is merged field by field. Malformed parts are dropped rather than failing
// the load: a section of the wrong type keeps its default, a list entry that is not an
// object is skipped, and a field of the wrong type inside an entry is left empty. Only a
// payload that is not a JSON object is an error. When ids is non-nil, entries with a
// missing or duplicate id get a fresh one so every entry stays addressable.
func Load(data json.RawMessage, ids IDGenerator) (types.ResumeDocument, error) {
	doc := New()

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || isNull(trimmed) {
		return doc, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return New(), &LoadError{Message: "document must be a JSON object", Cause: err}
	}

	for _, section := range types.AllSections {
		value, ok := fields[string(section)]
		if !ok || isNull(value) {
			continue
		}

		var err error
		switch section {
		case types.SectionTitle:
			doc.Title, err = decodeValue[string](value)
		case types.SectionSummary:
			doc.Summary, err = decodeValue[string](value)
		case types.SectionPersonal:
			doc.Personal, err = mergeObject(section, doc.Personal, value)
		case types.SectionExperience:
			doc.Experience, err = loadList[types.ExperienceEntry](section, value)
		case types.SectionEducation:
			doc.Education, err = loadList[types.EducationEntry](section, value)
		case types.SectionProjects:
			doc.Projects, err = loadList[types.ProjectEntry](section, value)
		case types.SectionSkills:
			doc.Skills, err = loadList[types.SkillEntry](section, value)
		case types.SectionCertifications:
			doc.Certifications, err = loadList[types.CertificationEntry](section, value)
		case types.SectionAchievements:
			doc.Achievements, err = loadList[types.AchievementEntry](section, value)
		}
		if err != nil {
			debugLog().Debug().Err(err).Str("section", string(section)).Msg("malformed section ignored on load")
			doc = restoreDefault(doc, section)
		}
	}

	if ids != nil {
		doc = ensureIDs(doc, ids)
	}
	return doc, nil
}

// HasSkill reports whether the document already lists a skill with name, ignoring case.
func HasSkill(doc types.ResumeDocument, name string) bool {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, skill := range doc.Skills {
		if strings.ToLower(strings.TrimSpace(skill.Name)) == needle {
			return true
		}
	}
	return false
}

// Find returns the entry with id from list.
func Find[T types.Entry](list []T, id string) (T, bool) {
	for _, item := range list {
		if item.EntryID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// IDs returns the ids of every entry in document order, grouped by section.
func IDs(doc types.ResumeDocument) map[types.Section][]string {
	return map[types.Section][]string{
		types.SectionExperience:     entryIDs(doc.Experience),
		types.SectionEducation:      entryIDs(doc.Education),
		types.SectionProjects:       entryIDs(doc.Projects),
		types.SectionSkills:         entryIDs(doc.Skills),
		types.SectionCertifications: entryIDs(doc.Certifications),
		types.SectionAchievements:   entryIDs(doc.Achievements),
	}
}

type editKind int

const (
	editAdd editKind = iota
	editRemove
	editUpdate
)

type listEdit struct {
	kind editKind
	id   string
	data map[string]any
}

func editList(doc types.ResumeDocument, section types.Section, edit listEdit) (types.ResumeDocument, error) {
	next := doc
	var err error

	switch section {
	case types.SectionExperience:
		next.Experience, err = applyEdit(doc.Experience, edit)
	case types.SectionEducation:
		next.Education, err = applyEdit(doc.Education, edit)
	case types.SectionProjects:
		next.Projects, err = applyEdit(doc.Projects, edit)
	case types.SectionSkills:
		next.Skills, err = applyEdit(doc.Skills, edit)
	case types.SectionCertifications:
		next.Certifications, err = applyEdit(doc.Certifications, edit)
	case types.SectionAchievements:
		next.Achievements, err = applyEdit(doc.Achievements, edit)
	default:
		return doc, &InvalidSectionError{Section: section, Reason: "not a list section"}
	}

	if err != nil {
		return doc, &DecodeError{Section: section, Cause: err}
	}
	return next, nil
}

// applyEdit never writes into list; it always returns a fresh slice or list itself.
func applyEdit[T types.Entry](list []T, edit listEdit) ([]T, error) {
	switch edit.kind {
	case editAdd:
		fields := make(map[string]any, len(edit.data)+1)
		for k, v := range edit.data {
			fields[k] = v
		}
		fields["id"] = edit.id

		item, err := fromFields[T](fields)
		if err != nil {
			return list, err
		}
		out := make([]T, 0, len(list)+1)
		out = append(out, list...)
		return append(out, item), nil

	case editRemove:
		out := make([]T, 0, len(list))
		for _, item := range list {
			if item.EntryID() != edit.id {
				out = append(out, item)
			}
		}
		return out, nil

	case editUpdate:
		out := make([]T, len(list))
		copy(out, list)
		for i, item := range out {
			if item.EntryID() != edit.id {
				continue
			}
			patched, err := patchEntry(item, edit.data)
			if err != nil {
				return list, err
			}
			out[i] = patched
		}
		return out, nil
	}
	return list, nil
}

func patchEntry[T types.Entry](item T, patch map[string]any) (T, error) {
	fields, err := toFields(item)
	if err != nil {
		return item, err
	}
	for k, v := range patch {
		fields[k] = v
	}
	fields["id"] = item.EntryID()
	return fromFields[T](fields)
}

func toFields(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func fromFields[T any](fields map[string]any) (T, error) {
	var out T
	data, err := json.Marshal(fields)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(data, &out)
	return out, err
}

func decodeValue[T any](value json.RawMessage) (T, error) {
	var out T
	if isNull(value) {
		return out, nil
	}
	err := json.Unmarshal(value, &out)
	return out, err
}

func decodeList[T any](value json.RawMessage) ([]T, error) {
	list, err := decodeValue[[]T](value)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []T{}
	}
	return list, nil
}

// restoreDefault resets one section of doc to its value in New.
func restoreDefault(doc types.ResumeDocument, section types.Section) types.ResumeDocument {
	def := New()
	switch section {
	case types.SectionTitle:
		doc.Title = def.Title
	case types.SectionSummary:
		doc.Summary = def.Summary
	case types.SectionPersonal:
		doc.Personal = def.Personal
	case types.SectionExperience:
		doc.Experience = def.Experience
	case types.SectionEducation:
		doc.Education = def.Education
	case types.SectionProjects:
		doc.Projects = def.Projects
	case types.SectionSkills:
		doc.Skills = def.Skills
	case types.SectionCertifications:
		doc.Certifications = def.Certifications
	case types.SectionAchievements:
		doc.Achievements = def.Achievements
	}
	return doc
}

// loadList decodes a list section entry by entry. It fails only when value is not an array.
func loadList[T any](section types.Section, value json.RawMessage) ([]T, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(value, &raw); err != nil {
		return nil, err
	}

	out := make([]T, 0, len(raw))
	for i, item := range raw {
		var zero T
		entry, err := mergeObject(section, zero, item)
		if err != nil {
			debugLog().Debug().Err(err).Str("section", string(section)).Int("index", i).Msg("malformed entry dropped on load")
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

// mergeObject decodes the keys of the JSON object value onto base one at a time, so a key
// with the wrong type leaves that field as it was. It fails only when value is not an object.
func mergeObject[T any](section types.Section, base T, value json.RawMessage) (T, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(value, &fields); err != nil {
		return base, err
	}
	if fields == nil {
		return base, &DecodeError{Section: section}
	}

	out := base
	for key, field := range fields {
		single, err := json.Marshal(map[string]json.RawMessage{key: field})
		if err != nil {
			continue
		}
		next := out
		if err := json.Unmarshal(single, &next); err != nil {
			debugLog().Debug().Err(err).Str("section", string(section)).Str("field", key).Msg("malformed field ignored on load")
			continue
		}
		out = next
	}
	return out, nil
}

func isNull(value json.RawMessage) bool {
	trimmed := bytes.TrimSpace(value)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func entryIDs[T types.Entry](list []T) []string {
	ids := make([]string, 0, len(list))
	for _, item := range list {
		ids = append(ids, item.EntryID())
	}
	return ids
}

func ensureIDs(doc types.ResumeDocument, ids IDGenerator) types.ResumeDocument {
	seen := make(map[string]bool)
	doc.Experience = assignIDs(doc.Experience, seen, ids, func(e *types.ExperienceEntry, id string) { e.ID = id })
	doc.Education = assignIDs(doc.Education, seen, ids, func(e *types.EducationEntry, id string) { e.ID = id })
	doc.Projects = assignIDs(doc.Projects, seen, ids, func(e *types.ProjectEntry, id string) { e.ID = id })
	doc.Skills = assignIDs(doc.Skills, seen, ids, func(e *types.SkillEntry, id string) { e.ID = id })
	doc.Certifications = assignIDs(doc.Certifications, seen, ids, func(e *types.CertificationEntry, id string) { e.ID = id })
	doc.Achievements = assignIDs(doc.Achievements, seen, ids, func(e *types.AchievementEntry, id string) { e.ID = id })
	return doc
}

// assignIDs mutates list in place; Load only calls it on freshly decoded slices.
func assignIDs[T types.Entry](list []T, seen map[string]bool, ids IDGenerator, setID func(*T, string)) []T {
	for i := range list {
		id := list[i].EntryID()
		if id == "" || seen[id] {
			id = ids.NewID()
			for seen[id] {
				id = ids.NewID()
			}
			setID(&list[i], id)
		}
		seen[id] = true
	}
	return list
}
