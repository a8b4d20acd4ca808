package schedule

import (
	"strings"

	"github.com/Kejlo523/mzut-v2-pwa-sub000/internal/model"
)

// classifyRule pairs a predicate over a raw record with the category it
// yields. Rules are evaluated in order; the first match wins.
type classifyRule struct {
	match    func(r ruleInput) bool
	category model.Category
}

// ruleInput is the lowercased view of the fields classification looks at.
type ruleInput struct {
	form        string // lesson_form, lowercased
	formShort   string // lesson_form_short, lowercased
	statusShort string // lesson_status_short, lowercased
}

// classifyRules is the ordered rule table. Ordering is load-bearing: the
// status-code rules come first so that a cancelled exam reports as cancelled
// and a remote-status event reports as remote even when its form text says
// "Laboratorium". Reordering changes classification outcomes.
var classifyRules = []classifyRule{
	{func(r ruleInput) bool { return r.statusShort == "e" }, model.CategoryExam},
	{func(r ruleInput) bool { return r.statusShort == "o" }, model.CategoryCancelled},
	{func(r ruleInput) bool { return r.statusShort == "z" }, model.CategoryRemote},
	{func(r ruleInput) bool { return r.formShort == "l" || strings.Contains(r.form, "laborator") }, model.CategoryLaboratory},
	{func(r ruleInput) bool { return r.formShort == "a" || strings.Contains(r.form, "audytoryj") }, model.CategoryAuditory},
	{func(r ruleInput) bool { return r.formShort == "w" || strings.Contains(r.form, "wykład") }, model.CategoryLecture},
	{func(r ruleInput) bool { return strings.Contains(r.form, "egzamin") }, model.CategoryExam},
	{func(r ruleInput) bool { return strings.Contains(r.form, "zdaln") }, model.CategoryRemote},
	{func(r ruleInput) bool { return strings.Contains(r.form, "zalicz") }, model.CategoryCredit},
	{func(r ruleInput) bool { return r.formShort == "p" || strings.Contains(r.form, "projekt") }, model.CategoryProject},
	{func(r ruleInput) bool { return r.formShort == "s" || strings.Contains(r.form, "seminar") }, model.CategorySeminar},
	{func(r ruleInput) bool { return strings.Contains(r.form, "dyplom") }, model.CategoryDiploma},
	{func(r ruleInput) bool { return r.formShort == "lek" || strings.Contains(r.form, "lektorat") }, model.CategoryLanguage},
	{func(r ruleInput) bool { return strings.Contains(r.form, "konwersator") }, model.CategoryConversational},
	{func(r ruleInput) bool { return strings.Contains(r.form, "konsultac") }, model.CategoryConsultation},
	{func(r ruleInput) bool { return strings.Contains(r.form, "prakty") }, model.CategoryFieldWork},
}

// categoryLabels maps each category onto its fixed display label.
var categoryLabels = map[model.Category]string{
	model.CategoryExam:           "Egzamin",
	model.CategoryCancelled:      "Odwołane",
	model.CategoryRemote:         "Zdalne",
	model.CategoryLaboratory:     "Laboratorium",
	model.CategoryAuditory:       "Ćwiczenia audytoryjne",
	model.CategoryLecture:        "Wykład",
	model.CategoryCredit:         "Zaliczenie",
	model.CategoryProject:        "Projekt",
	model.CategorySeminar:        "Seminarium",
	model.CategoryDiploma:        "Praca dyplomowa",
	model.CategoryLanguage:       "Lektorat",
	model.CategoryConversational: "Konwersatorium",
	model.CategoryConsultation:   "Konsultacje",
	model.CategoryFieldWork:      "Praktyka",
}

// defaultLabel is used when nothing matched and the record carries no usable
// lesson-form text of its own.
const defaultLabel = "Zajęcia"

// Classify derives a coarse category and display label from a raw record's
// status and form fields. When no rule matches, the category is the generic
// "class" and the label falls back to the raw lesson-form text.
func Classify(raw model.RawOccurrence) (model.Category, string) {
	in := ruleInput{
		form:        strings.ToLower(raw.LessonForm),
		formShort:   strings.ToLower(strings.TrimSpace(raw.LessonFormShort)),
		statusShort: strings.ToLower(strings.TrimSpace(raw.LessonStatusShort)),
	}

	for _, rule := range classifyRules {
		if rule.match(in) {
			return rule.category, categoryLabels[rule.category]
		}
	}

	label := strings.TrimSpace(raw.LessonForm)
	if label == "" {
		label = defaultLabel
	}
	return model.CategoryClass, label
}
