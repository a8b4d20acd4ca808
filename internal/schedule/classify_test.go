package schedule

import (
	"testing"

	"github.com/Kejlo523/mzut-v2-pwa-sub000/internal/model"
)

func TestClassify_StatusCodesBeatFormText(t *testing.T) {
	// Precedence is load-bearing: status-code rules come before every
	// form-based rule.
	cases := []struct {
		name string
		raw  model.RawOccurrence
		want model.Category
	}{
		{
			name: "cancelled laboratory reports as cancelled",
			raw:  model.RawOccurrence{LessonStatusShort: "o", LessonForm: "Laboratorium"},
			want: model.CategoryCancelled,
		},
		{
			name: "remote status beats laboratory form",
			raw:  model.RawOccurrence{LessonStatusShort: "z", LessonForm: "Laboratorium"},
			want: model.CategoryRemote,
		},
		{
			name: "exam status beats lecture form",
			raw:  model.RawOccurrence{LessonStatusShort: "e", LessonForm: "Wykład"},
			want: model.CategoryExam,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := Classify(tc.raw)
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClassify_FormRules(t *testing.T) {
	cases := []struct {
		raw       model.RawOccurrence
		want      model.Category
		wantLabel string
	}{
		{model.RawOccurrence{LessonFormShort: "L"}, model.CategoryLaboratory, "Laboratorium"},
		{model.RawOccurrence{LessonForm: "laboratorium"}, model.CategoryLaboratory, "Laboratorium"},
		{model.RawOccurrence{LessonFormShort: "A"}, model.CategoryAuditory, "Ćwiczenia audytoryjne"},
		{model.RawOccurrence{LessonForm: "ćwiczenia audytoryjne"}, model.CategoryAuditory, "Ćwiczenia audytoryjne"},
		{model.RawOccurrence{LessonFormShort: "W"}, model.CategoryLecture, "Wykład"},
		{model.RawOccurrence{LessonForm: "wykład"}, model.CategoryLecture, "Wykład"},
		{model.RawOccurrence{LessonForm: "egzamin poprawkowy"}, model.CategoryExam, "Egzamin"},
		{model.RawOccurrence{LessonForm: "zajęcia zdalne"}, model.CategoryRemote, "Zdalne"},
		{model.RawOccurrence{LessonForm: "zaliczenie"}, model.CategoryCredit, "Zaliczenie"},
		{model.RawOccurrence{LessonFormShort: "P"}, model.CategoryProject, "Projekt"},
		{model.RawOccurrence{LessonFormShort: "S"}, model.CategorySeminar, "Seminarium"},
		{model.RawOccurrence{LessonForm: "seminarium dyplomowe"}, model.CategorySeminar, "Seminarium"},
		{model.RawOccurrence{LessonForm: "praca dyplomowa"}, model.CategoryDiploma, "Praca dyplomowa"},
		{model.RawOccurrence{LessonForm: "lektorat"}, model.CategoryLanguage, "Lektorat"},
		{model.RawOccurrence{LessonForm: "konwersatorium"}, model.CategoryConversational, "Konwersatorium"},
		{model.RawOccurrence{LessonForm: "konsultacje"}, model.CategoryConsultation, "Konsultacje"},
		{model.RawOccurrence{LessonForm: "praktyka zawodowa"}, model.CategoryFieldWork, "Praktyka"},
	}
	for _, tc := range cases {
		got, label := Classify(tc.raw)
		if got != tc.want {
			t.Errorf("form=%q short=%q: got %q, want %q",
				tc.raw.LessonForm, tc.raw.LessonFormShort, got, tc.want)
		}
		if label != tc.wantLabel {
			t.Errorf("form=%q short=%q: label %q, want %q",
				tc.raw.LessonForm, tc.raw.LessonFormShort, label, tc.wantLabel)
		}
	}
}

func TestClassify_DefaultFallsBackToFormText(t *testing.T) {
	got, label := Classify(model.RawOccurrence{LessonForm: "Obóz naukowy"})
	if got != model.CategoryClass {
		t.Errorf("category = %q, want %q", got, model.CategoryClass)
	}
	if label != "Obóz naukowy" {
		t.Errorf("label = %q, want raw form text", label)
	}
}

func TestClassify_DefaultWithEmptyForm(t *testing.T) {
	got, label := Classify(model.RawOccurrence{})
	if got != model.CategoryClass {
		t.Errorf("category = %q, want %q", got, model.CategoryClass)
	}
	if label != "Zajęcia" {
		t.Errorf("label = %q, want generic label", label)
	}
}
