package extract

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ppiankov/medqa/internal/model"
)

// CategoryRule maps one category to the heading keywords that select it
type CategoryRule struct {
	Category model.Category
	Keywords []string
}

// CategoryTable is an ordered list of rules. Order is the tie-break:
// a heading matching several rules gets the first one.
type CategoryTable []CategoryRule

// DefaultTable returns the canonical heading table shared by every source
func DefaultTable() CategoryTable {
	return CategoryTable{
		{model.CategoryOverview, []string{"tổng quan", "là gì", "là bệnh gì", "định nghĩa", "overview"}},
		{model.CategoryCause, []string{"nguyên nhân", "căn nguyên", "cơ chế bệnh sinh", "cause"}},
		{model.CategorySymptoms, []string{"triệu chứng", "dấu hiệu", "biểu hiện", "symptom"}},
		{model.CategoryTransmission, []string{"lây truyền", "lây lan", "đường lây", "transmission"}},
		{model.CategoryRiskGroup, []string{"đối tượng", "nguy cơ", "ai mắc", "risk"}},
		{model.CategoryPrevention, []string{"phòng ngừa", "phòng bệnh", "dự phòng", "chế độ sinh hoạt", "prevention"}},
		{model.CategoryDiagnosis, []string{"chẩn đoán", "xét nghiệm", "diagnos", "exams and tests"}},
		{model.CategoryTreatment, []string{"điều trị", "chữa trị", "thuốc", "treatment"}},
		{model.CategoryComplications, []string{"biến chứng", "hậu quả", "complication"}},
	}
}

// Classify returns the category of a heading: case-insensitive substring
// match on NFC-normalized text, first matching rule wins, CategoryOther when nothing matches.
func (t CategoryTable) Classify(heading string) model.Category {
	c, _ := t.Match(heading)
	return c
}

// Match is Classify plus the keyword that matched
func (t CategoryTable) Match(heading string) (model.Category, string) {
	lower := fold(heading)
	for _, rule := range t {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, fold(kw)) {
				return rule.Category, kw
			}
		}
	}
	return model.CategoryOther, ""
}

// fold lower-cases s in NFC so precomposed and decomposed diacritics match
func fold(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

// With returns a copy of the table where the given category's keywords are
// replaced, or appended as a new trailing rule if the category is absent.
func (t CategoryTable) With(category model.Category, keywords ...string) CategoryTable {
	out := make(CategoryTable, 0, len(t)+1)
	found := false
	for _, rule := range t {
		if rule.Category == category {
			rule = CategoryRule{Category: category, Keywords: keywords}
			found = true
		}
		out = append(out, rule)
	}
	if !found {
		out = append(out, CategoryRule{Category: category, Keywords: keywords})
	}
	return out
}
