package model

import "strings"

// Category is the semantic label of a section of a disease article
type Category string

const (
	CategoryOverview      Category = "overview"
	CategoryCause         Category = "cause"
	CategorySymptoms      Category = "symptoms"
	CategoryTransmission  Category = "transmission"
	CategoryRiskGroup     Category = "risk_group"
	CategoryPrevention    Category = "prevention"
	CategoryDiagnosis     Category = "diagnosis"
	CategoryTreatment     Category = "treatment"
	CategoryComplications Category = "complications"
	CategoryOther         Category = "other"
)

// Categories lists every category in canonical order
var Categories = []Category{
	CategoryOverview,
	CategoryCause,
	CategorySymptoms,
	CategoryTransmission,
	CategoryRiskGroup,
	CategoryPrevention,
	CategoryDiagnosis,
	CategoryTreatment,
	CategoryComplications,
	CategoryOther,
}

var categoryLabels = map[Category]string{
	CategoryOverview:      "Tổng quan",
	CategoryCause:         "Nguyên nhân",
	CategorySymptoms:      "Triệu chứng",
	CategoryTransmission:  "Đường lây truyền",
	CategoryRiskGroup:     "Đối tượng nguy cơ",
	CategoryPrevention:    "Phòng ngừa",
	CategoryDiagnosis:     "Biện pháp chẩn đoán",
	CategoryTreatment:     "Biện pháp điều trị",
	CategoryComplications: "Biến chứng",
	CategoryOther:         "Thông tin khác",
}

// Label returns the Vietnamese display label written into records
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return categoryLabels[CategoryOther]
}

// Valid reports whether c is in the closed category set
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// ParseCategory accepts either the identifier or the Vietnamese label.
// Unknown values map to CategoryOther and ok=false.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryOther, false
	}
	if c := Category(strings.ToLower(s)); c.Valid() {
		return c, true
	}
	for c, label := range categoryLabels {
		if strings.EqualFold(label, s) {
			return c, true
		}
	}
	return CategoryOther, false
}
