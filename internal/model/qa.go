package model

import "strings"

// Label is the truth value of a generated statement
type Label string

const (
	LabelTrue  Label = "Đúng"
	LabelFalse Label = "Sai"
)

var labelAliases = map[string]Label{
	"đúng":  LabelTrue,
	"true":  LabelTrue,
	"yes":   LabelTrue,
	"sai":   LabelFalse,
	"false": LabelFalse,
	"no":    LabelFalse,
}

// ParseLabel normalizes the label spellings emitted by generators and source datasets
func ParseLabel(s string) (Label, bool) {
	l, ok := labelAliases[strings.ToLower(strings.TrimSpace(s))]
	return l, ok
}

// Int returns the classifier class index (Sai=0, Đúng=1)
func (l Label) Int() int {
	if l == LabelTrue {
		return 1
	}
	return 0
}

// QAItem is a generated true/false statement
type QAItem struct {
	ID         string `json:"id,omitempty"`
	Statement  string `json:"cau_hoi"`
	Label      Label  `json:"dap_an"`
	Source     string `json:"nguon,omitempty"`
	Topic      string `json:"chu_de,omitempty"`
	Category   string `json:"category,omitempty"`
	OriginalID string `json:"original_id,omitempty"`
}
