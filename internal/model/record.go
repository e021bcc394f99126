package model

// Section is a contiguous span of body text attributed to one category
type Section struct {
	Category Category `json:"category"`
	Heading  string   `json:"heading,omitempty"` // Heading that opened the section (empty for the seeded overview)
	Text     string   `json:"text"`
}

// PageMeta identifies the page a set of sections came from
type PageMeta struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Source string `json:"source"` // Adapter name, e.g. "vinmec"
}

// Record is the persisted, flattened form of a Section
type Record struct {
	Name     string `json:"benh"`
	URL      string `json:"url"`
	Source   string `json:"nguon,omitempty"`
	Category string `json:"muc"`
	Text     string `json:"noi_dung"`
}

// DuplicateRecord is a merge-stage duplicate kept with its provenance
type DuplicateRecord struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	SourceFile string `json:"source_file"`
	Note       string `json:"note"`
}

// QAPair is the unified merge-stage record
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
