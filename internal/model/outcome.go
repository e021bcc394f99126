package model

// SkipReason explains why an input unit produced no output
type SkipReason string

const (
	SkipNone         SkipReason = ""
	SkipNoContent    SkipReason = "no_content"
	SkipFetchFailed  SkipReason = "fetch_failed"
	SkipMalformed    SkipReason = "malformed"
	SkipMissingField SkipReason = "missing_field"
	SkipDuplicate    SkipReason = "duplicate"
	SkipTooShort     SkipReason = "too_short"
	SkipTooLong      SkipReason = "too_long"
	SkipIrrelevant   SkipReason = "irrelevant_category"
	SkipRobots       SkipReason = "robots_disallowed"
	SkipResumed      SkipReason = "already_done"
)

// Outcome is the explicit result of processing one unit (page, line, batch)
type Outcome struct {
	Reason SkipReason
	Detail string
}

// OK reports whether the unit was accepted
func (o Outcome) OK() bool {
	return o.Reason == SkipNone
}

// Skip builds a skipped outcome
func Skip(reason SkipReason, detail string) Outcome {
	return Outcome{Reason: reason, Detail: detail}
}

// Counter tallies outcomes by reason
type Counter map[SkipReason]int

// Add records one outcome
func (c Counter) Add(o Outcome) {
	c[o.Reason]++
}

// Total returns the number of outcomes recorded
func (c Counter) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}
