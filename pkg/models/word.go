package models

import "time"

// WordRecord represents a highlighted word and its review progress
type WordRecord struct {
	ID              string       `json:"id"`
	Word            string       `json:"word"`
	Meaning         string       `json:"meaning"`
	OccurrenceCount int          `json:"occurrenceCount"`
	FirstSeenAt     time.Time    `json:"firstSeenAt"`
	LastSeenAt      time.Time    `json:"lastSeenAt"`
	SourceURL       string       `json:"sourceUrl"`
	SourceTitle     string       `json:"sourceTitle"`
	ColorTag        string       `json:"colorTag"`
	Location        *Location    `json:"location,omitempty"`    // first-seen position on the page
	ReviewState     *ReviewState `json:"reviewState,omitempty"` // nil until the first grading
}

// ReviewState tracks the spacing of a word once reviewing starts
type ReviewState struct {
	LastReviewedAt time.Time `json:"lastReviewedAt"`
	ReviewCount    int       `json:"reviewCount"`
	KnewItLastTime bool      `json:"knewItLastTime"`
	IntervalDays   int       `json:"intervalDays"` // 1..30
	NextReviewAt   time.Time `json:"nextReviewAt"`
}

// Location identifies where on a page a word was highlighted
type Location struct {
	DOMPath     string `json:"domPath"`
	StartOffset int    `json:"startOffset"`
	EndOffset   int    `json:"endOffset"`
}

// Same reports whether two locations point at the same highlight.
// The end offset is not compared: a re-selection may cover a slightly different range.
func (l *Location) Same(other *Location) bool {
	if l == nil || other == nil {
		return l == nil && other == nil
	}
	return l.DOMPath == other.DOMPath && l.StartOffset == other.StartOffset
}

// PageContext describes the page a word is highlighted on
type PageContext struct {
	URL      string
	Title    string
	Color    string
	Location *Location
}

// Clone returns a deep copy of the record
func (w WordRecord) Clone() WordRecord {
	out := w
	if w.Location != nil {
		loc := *w.Location
		out.Location = &loc
	}
	if w.ReviewState != nil {
		rs := *w.ReviewState
		out.ReviewState = &rs
	}
	return out
}
