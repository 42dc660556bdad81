package core

// Skip is one per-item report entry: an image that could not be resolved,
// a record that was not imported, or a validation flag.
type Skip struct {
	PostID int    `json:"post_id"`
	Title  string `json:"title"`
	Link   string `json:"link"`
	Reason string `json:"reason"`
}

// SkipLog accumulates skip entries for one record.
type SkipLog struct {
	entries []Skip
}

// Add records a skip entry for ref.
func (l *SkipLog) Add(ref SourceRef, reason string) {
	l.entries = append(l.entries, Skip{
		PostID: ref.PostID,
		Title:  ref.Title,
		Link:   ref.Link,
		Reason: reason,
	})
}

// Entries returns the recorded entries in insertion order.
func (l *SkipLog) Entries() []Skip {
	return l.entries
}

// Len returns the number of entries.
func (l *SkipLog) Len() int {
	return len(l.entries)
}

// Stats summarizes one import run.
type Stats struct {
	Processed  int `json:"processed"`
	Imported   int `json:"imported"`
	Created    int `json:"created"`
	Updated    int `json:"updated"`
	Skipped    int `json:"skipped"`
	ImageSkips int `json:"image_skips"`
}
