package models

// Sentence row in the shared tabular store. Field order mirrors the stored
// column order (region, sentence_text, id, recording_count, target_count,
// split, dataset_source); the sheet adapter addresses cells positionally.
type SentenceRecord struct {
	Region         string `json:"region"`
	SentenceText   string `json:"sentence_text"`
	ID             string `json:"id"`
	RecordingCount int    `json:"recording_count"`
	TargetCount    int    `json:"target_count"`
	Split          string `json:"split"`
	DatasetSource  string `json:"dataset_source"`
}

// Pending reports whether the sentence still needs recordings.
func (s SentenceRecord) Pending() bool {
	return s.RecordingCount < s.TargetCount
}
