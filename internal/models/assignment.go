package models

// Assignment is a point-in-time snapshot of a sentence handed to one
// session. It is never persisted and may be stale by the time the
// matching submission arrives.
type Assignment struct {
	SentenceID    string `json:"sentence_id"`
	Region        string `json:"region"`
	Split         string `json:"split"`
	DatasetSource string `json:"dataset_source"`
	SentenceText  string `json:"sentence_text"`
}

// AssignmentFromSentence snapshots the fields a session needs.
func AssignmentFromSentence(s SentenceRecord) *Assignment {
	return &Assignment{
		SentenceID:    s.ID,
		Region:        s.Region,
		Split:         s.Split,
		DatasetSource: s.DatasetSource,
		SentenceText:  s.SentenceText,
	}
}
