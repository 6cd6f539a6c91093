package events

// SessionCompleted is published when a session is marked done.
type SessionCompleted struct {
	SessionID string `json:"session_id"`
	SubjectID string `json:"subject_id"`
	Minutes   int    `json:"minutes"`
}
