package model

// Backup is the interchange document. Each record is carried as the raw durable string so a
// restore writes it back verbatim.
type Backup struct {
	Courses   *string `json:"courses,omitempty"`
	Users     *string `json:"users,omitempty"`
	Progress  *string `json:"progress,omitempty"`
	Timestamp string  `json:"timestamp"`
	Version   string  `json:"version"`
}
