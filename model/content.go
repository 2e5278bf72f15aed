package model

// Content is what a live content handle streams.
type Content struct {
	LessonID string
	MimeType string
	Data     []byte
}
