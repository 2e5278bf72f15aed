package model

const (
	LessonTypeVideo = "video"
	LessonTypePDF   = "pdf"

	LessonDefaultStatic  = "static"
	LessonDefaultDynamic = "dynamic"
)

// Course is the root of the catalog. Its modules are ordered for navigation and display.
type Course struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Batch        string   `json:"batch"`
	Description  string   `json:"description"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	Modules      []Module `json:"modules"`
}

// Module is owned by exactly one course.
type Module struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Lessons           []Lesson `json:"lessons"`
	IsOpen            bool     `json:"isOpen,omitempty"` // UI state only
	DefaultLessonType string   `json:"defaultLessonType,omitempty"`
}

// Lesson is one video or one PDF. When IsLocal is set the content lives in the blob store
// under the lesson ID and URL holds a session-scoped handle that is never persisted.
type Lesson struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Type     string  `json:"type"` // video, pdf
	URL      string  `json:"url"`
	Duration float64 `json:"duration,omitempty"` // seconds
	IsLocked bool    `json:"isLocked,omitempty"`
	IsLocal  bool    `json:"isLocal,omitempty"`
}

// Clone returns a deep copy of the course.
func (c Course) Clone() Course {
	out := c
	out.Modules = make([]Module, len(c.Modules))
	for i, m := range c.Modules {
		out.Modules[i] = m.Clone()
	}
	return out
}

func (m Module) Clone() Module {
	out := m
	out.Lessons = make([]Lesson, len(m.Lessons))
	copy(out.Lessons, m.Lessons)
	return out
}

// LessonCount is the number of lessons across all modules.
func (c Course) LessonCount() int {
	total := 0
	for _, m := range c.Modules {
		total += len(m.Lessons)
	}
	return total
}

// FlatLessons returns the lessons of every module in navigation order.
func (c Course) FlatLessons() []Lesson {
	lessons := make([]Lesson, 0, c.LessonCount())
	for _, m := range c.Modules {
		lessons = append(lessons, m.Lessons...)
	}
	return lessons
}

// LocalLessonIDs lists the IDs of lessons whose content lives in the blob store.
func (c Course) LocalLessonIDs() []string {
	var ids []string
	for _, m := range c.Modules {
		ids = append(ids, m.LocalLessonIDs()...)
	}
	return ids
}

func (m Module) LocalLessonIDs() []string {
	var ids []string
	for _, l := range m.Lessons {
		if l.IsLocal {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

func (c Course) ModuleIndex(moduleID string) int {
	for i, m := range c.Modules {
		if m.ID == moduleID {
			return i
		}
	}
	return -1
}

func (m Module) LessonIndex(lessonID string) int {
	for i, l := range m.Lessons {
		if l.ID == lessonID {
			return i
		}
	}
	return -1
}

// CloneCourses deep copies a course list.
func CloneCourses(courses []Course) []Course {
	out := make([]Course, len(courses))
	for i, c := range courses {
		out[i] = c.Clone()
	}
	return out
}
