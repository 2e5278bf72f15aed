package seeders

import "github.com/lac-hong-legacy/learnhub/model"

// DefaultCourses returns a fresh copy of the catalog a new installation starts with.
func DefaultCourses() []model.Course {
	return []model.Course{
		{
			ID:           "c1",
			Title:        "Full Stack Web Development",
			Batch:        "LearnHub 1.0",
			Description:  "Master MERN stack with 50+ real world projects. Code with vrush Edition.",
			ThumbnailURL: "https://picsum.photos/seed/learnhub/400/225",
			Modules: []model.Module{
				{
					ID:                "m1",
					Title:             "Introduction & Setup",
					DefaultLessonType: model.LessonDefaultDynamic,
					Lessons: []model.Lesson{
						{ID: "l1", Title: "Course Orientation", Type: model.LessonTypeVideo, URL: "https://storage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4", Duration: 600},
						{ID: "l2", Title: "VS Code Setup", Type: model.LessonTypePDF, URL: "https://pdfobject.com/pdf/sample.pdf"},
					},
				},
				{
					ID:                "m2",
					Title:             "HTML & CSS Basics",
					DefaultLessonType: model.LessonDefaultDynamic,
					Lessons: []model.Lesson{
						{ID: "l3", Title: "HTML5 Structure", Type: model.LessonTypeVideo, URL: "https://storage.googleapis.com/gtv-videos-bucket/sample/ElephantsDream.mp4", Duration: 650},
						{ID: "l4", Title: "CSS Box Model", Type: model.LessonTypeVideo, URL: "https://storage.googleapis.com/gtv-videos-bucket/sample/ForBiggerBlazes.mp4", Duration: 900, IsLocked: true},
					},
				},
			},
		},
		{
			ID:           "c2",
			Title:        "Data Structures & Algorithms",
			Batch:        "Alpha 4.0",
			Description:  "Crack top tech interviews with Java. Ultra Instinct Mode.",
			ThumbnailURL: "https://picsum.photos/seed/alpha/400/225",
			Modules: []model.Module{
				{
					ID:                "m3",
					Title:             "Arrays & Strings",
					DefaultLessonType: model.LessonDefaultDynamic,
					Lessons: []model.Lesson{
						{ID: "l5", Title: "Introduction to Arrays", Type: model.LessonTypeVideo, URL: "https://storage.googleapis.com/gtv-videos-bucket/sample/TearsOfSteel.mp4", Duration: 1200},
					},
				},
			},
		},
	}
}
