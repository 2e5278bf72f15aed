package services

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/model"
	log "github.com/sirupsen/logrus"
)

const defaultImportOrder = 999

var (
	ordinalPrefix = regexp.MustCompile(`^\d+[.\s-]+`)
	leadingNumber = regexp.MustCompile(`^\d+`)
)

var importTypes = map[string]string{
	".mp4":  model.LessonTypeVideo,
	".webm": model.LessonTypeVideo,
	".ogg":  model.LessonTypeVideo,
	".mov":  model.LessonTypeVideo,
	".pdf":  model.LessonTypePDF,
}

type importedLesson struct {
	lesson model.Lesson
	order  int
}

// lessonFromFileName derives the lesson type, title and sort key of an uploaded file.
// ok is false for file types that cannot be played.
func lessonFromFileName(fileName string) (lessonType, title string, order int, ok bool) {
	lessonType, ok = importTypes[strings.ToLower(path.Ext(fileName))]
	if !ok {
		return "", "", 0, false
	}

	title = ordinalPrefix.ReplaceAllString(fileName, "")
	if i := strings.Index(title, "."); i >= 0 {
		title = title[:i]
	}

	order = defaultImportOrder
	if match := leadingNumber.FindString(fileName); match != "" {
		if n, err := strconv.Atoi(match); err == nil {
			order = n
		}
	}
	return lessonType, title, order, true
}

// ImportFolder turns a folder upload into one module per sub folder. Content is written before
// the modules are appended; a file whose write fails is logged and left out.
func (svc *CatalogService) ImportFolder(ctx context.Context, courseID string, files []dto.UploadedFile) (*dto.ImportReport, error) {
	if _, err := svc.Course(courseID); err != nil {
		return nil, err
	}

	report := &dto.ImportReport{CourseID: courseID, Failed: []string{}}
	folders := make(map[string][]importedLesson)
	var stored []string

	for _, file := range files {
		parts := strings.Split(file.Path, "/")
		if len(parts) < 3 {
			report.Skipped++
			continue
		}

		folder := parts[1]
		lessonType, title, order, ok := lessonFromFileName(parts[len(parts)-1])
		if !ok {
			report.Skipped++
			continue
		}

		lessonID := newID("l_")
		err := svc.blobs.Put(ctx, lessonID, file.Data)
		recordBlobOp("put", err)
		if err != nil {
			report.Failed = append(report.Failed, file.Path)
			log.WithFields(log.Fields{
				"path":  file.Path,
				"error": err.Error(),
			}).Error("Failed to save imported file")
			continue
		}
		stored = append(stored, lessonID)

		folders[folder] = append(folders[folder], importedLesson{
			order: order,
			lesson: model.Lesson{
				ID:      lessonID,
				Title:   title,
				Type:    lessonType,
				URL:     svc.handles.Acquire(lessonID, file.Data),
				IsLocal: true,
			},
		})
	}

	if len(folders) == 0 {
		return report, nil
	}

	names := make([]string, 0, len(folders))
	for name := range folders {
		names = append(names, name)
	}
	sort.Strings(names)

	modules := make([]model.Module, 0, len(names))
	for _, name := range names {
		imported := folders[name]
		sort.SliceStable(imported, func(i, j int) bool {
			return imported[i].order < imported[j].order
		})

		lessons := make([]model.Lesson, len(imported))
		for i, l := range imported {
			lessons[i] = l.lesson
		}
		modules = append(modules, model.Module{
			ID:                newID("m_"),
			Title:             name,
			Lessons:           lessons,
			IsOpen:            false,
			DefaultLessonType: model.LessonDefaultStatic,
		})
		report.Lessons += len(lessons)
	}

	err := svc.mutate(ctx, func(courses []model.Course) ([]model.Course, []string, error) {
		i := indexOfCourse(courses, courseID)
		if i < 0 {
			return nil, nil, ErrCourseNotFound
		}
		courses[i].Modules = append(courses[i].Modules, modules...)
		return courses, nil, nil
	})
	if err != nil {
		for _, lessonID := range stored {
			svc.handles.ReleaseLesson(lessonID)
		}
		svc.scheduleCleanup(stored)
		return nil, fmt.Errorf("failed to import folder: %w", err)
	}

	report.Modules = len(modules)
	return report, nil
}
