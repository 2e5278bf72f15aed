package services

import (
	"context"

	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/model"
	log "github.com/sirupsen/logrus"
)

// Hydrate mints a fresh handle for every local lesson whose content is stored, releasing the
// lesson's previous handle first. Lessons without content keep their URL and are reported as
// missing. Listeners are notified once, and only if a URL changed.
func (svc *CatalogService) Hydrate(ctx context.Context) dto.HydrationReport {
	report := dto.HydrationReport{Missing: []string{}, Failed: []string{}}

	svc.mu.Lock()
	changed := false
	for ci := range svc.courses {
		for mi := range svc.courses[ci].Modules {
			lessons := svc.courses[ci].Modules[mi].Lessons
			for li := range lessons {
				lesson := &lessons[li]
				if !lesson.IsLocal {
					continue
				}

				data, ok, err := svc.blobs.Get(ctx, lesson.ID)
				recordBlobOp("get", err)
				if err != nil {
					report.Failed = append(report.Failed, lesson.ID)
					log.WithFields(log.Fields{
						"lesson_id": lesson.ID,
						"error":     err.Error(),
					}).Warn("Could not restore local content")
					continue
				}
				if !ok {
					report.Missing = append(report.Missing, lesson.ID)
					hydrationMissingTotal.Inc()
					log.WithFields(log.Fields{
						"course_id": svc.courses[ci].ID,
						"lesson_id": lesson.ID,
					}).Warn("Local lesson has no stored content")
					continue
				}

				lesson.URL = svc.handles.Acquire(lesson.ID, data)
				report.Hydrated++
				changed = true
			}
		}
	}

	var snapshot []model.Course
	if changed {
		snapshot = model.CloneCourses(svc.courses)
	}
	svc.mu.Unlock()

	hydrationRunsTotal.Inc()
	if changed {
		svc.notify(snapshot)
	}
	return report
}
