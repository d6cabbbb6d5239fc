package service

import (
	"errors"
	"fmt"

	"lms_backend/internal/model"
	"lms_backend/internal/util"
	"lms_backend/pkg/monitoring"

	"gorm.io/gorm"
)

// StudentStore is the slice of the course-student repository the progress
// and attempt flows need.
type StudentStore interface {
	FindByUserID(userID uint) (*model.CourseStudent, error)
	SaveEnrollment(student *model.CourseStudent, enrollment *model.EnrolledCourse) error
}

func findStudentEnrollment(store StudentStore, userID uint, courseID string) (*model.CourseStudent, *model.EnrolledCourse, error) {
	student, err := store.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrStudentNotFound
		}
		return nil, nil, err
	}
	for i := range student.EnrolledCourses {
		if student.EnrolledCourses[i].CourseID == courseID {
			return student, &student.EnrolledCourses[i], nil
		}
	}
	return nil, nil, util.ErrEnrollmentNotFound
}

type ProgressService struct {
	Students StudentStore
	Catalog  CourseCatalog
}

func NewProgressService(students StudentStore, catalog CourseCatalog) *ProgressService {
	return &ProgressService{Students: students, Catalog: catalog}
}

// UpdateWatched records additional watched time against an enrollment.
// Reports are cumulative: the player sends the hours watched since its
// last report, not a running total.
func (s *ProgressService) UpdateWatched(userID uint, courseID string, hours float64) (*model.EnrolledCourse, error) {
	student, enrollment, err := findStudentEnrollment(s.Students, userID, courseID)
	if err != nil {
		return nil, err
	}

	enrollment.AddWatched(hours)
	enrollment.Recompute()
	student.RecomputeGlobal()

	if err := s.Students.SaveEnrollment(student, enrollment); err != nil {
		return nil, err
	}

	monitoring.ProgressUpdateCounter.WithLabelValues("watched").Inc()
	return enrollment, nil
}

// GetResume answers the player's restore query. A missing student record or
// enrollment yields the zero resume object, because "nothing to resume" is
// not an error; anything else (a failing database, say) propagates.
func (s *ProgressService) GetResume(userID uint, courseID string) (model.ResumeState, error) {
	_, enrollment, err := findStudentEnrollment(s.Students, userID, courseID)
	switch {
	case err == nil:
		return enrollment.Resume(), nil
	case errors.Is(err, util.ErrStudentNotFound), errors.Is(err, util.ErrEnrollmentNotFound):
		return model.DefaultResume(courseID), nil
	default:
		return model.ResumeState{}, err
	}
}

// ResumeUpdateRequest carries whichever checkpoint pieces the client has.
type ResumeUpdateRequest struct {
	LastWatched      *model.LastWatched `json:"lastWatched"`
	WatchedHours     *float64           `json:"watchedHours"`
	CompletedContent []string           `json:"completedContent"`
}

func (r *ResumeUpdateRequest) validate() error {
	if lw := r.LastWatched; lw != nil {
		if lw.ModuleIndex < 0 || lw.TopicIndex < 0 || lw.ContentIndex < 0 {
			return fmt.Errorf("%w: lastWatched indexes must not be negative", util.ErrInvalidRequest)
		}
	}
	for _, key := range r.CompletedContent {
		if _, _, _, err := model.ParseContentKey(key); err != nil {
			return fmt.Errorf("%w: completedContent: %v", util.ErrInvalidRequest, err)
		}
	}
	return nil
}

// UpdateResume stores the checkpoint and recomputes every derived figure.
// Total hours are re-derived from the course template when it is still in
// the catalog; the caller's numbers are never trusted for totals.
func (s *ProgressService) UpdateResume(userID uint, courseID string, req ResumeUpdateRequest) (model.ResumeState, error) {
	if err := req.validate(); err != nil {
		return model.ResumeState{}, err
	}

	student, enrollment, err := findStudentEnrollment(s.Students, userID, courseID)
	if err != nil {
		return model.ResumeState{}, err
	}

	if total, err := s.Catalog.TotalHours(courseID); err == nil && total > 0 {
		enrollment.TotalHours = total
	}

	if req.LastWatched != nil {
		enrollment.LastWatched = *req.LastWatched
	}
	if req.WatchedHours != nil {
		enrollment.AddWatched(*req.WatchedHours)
	}
	if len(req.CompletedContent) > 0 {
		enrollment.MarkContent(req.CompletedContent)
	}

	enrollment.Recompute()
	student.RecomputeGlobal()

	if err := s.Students.SaveEnrollment(student, enrollment); err != nil {
		return model.ResumeState{}, err
	}

	monitoring.ProgressUpdateCounter.WithLabelValues("resume").Inc()
	return enrollment.Resume(), nil
}
