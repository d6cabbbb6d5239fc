package service

import (
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

// CourseCatalog is the read side the enrollment engine consumes. The
// progress subsystem never writes courses.
type CourseCatalog interface {
	FindStudentCourse(courseID string) (*model.Course, error)
	TotalHours(courseID string) (float64, error)
}

type CatalogService struct {
	Courses *repository.CourseRepository
}

func NewCatalogService(courses *repository.CourseRepository) *CatalogService {
	return &CatalogService{Courses: courses}
}

func (s *CatalogService) CreateCourse(course *model.Course) (*model.Course, error) {
	exists, err := s.Courses.ExistsByTitleAndType(course.Title, course.Type)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, util.ErrDuplicateCourse
	}

	course.CourseID = model.GenerateUUID()
	course.StripByType()

	if err := s.Courses.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CatalogService) ListCourses(filter repository.CourseFilter) ([]model.Course, error) {
	return s.Courses.Search(filter)
}

// FindStudentCourse resolves a course only when it is student-facing. A
// Business course answers not-found, same as a missing id, so the response
// does not reveal which of the two it was.
func (s *CatalogService) FindStudentCourse(courseID string) (*model.Course, error) {
	course, err := s.Courses.FindByCourseIDAndType(courseID, model.StudentCourse)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

// TotalHours is the authoritative duration of the course template, used to
// re-derive enrollment totals instead of trusting request values.
func (s *CatalogService) TotalHours(courseID string) (float64, error) {
	course, err := s.FindStudentCourse(courseID)
	if err != nil {
		return 0, err
	}
	return course.TotalHours(), nil
}

// DeleteCourse removes the template and hands back the deleted row so the
// caller can clean up its media.
func (s *CatalogService) DeleteCourse(courseID string) (*model.Course, error) {
	course, err := s.Courses.DeleteByCourseID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}
