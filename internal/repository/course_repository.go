package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByCourseID(courseID string) (*model.Course, error) {
	var course model.Course
	err := r.DB.Where("course_id = ?", courseID).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByCourseIDAndType fetches a course only when it belongs to the given
// category. Callers treat a miss as plain not-found regardless of whether
// the id exists under another category.
func (r *CourseRepository) FindByCourseIDAndType(courseID string, courseType model.CourseType) (*model.Course, error) {
	var course model.Course
	err := r.DB.Where("course_id = ? AND type = ?", courseID, courseType).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) ExistsByTitleAndType(title string, courseType model.CourseType) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Course{}).
		Where("title = ? AND type = ?", title, courseType).
		Count(&count).Error
	return count > 0, err
}

type CourseFilter struct {
	Type     string
	Category string
	Search   string
}

func (r *CourseRepository) Search(filter CourseFilter) ([]model.Course, error) {
	q := r.DB.Model(&model.Course{})
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Category != "" {
		q = q.Where("category LIKE ?", "%"+filter.Category+"%")
	}
	if filter.Search != "" {
		q = q.Where("title LIKE ?", "%"+filter.Search+"%")
	}

	var courses []model.Course
	err := q.Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) DeleteByCourseID(courseID string) (*model.Course, error) {
	course, err := r.FindByCourseID(courseID)
	if err != nil {
		return nil, err
	}
	if err := r.DB.Delete(course).Error; err != nil {
		return nil, err
	}
	return course, nil
}
