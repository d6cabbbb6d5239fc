package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type CourseStudentRepository struct {
	DB *gorm.DB
}

func NewCourseStudentRepository(db *gorm.DB) *CourseStudentRepository {
	return &CourseStudentRepository{DB: db}
}

// FindByUserID loads the student record with all enrollments. Returns
// gorm.ErrRecordNotFound when the user has never enrolled in anything.
func (r *CourseStudentRepository) FindByUserID(userID uint) (*model.CourseStudent, error) {
	var student model.CourseStudent
	err := r.DB.Preload("EnrolledCourses").
		Where("user_id = ?", userID).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// FindOrCreateByUserID loads the student record, creating an empty one on
// first enrollment.
func (r *CourseStudentRepository) FindOrCreateByUserID(userID uint) (*model.CourseStudent, error) {
	student, err := r.FindByUserID(userID)
	if err == nil {
		return student, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	student = &model.CourseStudent{
		UserID:              userID,
		GlobalProgressColor: model.ColorRed,
	}
	if err := r.DB.Create(student).Error; err != nil {
		return nil, err
	}
	return student, nil
}

// AddEnrollment persists a new enrollment together with the refreshed
// global rollup in one transaction, so the rollup can never be observed
// stale relative to the enrollment.
func (r *CourseStudentRepository) AddEnrollment(student *model.CourseStudent, enrollment *model.EnrolledCourse) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		enrollment.CourseStudentID = student.ID
		if err := tx.Create(enrollment).Error; err != nil {
			return err
		}
		return tx.Model(&model.CourseStudent{}).
			Where("id = ?", student.ID).
			Updates(map[string]interface{}{
				"global_progress_percent": student.GlobalProgressPercent,
				"global_progress_color":   student.GlobalProgressColor,
			}).Error
	})
}

// SaveEnrollment writes back a mutated enrollment and the student's
// refreshed rollup in one transaction.
func (r *CourseStudentRepository) SaveEnrollment(student *model.CourseStudent, enrollment *model.EnrolledCourse) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(enrollment).Error; err != nil {
			return err
		}
		return tx.Model(&model.CourseStudent{}).
			Where("id = ?", student.ID).
			Updates(map[string]interface{}{
				"global_progress_percent": student.GlobalProgressPercent,
				"global_progress_color":   student.GlobalProgressColor,
			}).Error
	})
}

// RemoveEnrollment deletes the enrollment and refreshes the rollup in one
// transaction.
func (r *CourseStudentRepository) RemoveEnrollment(student *model.CourseStudent, enrollment *model.EnrolledCourse) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(enrollment).Error; err != nil {
			return err
		}
		return tx.Model(&model.CourseStudent{}).
			Where("id = ?", student.ID).
			Updates(map[string]interface{}{
				"global_progress_percent": student.GlobalProgressPercent,
				"global_progress_color":   student.GlobalProgressColor,
			}).Error
	})
}
