package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type QuizAttemptRepository struct {
	DB *gorm.DB
}

func NewQuizAttemptRepository(db *gorm.DB) *QuizAttemptRepository {
	return &QuizAttemptRepository{DB: db}
}

func (r *QuizAttemptRepository) Create(attempt *model.QuizAttempt) error {
	return r.DB.Create(attempt).Error
}

// CountAttempts is how many attempts the user has already made against one
// quiz of one course.
func (r *QuizAttemptRepository) CountAttempts(userID uint, courseID, quizKey string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizAttempt{}).
		Where("user_id = ? AND course_id = ? AND quiz_key = ?", userID, courseID, quizKey).
		Count(&count).Error
	return count, err
}

func (r *QuizAttemptRepository) ListByUserAndCourse(userID uint, courseID string) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("quiz_key, attempt_number").
		Find(&attempts).Error
	return attempts, err
}

// ListByCourse is the admin view over every student's attempts. An empty
// courseID lists everything.
func (r *QuizAttemptRepository) ListByCourse(courseID string) ([]model.QuizAttempt, error) {
	q := r.DB.Model(&model.QuizAttempt{})
	if courseID != "" {
		q = q.Where("course_id = ?", courseID)
	}
	var attempts []model.QuizAttempt
	err := q.Order("user_id, quiz_key, attempt_number").Find(&attempts).Error
	return attempts, err
}
