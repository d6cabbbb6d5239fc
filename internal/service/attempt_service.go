package service

import (
	"fmt"

	"lms_backend/internal/model"
	"lms_backend/internal/util"
	"lms_backend/pkg/monitoring"
)

// AttemptStore persists graded attempt history.
type AttemptStore interface {
	Create(attempt *model.QuizAttempt) error
	CountAttempts(userID uint, courseID, quizKey string) (int64, error)
	ListByUserAndCourse(userID uint, courseID string) ([]model.QuizAttempt, error)
	ListByCourse(courseID string) ([]model.QuizAttempt, error)
}

// AnswerSubmission selects one answer for one question of the quiz.
type AnswerSubmission struct {
	QuestionIndex  int    `json:"questionIndex"`
	SelectedAnswer string `json:"selectedAnswer"`
}

// AttemptSubmission is a full quiz or final-test submission. QuizKey is a
// content position key, or model.FinalTestKey for the final test.
type AttemptSubmission struct {
	QuizKey string             `json:"quizKey"`
	Answers []AnswerSubmission `json:"answers"`
}

func (s *AttemptSubmission) validate() error {
	if s.QuizKey == "" {
		return fmt.Errorf("%w: quizKey is required", util.ErrInvalidRequest)
	}
	if s.QuizKey != model.FinalTestKey {
		if _, _, _, err := model.ParseContentKey(s.QuizKey); err != nil {
			return fmt.Errorf("%w: quizKey: %v", util.ErrInvalidRequest, err)
		}
	}
	for _, a := range s.Answers {
		if a.QuestionIndex < 0 {
			return fmt.Errorf("%w: questionIndex must not be negative", util.ErrInvalidRequest)
		}
	}
	return nil
}

func (s *AttemptSubmission) selections() map[int]string {
	selected := make(map[int]string, len(s.Answers))
	for _, a := range s.Answers {
		selected[a.QuestionIndex] = a.SelectedAnswer
	}
	return selected
}

// AttemptService grades quiz and final-test submissions against the
// enrollment snapshot and keeps the per-attempt history.
type AttemptService struct {
	Students StudentStore
	Attempts AttemptStore
}

func NewAttemptService(students StudentStore, attempts AttemptStore) *AttemptService {
	return &AttemptService{Students: students, Attempts: attempts}
}

// Submit grades one attempt. The snapshot takes the latest result (score,
// selected answers, completion) while the attempt row preserves the full
// graded detail; attempts beyond the per-quiz limit are rejected.
func (s *AttemptService) Submit(userID uint, courseID string, sub AttemptSubmission) (*model.QuizAttempt, error) {
	if err := sub.validate(); err != nil {
		return nil, err
	}

	student, enrollment, err := findStudentEnrollment(s.Students, userID, courseID)
	if err != nil {
		return nil, err
	}

	count, err := s.Attempts.CountAttempts(userID, courseID, sub.QuizKey)
	if err != nil {
		return nil, err
	}
	if count >= model.MaxAttempts {
		return nil, util.ErrAttemptsExhausted
	}

	var attempt *model.QuizAttempt
	if sub.QuizKey == model.FinalTestKey {
		attempt, err = gradeFinalTest(enrollment, sub)
	} else {
		attempt, err = gradeQuiz(enrollment, sub)
	}
	if err != nil {
		return nil, err
	}

	attempt.UserID = userID
	attempt.CourseID = courseID
	attempt.AttemptNumber = int(count) + 1

	enrollment.Recompute()
	student.RecomputeGlobal()

	if err := s.Attempts.Create(attempt); err != nil {
		return nil, err
	}
	if err := s.Students.SaveEnrollment(student, enrollment); err != nil {
		return nil, err
	}

	monitoring.ProgressUpdateCounter.WithLabelValues("attempt").Inc()
	return attempt, nil
}

// gradeQuiz grades an embedded quiz and updates the content node's scoring
// state. A passed attempt also marks the content complete.
func gradeQuiz(enrollment *model.EnrolledCourse, sub AttemptSubmission) (*model.QuizAttempt, error) {
	mi, ti, ci, err := model.ParseContentKey(sub.QuizKey)
	if err != nil {
		return nil, fmt.Errorf("%w: quizKey: %v", util.ErrInvalidRequest, err)
	}
	if mi >= len(enrollment.Modules) ||
		ti >= len(enrollment.Modules[mi].Topics) ||
		ci >= len(enrollment.Modules[mi].Topics[ti].Contents) {
		return nil, util.ErrQuizNotFound
	}

	content := &enrollment.Modules[mi].Topics[ti].Contents[ci]
	if len(content.Questions) == 0 {
		return nil, util.ErrQuizNotFound
	}

	answers, correct := model.GradeQuestions(content.Questions, sub.selections())
	percent := model.AttemptPercent(correct, len(content.Questions))
	passed := percent >= model.PassPercent

	content.Score = percent
	if passed {
		enrollment.MarkContent([]string{sub.QuizKey})
	}

	return &model.QuizAttempt{
		QuizKey:        sub.QuizKey,
		QuizName:       content.Name,
		Score:          correct,
		TotalQuestions: len(content.Questions),
		Percent:        percent,
		Passed:         passed,
		Answers:        answers,
	}, nil
}

// gradeFinalTest grades the course-level final test.
func gradeFinalTest(enrollment *model.EnrolledCourse, sub AttemptSubmission) (*model.QuizAttempt, error) {
	ft := enrollment.FinalTest
	if ft == nil || len(ft.Questions) == 0 {
		return nil, util.ErrQuizNotFound
	}

	answers, correct := model.GradeQuestions(ft.Questions, sub.selections())
	percent := model.AttemptPercent(correct, len(ft.Questions))
	passed := percent >= model.PassPercent

	ft.Score = percent
	if passed {
		ft.Completed = true
	}

	return &model.QuizAttempt{
		QuizKey:        model.FinalTestKey,
		QuizName:       ft.Name,
		Score:          correct,
		TotalQuestions: len(ft.Questions),
		Percent:        percent,
		Passed:         passed,
		Answers:        answers,
	}, nil
}

// History lists the user's attempts for a course, oldest first per quiz.
func (s *AttemptService) History(userID uint, courseID string) ([]model.QuizAttempt, error) {
	if _, _, err := findStudentEnrollment(s.Students, userID, courseID); err != nil {
		return nil, err
	}
	return s.Attempts.ListByUserAndCourse(userID, courseID)
}

// ListAll is the admin view, optionally filtered to one course.
func (s *AttemptService) ListAll(courseID string) ([]model.QuizAttempt, error) {
	return s.Attempts.ListByCourse(courseID)
}
