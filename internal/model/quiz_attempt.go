package model

import "math"

// FinalTestKey addresses the course-level final test where content-position
// keys address embedded quizzes.
const FinalTestKey = "final"

const (
	// PassPercent is the score a graded attempt needs to count as passed.
	PassPercent = 80
	// MaxAttempts is how many attempts a student gets per quiz.
	MaxAttempts = 3
)

// AttemptAnswer is one graded answer inside an attempt, kept verbatim so
// the attempt history stays readable after the snapshot changes.
type AttemptAnswer struct {
	QuestionIndex  int    `json:"questionIndex"`
	Question       string `json:"question"`
	SelectedAnswer string `json:"selectedAnswer"`
	CorrectAnswer  string `json:"correctAnswer"`
	IsCorrect      bool   `json:"isCorrect"`
}

// QuizAttempt is one graded submission against a quiz or the final test.
// Attempts are append-only history; the latest one also updates the
// scoring state on the enrollment snapshot.
// swagger:model QuizAttempt
type QuizAttempt struct {
	BaseModel
	UserID   uint   `gorm:"index:idx_user_course_quiz;not null" json:"userId"`
	CourseID string `gorm:"index:idx_user_course_quiz;size:36;not null" json:"courseId"`
	// QuizKey is the content position key ("m-t-c") or FinalTestKey.
	QuizKey        string          `gorm:"index:idx_user_course_quiz;size:20;not null" json:"quizKey"`
	QuizName       string          `gorm:"size:255" json:"quizName"`
	AttemptNumber  int             `json:"attemptNumber"`
	Score          int             `json:"score"`
	TotalQuestions int             `json:"totalQuestions"`
	Percent        int             `json:"percent"`
	Passed         bool            `json:"passed"`
	Answers        []AttemptAnswer `gorm:"serializer:json" json:"answers"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// GradeQuestions scores the selected answers against the questions, writes
// the selection and correctness back onto the questions in place, and
// returns the per-answer detail with the correct count. Questions with no
// submitted answer grade as incorrect.
func GradeQuestions(questions []Question, selected map[int]string) ([]AttemptAnswer, int) {
	answers := make([]AttemptAnswer, len(questions))
	correct := 0
	for i := range questions {
		q := &questions[i]
		q.SelectedAnswer = selected[i]
		q.IsCorrect = q.SelectedAnswer != "" && q.SelectedAnswer == q.Answer
		if q.IsCorrect {
			correct++
		}
		answers[i] = AttemptAnswer{
			QuestionIndex:  i,
			Question:       q.Question,
			SelectedAnswer: q.SelectedAnswer,
			CorrectAnswer:  q.Answer,
			IsCorrect:      q.IsCorrect,
		}
	}
	return answers, correct
}

// AttemptPercent is the score percentage of an attempt. An empty quiz
// grades to zero rather than dividing by zero.
func AttemptPercent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
