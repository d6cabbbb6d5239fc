package util

import "errors"

var (
	ErrCourseNotFound     = errors.New("course not found or not a Student-type course")
	ErrStudentNotFound    = errors.New("student record not found")
	ErrEnrollmentNotFound = errors.New("course not found in enrolled courses")
	ErrAlreadyEnrolled    = errors.New("student is already enrolled in this course")
	ErrDuplicateCourse    = errors.New("a course with this title and type already exists")
	ErrInvalidAsset       = errors.New("invalid asset upload")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrQuizNotFound       = errors.New("no quiz at this position")
	ErrAttemptsExhausted  = errors.New("maximum attempts reached")
	ErrOTPNotFound        = errors.New("no OTP found for this phone")
	ErrOTPMismatch        = errors.New("invalid OTP")
	ErrUserDisabled       = errors.New("user account is disabled")
)
