package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type ProgressColor string

const (
	ColorRed    ProgressColor = "red"
	ColorYellow ProgressColor = "yellow"
	ColorGreen  ProgressColor = "green"
)

type FinalTest struct {
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Questions []Question `json:"questions"`
	Completed bool       `json:"completed"`
	Score     int        `json:"score"`
}

// LastWatched is the resume checkpoint: the position of the content item
// the student last viewed.
type LastWatched struct {
	ModuleIndex  int `json:"moduleIndex"`
	TopicIndex   int `json:"topicIndex"`
	ContentIndex int `json:"contentIndex"`
}

// CourseStudent is the per-user progress container. Exactly one row per
// user, enforced by the unique index, owning every enrollment the user
// has.
// swagger:model CourseStudent
type CourseStudent struct {
	BaseModel
	UserID                uint             `gorm:"uniqueIndex;not null" json:"userId"`
	GlobalProgressPercent int              `gorm:"default:0" json:"globalProgressPercent"`
	GlobalProgressColor   ProgressColor    `gorm:"size:10;default:'red'" json:"globalProgressColor"`
	EnrolledCourses       []EnrolledCourse `gorm:"foreignKey:CourseStudentID" json:"enrolledCourses"`
}

func (CourseStudent) TableName() string {
	return "course_students"
}

// EnrolledCourse is a student's private snapshot of one course: the
// curriculum copied at enrollment time plus all mutable progress state.
// Catalog edits after enrollment do not reach it. The nested curriculum
// and the completion set are JSON columns; the row is always read and
// written whole.
// swagger:model EnrolledCourse
type EnrolledCourse struct {
	BaseModel
	CourseStudentID uint   `gorm:"uniqueIndex:idx_student_course;not null" json:"-"`
	CourseID        string `gorm:"uniqueIndex:idx_student_course;size:36;not null" json:"courseId"`

	// Display fields denormalized from the course at enrollment time.
	Title        string   `gorm:"size:255" json:"title"`
	Image        string   `gorm:"size:512" json:"image"`
	PreviewVideo string   `gorm:"size:512" json:"previewVideo,omitempty"`
	Badge        string   `gorm:"size:100" json:"badge"`
	Level        string   `gorm:"size:50" json:"level"`
	Tags         []string `gorm:"serializer:json" json:"tags"`

	TotalHours      float64 `gorm:"default:0" json:"totalHours"`
	WatchedHours    float64 `gorm:"default:0" json:"watchedHours"`
	ProgressPercent int     `gorm:"default:0" json:"progressPercent"`
	Progress        bool    `gorm:"default:false" json:"progress"`
	IsCompleted     bool    `gorm:"default:false" json:"isCompleted"`

	// Summary counters accumulated while resolving uploads at enrollment.
	Assignments int `gorm:"default:0" json:"assignments"`
	Assessments int `gorm:"default:0" json:"assessments"`

	Modules          []Module    `gorm:"serializer:json" json:"modules"`
	FinalTest        *FinalTest  `gorm:"serializer:json" json:"finalTest,omitempty"`
	CompletedContent []string    `gorm:"serializer:json" json:"completedContent"`
	LastWatched      LastWatched `gorm:"serializer:json" json:"lastWatched"`

	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (EnrolledCourse) TableName() string {
	return "enrolled_courses"
}

// ContentKey identifies a content node by its position in the snapshot.
func ContentKey(moduleIndex, topicIndex, contentIndex int) string {
	return fmt.Sprintf("%d-%d-%d", moduleIndex, topicIndex, contentIndex)
}

// ParseContentKey validates and splits a position key.
func ParseContentKey(key string) (moduleIndex, topicIndex, contentIndex int, err error) {
	parts := strings.Split(key, "-")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid content key %q", key)
	}
	idx := make([]int, 3)
	for i, p := range parts {
		v, convErr := strconv.Atoi(p)
		if convErr != nil || v < 0 {
			return 0, 0, 0, fmt.Errorf("invalid content key %q", key)
		}
		idx[i] = v
	}
	return idx[0], idx[1], idx[2], nil
}

// MediaURLs collects every uploaded-media URL held by the snapshot, for
// storage cleanup when the enrollment is removed.
func (e *EnrolledCourse) MediaURLs() []string {
	var urls []string
	for _, m := range e.Modules {
		for _, t := range m.Topics {
			for _, c := range t.Contents {
				if c.URL != "" {
					urls = append(urls, c.URL)
				}
			}
		}
	}
	return urls
}

// ResumeState is what a player needs to restore a session.
type ResumeState struct {
	CourseID               string      `json:"courseId"`
	WatchedHours           float64     `json:"watchedHours"`
	CompletedContent       []string    `json:"completedContent"`
	LastWatched            LastWatched `json:"lastWatched"`
	ProgressPercent        int         `json:"progressPercent"`
	ContentProgressPercent int         `json:"contentProgressPercent"`
	ModuleProgress         []int       `json:"moduleProgress"`
	IsCompleted            bool        `json:"isCompleted"`
}

// DefaultResume is returned when there is nothing to resume; "nothing
// watched yet" is not an error.
func DefaultResume(courseID string) ResumeState {
	return ResumeState{
		CourseID:         courseID,
		CompletedContent: []string{},
		ModuleProgress:   []int{},
	}
}

// Resume builds the checkpoint view of this enrollment.
func (e *EnrolledCourse) Resume() ResumeState {
	completed := e.CompletedContent
	if completed == nil {
		completed = []string{}
	}
	return ResumeState{
		CourseID:               e.CourseID,
		WatchedHours:           e.WatchedHours,
		CompletedContent:       completed,
		LastWatched:            e.LastWatched,
		ProgressPercent:        e.ProgressPercent,
		ContentProgressPercent: e.ContentProgressPercent(),
		ModuleProgress:         e.ModuleProgress(),
		IsCompleted:            e.IsCompleted,
	}
}
