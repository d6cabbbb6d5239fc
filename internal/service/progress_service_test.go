package service

import (
	"errors"
	"strings"
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

func TestResumeUpdateRequest_Validate(t *testing.T) {
	hours := 1.5

	tests := []struct {
		name    string
		req     ResumeUpdateRequest
		wantMsg string
	}{
		{"empty", ResumeUpdateRequest{}, ""},
		{"hours only", ResumeUpdateRequest{WatchedHours: &hours}, ""},
		{
			"valid checkpoint",
			ResumeUpdateRequest{LastWatched: &model.LastWatched{ModuleIndex: 1, TopicIndex: 0, ContentIndex: 2}},
			"",
		},
		{
			"negative checkpoint",
			ResumeUpdateRequest{LastWatched: &model.LastWatched{ModuleIndex: -1}},
			"lastWatched",
		},
		{
			"valid keys",
			ResumeUpdateRequest{CompletedContent: []string{"0-0-0", "1-2-3"}},
			"",
		},
		{
			"bad key",
			ResumeUpdateRequest{CompletedContent: []string{"0-0-0", "nope"}},
			"completedContent",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.validate()
			if tt.wantMsg == "" {
				if err != nil {
					t.Errorf("validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("validate() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
			if !errors.Is(err, util.ErrInvalidRequest) {
				t.Errorf("error %v does not wrap the invalid-request sentinel", err)
			}
		})
	}
}

func TestGetResume_NothingToResume(t *testing.T) {
	tests := []struct {
		name  string
		store *fakeStudentStore
	}{
		{"no student record", &fakeStudentStore{findErr: gorm.ErrRecordNotFound}},
		{"not enrolled", &fakeStudentStore{student: &model.CourseStudent{UserID: 7}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &ProgressService{Students: tt.store}

			resume, err := svc.GetResume(7, "c-1")
			if err != nil {
				t.Fatalf("GetResume() error = %v", err)
			}
			if resume.CourseID != "c-1" || resume.WatchedHours != 0 {
				t.Errorf("resume = %+v, want the zero resume for c-1", resume)
			}
			if resume.CompletedContent == nil || resume.ModuleProgress == nil {
				t.Error("zero resume must carry empty slices, not nulls")
			}
		})
	}
}

func TestGetResume_StoreErrorPropagates(t *testing.T) {
	dbErr := errors.New("connection refused")
	svc := &ProgressService{Students: &fakeStudentStore{findErr: dbErr}}

	_, err := svc.GetResume(7, "c-1")
	if !errors.Is(err, dbErr) {
		t.Fatalf("GetResume() error = %v, want the store error surfaced", err)
	}
}

func TestGetResume_EnrolledCourse(t *testing.T) {
	store := &fakeStudentStore{student: quizStudent()}
	store.student.EnrolledCourses[0].WatchedHours = 1.5
	svc := &ProgressService{Students: store}

	resume, err := svc.GetResume(7, "c-1")
	if err != nil {
		t.Fatalf("GetResume() error = %v", err)
	}
	if resume.WatchedHours != 1.5 {
		t.Errorf("WatchedHours = %v, want 1.5", resume.WatchedHours)
	}
}
