package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/util"
)

func TestParseEnrollRequest(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"malformed", `{"courseId":`, true},
		{"missing courseId", `{"level":"Beginner"}`, true},
		{"ok", `{"courseId":"c-1"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseEnrollRequest(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEnrollRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && req.CourseID != "c-1" {
				t.Errorf("CourseID = %q, want c-1", req.CourseID)
			}
		})
	}
}

func snapshotCourse() *model.Course {
	return &model.Course{
		CourseID:     "c-1",
		Title:        "Intro to Go",
		Image:        "/lms/images/go.png",
		PreviewVideo: "/lms/videos/go.mp4",
		Type:         model.StudentCourse,
		Modules: []model.Module{
			{
				Title: "Basics",
				Topics: []model.Topic{
					{Contents: []model.Content{
						{Type: model.ContentVideo, Name: "hello", Duration: 1.5, Completed: true, Score: 80},
						{Type: model.ContentPDF, Name: "syntax", Duration: 0.5},
					}},
				},
			},
		},
	}
}

func TestBuildSnapshot_FallsBackToTemplate(t *testing.T) {
	course := snapshotCourse()
	req := &EnrollRequest{CourseID: "c-1"}

	e := buildSnapshot(course, req, nil)

	if len(e.Modules) != 1 || len(e.Modules[0].Topics) != 1 {
		t.Fatalf("snapshot did not copy the template curriculum: %+v", e.Modules)
	}
	if e.Title != "Intro to Go" || e.Image != "/lms/images/go.png" {
		t.Errorf("display fields not taken from course: %q %q", e.Title, e.Image)
	}

	// Snapshot is a copy: mutating it must not touch the template.
	e.Modules[0].Topics[0].Contents[0].Name = "mutated"
	if course.Modules[0].Topics[0].Contents[0].Name != "hello" {
		t.Error("snapshot shares memory with the catalog template")
	}
}

func TestBuildSnapshot_ResetsStateAndStampsTopicIDs(t *testing.T) {
	course := snapshotCourse()
	req := &EnrollRequest{
		CourseID: "c-1",
		Modules: []model.Module{
			{
				Completed: true,
				Topics: []model.Topic{
					{Completed: true, Contents: []model.Content{
						{Type: model.ContentVideo, Name: "v", Duration: 1, Completed: true, Score: 50,
							Questions: []model.Question{{Question: "q", SelectedAnswer: "a", IsCorrect: true}}},
					}},
					{Contents: []model.Content{
						{Type: model.ContentPDF, Name: "p", Duration: 0.25},
					}},
				},
			},
		},
	}

	e := buildSnapshot(course, req, nil)

	m := e.Modules[0]
	if m.Completed {
		t.Error("module completion flag survived the snapshot")
	}
	if m.Topics[0].Completed || m.Topics[0].Contents[0].Completed {
		t.Error("completion flags survived the snapshot")
	}
	if m.Topics[0].Contents[0].Score != 0 {
		t.Error("content score survived the snapshot")
	}
	q := m.Topics[0].Contents[0].Questions[0]
	if q.SelectedAnswer != "" || q.IsCorrect {
		t.Error("question answers survived the snapshot")
	}

	id0, id1 := m.Topics[0].TopicID, m.Topics[1].TopicID
	if id0 == "" || id1 == "" {
		t.Fatal("topic ids not generated")
	}
	if id0 == id1 {
		t.Error("topic ids not unique")
	}
}

func TestBuildSnapshot_DerivesTotals(t *testing.T) {
	course := snapshotCourse()
	req := &EnrollRequest{CourseID: "c-1"}

	e := buildSnapshot(course, req, nil)

	if e.TotalHours != 2 {
		t.Errorf("TotalHours = %v, want 2 derived from contents", e.TotalHours)
	}
	if e.WatchedHours != 0 || e.ProgressPercent != 0 || e.IsCompleted {
		t.Error("fresh snapshot must start with zero progress")
	}
	if e.CompletedContent == nil || len(e.CompletedContent) != 0 {
		t.Errorf("CompletedContent = %v, want empty non-nil", e.CompletedContent)
	}
	if e.StartedAt.IsZero() {
		t.Error("StartedAt not stamped")
	}
}

func TestBuildSnapshot_Defaults(t *testing.T) {
	course := snapshotCourse()
	req := &EnrollRequest{CourseID: "c-1"}

	e := buildSnapshot(course, req, nil)

	if e.Level != "Beginner" {
		t.Errorf("Level = %q, want Beginner default", e.Level)
	}
	if e.Tags == nil {
		t.Error("Tags must default to empty slice")
	}
	if e.FinalTest != nil {
		t.Error("FinalTest must stay nil when not submitted")
	}
}

func TestNormalizeFinalTest(t *testing.T) {
	if got := normalizeFinalTest(nil); got != nil {
		t.Errorf("normalizeFinalTest(nil) = %v, want nil", got)
	}

	ft := &model.FinalTest{
		Name: "Final Exam",
		Type: "whatever",
		Questions: []model.Question{
			{Question: "q1", SelectedAnswer: "b", IsCorrect: true},
		},
	}
	got := normalizeFinalTest(ft)
	if got.Type != "test" {
		t.Errorf("Type = %q, want forced to test", got.Type)
	}
	if got.Questions[0].SelectedAnswer != "" || got.Questions[0].IsCorrect {
		t.Error("question answers not reset")
	}
	if got.Completed || got.Score != 0 {
		t.Error("final test must start unscored")
	}

	empty := normalizeFinalTest(&model.FinalTest{Name: "No Questions"})
	if empty.Questions == nil {
		t.Error("Questions must be empty non-nil")
	}
}

func TestAttachFinalTest_BlankName(t *testing.T) {
	svc := &EnrollmentService{}

	for _, ft := range []*model.FinalTest{nil, {Name: "   "}} {
		_, err := svc.AttachFinalTest(1, "c-1", ft)
		if err == nil {
			t.Errorf("AttachFinalTest(%+v) expected error", ft)
			continue
		}
		if !errors.Is(err, util.ErrInvalidRequest) {
			t.Errorf("error %v does not wrap the invalid-request sentinel", err)
		}
	}
}

func TestUploadOne_SizeCap(t *testing.T) {
	svc := &EnrollmentService{MaxUploadBytes: 1 << 20}
	fh := &multipart.FileHeader{Filename: "big.mp4", Size: 2 << 20}

	// The cap is checked before the part is even opened, so a header with
	// no backing file is enough to exercise it.
	_, err := svc.uploadOne(context.Background(), fh, AssetRef{Field: "f1", Type: model.ContentVideo})
	if !errors.Is(err, util.ErrInvalidAsset) {
		t.Fatalf("uploadOne() error = %v, want ErrInvalidAsset", err)
	}
	if !strings.Contains(err.Error(), "upload limit") {
		t.Errorf("error %q does not mention the upload limit", err)
	}
}

func TestAllowedMimes(t *testing.T) {
	if allowedMimes(model.ContentTest) != nil {
		t.Error("test content must not require a MIME gate")
	}
	if len(allowedMimes(model.ContentVideo)) == 0 {
		t.Error("video content must carry a MIME allowlist")
	}
}
