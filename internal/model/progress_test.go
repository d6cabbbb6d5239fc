package model

import (
	"testing"
)

func twoModuleCourse() EnrolledCourse {
	return EnrolledCourse{
		CourseID: "c-1",
		Modules: []Module{
			{
				Title: "Module A",
				Topics: []Topic{
					{TopicID: "t-1", Contents: []Content{
						{Type: ContentVideo, Name: "a1", Duration: 1},
						{Type: ContentVideo, Name: "a2", Duration: 1},
					}},
				},
			},
			{
				Title: "Module B",
				Topics: []Topic{
					{TopicID: "t-2", Contents: []Content{
						{Type: ContentPDF, Name: "b1", Duration: 1},
						{Type: ContentTest, Name: "b2", Duration: 1},
					}},
				},
			},
		},
	}
}

func TestTimePercent_Bounds(t *testing.T) {
	tests := []struct {
		name    string
		watched float64
		total   float64
		want    int
	}{
		{"zero total", 5, 0, 0},
		{"zero watched", 0, 10, 0},
		{"half", 5, 10, 50},
		{"full", 10, 10, 100},
		{"over full clamps", 15, 10, 100},
		{"rounds", 1, 3, 33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TimePercent(tt.watched, tt.total); got != tt.want {
				t.Errorf("TimePercent(%v, %v) = %d, want %d", tt.watched, tt.total, got, tt.want)
			}
		})
	}
}

func TestRecompute_WatchedScenario(t *testing.T) {
	e := EnrolledCourse{TotalHours: 10}

	e.AddWatched(5)
	e.Recompute()
	if e.ProgressPercent != 50 {
		t.Errorf("ProgressPercent = %d, want 50", e.ProgressPercent)
	}
	if e.IsCompleted {
		t.Error("IsCompleted = true at 50%, want false")
	}
	if !e.Progress {
		t.Error("Progress = false with watched time, want true")
	}

	e.AddWatched(10)
	e.Recompute()
	if e.ProgressPercent != 100 {
		t.Errorf("ProgressPercent = %d, want 100", e.ProgressPercent)
	}
	if !e.IsCompleted {
		t.Error("IsCompleted = false after watching everything, want true")
	}
	if e.CompletedAt == nil {
		t.Error("CompletedAt not set on completion")
	}
}

func TestRecompute_ZeroTotalNeverCompletes(t *testing.T) {
	e := EnrolledCourse{TotalHours: 0}
	e.AddWatched(3)
	e.Recompute()

	if e.ProgressPercent != 0 {
		t.Errorf("ProgressPercent = %d, want 0 when totalHours is 0", e.ProgressPercent)
	}
	if e.IsCompleted {
		t.Error("IsCompleted = true with totalHours 0, want false")
	}
}

func TestRecompute_CompletedImpliesFullPercent(t *testing.T) {
	e := EnrolledCourse{TotalHours: 2}
	e.AddWatched(2)
	e.Recompute()

	if e.IsCompleted && e.ProgressPercent != 100 {
		t.Errorf("completed course has ProgressPercent %d, want 100", e.ProgressPercent)
	}
}

func TestAddWatched_IgnoresNegative(t *testing.T) {
	e := EnrolledCourse{TotalHours: 10, WatchedHours: 4}
	e.AddWatched(-2)
	if e.WatchedHours != 4 {
		t.Errorf("WatchedHours = %v after negative report, want 4", e.WatchedHours)
	}
}

func TestColorFor_Boundaries(t *testing.T) {
	tests := []struct {
		percent int
		want    ProgressColor
	}{
		{0, ColorRed},
		{60, ColorRed},
		{61, ColorYellow},
		{85, ColorYellow},
		{86, ColorGreen},
		{100, ColorGreen},
	}
	for _, tt := range tests {
		if got := ColorFor(tt.percent); got != tt.want {
			t.Errorf("ColorFor(%d) = %s, want %s", tt.percent, got, tt.want)
		}
	}
}

func TestMarkContent_ModuleProgressScenario(t *testing.T) {
	e := twoModuleCourse()

	e.MarkContent([]string{"0-0-0"})

	mp := e.ModuleProgress()
	if len(mp) != 2 {
		t.Fatalf("ModuleProgress length = %d, want 2", len(mp))
	}
	if mp[0] != 50 {
		t.Errorf("module A progress = %d, want 50", mp[0])
	}
	if mp[1] != 0 {
		t.Errorf("module B progress = %d, want 0", mp[1])
	}
	if got := e.ContentProgressPercent(); got != 25 {
		t.Errorf("ContentProgressPercent = %d, want 25", got)
	}
}

func TestMarkContent_Idempotent(t *testing.T) {
	e := twoModuleCourse()

	e.MarkContent([]string{"0-0-0"})
	e.MarkContent([]string{"0-0-0"})

	if len(e.CompletedContent) != 1 {
		t.Errorf("CompletedContent length = %d after re-marking, want 1", len(e.CompletedContent))
	}
}

func TestMarkContent_CompletionFlagsCascade(t *testing.T) {
	e := twoModuleCourse()

	e.MarkContent([]string{"0-0-0", "0-0-1"})

	if !e.Modules[0].Topics[0].Completed {
		t.Error("topic with all contents complete not flagged completed")
	}
	if !e.Modules[0].Completed {
		t.Error("module with all topics complete not flagged completed")
	}
	if e.Modules[1].Completed {
		t.Error("untouched module flagged completed")
	}
}

func TestRollup_Deterministic(t *testing.T) {
	courses := []EnrolledCourse{
		{TotalHours: 10, WatchedHours: 10},
		{TotalHours: 10, WatchedHours: 4},
	}

	p1, c1 := Rollup(courses)
	p2, c2 := Rollup(courses)
	if p1 != p2 || c1 != c2 {
		t.Errorf("Rollup not deterministic: (%d,%s) vs (%d,%s)", p1, c1, p2, c2)
	}

	reversed := []EnrolledCourse{courses[1], courses[0]}
	p3, c3 := Rollup(reversed)
	if p1 != p3 || c1 != c3 {
		t.Errorf("Rollup order-dependent: (%d,%s) vs (%d,%s)", p1, c1, p3, c3)
	}

	if p1 != 70 {
		t.Errorf("Rollup percent = %d, want 70 (14 of 20 hours)", p1)
	}
	if c1 != ColorYellow {
		t.Errorf("Rollup color = %s, want yellow", c1)
	}
}

func TestRollup_Empty(t *testing.T) {
	percent, color := Rollup(nil)
	if percent != 0 {
		t.Errorf("Rollup(nil) percent = %d, want 0", percent)
	}
	if color != ColorRed {
		t.Errorf("Rollup(nil) color = %s, want red", color)
	}
}

func TestRollup_ExcludesDeletedCourse(t *testing.T) {
	courses := []EnrolledCourse{
		{TotalHours: 10, WatchedHours: 10},
		{TotalHours: 90, WatchedHours: 0},
	}
	before, _ := Rollup(courses)
	if before != 10 {
		t.Fatalf("percent with both courses = %d, want 10", before)
	}

	after, color := Rollup(courses[:1])
	if after != 100 {
		t.Errorf("percent after removing second course = %d, want 100", after)
	}
	if color != ColorGreen {
		t.Errorf("color after removal = %s, want green", color)
	}
}

func TestParseContentKey(t *testing.T) {
	m, tp, c, err := ParseContentKey("2-0-5")
	if err != nil {
		t.Fatalf("ParseContentKey() error = %v", err)
	}
	if m != 2 || tp != 0 || c != 5 {
		t.Errorf("ParseContentKey() = (%d,%d,%d), want (2,0,5)", m, tp, c)
	}

	for _, bad := range []string{"", "1-2", "a-b-c", "1-2-3-4 extra"} {
		if _, _, _, err := ParseContentKey(bad); err == nil {
			t.Errorf("ParseContentKey(%q) expected error", bad)
		}
	}
}

func TestMediaURLs(t *testing.T) {
	e := twoModuleCourse()
	e.Modules[0].Topics[0].Contents[0].URL = "/bucket/a"
	e.Modules[1].Topics[0].Contents[1].URL = "/bucket/b"

	urls := e.MediaURLs()
	if len(urls) != 2 {
		t.Fatalf("MediaURLs length = %d, want 2", len(urls))
	}
}

func TestResume_Defaults(t *testing.T) {
	r := DefaultResume("c-9")
	if r.CourseID != "c-9" {
		t.Errorf("CourseID = %q, want c-9", r.CourseID)
	}
	if r.CompletedContent == nil || r.ModuleProgress == nil {
		t.Error("default resume must carry empty, non-nil slices")
	}
	if r.WatchedHours != 0 || r.ProgressPercent != 0 || r.IsCompleted {
		t.Error("default resume must be all-zero")
	}
}
