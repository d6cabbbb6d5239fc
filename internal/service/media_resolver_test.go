package service

import (
	"errors"
	"strings"
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/util"
)

func TestParseAssetManifest_Empty(t *testing.T) {
	refs, err := ParseAssetManifest("")
	if err != nil {
		t.Fatalf("ParseAssetManifest(\"\") error = %v", err)
	}
	if refs != nil {
		t.Errorf("ParseAssetManifest(\"\") = %v, want nil", refs)
	}
}

func TestParseAssetManifest_Valid(t *testing.T) {
	raw := `[
		{"field":"f1","moduleIndex":0,"topicIndex":0,"contentIndex":0,"type":"video"},
		{"field":"f2","moduleIndex":0,"topicIndex":0,"contentIndex":1,"type":"pdf"}
	]`
	refs, err := ParseAssetManifest(raw)
	if err != nil {
		t.Fatalf("ParseAssetManifest() error = %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("got %d refs, want 2", len(refs))
	}
	if refs[0].Field != "f1" || refs[0].Type != model.ContentVideo {
		t.Errorf("first ref = %+v", refs[0])
	}
}

func TestParseAssetManifest_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantMsg string
	}{
		{
			"malformed json",
			`{"field":`,
			"malformed",
		},
		{
			"missing field",
			`[{"moduleIndex":0,"topicIndex":0,"contentIndex":0,"type":"video"}]`,
			"missing field",
		},
		{
			"duplicate field",
			`[{"field":"f","moduleIndex":0,"topicIndex":0,"contentIndex":0,"type":"video"},
			  {"field":"f","moduleIndex":0,"topicIndex":0,"contentIndex":1,"type":"video"}]`,
			"duplicate field",
		},
		{
			"negative index",
			`[{"field":"f","moduleIndex":-1,"topicIndex":0,"contentIndex":0,"type":"video"}]`,
			"negative position",
		},
		{
			"unknown type",
			`[{"field":"f","moduleIndex":0,"topicIndex":0,"contentIndex":0,"type":"hologram"}]`,
			"unknown content type",
		},
		{
			"duplicate position",
			`[{"field":"f1","moduleIndex":0,"topicIndex":0,"contentIndex":0,"type":"video"},
			  {"field":"f2","moduleIndex":0,"topicIndex":0,"contentIndex":0,"type":"pdf"}]`,
			"duplicate position",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAssetManifest(tt.raw)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func resolverModules() []model.Module {
	return []model.Module{
		{
			Title: "M1",
			Topics: []model.Topic{
				{TopicID: "t1", Contents: []model.Content{
					{Type: model.ContentVideo, Name: "intro", Duration: 0},
					{Type: model.ContentPDF, Name: "notes", URL: "https://cdn.example.com/notes.pdf", Duration: 0.5},
					{Type: model.ContentTest, Name: "quiz", Duration: 0.25,
						Questions: []model.Question{{Question: "q1"}}},
				}},
			},
		},
	}
}

func TestValidateAssetRefs(t *testing.T) {
	modules := resolverModules()

	refs := []AssetRef{
		{Field: "f1", ModuleIndex: 0, TopicIndex: 0, ContentIndex: 0, Type: model.ContentVideo},
		{Field: "f2", ModuleIndex: 0, TopicIndex: 0, ContentIndex: 1, Type: model.ContentPDF},
	}
	if err := ValidateAssetRefs(modules, refs); err != nil {
		t.Errorf("ValidateAssetRefs() error = %v, want nil for matching refs", err)
	}

	if err := ValidateAssetRefs(modules, nil); err != nil {
		t.Errorf("ValidateAssetRefs() with no refs error = %v", err)
	}
}

// Manifest entries that resolution would silently drop must be rejected
// up front, before any object reaches the store.
func TestValidateAssetRefs_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		modules []model.Module
		ref     AssetRef
		wantMsg string
	}{
		{
			"module index outside curriculum",
			resolverModules(),
			AssetRef{Field: "f1", ModuleIndex: 5, TopicIndex: 0, ContentIndex: 0, Type: model.ContentVideo},
			"outside the submitted curriculum",
		},
		{
			"content index outside topic",
			resolverModules(),
			AssetRef{Field: "f1", ModuleIndex: 0, TopicIndex: 0, ContentIndex: 9, Type: model.ContentVideo},
			"outside the submitted curriculum",
		},
		{
			"declared type does not match the node",
			resolverModules(),
			AssetRef{Field: "f1", ModuleIndex: 0, TopicIndex: 0, ContentIndex: 1, Type: model.ContentVideo},
			"does not match content type",
		},
		{
			"no curriculum submitted",
			nil,
			AssetRef{Field: "f1", ModuleIndex: 0, TopicIndex: 0, ContentIndex: 0, Type: model.ContentVideo},
			"outside the submitted curriculum",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAssetRefs(tt.modules, []AssetRef{tt.ref})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, util.ErrInvalidAsset) {
				t.Errorf("error %v does not wrap the invalid-asset sentinel", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestResolveCurriculum_AttachesByPositionAndType(t *testing.T) {
	modules := resolverModules()
	assets := []UploadedAsset{
		{
			Ref:           AssetRef{Field: "f1", ModuleIndex: 0, TopicIndex: 0, ContentIndex: 0, Type: model.ContentVideo},
			URL:           "/lms/modules/videos/intro.mp4",
			FileName:      "intro.mp4",
			DurationHours: 1.5,
		},
	}

	stats := ResolveCurriculum(modules, assets)

	got := modules[0].Topics[0].Contents[0]
	if got.URL != "/lms/modules/videos/intro.mp4" {
		t.Errorf("URL = %q, want uploaded asset URL", got.URL)
	}
	if got.FileName != "intro.mp4" {
		t.Errorf("FileName = %q, want intro.mp4", got.FileName)
	}
	if got.Duration != 1.5 {
		t.Errorf("Duration = %v, want 1.5 (filled from probe)", got.Duration)
	}

	if stats.TotalHours != 2.25 {
		t.Errorf("TotalHours = %v, want 2.25", stats.TotalHours)
	}
	if stats.Assessments != 1 {
		t.Errorf("Assessments = %d, want 1", stats.Assessments)
	}
	if stats.Assignments != 1 {
		t.Errorf("Assignments = %d, want 1", stats.Assignments)
	}
}

func TestResolveCurriculum_TypeMismatchKeepsInline(t *testing.T) {
	modules := resolverModules()
	assets := []UploadedAsset{
		{
			// Position of the pdf node, declared as video: must not attach.
			Ref: AssetRef{Field: "f1", ModuleIndex: 0, TopicIndex: 0, ContentIndex: 1, Type: model.ContentVideo},
			URL: "/lms/modules/videos/wrong.mp4",
		},
	}

	ResolveCurriculum(modules, assets)

	got := modules[0].Topics[0].Contents[1]
	if got.URL != "https://cdn.example.com/notes.pdf" {
		t.Errorf("URL = %q, want the inline URL preserved", got.URL)
	}
}

func TestResolveCurriculum_InlineDurationWins(t *testing.T) {
	modules := resolverModules()
	modules[0].Topics[0].Contents[0].Duration = 2
	assets := []UploadedAsset{
		{
			Ref:           AssetRef{Field: "f1", ModuleIndex: 0, TopicIndex: 0, ContentIndex: 0, Type: model.ContentVideo},
			URL:           "/lms/modules/videos/intro.mp4",
			DurationHours: 1.5,
		},
	}

	ResolveCurriculum(modules, assets)

	if got := modules[0].Topics[0].Contents[0].Duration; got != 2 {
		t.Errorf("Duration = %v, want the author-supplied 2", got)
	}
}

func TestResolveCurriculum_NoAssets(t *testing.T) {
	modules := resolverModules()
	stats := ResolveCurriculum(modules, nil)
	if stats.TotalHours != 0.75 {
		t.Errorf("TotalHours = %v, want 0.75 from inline durations", stats.TotalHours)
	}
}

func TestAssetFolder(t *testing.T) {
	tests := []struct {
		in   model.ContentType
		want string
	}{
		{model.ContentVideo, "modules/videos"},
		{model.ContentAudio, "modules/audios"},
		{model.ContentImage, "modules/images"},
		{model.ContentPDF, "modules/pdfs"},
		{model.ContentTest, "modules/others"},
	}
	for _, tt := range tests {
		if got := assetFolder(tt.in); got != tt.want {
			t.Errorf("assetFolder(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
