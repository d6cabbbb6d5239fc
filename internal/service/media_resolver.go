package service

import (
	"encoding/json"
	"fmt"

	"lms_backend/internal/model"
	"lms_backend/internal/util"
)

// AssetRef addresses one uploaded file to a content node. The position is
// explicit structured metadata; the multipart field name is only a handle
// to the binary part.
type AssetRef struct {
	Field        string            `json:"field"`
	ModuleIndex  int               `json:"moduleIndex"`
	TopicIndex   int               `json:"topicIndex"`
	ContentIndex int               `json:"contentIndex"`
	Type         model.ContentType `json:"type"`
}

func (r AssetRef) positionKey() string {
	return model.ContentKey(r.ModuleIndex, r.TopicIndex, r.ContentIndex)
}

// ParseAssetManifest validates the manifest JSON at the request boundary.
// An empty payload is a valid empty manifest; anything malformed rejects
// the whole operation.
func ParseAssetManifest(raw string) ([]AssetRef, error) {
	if raw == "" {
		return nil, nil
	}

	var refs []AssetRef
	if err := json.Unmarshal([]byte(raw), &refs); err != nil {
		return nil, fmt.Errorf("malformed asset manifest: %w", err)
	}

	fields := make(map[string]bool, len(refs))
	positions := make(map[string]bool, len(refs))
	for i, ref := range refs {
		if ref.Field == "" {
			return nil, fmt.Errorf("asset manifest entry %d: missing field name", i)
		}
		if fields[ref.Field] {
			return nil, fmt.Errorf("asset manifest entry %d: duplicate field %q", i, ref.Field)
		}
		fields[ref.Field] = true

		if ref.ModuleIndex < 0 || ref.TopicIndex < 0 || ref.ContentIndex < 0 {
			return nil, fmt.Errorf("asset manifest entry %d: negative position index", i)
		}
		if !ref.Type.Valid() {
			return nil, fmt.Errorf("asset manifest entry %d: unknown content type %q", i, ref.Type)
		}

		pos := ref.positionKey()
		if positions[pos] {
			return nil, fmt.Errorf("asset manifest entry %d: duplicate position %s", i, pos)
		}
		positions[pos] = true
	}

	return refs, nil
}

// ValidateAssetRefs checks every manifest entry against the curriculum it
// addresses, before anything is uploaded: the position must exist in the
// submitted modules and the node there must carry the declared type. A
// manifest with no curriculum to land in fails the same way, so no object
// is ever uploaded that resolution would then drop.
func ValidateAssetRefs(modules []model.Module, refs []AssetRef) error {
	for i, ref := range refs {
		if ref.ModuleIndex >= len(modules) ||
			ref.TopicIndex >= len(modules[ref.ModuleIndex].Topics) ||
			ref.ContentIndex >= len(modules[ref.ModuleIndex].Topics[ref.TopicIndex].Contents) {
			return fmt.Errorf("%w: asset manifest entry %d: position %s is outside the submitted curriculum",
				util.ErrInvalidAsset, i, ref.positionKey())
		}
		node := modules[ref.ModuleIndex].Topics[ref.TopicIndex].Contents[ref.ContentIndex]
		if node.Type != ref.Type {
			return fmt.Errorf("%w: asset manifest entry %d: declared type %q does not match content type %q at %s",
				util.ErrInvalidAsset, i, ref.Type, node.Type, ref.positionKey())
		}
	}
	return nil
}

// UploadedAsset is one file that made it to the object store.
type UploadedAsset struct {
	Ref           AssetRef
	URL           string
	FileName      string
	DurationHours float64
}

// CurriculumStats are the counters accumulated while walking the
// curriculum during resolution.
type CurriculumStats struct {
	TotalHours  float64
	Assessments int
	Assignments int
}

// ResolveCurriculum attaches uploaded-asset URLs to the content nodes they
// address, in place, and accumulates the summary counters.
//
// A node takes an asset only when both position and declared type match;
// the asset's URL then overrides any inline URL the payload carried. Nodes
// without a matching asset keep whatever URL they came with. A node with
// no type never matches anything, which is tolerated: it simply stays
// unresolved.
func ResolveCurriculum(modules []model.Module, assets []UploadedAsset) CurriculumStats {
	byPosition := make(map[string]UploadedAsset, len(assets))
	for _, a := range assets {
		byPosition[a.Ref.positionKey()] = a
	}

	var stats CurriculumStats
	for mi := range modules {
		for ti := range modules[mi].Topics {
			for ci := range modules[mi].Topics[ti].Contents {
				content := &modules[mi].Topics[ti].Contents[ci]

				if asset, ok := byPosition[model.ContentKey(mi, ti, ci)]; ok && asset.Ref.Type == content.Type {
					content.URL = asset.URL
					content.FileName = asset.FileName
					if content.Duration == 0 && asset.DurationHours > 0 {
						content.Duration = asset.DurationHours
					}
				}

				stats.TotalHours += content.Duration
				if content.Type == model.ContentTest {
					stats.Assessments++
				}
				if len(content.Questions) > 0 {
					stats.Assignments++
				}
			}
		}
	}
	return stats
}

// assetFolder maps a content type to the object-store folder its uploads
// land in.
func assetFolder(t model.ContentType) string {
	switch t {
	case model.ContentVideo:
		return "modules/videos"
	case model.ContentAudio:
		return "modules/audios"
	case model.ContentImage:
		return "modules/images"
	case model.ContentPDF:
		return "modules/pdfs"
	default:
		return "modules/others"
	}
}
