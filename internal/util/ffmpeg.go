package util

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// MediaInfo holds the probed metadata of an uploaded media file.
type MediaInfo struct {
	DurationSeconds float64 `json:"duration"`
	Format          string  `json:"format"`
	Size            int64   `json:"size"`
}

// ProbeMedia reads the duration of a local media file with ffprobe. Used
// at enrollment time to derive content durations the client did not supply.
func ProbeMedia(path string) (*MediaInfo, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("media file not found: %w", err)
	}

	jsonOutput, err := ffmpeg.Probe(path)
	if err != nil {
		return nil, fmt.Errorf("probe media: %w", err)
	}

	var result struct {
		Format struct {
			Duration string `json:"duration"`
			Size     string `json:"size"`
			Format   string `json:"format_name"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(jsonOutput), &result); err != nil {
		return nil, fmt.Errorf("parse probe output: %w", err)
	}

	duration, err := strconv.ParseFloat(result.Format.Duration, 64)
	if err != nil {
		duration = 0
	}

	size, err := strconv.ParseInt(result.Format.Size, 10, 64)
	if err != nil {
		size = fileInfo.Size()
	}

	return &MediaInfo{
		DurationSeconds: duration,
		Format:          result.Format.Format,
		Size:            size,
	}, nil
}

// DurationHours converts a probed duration to the hour unit the progress
// engine works in.
func (m *MediaInfo) DurationHours() float64 {
	return m.DurationSeconds / 3600
}
