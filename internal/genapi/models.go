package genapi

import (
	"fmt"
	"strings"
)

// VideoModel describes a text-to-video model offered by the backend.
type VideoModel struct {
	ID          string
	Name        string
	Description string
	MaxDuration int
	Resolutions []string
}

var videoModels = []VideoModel{
	{
		ID:          "zeroscope",
		Name:        "Zeroscope v2 - High Quality",
		Description: "High quality text-to-video model, good for general content",
		MaxDuration: 6,
		Resolutions: []string{"576x320", "1024x576"},
	},
	{
		ID:          "modelscope",
		Name:        "ModelScope - Fast Generation",
		Description: "Fast text-to-video generation with good quality",
		MaxDuration: 5,
		Resolutions: []string{"256x256", "512x512"},
	},
}

// VideoModels returns the known video models in display order.
func VideoModels() []VideoModel {
	out := make([]VideoModel, len(videoModels))
	copy(out, videoModels)
	return out
}

// LookupVideoModel finds a model by id.
func LookupVideoModel(id string) (VideoModel, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, m := range videoModels {
		if m.ID == id {
			return m, true
		}
	}
	return VideoModel{}, false
}

// ModelDisplayName maps a model id to its display name, falling back to the id.
func ModelDisplayName(id string) string {
	if m, ok := LookupVideoModel(id); ok {
		return m.Name
	}
	return id
}

// EstimateSeconds approximates generation time for a video request.
func EstimateSeconds(duration int, resolution, model string) int {
	seconds := 120 + duration*30
	switch {
	case strings.Contains(resolution, "1024"):
		seconds += 120
	case strings.Contains(resolution, "576"):
		seconds += 60
	}
	if strings.EqualFold(strings.TrimSpace(model), "zeroscope") {
		seconds += 60
	}
	return seconds
}

// EstimateRange renders the estimate as "~min-max minutes".
func EstimateRange(duration int, resolution, model string) string {
	base := EstimateSeconds(duration, resolution, model)
	minMinutes := base / 60
	maxMinutes := (base * 3 / 2) / 60
	return fmt.Sprintf("~%d-%d minutes", minMinutes, maxMinutes)
}

// ParseSize splits a "WxH" string.
func ParseSize(size string) (int, int, error) {
	var w, h int
	if _, err := fmt.Sscanf(strings.TrimSpace(size), "%dx%d", &w, &h); err != nil {
		return 0, 0, fmt.Errorf("parse size %q: %w", size, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("parse size %q: dimensions must be positive", size)
	}
	return w, h, nil
}
