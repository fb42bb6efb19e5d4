package convert

import "fmt"

// Dimensions is a bounding box in pixels.
type Dimensions struct {
	Width  int
	Height int
}

var imagePresets = map[string]Dimensions{
	"seo_optimal":  {Width: 1200, Height: 1200},
	"high_quality": {Width: 1920, Height: 1920},
	"social_media": {Width: 1080, Height: 1080},
	"thumbnail":    {Width: 600, Height: 600},
}

var videoPresets = map[string]Dimensions{
	"seo_optimal":  {Width: 1280, Height: 720},
	"high_quality": {Width: 1920, Height: 1080},
	"fast_loading": {Width: 854, Height: 480},
	"social_media": {Width: 1080, Height: 1080},
}

// ImageBounds resolves an image preset name to its bounding box. The
// "original" preset returns nil, meaning the source size is kept.
func ImageBounds(preset string) (*Dimensions, error) {
	if preset == "" || preset == "original" {
		return nil, nil
	}
	dims, ok := imagePresets[preset]
	if !ok {
		return nil, fmt.Errorf("unknown image preset %q", preset)
	}
	return &dims, nil
}

// VideoBounds resolves a video scale preset name to its bounding box.
// The "original" preset returns nil, meaning the source size is kept.
func VideoBounds(preset string) (*Dimensions, error) {
	if preset == "" || preset == "original" {
		return nil, nil
	}
	dims, ok := videoPresets[preset]
	if !ok {
		return nil, fmt.Errorf("unknown video scale preset %q", preset)
	}
	return &dims, nil
}

// ImagePresetNames returns the accepted image preset names.
func ImagePresetNames() []string {
	return []string{"seo_optimal", "high_quality", "social_media", "thumbnail", "original"}
}

// VideoPresetNames returns the accepted video scale preset names.
func VideoPresetNames() []string {
	return []string{"seo_optimal", "high_quality", "fast_loading", "social_media", "original"}
}
