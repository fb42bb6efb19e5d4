package convert

import (
	"fmt"
	"math"
	"strconv"
)

// webp compression effort, matching the encoder's middle setting.
const webpCompressionLevel = "4"

// ImageOptions selects the target format and size for an image
// conversion.
type ImageOptions struct {
	Format  string // webp, jpg, or png
	Quality int    // 1-100, ignored for png
	Preset  string // bounding box name, see ImagePresetNames
}

// BuildImageArgs returns the ffmpeg argument list that converts src
// into dst. srcW and srcH are the probed source dimensions; pass
// zeroes when unknown and scaling is skipped. jpg output flattens any
// alpha channel onto a white canvas so transparent product shots keep
// a clean background.
func BuildImageArgs(src, dst string, srcW, srcH int, opts ImageOptions) ([]string, error) {
	bounds, err := ImageBounds(opts.Preset)
	if err != nil {
		return nil, err
	}
	quality := clampQuality(opts.Quality)

	var scaleW, scaleH int
	scaled := false
	if bounds != nil {
		scaleW, scaleH, scaled = FitWithin(srcW, srcH, *bounds)
	}

	args := []string{"-y", "-i", guardPath(src)}
	switch opts.Format {
	case "webp":
		if scaled {
			args = append(args, "-vf", scaleFilter(scaleW, scaleH))
		}
		args = append(args,
			"-vframes", "1",
			"-c:v", "libwebp",
			"-q:v", strconv.Itoa(quality),
			"-compression_level", webpCompressionLevel,
		)
	case "jpg":
		args = append(args,
			"-filter_complex", whiteCanvasChain(scaleW, scaleH, scaled),
			"-vframes", "1",
			"-c:v", "mjpeg",
			"-q:v", strconv.Itoa(jpegQScale(quality)),
			"-pix_fmt", "yuvj420p",
		)
	case "png":
		if scaled {
			args = append(args, "-vf", scaleFilter(scaleW, scaleH))
		}
		args = append(args, "-vframes", "1", "-c:v", "png")
	default:
		return nil, fmt.Errorf("unsupported image format %q", opts.Format)
	}
	args = append(args, guardPath(dst))
	return args, nil
}

// whiteCanvasChain composites the source over a white background sized
// to match it. scale2ref keeps the canvas in step with the image even
// when source dimensions were not probed.
func whiteCanvasChain(w, h int, scaled bool) string {
	if scaled {
		return fmt.Sprintf(
			"[0:v]%s[img];color=white[bg];[bg][img]scale2ref[bg2][img2];[bg2][img2]overlay=format=auto:shortest=1",
			scaleFilter(w, h),
		)
	}
	return "color=white[bg];[bg][0:v]scale2ref[bg2][img2];[bg2][img2]overlay=format=auto:shortest=1"
}

func scaleFilter(w, h int) string {
	return fmt.Sprintf("scale=%d:%d", w, h)
}

// jpegQScale maps a 1-100 quality to the mjpeg encoder's inverted
// 2 (best) to 31 (worst) qscale range.
func jpegQScale(quality int) int {
	q := int(math.Round(31 - float64(quality)*29.0/100.0))
	if q < 2 {
		q = 2
	}
	if q > 31 {
		q = 31
	}
	return q
}

func clampQuality(quality int) int {
	if quality < 1 {
		return 1
	}
	if quality > 100 {
		return 100
	}
	return quality
}
