package convert

import (
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// EXIFInfo carries the camera metadata read from an image header.
type EXIFInfo struct {
	CapturedAt  time.Time
	Orientation int
	CameraMake  string
	CameraModel string
}

// IsZero reports whether any EXIF field was found.
func (e EXIFInfo) IsZero() bool {
	return e.CapturedAt.IsZero() && e.Orientation == 0 && e.CameraMake == "" && e.CameraModel == ""
}

// ProbeEXIF reads EXIF headers from an image file. Media without EXIF
// data is common, so a failed decode returns a zero value and no
// error; only an unreadable file is reported.
func ProbeEXIF(path string) (EXIFInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return EXIFInfo{}, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil || x == nil {
		return EXIFInfo{}, nil
	}

	var info EXIFInfo
	if ts, err := x.DateTime(); err == nil {
		info.CapturedAt = ts
	}
	if tag, err := x.Get(exif.Orientation); err == nil {
		if v, err := tag.Int(0); err == nil {
			info.Orientation = v
		}
	}
	if tag, err := x.Get(exif.Make); err == nil {
		if v, err := tag.StringVal(); err == nil {
			info.CameraMake = strings.TrimSpace(v)
		}
	}
	if tag, err := x.Get(exif.Model); err == nil {
		if v, err := tag.StringVal(); err == nil {
			info.CameraModel = strings.TrimSpace(v)
		}
	}
	return info, nil
}
