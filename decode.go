package main

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"os"
	"time"

	exif "github.com/dsoprea/go-exif/v3"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Orientation describes the EXIF orientation of a frame. The decoder stores
// pixels exactly as they appear in the file; the renderer applies the
// rotation and flips at draw time.
type Orientation int

const (
	Deg0 Orientation = iota
	Deg0HorFlip
	Deg180
	Deg180HorFlip
	Deg90VerFlip
	Deg270
	Deg270VerFlip
	Deg90
)

// decodedFrame is one fully composited RGBA frame plus its playback delay.
// Still images decode to a single frame with zero delay.
type decodedFrame struct {
	Pixels      *image.NRGBA
	Delay       time.Duration
	Orientation Orientation
}

// animation frames with no delay are treated as 100ms, matching common
// browser behavior for broken GIFs.
const zeroDelayFallback = 100 * time.Millisecond

func readImageBytes(item ImagePath) ([]byte, error) {
	if item.ArchivePath != "" {
		return readArchiveEntry(item.ArchivePath, item.EntryPath)
	}
	return os.ReadFile(item.Path)
}

// decodeFrames decodes an image file (or archive entry) into its frames.
func decodeFrames(item ImagePath) ([]decodedFrame, error) {
	data, err := readImageBytes(item)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", item.Path, err)
	}

	orientation := detectOrientation(data)

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", item.Path, err)
	}

	if format == "gif" {
		frames, err := decodeGIFFrames(data, orientation)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", item.Path, err)
		}
		return frames, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", item.Path, err)
	}
	return []decodedFrame{{Pixels: toNRGBA(img), Orientation: orientation}}, nil
}

// decodeGIFFrames composites each GIF frame onto the running canvas so that
// frames using partial updates or transparency still produce complete images.
func decodeGIFFrames(data []byte, orientation Orientation) ([]decodedFrame, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("gif has no frames")
	}

	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		bounds = g.Image[0].Bounds()
	}
	canvas := image.NewNRGBA(bounds)

	frames := make([]decodedFrame, 0, len(g.Image))
	for i, src := range g.Image {
		var saved *image.NRGBA
		if i < len(g.Disposal) && g.Disposal[i] == gif.DisposalPrevious {
			saved = image.NewNRGBA(bounds)
			copy(saved.Pix, canvas.Pix)
		}

		draw.Draw(canvas, src.Bounds(), src, src.Bounds().Min, draw.Over)

		copied := image.NewNRGBA(bounds)
		copy(copied.Pix, canvas.Pix)

		delay := time.Duration(g.Delay[i]) * 10 * time.Millisecond
		if delay <= 0 {
			delay = zeroDelayFallback
		}
		frames = append(frames, decodedFrame{
			Pixels:      copied,
			Delay:       delay,
			Orientation: orientation,
		})

		// Apply this frame's disposal before compositing the next one.
		if i < len(g.Disposal) {
			switch g.Disposal[i] {
			case gif.DisposalBackground:
				draw.Draw(canvas, src.Bounds(), image.Transparent, image.Point{}, draw.Src)
			case gif.DisposalPrevious:
				canvas = saved
			}
		}
	}
	return frames, nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	bounds := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)
	return out
}

// detectOrientation probes the EXIF block for the Orientation tag. Any
// failure along the way just means the default upright orientation.
func detectOrientation(data []byte) Orientation {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil {
		return Deg0
	}
	tags, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return Deg0
	}
	for _, tag := range tags {
		if tag.TagName != "Orientation" {
			continue
		}
		values, ok := tag.Value.([]uint16)
		if !ok || len(values) == 0 {
			return Deg0
		}
		switch values[0] {
		case 1:
			return Deg0
		case 2:
			return Deg0HorFlip
		case 3:
			return Deg180
		case 4:
			return Deg180HorFlip
		case 5:
			return Deg90VerFlip
		case 6:
			return Deg270
		case 7:
			return Deg270VerFlip
		case 8:
			return Deg90
		}
		return Deg0
	}
	return Deg0
}
