package main

import (
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDecodeFramesStillImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	writeTestPNG(t, path, 8, 6)

	frames, err := decodeFrames(ImagePath{Path: path})
	if err != nil {
		t.Fatalf("decodeFrames: %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	b := frames[0].Pixels.Bounds()
	if b.Dx() != 8 || b.Dy() != 6 {
		t.Errorf("bounds: got %v", b)
	}
	if frames[0].Delay != 0 {
		t.Errorf("still image delay: got %v", frames[0].Delay)
	}
	if frames[0].Orientation != Deg0 {
		t.Errorf("orientation: got %v", frames[0].Orientation)
	}
}

func TestDecodeFramesAnimation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.gif")
	writeTestGIF(t, path, 4, 4, []int{5, 0})

	frames, err := decodeFrames(ImagePath{Path: path})
	if err != nil {
		t.Fatalf("decodeFrames: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if frames[0].Delay != 50*time.Millisecond {
		t.Errorf("frame 0 delay: got %v", frames[0].Delay)
	}
	if frames[1].Delay != zeroDelayFallback {
		t.Errorf("frame 1 delay: got %v, want fallback", frames[1].Delay)
	}
	// Frames composite onto the full canvas.
	for i, f := range frames {
		if f.Pixels.Bounds().Dx() != 4 || f.Pixels.Bounds().Dy() != 4 {
			t.Errorf("frame %d bounds: got %v", i, f.Pixels.Bounds())
		}
	}
}

func TestDecodeFramesGIFBackgroundDisposal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "d.gif")

	palette := color.Palette{
		color.Transparent,
		color.RGBA{R: 0xff, A: 0xff},
		color.RGBA{B: 0xff, A: 0xff},
	}
	full := image.NewPaletted(image.Rect(0, 0, 8, 8), palette)
	for i := range full.Pix {
		full.Pix[i] = 1
	}
	corner := image.NewPaletted(image.Rect(0, 0, 2, 2), palette)
	for i := range corner.Pix {
		corner.Pix[i] = 2
	}
	g := &gif.GIF{
		Config:   image.Config{Width: 8, Height: 8},
		Image:    []*image.Paletted{full, corner},
		Delay:    []int{5, 5},
		Disposal: []byte{gif.DisposalBackground, gif.DisposalNone},
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := gif.EncodeAll(f, g); err != nil {
		t.Fatalf("encoding %s: %v", path, err)
	}
	f.Close()

	frames, err := decodeFrames(ImagePath{Path: path})
	if err != nil {
		t.Fatalf("decodeFrames: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}

	// The first frame's background disposal clears the canvas, so in the
	// second frame only the corner is opaque.
	second := frames[1].Pixels
	if got := second.NRGBAAt(0, 0); got.A == 0 || got.B == 0 {
		t.Errorf("corner pixel: got %v, want opaque blue", got)
	}
	if got := second.NRGBAAt(5, 5); got.A != 0 {
		t.Errorf("disposed pixel: got %v, want transparent", got)
	}
}

func TestDecodeFramesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.png")
	touch(t, path)

	if _, err := decodeFrames(ImagePath{Path: path}); err == nil {
		t.Error("expected error for corrupt file")
	}
}

func TestDecodeFramesFromArchive(t *testing.T) {
	dir := t.TempDir()
	pngPath := filepath.Join(dir, "a.png")
	writeTestPNG(t, pngPath, 4, 4)
	data, err := readImageBytes(ImagePath{Path: pngPath})
	if err != nil {
		t.Fatal(err)
	}

	zipPath := filepath.Join(dir, "c.zip")
	writeTestZip(t, zipPath, map[string][]byte{"a.png": data})

	frames, err := decodeFrames(ImagePath{
		Path:        zipPath + ":a.png",
		ArchivePath: zipPath,
		EntryPath:   "a.png",
	})
	if err != nil {
		t.Fatalf("decodeFrames: %v", err)
	}
	if len(frames) != 1 {
		t.Errorf("got %d frames, want 1", len(frames))
	}
}

func TestSizeEstimate(t *testing.T) {
	if got := sizeEstimate(10, 10); got != 600 {
		t.Errorf("sizeEstimate(10,10) = %d, want 600", got)
	}
	if got := sizeEstimate(0, 0); got != 0 {
		t.Errorf("sizeEstimate(0,0) = %d, want 0", got)
	}
}
