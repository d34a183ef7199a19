package main

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTexture struct {
	bounds image.Rectangle
}

func (f fakeTexture) Bounds() image.Rectangle { return f.bounds }

type fakeUploader struct{}

func (fakeUploader) Upload(pixels *image.NRGBA) (Texture, error) {
	return fakeTexture{bounds: pixels.Bounds()}, nil
}

// newTestCache builds a cache backed by a real worker pool and a CPU-side
// uploader. Callers must Close it.
func newTestCache(t *testing.T, capacity int64) *TextureCache {
	t.Helper()
	cache := NewTextureCache(capacity, NewImageLoader(2), fakeUploader{})
	t.Cleanup(cache.Close)
	return cache
}

// A 10x10 image costs 10*10*4*1.5 bytes.
const testImageCost = 600

func TestLoadSpecificAccountsCapacity(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "a.png"), 10, 10)

	cache := newTestCache(t, 2000)
	require.Equal(t, int64(2000), cache.TotalCapacity())

	tex, err := cache.LoadSpecific(ImagePath{Path: filepath.Join(dir, "a.png")})
	require.NoError(t, err)
	require.Equal(t, 1, tex.FrameCount())
	assert.Equal(t, int64(2000-testImageCost), cache.RemainingCapacity())

	// A second load of the unchanged file is a hit and costs nothing.
	again, err := cache.LoadSpecific(ImagePath{Path: filepath.Join(dir, "a.png")})
	require.NoError(t, err)
	assert.Same(t, tex, again)
	assert.Equal(t, int64(2000-testImageCost), cache.RemainingCapacity())
}

func TestLoadSpecificEvictsEntriesBeforeTarget(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"img1.png", "img2.png", "img3.png"} {
		writeTestPNG(t, filepath.Join(dir, name), 10, 10)
	}

	cache := newTestCache(t, 1300)
	_, err := cache.LoadSpecific(ImagePath{Path: filepath.Join(dir, "img1.png")})
	require.NoError(t, err)
	_, err = cache.LoadSpecific(ImagePath{Path: filepath.Join(dir, "img2.png")})
	require.NoError(t, err)
	require.Equal(t, int64(100), cache.RemainingCapacity())

	// img3 does not fit; img1 sorts before it and gets evicted, img2 stays.
	_, err = cache.LoadSpecific(ImagePath{Path: filepath.Join(dir, "img3.png")})
	require.NoError(t, err)
	assert.False(t, cache.Cached("img1.png"))
	assert.True(t, cache.Cached("img2.png"))
	assert.True(t, cache.Cached("img3.png"))
	assert.Equal(t, int64(100), cache.RemainingCapacity())
}

func TestLoadSpecificExactFitDoesNotEvict(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "img1.png"), 10, 10)
	writeTestPNG(t, filepath.Join(dir, "img2.png"), 10, 10)

	cache := newTestCache(t, 2*testImageCost)
	_, err := cache.LoadSpecific(ImagePath{Path: filepath.Join(dir, "img1.png")})
	require.NoError(t, err)
	_, err = cache.LoadSpecific(ImagePath{Path: filepath.Join(dir, "img2.png")})
	require.NoError(t, err)

	assert.True(t, cache.Cached("img1.png"))
	assert.True(t, cache.Cached("img2.png"))
	assert.Equal(t, int64(0), cache.RemainingCapacity())
}

func TestLoadSpecificOversizedImageStillLoads(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "big.png"), 10, 10)

	cache := newTestCache(t, 100)
	tex, err := cache.LoadSpecific(ImagePath{Path: filepath.Join(dir, "big.png")})
	require.NoError(t, err)
	require.NotNil(t, tex)
	assert.Equal(t, int64(100-testImageCost), cache.RemainingCapacity())
}

func TestDirectorySwitchClearsCache(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	writeTestPNG(t, filepath.Join(dirA, "a.png"), 10, 10)
	writeTestPNG(t, filepath.Join(dirB, "b.png"), 10, 10)

	cache := newTestCache(t, 2000)
	_, err := cache.LoadSpecific(ImagePath{Path: filepath.Join(dirA, "a.png")})
	require.NoError(t, err)

	_, err = cache.LoadSpecific(ImagePath{Path: filepath.Join(dirB, "b.png")})
	require.NoError(t, err)
	assert.False(t, cache.Cached("a.png"))
	assert.True(t, cache.Cached("b.png"))
	assert.Equal(t, int64(2000-testImageCost), cache.RemainingCapacity())
}

func TestLoadSpecificReloadsModifiedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	writeTestPNG(t, path, 10, 10)

	cache := newTestCache(t, 2000)
	first, err := cache.LoadSpecific(ImagePath{Path: path})
	require.NoError(t, err)

	// Bump the modification time so the cached copy is stale.
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	second, err := cache.LoadSpecific(ImagePath{Path: path})
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, int64(2000-testImageCost), cache.RemainingCapacity())
}

func TestLoadSpecificReportsPendingDecode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	writeTestPNG(t, path, 10, 10)

	cache := newTestCache(t, 2000)
	cache.currDir = dirKey(ImagePath{Path: path})
	cache.entries["a.png"] = &cachedTexture{state: texLoadRequested}

	_, err := cache.LoadSpecific(ImagePath{Path: path})
	assert.ErrorIs(t, err, errWaitingOnLoader)
}

func TestSendLoadRequestsPrefetchesForwardFiles(t *testing.T) {
	tmp := t.TempDir()
	for _, name := range []string{"img1.png", "img2.png", "img3.png"} {
		writeTestPNG(t, filepath.Join(tmp, name), 10, 10)
	}

	dir := NewDirectory()
	defer dir.Close()
	require.NoError(t, dir.ChangeDirectory(tmp))
	waitForFilter(t, dir)

	cache := newTestCache(t, 100000)
	_, err := cache.LoadSpecific(ImagePath{Path: filepath.Join(tmp, "img1.png")})
	require.NoError(t, err)

	cache.SendLoadRequests(dir)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		cache.ProcessPrefetched()
		if cache.Cached("img2.png") && cache.Cached("img3.png") {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	assert.True(t, cache.Cached("img2.png"))
	assert.True(t, cache.Cached("img3.png"))
}
