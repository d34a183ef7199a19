package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/maruel/natural"
)

type cacheState int

const (
	// texLoadRequested is a placeholder for an in-flight background
	// decode; it carries no texture and no cost.
	texLoadRequested cacheState = iota
	texReady
)

type cachedTexture struct {
	state   cacheState
	modTime time.Time
	tex     *AnimTexture
	cost    int64
}

// prefetch at most this many files per call, so one frame of the UI loop
// never floods the workers.
const prefetchBurst = 4

// TextureCache keeps decoded textures for the current directory within a
// byte budget. Entries are keyed by file name; switching directories drops
// everything. The budget may be exceeded by the currently displayed image
// alone, so a file larger than the whole budget still displays.
type TextureCache struct {
	currDir     string
	currEstSize int64

	totalCapacity     int64
	remainingCapacity int64

	entries  map[string]*cachedTexture
	loader   *ImageLoader
	pending  *PendingRequests
	uploader TextureUploader
}

func NewTextureCache(capacity int64, loader *ImageLoader, uploader TextureUploader) *TextureCache {
	return &TextureCache{
		totalCapacity:     capacity,
		remainingCapacity: capacity,
		currEstSize:       capacity,
		entries:           make(map[string]*cachedTexture),
		loader:            loader,
		pending:           NewPendingRequests(),
		uploader:          uploader,
	}
}

func (c *TextureCache) TotalCapacity() int64     { return c.totalCapacity }
func (c *TextureCache) RemainingCapacity() int64 { return c.remainingCapacity }

// PendingCount reports how many background decodes are in flight.
func (c *TextureCache) PendingCount() int { return c.pending.Len() }

// Cached reports whether a ready texture exists for the name.
func (c *TextureCache) Cached(name string) bool {
	e, ok := c.entries[name]
	return ok && e.state == texReady
}

func dirKey(item ImagePath) string {
	if item.ArchivePath != "" {
		return item.ArchivePath
	}
	return filepath.Dir(item.Path)
}

// LoadSpecific returns the texture for one file, decoding it synchronously
// on a cache miss. A file whose decode is already running in the background
// reports errWaitingOnLoader instead of decoding twice.
func (c *TextureCache) LoadSpecific(item ImagePath) (*AnimTexture, error) {
	if dir := dirKey(item); dir != c.currDir {
		c.clear()
		c.currDir = dir
	}
	c.ProcessPrefetched()

	modTime, err := item.ModTime()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", item.Path, err)
	}

	name := item.Name()
	if e, ok := c.entries[name]; ok {
		switch e.state {
		case texReady:
			if e.modTime.Equal(modTime) {
				return e.tex, nil
			}
		case texLoadRequested:
			return nil, errWaitingOnLoader
		}
	}

	frames, err := decodeFrames(item)
	if err != nil {
		return nil, err
	}
	tex, cost, err := c.uploadFrames(frames)
	if err != nil {
		return nil, err
	}
	c.currEstSize = cost

	if c.remainingCapacity < cost {
		c.evictBefore(name, cost)
	}
	c.insert(name, modTime, tex, cost)
	return tex, nil
}

// uploadFrames pushes decoded frames to the GPU and sums their cost.
func (c *TextureCache) uploadFrames(frames []decodedFrame) (*AnimTexture, int64, error) {
	anim := &AnimTexture{Frames: make([]TexFrame, 0, len(frames))}
	var cost int64
	for _, f := range frames {
		tex, err := c.uploader.Upload(f.Pixels)
		if err != nil {
			return nil, 0, err
		}
		b := f.Pixels.Bounds()
		cost += sizeEstimate(b.Dx(), b.Dy())
		anim.Frames = append(anim.Frames, TexFrame{
			Tex:         tex,
			Delay:       f.Delay,
			Orientation: f.Orientation,
		})
	}
	return anim, cost, nil
}

// evictBefore frees entries that sort before target in directory order until
// need fits or no earlier entry remains. Entries at or after target are
// never touched here; they are the ones most likely to be wanted next.
func (c *TextureCache) evictBefore(target string, need int64) {
	names := make([]string, 0, len(c.entries))
	for name, e := range c.entries {
		if e.state == texReady {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool { return natural.Less(names[i], names[j]) })

	for _, name := range names {
		if c.remainingCapacity >= need {
			return
		}
		if !natural.Less(name, target) {
			return
		}
		c.remainingCapacity += c.entries[name].cost
		delete(c.entries, name)
	}
}

// insert stores a ready texture, reclaiming the cost of any entry it
// replaces. remainingCapacity may go negative; only the current image is
// allowed to overshoot the budget.
func (c *TextureCache) insert(name string, modTime time.Time, tex *AnimTexture, cost int64) {
	if old, ok := c.entries[name]; ok && old.state == texReady {
		c.remainingCapacity += old.cost
	}
	c.remainingCapacity -= cost
	c.entries[name] = &cachedTexture{
		state:   texReady,
		modTime: modTime,
		tex:     tex,
		cost:    cost,
	}
}

// ProcessPrefetched drains the loader's result channel and folds completed
// decodes into the cache.
func (c *TextureCache) ProcessPrefetched() {
	for {
		r, ok := c.loader.TryRecv()
		if !ok {
			return
		}
		switch r.Kind {
		case loadStart, loadFrame:
			c.pending.AddResult(r)
		case loadDone:
			c.finishRequest(r.ReqID, true)
		case loadFailed:
			c.finishRequest(r.ReqID, false)
		}
	}
}

func (c *TextureCache) finishRequest(id uint32, succeeded bool) {
	name, known := c.pending.Name(id)
	if !known {
		return
	}
	results, cancelled, _ := c.pending.TakeResults(id)
	c.pending.SetFinished(id)

	if cancelled || !succeeded {
		if e, ok := c.entries[name]; ok && e.state == texLoadRequested {
			delete(c.entries, name)
		}
		return
	}

	var modTime time.Time
	frames := make([]decodedFrame, 0, len(results))
	for _, r := range results {
		switch r.Kind {
		case loadStart:
			modTime = r.ModTime
		case loadFrame:
			frames = append(frames, r.Frame)
		}
	}
	if len(frames) == 0 {
		if e, ok := c.entries[name]; ok && e.state == texLoadRequested {
			delete(c.entries, name)
		}
		return
	}

	existing, ok := c.entries[name]
	if ok && existing.state == texReady && !modTime.After(existing.modTime) {
		// The cached copy is at least as fresh; the decode was wasted.
		return
	}

	tex, cost, err := c.uploadFrames(frames)
	if err != nil {
		debugLog("texture upload failed for %s: %v", name, err)
		if e, okE := c.entries[name]; okE && e.state == texLoadRequested {
			delete(c.entries, name)
		}
		return
	}
	c.insert(name, modTime, tex, cost)
}

// SendLoadRequests queues background decodes for the files after the current
// one, as far as an optimistic capacity estimate allows. The estimate charges
// every examined file the size of the current image, so a directory of
// similar files prefetches about as far as will actually fit.
func (c *TextureCache) SendLoadRequests(dir *Directory) {
	count, err := dir.ImageCount()
	if err != nil || count == 0 {
		return
	}
	curr, err := dir.CurrImageIndex()
	if err != nil {
		return
	}

	estRemaining := c.remainingCapacity
	requested := 0
	for i := 1; i < count; i++ {
		if requested >= prefetchBurst {
			return
		}
		if estRemaining < c.currEstSize {
			return
		}
		item, err := dir.ImageByIndex((curr + i) % count)
		if err != nil {
			return
		}
		c.requestLoad(item)
		estRemaining -= c.currEstSize
		requested++
	}
}

// PrefetchAtIndex queues a background decode for one arbitrary image index,
// used by the random presentation mode which knows its next pick in advance.
func (c *TextureCache) PrefetchAtIndex(dir *Directory, index int) {
	item, err := dir.ImageByIndex(index)
	if err != nil {
		return
	}
	if c.remainingCapacity < c.currEstSize {
		return
	}
	c.requestLoad(item)
}

func (c *TextureCache) requestLoad(item DirItem) {
	name := item.Name()
	if _, ok := c.entries[name]; ok {
		return
	}
	if c.pending.Contains(name) {
		return
	}
	c.pending.Add(item.RequestID, name)
	c.entries[name] = &cachedTexture{state: texLoadRequested}
	c.loader.Send(decodeRequest{ReqID: item.RequestID, Item: item.ImagePath})
}

func (c *TextureCache) clear() {
	c.entries = make(map[string]*cachedTexture)
	c.remainingCapacity = c.totalCapacity
	c.pending.CancelAll()
}

func (c *TextureCache) Close() {
	c.loader.Close()
}
