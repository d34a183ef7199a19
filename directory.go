package main

import (
	"path/filepath"
)

// Directory tracks the files of the currently browsed directory (or archive)
// and the position within them. Two positions are maintained: the raw file
// index into the full listing and the image index into the filtered subset of
// supported image files. The filter runs in the background, so image-index
// queries report not-ready until it completes.
type Directory struct {
	path         string
	files        []DirItem
	nextReqID    uint32
	currFileIdx  int
	currImageIdx int

	// imgToFile maps image index to file index; fileToImg is the inverse
	// with -1 for non-image files. Both are nil while the filter runs.
	imgToFile []int
	fileToImg []int

	filter *parallelAction[[]DirItem, []int]
}

func NewDirectory() *Directory {
	return &Directory{
		filter: newParallelAction(filterImages),
	}
}

// filterImages inspects every file's magic bytes cheaply via its extension
// and returns the file indexes that are displayable images.
func filterImages(files []DirItem) []int {
	indexes := make([]int, 0, len(files))
	for i, f := range files {
		if isSupportedExt(f.Name()) {
			indexes = append(indexes, i)
		}
	}
	return indexes
}

func (d *Directory) Path() string { return d.path }

// CurrFile returns the item at the current file position.
func (d *Directory) CurrFile() (DirItem, error) {
	if d.path == "" {
		return DirItem{}, errNoFileSpecified
	}
	if len(d.files) == 0 {
		return DirItem{}, errEmptyDirectory
	}
	return d.files[d.currFileIdx], nil
}

// ChangeDirectory switches to a new directory, re-scanning only when the
// path actually differs from the current one.
func (d *Directory) ChangeDirectory(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if absPath == d.path {
		return nil
	}
	return d.collectDirectory(absPath)
}

// ChangeDirectoryWithFile switches to the directory containing filePath and
// positions on that file.
func (d *Directory) ChangeDirectoryWithFile(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return err
	}
	dirPath := filepath.Dir(absPath)
	if isArchiveExt(absPath) {
		dirPath = absPath
	}
	if err := d.collectDirectory(dirPath); err != nil {
		return err
	}
	if isArchiveExt(absPath) {
		return nil
	}

	name := filepath.Base(absPath)
	for i, f := range d.files {
		if f.Name() == name {
			d.currFileIdx = i
			d.currImageIdx = d.imageIdxFor(i)
			return nil
		}
	}
	return errFileNotInDirectory
}

// JumpToNext advances the file position to the next supported image, wrapping
// around at the end. If no image exists anywhere in the directory the
// position stays put.
func (d *Directory) JumpToNext() {
	d.jump(1)
}

// JumpToPrev moves to the previous supported image, wrapping at the start.
func (d *Directory) JumpToPrev() {
	d.jump(-1)
}

func (d *Directory) jump(step int) {
	n := len(d.files)
	if n == 0 {
		return
	}
	for i := 1; i <= n; i++ {
		idx := ((d.currFileIdx+step*i)%n + n) % n
		if isSupportedExt(d.files[idx].Name()) {
			d.currFileIdx = idx
			d.currImageIdx = d.imageIdxFor(idx)
			return
		}
	}
}

// SetCurrImageIndex positions on the image at the given filtered index.
func (d *Directory) SetCurrImageIndex(index int) error {
	if !d.checkFilterReady() {
		return errWaitingOnFilter
	}
	if index < 0 || index >= len(d.imgToFile) {
		return errIndexOutOfRange
	}
	d.currImageIdx = index
	d.currFileIdx = d.imgToFile[index]
	return nil
}

// CurrImageIndex returns the current position among the image files.
func (d *Directory) CurrImageIndex() (int, error) {
	if !d.checkFilterReady() {
		return 0, errWaitingOnFilter
	}
	return d.currImageIdx, nil
}

// ImageCount returns the number of supported image files.
func (d *Directory) ImageCount() (int, error) {
	if !d.checkFilterReady() {
		return 0, errWaitingOnFilter
	}
	return len(d.imgToFile), nil
}

// ImageByIndex returns the item at the given filtered image index.
func (d *Directory) ImageByIndex(index int) (DirItem, error) {
	if !d.checkFilterReady() {
		return DirItem{}, errWaitingOnFilter
	}
	if index < 0 || index >= len(d.imgToFile) {
		return DirItem{}, errIndexOutOfRange
	}
	return d.files[d.imgToFile[index]], nil
}

// UpdateDirectory re-scans the current directory after an external change.
// The position follows the previously current file by name; if that file is
// gone, the position falls forward to the nearest surviving file at or after
// the old file index, or clamps to the start.
func (d *Directory) UpdateDirectory() error {
	if d.path == "" {
		return nil
	}
	oldName := ""
	if len(d.files) > 0 {
		oldName = d.files[d.currFileIdx].Name()
	}
	oldFileIdx := d.currFileIdx

	if err := d.collectDirectory(d.path); err != nil {
		return err
	}

	if oldName != "" {
		for i, f := range d.files {
			if f.Name() == oldName {
				d.currFileIdx = i
				d.currImageIdx = d.imageIdxFor(i)
				return nil
			}
		}
	}
	// The old file is gone; fall forward to the next supported file at or
	// after its index, or back to the start if nothing follows.
	d.currFileIdx = 0
	for i := oldFileIdx; i < len(d.files); i++ {
		if isSupportedExt(d.files[i].Name()) {
			d.currFileIdx = i
			break
		}
	}
	d.currImageIdx = d.imageIdxFor(d.currFileIdx)
	return nil
}

// collectDirectory lists and sorts the directory, assigns request ids, and
// hands the listing to the background filter. Mappings are invalidated until
// the filter finishes.
func (d *Directory) collectDirectory(path string) error {
	entries, err := listEntries(path)
	if err != nil {
		return err
	}
	sortEntriesNatural(entries)

	files := make([]DirItem, len(entries))
	for i, e := range entries {
		d.nextReqID++
		files[i] = DirItem{ImagePath: e, RequestID: d.nextReqID}
	}

	d.path = path
	d.files = files
	d.imgToFile = nil
	d.fileToImg = nil
	d.currFileIdx = 0
	d.currImageIdx = 0

	// Start on the first supported image so the viewer shows something
	// immediately even before the filter completes.
	for i, f := range files {
		if isSupportedExt(f.Name()) {
			d.currFileIdx = i
			break
		}
	}

	clone := make([]DirItem, len(files))
	copy(clone, files)
	d.filter.Give(clone)
	return nil
}

// checkFilterReady collects the filter result if one is available and reports
// whether the image-index mappings are usable.
func (d *Directory) checkFilterReady() bool {
	if d.imgToFile != nil {
		return true
	}
	imgToFile, ok := d.filter.TryOutput()
	if !ok {
		return false
	}
	d.finishedFiltering(imgToFile)
	return true
}

func (d *Directory) finishedFiltering(imgToFile []int) {
	d.imgToFile = imgToFile
	d.fileToImg = make([]int, len(d.files))
	for i := range d.fileToImg {
		d.fileToImg[i] = -1
	}
	for imgIdx, fileIdx := range imgToFile {
		if fileIdx < len(d.fileToImg) {
			d.fileToImg[fileIdx] = imgIdx
		}
	}
	d.currImageIdx = d.imageIdxFor(d.currFileIdx)
}

// imageIdxFor maps a file index to its image index, or the nearest earlier
// one when the file itself is not an image. Returns 0 when the mapping is not
// ready yet.
func (d *Directory) imageIdxFor(fileIdx int) int {
	if d.fileToImg == nil || fileIdx >= len(d.fileToImg) {
		return 0
	}
	if idx := d.fileToImg[fileIdx]; idx >= 0 {
		return idx
	}
	for i := fileIdx - 1; i >= 0; i-- {
		if idx := d.fileToImg[i]; idx >= 0 {
			return idx
		}
	}
	return 0
}

func (d *Directory) Close() {
	d.filter.Close()
}
