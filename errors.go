package main

import "errors"

// Sentinel errors for the loader/navigator error taxonomy. Transient
// conditions (waiting on the loader or the directory filter) are retried by
// the playback sequencer; everything else clears the display.
var (
	// errWaitingOnLoader means the requested file has a pending background
	// decode; the caller should retry shortly instead of decoding again.
	errWaitingOnLoader = errors.New("waiting on loader")

	// errWaitingOnFilter means the directory is still being filtered for
	// images, so image-index queries cannot be answered yet.
	errWaitingOnFilter = errors.New("directory is still being filtered for images")

	// errNoFileSpecified means no file was ever requested for display.
	errNoFileSpecified = errors.New("no file specified")

	errEmptyDirectory = errors.New("directory contains no files")

	errIndexOutOfRange = errors.New("image index out of range")

	errFileNotInDirectory = errors.New("file not found in directory")
)

// isTransientLoadErr reports whether err only means "try the same slot again
// in a moment".
func isTransientLoadErr(err error) bool {
	return errors.Is(err, errWaitingOnLoader) || errors.Is(err, errWaitingOnFilter)
}
