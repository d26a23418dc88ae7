// Package archive implements the project archive codec: a zip container
// holding project.json plus per-image originals, 1-bit masks, and rendered
// finals.
//
// Layout:
//
//	project.json          metadata, two-space indented
//	originals/<name>      source image bytes, verbatim
//	masks/<stem>.png      1-bit grayscale PNG
//	finals/<stem>.png     rendered page, verbatim
//
// Export buffers entries by key so a repeated image name replaces the earlier
// entry instead of producing a duplicate zip header. The container is written
// to a temp file and renamed into place after fsync.
//
// Import rebuilds inline data URLs for every image record that names an entry
// in the container and sets maskDataUrl/finalDataUrl to null when no matching
// entry exists.
package archive
