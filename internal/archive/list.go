package archive

import (
	"fmt"
	"time"

	"github.com/klauspost/compress/zip"
)

// Entry describes one file inside a container.
type Entry struct {
	Name             string    `json:"name"`
	Directory        bool      `json:"directory"`
	CompressedSize   uint64    `json:"compressed_size"`
	UncompressedSize uint64    `json:"uncompressed_size"`
	Modified         time.Time `json:"modified"`
}

// List returns the entries of the container at path in stored order.
func List(path string) ([]Entry, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer reader.Close()

	entries := make([]Entry, 0, len(reader.File))
	for _, f := range reader.File {
		entries = append(entries, Entry{
			Name:             f.Name,
			Directory:        f.FileInfo().IsDir(),
			CompressedSize:   f.CompressedSize64,
			UncompressedSize: f.UncompressedSize64,
			Modified:         f.Modified,
		})
	}
	return entries, nil
}
