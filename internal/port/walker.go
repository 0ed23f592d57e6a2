package port

import "time"

type FileWalker interface {
	Walk(root string) ([]FileInfo, error)
}

// FileInfo describes one file selected for ingestion. RelPath is relative to
// the walked root and uses forward slashes.
type FileInfo struct {
	Path    string
	RelPath string
	ModTime time.Time
	Size    int64
}

type FileReader interface {
	ReadFile(path string) (string, error)
}
