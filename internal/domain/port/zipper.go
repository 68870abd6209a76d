package port

import "context"

// Zipper packs produced media files into a single archive, keyed by their
// path relative to baseDir.
type Zipper interface {
	CreateZip(ctx context.Context, baseDir string, filePaths []string, outputPath string) error
}
