package usecase

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"go.uber.org/zap"
)

var frameNumberRe = regexp.MustCompile(`_(\d+)\.[A-Za-z0-9]+$`)

// frameNumber extracts the trailing _<n>.<ext> index; names without one sort as 0.
func frameNumber(name string) int {
	m := frameNumberRe.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// maxDrawsPerFrame bounds sampling when the distribution is too narrow to
// ever produce enough distinct indices.
const maxDrawsPerFrame = 10000

// FrameSelector samples images around the middle of an extracted frame
// sequence to build a training set. The random source is owned by the caller.
type FrameSelector struct {
	rng    *rand.Rand
	logger *zap.Logger
}

func NewFrameSelector(rng *rand.Rand, logger *zap.Logger) *FrameSelector {
	return &FrameSelector{rng: rng, logger: logger}
}

// SelectFromPath accepts an image file (its directory is sampled), a
// directory of images, or a directory of per-video image directories.
func (s *FrameSelector) SelectFromPath(base, saveDir string, numFrames int, stdDev float64) ([]string, error) {
	info, err := os.Stat(base)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", base, err)
	}
	if !info.IsDir() {
		return s.SelectFrames(filepath.Dir(base), saveDir, numFrames, stdDev)
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", base, err)
	}
	var subdirs []string
	for _, e := range entries {
		if e.IsDir() {
			subdirs = append(subdirs, filepath.Join(base, e.Name()))
		}
	}
	if len(subdirs) == 0 {
		return s.SelectFrames(base, saveDir, numFrames, stdDev)
	}

	var copied []string
	for _, dir := range subdirs {
		got, err := s.SelectFrames(dir, saveDir, numFrames, stdDev)
		if err != nil {
			return copied, err
		}
		copied = append(copied, got...)
	}
	return copied, nil
}

// SelectFrames copies up to numFrames distinct files from sourceDir into
// saveDir. Indices into the frame-number-sorted listing are drawn from a
// normal distribution centred on the middle element.
func (s *FrameSelector) SelectFrames(sourceDir, saveDir string, numFrames int, stdDev float64) ([]string, error) {
	if numFrames <= 0 {
		return nil, errors.New("num frames must be positive")
	}
	if stdDev <= 0 {
		return nil, errors.New("std dev must be positive")
	}

	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sourceDir, err)
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		s.logger.Warn("no frames to select from", zap.String("dir", sourceDir))
		return nil, nil
	}
	sort.SliceStable(files, func(i, j int) bool {
		return frameNumber(files[i]) < frameNumber(files[j])
	})

	want := min(numFrames, len(files))
	center := float64(len(files) / 2)
	selected := make(map[int]struct{}, want)
	for draws := 0; len(selected) < want; draws++ {
		if draws >= want*maxDrawsPerFrame {
			return nil, fmt.Errorf("std dev %.2f too narrow to pick %d distinct frames from %s", stdDev, want, sourceDir)
		}
		idx := int(s.rng.NormFloat64()*stdDev + center)
		if idx >= 0 && idx < len(files) {
			selected[idx] = struct{}{}
		}
	}

	indices := make([]int, 0, len(selected))
	for i := range selected {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	if err := os.MkdirAll(saveDir, 0755); err != nil {
		return nil, fmt.Errorf("create %s: %w", saveDir, err)
	}
	copied := make([]string, 0, len(indices))
	for _, i := range indices {
		dst := filepath.Join(saveDir, files[i])
		if err := copyFile(filepath.Join(sourceDir, files[i]), dst); err != nil {
			return copied, err
		}
		copied = append(copied, dst)
	}

	s.logger.Info("frames selected",
		zap.String("source", sourceDir),
		zap.Int("available", len(files)),
		zap.Int("selected", len(copied)),
	)
	return copied, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}
