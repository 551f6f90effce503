package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	raerrors "github.com/Aman-CERP/ra/internal/errors"
	"github.com/Aman-CERP/ra/internal/pattern"
)

// patternCacheSize bounds the number of compiled per-tree pattern sets kept
// across repeated Discover calls, preventing unbounded memory growth when
// many trees are configured.
const patternCacheSize = 256

// Scanner discovers files within configured document trees.
type Scanner struct {
	patterns *lru.Cache[string, *pattern.Set]
}

// New creates a Scanner.
func New() (*Scanner, error) {
	cache, err := lru.New[string, *pattern.Set](patternCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create pattern cache: %w", err)
	}
	return &Scanner{patterns: cache}, nil
}

// Discover walks root (a tree's absolute document root), applying the
// supplied include/exclude patterns, and streams matching files on the
// returned channel. The channel is closed when the walk completes.
func (s *Scanner) Discover(ctx context.Context, cacheKey, root string, include, exclude []string) (<-chan ScanResult, error) {
	info, err := statDir(root)
	if err != nil {
		return nil, raerrors.New(raerrors.ErrCodeTreePathNotFound,
			fmt.Sprintf("tree path not found: %s", root), err)
	}
	if !info {
		return nil, raerrors.New(raerrors.ErrCodeTreePathNotDirectory,
			fmt.Sprintf("tree path is not a directory: %s", root), nil)
	}

	set, err := s.patternSet(cacheKey, include, exclude)
	if err != nil {
		return nil, err
	}

	results := make(chan ScanResult, 64)
	go func() {
		defer close(results)
		s.walk(ctx, root, set, results)
	}()
	return results, nil
}

// DiscoverAll is a convenience wrapper over Discover that collects every
// result into a slice, returning the first error encountered (if any).
func (s *Scanner) DiscoverAll(ctx context.Context, cacheKey, root string, include, exclude []string) ([]*FileInfo, error) {
	ch, err := s.Discover(ctx, cacheKey, root, include, exclude)
	if err != nil {
		return nil, err
	}

	var files []*FileInfo
	for res := range ch {
		if res.Error != nil {
			return files, res.Error
		}
		files = append(files, res.File)
	}
	return files, nil
}

func (s *Scanner) patternSet(cacheKey string, include, exclude []string) (*pattern.Set, error) {
	if set, ok := s.patterns.Get(cacheKey); ok {
		return set, nil
	}
	set, err := pattern.Compile(include, exclude)
	if err != nil {
		return nil, err
	}
	s.patterns.Add(cacheKey, set)
	return set, nil
}

// InvalidatePatternCache clears cached pattern sets, forcing recompilation
// on next Discover call. Call this when a tree's configured patterns change.
func (s *Scanner) InvalidatePatternCache() {
	s.patterns.Purge()
}

func (s *Scanner) walk(ctx context.Context, root string, set *pattern.Set, results chan<- ScanResult) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return nil
		}

		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil || relPath == "." {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if isHidden(d.Name()) {
			return nil
		}
		if isBinaryExtension(strings.ToLower(filepath.Ext(path))) {
			return nil
		}
		if !set.Matches(relPath) {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}

		select {
		case results <- ScanResult{File: &FileInfo{
			Path:    relPath,
			AbsPath: path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}}:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})

	if err != nil && err != context.Canceled {
		select {
		case results <- ScanResult{Error: err}:
		default:
		}
	}
}

// isHidden reports whether a file or directory name starts with a dot,
// excluding "." and ".." which filepath.WalkDir never passes as entry names.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func statDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
