package batch

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/bardec/internal/pdf"
	"github.com/MeKo-Tech/bardec/internal/utils"
)

// ExpandInputs turns command-line arguments into work items, preserving
// argument order. Directories are expanded to the decodable files they
// contain; everything else is passed through as given. A path that cannot
// be accessed stays in the list so the worker reports it as a per-item
// failure.
func ExpandInputs(args []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	items := make([]string, 0, len(args))

	for _, arg := range args {
		if IsURL(arg) {
			items = append(items, arg)
			continue
		}

		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			items = append(items, arg)
			continue
		}

		files, err := discoverInDirectory(arg, recursive, includePatterns, excludePatterns)
		if err != nil {
			return nil, err
		}
		items = append(items, files...)
	}

	return items, nil
}

// discoverInDirectory walks dir in lexical order collecting decodable files.
func discoverInDirectory(dir string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string

	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		if isDecodable(path) && shouldIncludeFile(path, includePatterns, excludePatterns) {
			files = append(files, path)
		}
		return nil
	}

	return files, filepath.WalkDir(dir, walkFn)
}

func isDecodable(path string) bool {
	return utils.IsSupportedImage(path) || pdf.IsPDF(path)
}

// shouldIncludeFile applies exclude patterns first, then include patterns.
// No include patterns means everything not excluded is included.
func shouldIncludeFile(path string, includePatterns, excludePatterns []string) bool {
	if matchesAnyPattern(path, excludePatterns) {
		return false
	}
	if len(includePatterns) == 0 {
		return true
	}
	return matchesAnyPattern(path, includePatterns)
}

// matchesAnyPattern matches the file's base name against glob patterns.
func matchesAnyPattern(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
