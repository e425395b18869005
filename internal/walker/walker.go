package walker

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileInfo holds metadata about a single file discovered during traversal.
type FileInfo struct {
	Path    string // Absolute path on disk.
	RelPath string // Slash-separated path relative to the root directory.
	Size    int64  // File size in bytes.
	IsPage  bool   // Whether the file is a template whose fragments are expanded.
}

// WalkerConfig controls the behaviour of the Walk function.
type WalkerConfig struct {
	RootDir  string   // Root directory to walk.
	Include  []string // Glob patterns selecting pages; other files are assets.
	Exclude  []string // Glob patterns; matching files are skipped entirely.
	SkipDirs []string // Directories never descended into (e.g. the build output).
}

// Walk traverses the directory tree rooted at config.RootDir and returns
// every file that is not excluded, marking those matching Include as
// pages. It skips hidden entries and honours .gitignore at the root.
func Walk(config WalkerConfig) ([]FileInfo, error) {
	root, err := filepath.Abs(config.RootDir)
	if err != nil {
		return nil, fmt.Errorf("walker: resolve root: %w", err)
	}

	skip := make(map[string]bool, len(config.SkipDirs))
	for _, d := range config.SkipDirs {
		if abs, err := filepath.Abs(d); err == nil {
			skip[abs] = true
		}
	}

	// Load .gitignore patterns from root if present.
	gitignorePatterns := loadGitignore(filepath.Join(root, ".gitignore"))

	var files []FileInfo

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Skip entries we cannot read instead of aborting.
			return nil
		}

		name := d.Name()

		if d.IsDir() {
			if path == root {
				return nil
			}
			if skip[path] || shouldExcludeDir(name) {
				return filepath.SkipDir
			}
			return nil
		}

		// Only process regular, visible files.
		if !d.Type().IsRegular() || strings.HasPrefix(name, ".") {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if matchesGitignore(relPath, gitignorePatterns) {
			return nil
		}
		if MatchesExclude(relPath, config.Exclude) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		files = append(files, FileInfo{
			Path:    path,
			RelPath: relPath,
			Size:    info.Size(),
			IsPage:  len(config.Include) > 0 && MatchesInclude(relPath, config.Include) && !isBinary(path),
		})

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walker: traversal: %w", err)
	}

	return files, nil
}

// Pages returns the subset of files that are pages.
func Pages(files []FileInfo) []FileInfo {
	var pages []FileInfo
	for _, f := range files {
		if f.IsPage {
			pages = append(pages, f)
		}
	}
	return pages
}

// isBinary reads the first 512 bytes of a file and checks for NUL bytes,
// which is a simple but effective heuristic for binary content.
func isBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true // treat unreadable files as binary
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return true
	}

	for i := 0; i < n; i++ {
		if buf[i] == 0 {
			return true
		}
	}
	return false
}

// loadGitignore reads a .gitignore file and returns its non-empty,
// non-comment lines as patterns.
func loadGitignore(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

// matchesGitignore checks if a relative path matches any gitignore pattern.
func matchesGitignore(relPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	normalized := filepath.ToSlash(relPath)

	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)

		// Handle directory-only patterns (trailing /).
		dirOnly := strings.HasSuffix(pattern, "/")
		pattern = strings.TrimSuffix(pattern, "/")

		if !strings.Contains(pattern, "/") {
			// No slash: match any component of the path. Directory-only
			// patterns may not match the file name itself.
			parts := strings.Split(normalized, "/")
			for i, part := range parts {
				if dirOnly && i == len(parts)-1 {
					break
				}
				if matched, _ := filepath.Match(pattern, part); matched {
					return true
				}
			}
		} else {
			pattern = strings.TrimPrefix(pattern, "/")
			if matched, _ := filepath.Match(pattern, normalized); matched {
				return true
			}
			if strings.HasPrefix(normalized, pattern+"/") {
				return true
			}
		}
	}
	return false
}
