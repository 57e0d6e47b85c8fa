// Package source discovers and parses Claude Code JSONL session files.
package source

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ScanRoot walks one projects root and discovers JSONL session files.
// Files whose mtime is older than cutoff are skipped: records that old
// cannot belong to any block still relevant to the dashboard. A zero
// cutoff disables the filter. Unreadable entries are skipped silently;
// a missing root yields no files and no error.
func ScanRoot(root string, cutoff time.Time) ([]DiscoveredFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() || filepath.Ext(path) != ".jsonl" {
			return nil
		}

		if !cutoff.IsZero() {
			fi, err := d.Info()
			if err != nil || fi.ModTime().Before(cutoff) {
				return nil
			}
		}

		rel, _ := filepath.Rel(root, path)
		parts := strings.Split(rel, string(filepath.Separator))
		if len(parts) < 2 {
			return nil
		}

		projectDir := parts[0]
		files = append(files, DiscoveredFile{
			Path:       path,
			Project:    decodeProjectName(projectDir),
			ProjectDir: projectDir,
			SessionID:  strings.TrimSuffix(d.Name(), ".jsonl"),
		})
		return nil
	})

	return files, err
}

// ScanRoots discovers session files across several roots. Per-root errors
// are collected into errs; discovery continues through the remaining roots.
func ScanRoots(roots []string, cutoff time.Time) (files []DiscoveredFile, errs []error) {
	for _, root := range roots {
		found, err := ScanRoot(root, cutoff)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		files = append(files, found...)
	}
	return files, errs
}

// decodeProjectName extracts a human-readable project name from the encoded
// directory name. Claude Code encodes absolute paths by replacing "/" (and
// ".") with "-", so:
//
//	"-Users-tayloreernisse-projects-gitlore" -> "gitlore"
//	"-Users-tayloreernisse-projects-my-cool-project" -> "my-cool-project"
//
// We find the last known parent component ("projects", "repos", ...) and
// take everything after it, falling back to the last non-empty segment.
func decodeProjectName(dirName string) string {
	parts := strings.Split(dirName, "-")

	knownParents := map[string]bool{
		"projects": true, "repos": true, "src": true,
		"code": true, "workspace": true, "dev": true,
	}

	for i := len(parts) - 2; i >= 0; i-- {
		if knownParents[strings.ToLower(parts[i])] {
			if name := strings.Join(parts[i+1:], "-"); name != "" {
				return name
			}
		}
	}

	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}

	return dirName
}

// CountProjects returns the number of unique projects in a set of discovered files.
func CountProjects(files []DiscoveredFile) int {
	seen := make(map[string]struct{})
	for _, f := range files {
		seen[f.ProjectDir] = struct{}{}
	}
	return len(seen)
}
