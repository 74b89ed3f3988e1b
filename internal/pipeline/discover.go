package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// reGalfitOutput matches the galfit.NN files galfit writes after each fit.
var reGalfitOutput = regexp.MustCompile(`^galfit\.\d+$`)

// inputExtensions are the conventional galfit input file extensions
// (lowercase, with leading dot).
var inputExtensions = map[string]bool{
	".feedme": true,
	".gf":     true,
}

// IsInputName reports whether name looks like a galfit input file.
func IsInputName(name string) bool {
	base := filepath.Base(name)
	return reGalfitOutput.MatchString(base) || inputExtensions[strings.ToLower(filepath.Ext(base))]
}

// Discover returns the galfit input files under root, sorted
// lexicographically for deterministic processing order. A root that is a
// file is returned as is, whatever its name. Hidden directories are pruned.
func Discover(root string) ([]string, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if IsInputName(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// DiscoverAll runs Discover on every root and drops repeated paths,
// keeping first-seen order.
func DiscoverAll(roots []string) ([]string, error) {
	seen := make(map[string]bool)
	var all []string
	for _, root := range roots {
		files, err := Discover(root)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			key := filepath.Clean(f)
			if seen[key] {
				continue
			}
			seen[key] = true
			all = append(all, f)
		}
	}
	return all, nil
}
