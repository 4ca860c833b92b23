package reconcile

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// report and repair artifacts share the manifest directory in some setups;
// they must never be reconciled as manifests themselves.
var excludedSuffixes = []string{
	"_missing_files.csv",
	"_repaired.csv",
}

// discoverManifests returns the manifest CSV paths under dir in
// lexicographic name order. Ordering is part of the arbitration contract:
// earlier manifests win contested candidates.
func discoverManifests(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), ".csv") {
			continue
		}
		if isExcluded(name) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Slice(paths, func(i, j int) bool {
		return filepath.Base(paths[i]) < filepath.Base(paths[j])
	})
	return paths, nil
}

func isExcluded(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range excludedSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
