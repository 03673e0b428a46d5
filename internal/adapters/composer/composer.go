// Package composer reads installed package versions from a Composer lock file.
package composer

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go.trai.ch/jig/internal/core/domain"
)

// JigsawPackage is the Composer package name of Jigsaw.
const JigsawPackage = "tightenco/jigsaw"

type lockfile struct {
	Packages []lockedPackage `json:"packages"`
}

type lockedPackage struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// JigsawVersion returns the locked Jigsaw version of the project in root.
// It returns an empty string when the lock file is missing, unreadable, or does not
// list Jigsaw.
func JigsawVersion(root string) string {
	return Version(filepath.Join(root, domain.ComposerLockFile), JigsawPackage)
}

// Version returns the version of pkg in the lock file at path, or an empty string.
func Version(path, pkg string) string {
	data, err := os.ReadFile(path) //nolint:gosec // path is derived from the project root
	if err != nil {
		return ""
	}

	var lock lockfile
	if err := json.Unmarshal(data, &lock); err != nil {
		return ""
	}

	for _, p := range lock.Packages {
		if p.Name == pkg {
			return p.Version
		}
	}
	return ""
}
