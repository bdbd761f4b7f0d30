package tailer

import (
	"os"
	"path/filepath"
)

// findRotated locates the rotated predecessor of path whose identity
// matches inode, trying common rotation naming schemes in a fixed
// precedence order. Best effort: the first filesystem match wins, and ""
// is returned when no candidate carries the expected identity.
func findRotated(path string, inode uint64) string {
	for _, candidate := range rotatedCandidates(path) {
		ino, err := inodeOfPath(candidate)
		if err == nil && ino == inode {
			return candidate
		}
	}
	return ""
}

// rotatedCandidates lists plausible rotated filenames for path.
func rotatedCandidates(path string) []string {
	var candidates []string

	// savelog(8): path.0 holds the most recent rotation only while it is
	// newer than the compressed path.1.gz.
	zero := path + ".0"
	if zeroInfo, err := os.Stat(zero); err == nil {
		if gzInfo, err := os.Stat(path + ".1.gz"); err == nil && zeroInfo.ModTime().After(gzInfo.ModTime()) {
			candidates = append(candidates, zero)
		}
	}

	// logrotate(8) numeric scheme.
	one := path + ".1"
	if _, err := os.Stat(one); err == nil {
		candidates = append(candidates, one)
	}

	// logrotate dateext scheme: path-YYYYMMDD.
	if matches, err := filepath.Glob(path + "-[0-9][0-9][0-9][0-9][0-9][0-9][0-9][0-9]"); err == nil {
		candidates = append(candidates, matches...)
	}

	// Dotted date scheme: path.YYYY-MM-DD.
	if matches, err := filepath.Glob(path + ".[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]"); err == nil {
		candidates = append(candidates, matches...)
	}

	return candidates
}
