//go:build !linux

package tailer

import "os"

// fileInode returns 0 on non-Linux platforms (inode detection not supported).
func fileInode(_ *os.File) (uint64, error) {
	return 0, nil
}

// inodeOfPath returns 0 on non-Linux platforms (inode detection not supported).
func inodeOfPath(_ string) (uint64, error) {
	return 0, nil
}
