//go:build !windows

package imaging

import "golang.org/x/sys/unix"

// blockSize returns the preferred I/O size the filesystem reports for path,
// or 0 when it cannot be read.
func blockSize(path string) int {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0
	}
	return int(st.Blksize)
}
