//go:build windows

package imaging

// blockSize is not reported on Windows; callers fall back to the default.
func blockSize(string) int {
	return 0
}
