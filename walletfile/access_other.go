//go:build !unix

package walletfile

import "os"

// Without access(2) the owner write bit is the best available hint.
func writable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().Perm()&0o200 != 0
}
