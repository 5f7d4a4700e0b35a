//go:build !unix

package dupescan

// fileID on platforms without stable device/inode numbers reports no
// identity; hard link detection is not supported and records fall back
// to path identity.
func fileID(path string) (dev, ino uint64, ok bool) {
	return 0, 0, false
}
