//go:build unix

package dupescan

import "golang.org/x/sys/unix"

// fileID returns the device and inode numbers for path, used to
// recognise hard links to an already-indexed file. ok is false when the
// stat call fails; callers fall back to path identity.
func fileID(path string) (dev, ino uint64, ok bool) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, 0, false
	}
	return uint64(st.Dev), uint64(st.Ino), true
}
