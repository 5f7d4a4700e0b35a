package dupescan

// FileRecord tracks a single candidate file through the pipeline. A
// record is created during the walk, enriched with digests during the
// matching phases, and discarded when the run ends. Records are owned
// by the run that discovered them and are never persisted.
type FileRecord struct {
	// Path is the canonical (symlink-free) absolute path.
	Path string

	// Size is the file size in bytes at the moment of inspection.
	Size int64

	// Dev and Ino identify the underlying inode where the platform
	// exposes one; both are zero elsewhere.
	Dev uint64
	Ino uint64

	// PrefixDigest is the digest of the first chunk of content, set
	// during the prefix phase.
	PrefixDigest []byte

	// FullDigest is the digest of the entire content, set during the
	// full phase.
	FullDigest []byte
}
