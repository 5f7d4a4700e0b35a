package dupescan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SizeIndex groups file records by exact byte size. Sizes and the
// records within each group keep discovery order, so a scan over an
// unchanged tree is fully deterministic.
type SizeIndex struct {
	sizes  []int64
	groups map[int64][]*FileRecord
}

// NewSizeIndex returns an empty index.
func NewSizeIndex() *SizeIndex {
	return &SizeIndex{
		groups: make(map[int64][]*FileRecord),
	}
}

func (idx *SizeIndex) add(rec *FileRecord) {
	if _, exists := idx.groups[rec.Size]; !exists {
		idx.sizes = append(idx.sizes, rec.Size)
	}
	idx.groups[rec.Size] = append(idx.groups[rec.Size], rec)
}

// Sizes returns the distinct sizes in discovery order.
func (idx *SizeIndex) Sizes() []int64 {
	return idx.sizes
}

// Group returns the records observed with the given size, in discovery order.
func (idx *SizeIndex) Group(size int64) []*FileRecord {
	return idx.groups[size]
}

// Len returns the total number of indexed records.
func (idx *SizeIndex) Len() int {
	total := 0
	for _, group := range idx.groups {
		total += len(group)
	}
	return total
}

// inodeKey identifies a file across hard links.
type inodeKey struct {
	dev uint64
	ino uint64
}

// Scanner walks a directory tree and produces the initial size-based
// partition of all regular, non-hidden files under the root. It opens
// no file for content: the walk costs stat and symlink resolution only.
type Scanner struct {
	rootDir       string
	exclude       *ExcludeMatcher
	skipHardLinks bool

	seen    map[string]struct{} // canonical paths already indexed
	inodes  map[inodeKey]struct{}
	skipped []SkippedFile
}

// NewScanner validates the root directory and prepares a scanner.
// A missing or non-directory root is a fatal InvalidRootError.
func NewScanner(rootDir string, settings *Settings) (*Scanner, error) {
	info, err := os.Stat(rootDir)
	if err != nil {
		return nil, &InvalidRootError{Path: rootDir, Reason: "does not exist"}
	}
	if !info.IsDir() {
		return nil, &InvalidRootError{Path: rootDir, Reason: "not a directory"}
	}

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, &InvalidRootError{Path: rootDir, Reason: err.Error()}
	}

	if settings == nil {
		settings = DefaultSettings()
	}
	exclude, err := NewExcludeMatcher(settings.Exclude)
	if err != nil {
		return nil, &InvalidConfigError{
			Option: "exclude",
			Value:  strings.Join(settings.Exclude, ","),
			Reason: err.Error(),
		}
	}

	return &Scanner{
		rootDir:       absRoot,
		exclude:       exclude,
		skipHardLinks: settings.SkipHardLinks,
		seen:          make(map[string]struct{}),
		inodes:        make(map[inodeKey]struct{}),
	}, nil
}

// RootDir returns the absolute root the scanner was created for.
func (sc *Scanner) RootDir() string {
	return sc.rootDir
}

// Skipped returns the files dropped during the walk and why.
func (sc *Scanner) Skipped() []SkippedFile {
	return sc.skipped
}

// Scan walks the tree breadth-first and returns the size index. Entry
// names beginning with "." are skipped outright: not traversed when
// directories, not indexed when files. Every other file is resolved to
// its canonical path, stat'ed, and appended to its size group. A path
// reached through more than one directory entry (a symlink and its
// target both visible under the root) is indexed exactly once.
//
// Per-file failures are recorded and skipped; only a closed
// shutdownChan stops the walk early, with ErrInterrupted.
func (sc *Scanner) Scan(shutdownChan <-chan struct{}) (*SizeIndex, error) {
	idx := NewSizeIndex()
	queue := []string{sc.rootDir}

	for len(queue) > 0 {
		select {
		case <-shutdownChan:
			return idx, ErrInterrupted
		default:
		}

		dir := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(dir)
		if err != nil {
			// An unreadable directory is a per-directory failure, not a
			// fatal one; the rest of the tree still gets scanned.
			sc.skip(dir, fmt.Sprintf("failed to read directory: %v", err))
			continue
		}

		for _, entry := range entries {
			name := entry.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}

			path := filepath.Join(dir, name)
			rel, err := filepath.Rel(sc.rootDir, path)
			if err == nil && sc.exclude.Match(rel) {
				if IsDebugEnabled("scan") {
					VerboseLog(3, "scan: excluded %s", rel)
				}
				continue
			}

			if entry.IsDir() {
				queue = append(queue, path)
				continue
			}

			sc.indexFile(idx, path)
		}
	}

	VerboseLog(2, "scan: indexed %d files in %d size groups (%d skipped)",
		idx.Len(), len(idx.Sizes()), len(sc.skipped))

	return idx, nil
}

// indexFile resolves one directory entry to a FileRecord and adds it to
// the index. Resolution or stat failures drop the file silently beyond
// the skip record; a vanished or unreadable file must never abort the walk.
func (sc *Scanner) indexFile(idx *SizeIndex, path string) {
	canonical, err := filepath.EvalSymlinks(path)
	if err != nil {
		sc.skip(path, fmt.Sprintf("failed to resolve path: %v", err))
		return
	}

	info, err := os.Stat(canonical)
	if err != nil {
		sc.skip(canonical, fmt.Sprintf("failed to stat: %v", err))
		return
	}
	if !info.Mode().IsRegular() {
		return
	}

	// Two directory entries reaching the same real file collapse to one
	// record; a file is never its own duplicate.
	if _, exists := sc.seen[canonical]; exists {
		return
	}
	sc.seen[canonical] = struct{}{}

	rec := &FileRecord{
		Path: canonical,
		Size: info.Size(),
	}

	if dev, ino, ok := fileID(canonical); ok {
		rec.Dev, rec.Ino = dev, ino
		key := inodeKey{dev: dev, ino: ino}
		if _, exists := sc.inodes[key]; exists && sc.skipHardLinks {
			sc.skip(canonical, "hard link to an already-indexed file")
			return
		}
		sc.inodes[key] = struct{}{}
	}

	idx.add(rec)
}

func (sc *Scanner) skip(path, reason string) {
	sc.skipped = append(sc.skipped, SkippedFile{Path: path, Reason: reason})
	if IsDebugEnabled("scan") {
		VerboseLog(3, "scan: skipped %s: %s", path, reason)
	}
}
