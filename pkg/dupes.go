package dupescan

import (
	"encoding/hex"
	"sort"
	"time"
)

// DuplicateGroup represents a set of files with identical content.
// Membership is established by digest equality alone; the accepted
// trade-off is that no byte-by-byte confirmation is performed.
type DuplicateGroup struct {
	Hash  string   `json:"hash"`
	Size  int64    `json:"size"`
	Files []string `json:"files"`
	Count int      `json:"count"`
}

func newDuplicateGroup(records []*FileRecord) DuplicateGroup {
	group := DuplicateGroup{
		Hash:  hex.EncodeToString(records[0].FullDigest),
		Size:  records[0].Size,
		Files: make([]string, len(records)),
		Count: len(records),
	}
	for i, rec := range records {
		group.Files[i] = rec.Path
	}
	return group
}

// Stats summarises a completed run.
type Stats struct {
	FilesIndexed    int           `json:"files_indexed"`
	SizeGroups      int           `json:"size_groups"`
	CandidateGroups int           `json:"candidate_groups"`
	PrefixHashes    int64         `json:"prefix_hashes"`
	FullHashes      int64         `json:"full_hashes"`
	BytesHashed     int64         `json:"bytes_hashed"`
	Elapsed         time.Duration `json:"elapsed_ns"`
}

// Result carries the outcome of a scan. On interruption it holds every
// group verified before the shutdown signal arrived.
type Result struct {
	Root    string           `json:"root"`
	Groups  []DuplicateGroup `json:"groups"`
	Skipped []SkippedFile    `json:"skipped,omitempty"`
	Stats   Stats            `json:"stats"`
}

// FindDuplicates runs the full pipeline under rootDir: size indexing,
// then the two-tier content match. notify and shutdownChan may be nil.
// The returned groups are ordered by size descending, then by digest,
// so repeated runs over an unchanged tree report identical output.
func FindDuplicates(rootDir string, settings *Settings, notify *Notifier, shutdownChan <-chan struct{}) (*Result, error) {
	start := time.Now()

	if settings == nil {
		settings = DefaultSettings()
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	scanner, err := NewScanner(rootDir, settings)
	if err != nil {
		return nil, err
	}

	notify.ScanningDirectory(scanner.RootDir())
	idx, scanErr := scanner.Scan(shutdownChan)
	if scanErr != nil && scanErr != ErrInterrupted {
		return nil, scanErr
	}
	notify.IndexedFiles(idx.Len(), len(scanner.Skipped()))

	result := &Result{
		Root: scanner.RootDir(),
	}
	result.Stats.FilesIndexed = idx.Len()
	result.Stats.SizeGroups = len(idx.Sizes())
	for _, size := range idx.Sizes() {
		if len(idx.Group(size)) >= 2 {
			result.Stats.CandidateGroups++
		}
	}
	result.Skipped = append(result.Skipped, scanner.Skipped()...)

	if scanErr == ErrInterrupted {
		result.Stats.Elapsed = time.Since(start)
		return result, ErrInterrupted
	}

	matcher, err := NewMatcher(settings, notify)
	if err != nil {
		return nil, err
	}

	groups, matchErr := matcher.Match(idx, shutdownChan)
	sortGroups(groups)

	result.Groups = groups
	result.Skipped = append(result.Skipped, matcher.Skipped()...)
	stats := matcher.Stats()
	result.Stats.PrefixHashes = stats.PrefixHashes
	result.Stats.FullHashes = stats.FullHashes
	result.Stats.BytesHashed = stats.BytesHashed
	result.Stats.Elapsed = time.Since(start)

	notify.DuplicatesFound(len(groups))

	if matchErr != nil {
		return result, matchErr
	}
	return result, nil
}

// sortGroups orders groups by size descending, then digest, for stable
// reporting regardless of hashing completion order.
func sortGroups(groups []DuplicateGroup) {
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Size != groups[j].Size {
			return groups[i].Size > groups[j].Size
		}
		return groups[i].Hash < groups[j].Hash
	})
}
