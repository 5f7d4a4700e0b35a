package dupescan

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// MatchStats counts the hashing work a Matcher performed. The prefix
// phase exists to keep FullHashes small: same-size files that differ in
// their first chunk never get a full read.
type MatchStats struct {
	PrefixHashes int64 `json:"prefix_hashes"`
	FullHashes   int64 `json:"full_hashes"`
	BytesHashed  int64 `json:"bytes_hashed"`
}

// Matcher narrows each size group down to provably content-identical
// groups using the two-tier hashing protocol: a digest over the first
// chunk of each file partitions the group cheaply, and only subgroups
// still sharing a prefix digest get a streamed full-content digest.
// Subgroups reduced to one member are discarded after either phase.
type Matcher struct {
	algorithm *HashAlgorithm
	chunkSize int
	workers   int
	notify    *Notifier

	// observe, when set, receives the byte count of every hashing read.
	observe readObserver

	mu      sync.Mutex
	skipped []SkippedFile
	stats   MatchStats
}

// NewMatcher prepares a matcher from validated settings.
func NewMatcher(settings *Settings, notify *Notifier) (*Matcher, error) {
	if settings == nil {
		settings = DefaultSettings()
	}
	algorithm, err := GetHashAlgorithm(settings.HashName)
	if err != nil {
		return nil, &InvalidConfigError{
			Option: "hash",
			Value:  settings.HashName,
			Reason: err.Error(),
		}
	}

	return &Matcher{
		algorithm: algorithm,
		chunkSize: settings.ChunkSize,
		workers:   settings.Workers,
		notify:    notify,
	}, nil
}

// Stats returns the hashing work counters accumulated so far.
func (m *Matcher) Stats() MatchStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Skipped returns the files dropped during matching and why.
func (m *Matcher) Skipped() []SkippedFile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.skipped
}

// Match consumes a size index and returns the final duplicate groups,
// each holding at least two paths with equal full-content digests. A
// closed shutdownChan stops matching between size groups; groups
// already verified are returned alongside ErrInterrupted.
func (m *Matcher) Match(idx *SizeIndex, shutdownChan <-chan struct{}) ([]DuplicateGroup, error) {
	var duplicates []DuplicateGroup

	candidates := 0
	for _, size := range idx.Sizes() {
		if len(idx.Group(size)) >= 2 {
			candidates++
		}
	}
	m.notify.CandidateGroups(candidates, len(idx.Sizes())-candidates)

	processed := 0
	for _, size := range idx.Sizes() {
		group := idx.Group(size)
		if len(group) < 2 {
			// Unique size, provably no duplicate. Never opened.
			continue
		}

		select {
		case <-shutdownChan:
			return duplicates, ErrInterrupted
		default:
		}

		processed++
		m.notify.ProcessingSizeGroup(processed, candidates, len(group), size)

		groups, err := m.matchSizeGroup(group, shutdownChan)
		duplicates = append(duplicates, groups...)
		if err != nil {
			return duplicates, err
		}
	}

	return duplicates, nil
}

// matchSizeGroup runs the two-tier protocol over one size group.
func (m *Matcher) matchSizeGroup(group []*FileRecord, shutdownChan <-chan struct{}) ([]DuplicateGroup, error) {
	// Prefix phase: hash only the leading chunk of every sibling.
	// Partitioning needs all sibling digests, so the phase boundary is
	// a synchronization point.
	survivors := m.hashPhase(group, false, shutdownChan)

	var duplicates []DuplicateGroup
	for _, prefixGroup := range partitionByDigest(survivors, func(rec *FileRecord) []byte {
		return rec.PrefixDigest
	}) {
		if len(prefixGroup) < 2 {
			continue
		}

		select {
		case <-shutdownChan:
			return duplicates, ErrInterrupted
		default:
		}

		// Full phase: stream the entire content of files still
		// indistinguishable after the prefix pass.
		verified := m.hashPhase(prefixGroup, true, shutdownChan)

		for _, fullGroup := range partitionByDigest(verified, func(rec *FileRecord) []byte {
			return rec.FullDigest
		}) {
			if len(fullGroup) < 2 {
				continue
			}
			duplicates = append(duplicates, newDuplicateGroup(fullGroup))
		}
	}

	// A shutdown that arrived mid-phase dropped files from hashing;
	// the run must report as interrupted, not as a complete scan.
	select {
	case <-shutdownChan:
		return duplicates, ErrInterrupted
	default:
	}

	return duplicates, nil
}

// hashPhase digests the given records concurrently on a bounded worker
// pool and returns those that hashed successfully, preserving input
// order. Files that cannot be opened or read are dropped from the
// phase and recorded as skips; they never disturb their siblings.
func (m *Matcher) hashPhase(records []*FileRecord, full bool, shutdownChan <-chan struct{}) []*FileRecord {
	var g errgroup.Group
	g.SetLimit(m.workers)

	failed := make([]bool, len(records))
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			var digest []byte
			var err error
			if full {
				digest, err = hashFileChunked(rec.Path, m.algorithm, m.chunkSize, shutdownChan, m.countRead)
			} else {
				digest, err = hashFilePrefix(rec.Path, m.algorithm, m.chunkSize, m.countRead)
			}
			if err != nil {
				failed[i] = true
				if err != ErrInterrupted {
					m.skip(rec.Path, err.Error())
				}
				return nil
			}

			if full {
				rec.FullDigest = digest
			} else {
				rec.PrefixDigest = digest
			}

			m.mu.Lock()
			if full {
				m.stats.FullHashes++
			} else {
				m.stats.PrefixHashes++
			}
			m.mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	survivors := records[:0:0]
	for i, rec := range records {
		if !failed[i] {
			survivors = append(survivors, rec)
		}
	}
	return survivors
}

func (m *Matcher) countRead(n int) {
	m.mu.Lock()
	m.stats.BytesHashed += int64(n)
	m.mu.Unlock()
	if m.observe != nil {
		m.observe(n)
	}
}

func (m *Matcher) skip(path, reason string) {
	m.mu.Lock()
	m.skipped = append(m.skipped, SkippedFile{Path: path, Reason: reason})
	m.mu.Unlock()
	if IsDebugEnabled("match") {
		VerboseLog(3, "match: skipped %s: %s", path, reason)
	}
}

// partitionByDigest splits records into subgroups sharing a digest,
// preserving the input order of both subgroups and members so results
// are deterministic for a given walk order.
func partitionByDigest(records []*FileRecord, digest func(*FileRecord) []byte) [][]*FileRecord {
	byDigest := make(map[string]int)
	var groups [][]*FileRecord

	for _, rec := range records {
		key := string(digest(rec))
		if idx, exists := byDigest[key]; exists {
			groups[idx] = append(groups[idx], rec)
			continue
		}
		byDigest[key] = len(groups)
		groups = append(groups, []*FileRecord{rec})
	}

	return groups
}
