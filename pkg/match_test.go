package dupescan

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestMatcher(t *testing.T, settings *Settings) *Matcher {
	t.Helper()
	matcher, err := NewMatcher(settings, nil)
	if err != nil {
		t.Fatalf("NewMatcher failed: %v", err)
	}
	return matcher
}

func TestMatcher_HelloWorldScenario(t *testing.T) {
	tempDir := t.TempDir()
	a := writeFile(t, tempDir, "a.txt", "hello")
	b := writeFile(t, tempDir, "b.txt", "hello")
	writeFile(t, tempDir, "c.txt", "world")

	_, idx := scanTree(t, tempDir, nil)
	matcher := newTestMatcher(t, nil)

	groups, err := matcher.Match(idx, nil)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}

	if len(groups) != 1 {
		t.Fatalf("Expected exactly 1 duplicate group, got %d", len(groups))
	}
	group := groups[0]
	if group.Count != 2 {
		t.Fatalf("Expected 2 members, got %d", group.Count)
	}

	want := map[string]bool{
		canonical(t, a): true,
		canonical(t, b): true,
	}
	for _, path := range group.Files {
		if !want[path] {
			t.Errorf("Unexpected member %s (c.txt must never appear)", path)
		}
	}
}

func TestMatcher_PrefixPhaseShortCircuitsFullReads(t *testing.T) {
	tempDir := t.TempDir()
	// Same size, different content within the first chunk: the prefix
	// phase must disambiguate and the full phase must never run.
	writeFile(t, tempDir, "a.bin", "AAAAAAAAAAAAAAAA")
	writeFile(t, tempDir, "b.bin", "BBBBBBBBBBBBBBBB")

	settings := DefaultSettings()
	settings.ChunkSize = 8

	_, idx := scanTree(t, tempDir, settings)
	matcher := newTestMatcher(t, settings)

	groups, err := matcher.Match(idx, nil)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}

	if len(groups) != 0 {
		t.Fatalf("Expected no duplicate groups, got %d", len(groups))
	}

	stats := matcher.Stats()
	if stats.PrefixHashes != 2 {
		t.Errorf("Expected 2 prefix hashes, got %d", stats.PrefixHashes)
	}
	if stats.FullHashes != 0 {
		t.Errorf("Full-content hashing must not run when the prefix phase disambiguates, got %d full hashes", stats.FullHashes)
	}
}

func TestMatcher_LargeFilesReadInBoundedChunks(t *testing.T) {
	tempDir := t.TempDir()
	content := bytes.Repeat([]byte("0123456789abcdef"), 10*1024) // 160 KiB
	if err := os.WriteFile(filepath.Join(tempDir, "one.bin"), content, 0644); err != nil {
		t.Fatalf("Failed to write one.bin: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, "two.bin"), content, 0644); err != nil {
		t.Fatalf("Failed to write two.bin: %v", err)
	}

	settings := DefaultSettings()
	settings.ChunkSize = 4096

	_, idx := scanTree(t, tempDir, settings)
	matcher := newTestMatcher(t, settings)

	maxRead := 0
	matcher.observe = func(n int) {
		if n > maxRead {
			maxRead = n
		}
	}

	groups, err := matcher.Match(idx, nil)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}

	if len(groups) != 1 || groups[0].Count != 2 {
		t.Fatalf("Expected one group of 2, got %v", groups)
	}
	if maxRead > settings.ChunkSize {
		t.Errorf("Observed a %d byte read; content must stream in chunks of at most %d", maxRead, settings.ChunkSize)
	}

	stats := matcher.Stats()
	if stats.FullHashes != 2 {
		t.Errorf("Expected 2 full hashes, got %d", stats.FullHashes)
	}
}

func TestMatcher_UniqueSizesNeverOpened(t *testing.T) {
	tempDir := t.TempDir()
	writeFile(t, tempDir, "a.txt", "unique size one")
	writeFile(t, tempDir, "b.txt", "another, longer unique size")

	_, idx := scanTree(t, tempDir, nil)
	matcher := newTestMatcher(t, nil)

	groups, err := matcher.Match(idx, nil)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}

	if len(groups) != 0 {
		t.Fatalf("Expected no groups, got %d", len(groups))
	}
	stats := matcher.Stats()
	if stats.PrefixHashes != 0 || stats.FullHashes != 0 || stats.BytesHashed != 0 {
		t.Errorf("Files with unique sizes must never be opened, got stats %+v", stats)
	}
}

func TestMatcher_VanishedFileDroppedSilently(t *testing.T) {
	tempDir := t.TempDir()
	a := writeFile(t, tempDir, "a.txt", "hello")
	b := writeFile(t, tempDir, "b.txt", "hello")
	gone := writeFile(t, tempDir, "gone.txt", "hullo")

	_, idx := scanTree(t, tempDir, nil)

	// Simulate a race with deletion between indexing and hashing.
	if err := os.Remove(gone); err != nil {
		t.Fatalf("Failed to remove %s: %v", gone, err)
	}

	matcher := newTestMatcher(t, nil)
	groups, err := matcher.Match(idx, nil)
	if err != nil {
		t.Fatalf("A vanished file must not fail the match: %v", err)
	}

	if len(groups) != 1 || groups[0].Count != 2 {
		t.Fatalf("Expected the surviving pair to group, got %v", groups)
	}
	for _, path := range groups[0].Files {
		if path != canonical(t, a) && path != canonical(t, b) {
			t.Errorf("Unexpected group member %s", path)
		}
	}
	if len(matcher.Skipped()) != 1 {
		t.Errorf("Expected 1 skip record for the vanished file, got %d", len(matcher.Skipped()))
	}
}

func TestMatcher_EmptyFilesGroup(t *testing.T) {
	tempDir := t.TempDir()
	writeFile(t, tempDir, "empty1", "")
	writeFile(t, tempDir, "empty2", "")
	writeFile(t, tempDir, "empty3", "")

	_, idx := scanTree(t, tempDir, nil)
	matcher := newTestMatcher(t, nil)

	groups, err := matcher.Match(idx, nil)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if len(groups) != 1 || groups[0].Count != 3 {
		t.Fatalf("Expected one group of 3 empty files, got %v", groups)
	}
	if groups[0].Size != 0 {
		t.Errorf("Expected size 0, got %d", groups[0].Size)
	}
}

func TestMatcher_ShutdownPreservesVerifiedGroups(t *testing.T) {
	tempDir := t.TempDir()
	writeFile(t, tempDir, "a.txt", "hello")
	writeFile(t, tempDir, "b.txt", "hello")

	_, idx := scanTree(t, tempDir, nil)
	matcher := newTestMatcher(t, nil)

	shutdown := make(chan struct{})
	close(shutdown)

	groups, err := matcher.Match(idx, shutdown)
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("Expected ErrInterrupted, got %v", err)
	}
	// Interrupted before any group was processed: nothing verified yet,
	// and nothing half-verified either.
	if len(groups) != 0 {
		t.Errorf("Expected no groups from an immediately-interrupted match, got %d", len(groups))
	}
}
