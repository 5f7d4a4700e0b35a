// Package dupescan locates duplicate files within a directory tree by
// content, using a staged hashing strategy to minimise full-file reads.
//
// # Core API
//
// The main entry point is FindDuplicates, which runs the whole pipeline:
//
//	settings := dupescan.DefaultSettings()
//	result, err := dupescan.FindDuplicates("/path/to/tree", settings, nil, nil)
//	for _, group := range result.Groups {
//		fmt.Printf("%s: %v\n", group.Hash, group.Files)
//	}
//
// # Pipeline
//
// A scan runs in three stages. The Scanner walks the tree and groups
// files by exact byte size; files with a unique size cannot have a
// duplicate and are never opened. The Matcher then hashes only the
// first chunk of each remaining candidate, which eliminates same-size
// files that differ early without reading them in full. Only files
// still indistinguishable after the prefix pass are hashed end to end,
// streamed in bounded chunks.
//
// # Definition of duplicate
//
// Two files are reported as duplicates when their full-content
// cryptographic digests are equal. No byte-by-byte comparison is
// performed beyond that; digest equality is the system's definition of
// identical content.
//
// # Configuration
//
// Enable debug output:
//
//	dupescan.SetVerboseLevel(2)
//	dupescan.SetDebugFlags("scan,match")
package dupescan
