package dupescan

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
)

// HashAlgorithm represents a hash algorithm configuration
type HashAlgorithm struct {
	Name    string
	TypeID  uint16
	Size    int
	NewFunc func() hash.Hash
}

// GetHashAlgorithm returns the hash algorithm configuration for the given name
func GetHashAlgorithm(name string) (*HashAlgorithm, error) {
	switch strings.ToLower(name) {
	case "sha1":
		return &HashAlgorithm{
			Name:    "sha1",
			TypeID:  HashTypeSHA1,
			Size:    HashSizeSHA1,
			NewFunc: func() hash.Hash { return sha1.New() },
		}, nil
	case "sha256":
		return &HashAlgorithm{
			Name:    "sha256",
			TypeID:  HashTypeSHA256,
			Size:    HashSizeSHA256,
			NewFunc: func() hash.Hash { return sha256.New() },
		}, nil
	case "sha512":
		return &HashAlgorithm{
			Name:    "sha512",
			TypeID:  HashTypeSHA512,
			Size:    HashSizeSHA512,
			NewFunc: func() hash.Hash { return sha512.New() },
		}, nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", name)
	}
}

// GetHashAlgorithmByType returns the hash algorithm configuration for the given type ID
func GetHashAlgorithmByType(typeID uint16) (*HashAlgorithm, error) {
	switch typeID {
	case HashTypeSHA1:
		return GetHashAlgorithm("sha1")
	case HashTypeSHA256:
		return GetHashAlgorithm("sha256")
	case HashTypeSHA512:
		return GetHashAlgorithm("sha512")
	default:
		return nil, fmt.Errorf("unsupported hash type ID: %d", typeID)
	}
}

// readObserver is invoked with the byte count of every read performed
// while hashing. Used by tests to verify reads stay within the
// configured chunk size and that the full phase is only entered when
// the prefix phase could not disambiguate.
type readObserver func(n int)

// HashFilePrefix calculates the digest of at most the first n bytes of
// a file. Files smaller than n hash their entire content, which is
// equivalent for grouping purposes since siblings share the same size.
func HashFilePrefix(filePath string, algorithm *HashAlgorithm, n int) ([]byte, error) {
	return hashFilePrefix(filePath, algorithm, n, nil)
}

func hashFilePrefix(filePath string, algorithm *HashAlgorithm, n int, observe readObserver) (digest []byte, err error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	hasher := algorithm.NewFunc()
	copied, err := io.CopyN(hasher, file, int64(n))
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to hash file prefix %s: %w", filePath, err)
	}
	if observe != nil {
		observe(int(copied))
	}

	return hasher.Sum(nil), nil
}

// HashFileChunked calculates the digest of a file's entire content,
// read in chunkSize pieces so that arbitrarily large files are never
// loaded into memory wholesale. A closed shutdownChan interrupts the
// hash between reads.
func HashFileChunked(filePath string, algorithm *HashAlgorithm, chunkSize int, shutdownChan <-chan struct{}) ([]byte, error) {
	return hashFileChunked(filePath, algorithm, chunkSize, shutdownChan, nil)
}

func hashFileChunked(filePath string, algorithm *HashAlgorithm, chunkSize int, shutdownChan <-chan struct{}, observe readObserver) (digest []byte, err error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	hasher := algorithm.NewFunc()
	buffer := make([]byte, chunkSize)

	for {
		// Check for shutdown signal before each read
		select {
		case <-shutdownChan:
			return nil, ErrInterrupted
		default:
		}

		n, err := file.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
			if observe != nil {
				observe(n)
			}
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read from file %s: %w", filePath, err)
		}
	}

	return hasher.Sum(nil), nil
}

// HashFileToHexString calculates the full-content hash of a file using
// DefaultChunkSize reads and returns it as a hex string.
func HashFileToHexString(filePath string, algorithm *HashAlgorithm) (string, error) {
	digest, err := HashFileChunked(filePath, algorithm, DefaultChunkSize, nil)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(digest), nil
}
