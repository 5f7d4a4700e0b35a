package dupescan

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHashAlgorithm(t *testing.T) {
	cases := []struct {
		name   string
		typeID uint16
		size   int
	}{
		{"sha1", HashTypeSHA1, HashSizeSHA1},
		{"sha256", HashTypeSHA256, HashSizeSHA256},
		{"sha512", HashTypeSHA512, HashSizeSHA512},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			algorithm, err := GetHashAlgorithm(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.name, algorithm.Name)
			assert.Equal(t, tc.typeID, algorithm.TypeID)
			assert.Equal(t, tc.size, algorithm.Size)
			assert.Equal(t, tc.size, len(algorithm.NewFunc().Sum(nil)))
		})
	}

	t.Run("case insensitive", func(t *testing.T) {
		algorithm, err := GetHashAlgorithm("SHA256")
		require.NoError(t, err)
		assert.Equal(t, "sha256", algorithm.Name)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := GetHashAlgorithm("md5")
		assert.Error(t, err)
	})
}

func TestGetHashAlgorithmByType(t *testing.T) {
	algorithm, err := GetHashAlgorithmByType(HashTypeSHA512)
	require.NoError(t, err)
	assert.Equal(t, "sha512", algorithm.Name)

	_, err = GetHashAlgorithmByType(99)
	assert.Error(t, err)
}

func TestHashFilePrefix(t *testing.T) {
	tempDir := t.TempDir()
	path := writeFile(t, tempDir, "data.bin", "0123456789")
	algorithm, err := GetHashAlgorithm("sha256")
	require.NoError(t, err)

	t.Run("hashes only the leading bytes", func(t *testing.T) {
		digest, err := HashFilePrefix(path, algorithm, 4)
		require.NoError(t, err)
		want := sha256.Sum256([]byte("0123"))
		assert.True(t, bytes.Equal(want[:], digest))
	})

	t.Run("small file hashes entire content", func(t *testing.T) {
		digest, err := HashFilePrefix(path, algorithm, 1024)
		require.NoError(t, err)
		full, err := HashFileChunked(path, algorithm, 1024, nil)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(full, digest),
			"prefix digest of a file smaller than the chunk must equal its full digest")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := HashFilePrefix(tempDir+"/nope", algorithm, 4)
		assert.Error(t, err)
	})
}

func TestHashFileChunked(t *testing.T) {
	tempDir := t.TempDir()
	content := bytes.Repeat([]byte("z"), 10000)
	path := writeFile(t, tempDir, "data.bin", string(content))
	algorithm, err := GetHashAlgorithm("sha256")
	require.NoError(t, err)

	t.Run("digest independent of chunk size", func(t *testing.T) {
		small, err := HashFileChunked(path, algorithm, 7, nil)
		require.NoError(t, err)
		large, err := HashFileChunked(path, algorithm, 1<<20, nil)
		require.NoError(t, err)
		want := sha256.Sum256(content)
		assert.True(t, bytes.Equal(want[:], small))
		assert.True(t, bytes.Equal(want[:], large))
	})

	t.Run("interruptible", func(t *testing.T) {
		shutdown := make(chan struct{})
		close(shutdown)
		_, err := HashFileChunked(path, algorithm, 7, shutdown)
		assert.True(t, errors.Is(err, ErrInterrupted))
	})
}

func TestHashFileToHexString(t *testing.T) {
	tempDir := t.TempDir()
	path := writeFile(t, tempDir, "data.txt", "hello")
	algorithm, err := GetHashAlgorithm("sha256")
	require.NoError(t, err)

	hexDigest, err := HashFileToHexString(path, algorithm)
	require.NoError(t, err)
	// Known sha256 of "hello".
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", hexDigest)
}
