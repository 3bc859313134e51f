package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendToFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.jsonl")
	require.NoError(t, AppendToFile(p, "a", "b"))
	require.NoError(t, AppendToFile(p, "c"))

	bs, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", string(bs))
}

func TestWriteFileAtomicReplaces(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "nested", "ckpt.bin")

	require.NoError(t, WriteFileAtomic(p, []byte("first"), 0644))
	require.NoError(t, WriteFileAtomic(p, []byte("second"), 0644))

	bs, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "second", string(bs))

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}
