package service

import (
	"path/filepath"
	"regexp"
	"testing"

	"github.com/chatpdf/chatpdf-be/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveUsesContentHashName(t *testing.T) {
	storage, err := NewStorageService(t.TempDir())
	require.NoError(t, err)

	name, err := storage.Save([]byte("some pdf bytes"))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{24}\.pdf$`), name)

	// Same bytes always map to the same identifier.
	again, err := storage.Save([]byte("some pdf bytes"))
	require.NoError(t, err)
	assert.Equal(t, name, again)

	other, err := storage.Save([]byte("different bytes"))
	require.NoError(t, err)
	assert.NotEqual(t, name, other)
}

func TestLoadRoundTrip(t *testing.T) {
	storage, err := NewStorageService(t.TempDir())
	require.NoError(t, err)

	name, err := storage.Save([]byte("round trip payload"))
	require.NoError(t, err)

	data, err := storage.Load(name)
	require.NoError(t, err)
	assert.Equal(t, []byte("round trip payload"), data)
}

func TestLoadMissingFile(t *testing.T) {
	storage, err := NewStorageService(t.TempDir())
	require.NoError(t, err)

	_, err = storage.Load("missing.pdf")
	assert.ErrorIs(t, err, types.ErrFileNotFound)
}

func TestPathConfinesToUploadDir(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewStorageService(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "passwd"), storage.Path("../../etc/passwd"))
	assert.Equal(t, filepath.Join(dir, "a_b_.pdf"), storage.Path("a b?.pdf"))
}
