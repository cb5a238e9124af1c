package source

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/resume-extractor/constants"
)

func writeFile(t *testing.T, path string, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func TestLoad_DirectoryIsBundled(t *testing.T) {
	root := filepath.Join(t.TempDir(), "candidates")
	writeFile(t, filepath.Join(root, "ada.pdf"), "%PDF-ada")
	writeFile(t, filepath.Join(root, "team", "grace.docx"), "docx-grace")
	writeFile(t, filepath.Join(root, "notes.txt"), "ignored")
	writeFile(t, filepath.Join(root, ".hidden.pdf"), "ignored")
	writeFile(t, filepath.Join(root, ".cache", "old.pdf"), "ignored")

	in, err := NewLoader(nil, "", quietLogger()).Load(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, "candidates.zip", in.Name)
	assert.Equal(t, constants.MIMEZip, in.DeclaredType)

	zr, err := zip.NewReader(bytes.NewReader(in.Content), int64(len(in.Content)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"ada.pdf", "team/grace.docx"}, names)
}

func TestBundleDirectory_Stats(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.pdf"), "a")
	writeFile(t, filepath.Join(root, "b.txt"), "b")

	_, stats, err := NewLoader(nil, "", quietLogger()).BundleDirectory(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), stats.Scanned)
	assert.Equal(t, uint32(1), stats.Matched)
	assert.Zero(t, stats.Failed)
}

func TestBundleDirectory_EmptyDirectoryYieldsEmptyZip(t *testing.T) {
	in, _, err := NewLoader(nil, "", quietLogger()).BundleDirectory(context.Background(), t.TempDir())
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(in.Content), int64(len(in.Content)))
	require.NoError(t, err)
	assert.Empty(t, zr.File)
}
