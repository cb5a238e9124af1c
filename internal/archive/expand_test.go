package archive

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/resume-extractor/constants"
	"github.com/joseph-ayodele/resume-extractor/internal/common"
)

type entry struct {
	name    string
	content string
}

func buildZip(t *testing.T, entries ...entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		if !strings.HasSuffix(e.name, "/") {
			_, err = io.WriteString(w, e.content)
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExpand_ClassifiesAndKeepsOrder(t *testing.T) {
	blob := buildZip(t,
		entry{"resumes/", ""},
		entry{"resumes/alice.pdf", "pdf-a"},
		entry{"resumes/notes.txt", "ignored"},
		entry{"resumes/bob.DOCX", "docx-b"},
		entry{"carol.pdf", "pdf-c"},
	)

	res, err := NewExpander(Config{Workers: 2}, quietLogger()).Expand(context.Background(), blob)
	require.NoError(t, err)

	require.Len(t, res.Documents, 3)
	assert.Equal(t, "alice.pdf", res.Documents[0].Name)
	assert.Equal(t, constants.PDF, res.Documents[0].MediaType)
	assert.Equal(t, []byte("pdf-a"), res.Documents[0].Content)
	assert.Equal(t, "bob.DOCX", res.Documents[1].Name)
	assert.Equal(t, constants.DOCX, res.Documents[1].MediaType)
	assert.Equal(t, "carol.pdf", res.Documents[2].Name)

	assert.Equal(t, []string{"resumes/notes.txt"}, res.Skipped)
	assert.Empty(t, res.Failed)
}

func TestExpand_NoSupportedEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []entry
	}{
		{"empty archive", nil},
		{"only directories", []entry{{"a/", ""}, {"a/b/", ""}}},
		{"only unsupported", []entry{{"readme.md", "x"}, {"photo.png", "y"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExpander(Config{}, quietLogger()).Expand(context.Background(), buildZip(t, tt.entries...))
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrEmptyArchive)
			assert.Equal(t, msgEmpty, common.UserMessage(err))
		})
	}
}

func TestExpand_OversizedEntryIsRecordedNotFatal(t *testing.T) {
	blob := buildZip(t,
		entry{"big.pdf", strings.Repeat("x", 64)},
		entry{"small.pdf", "ok"},
	)

	res, err := NewExpander(Config{MaxEntryBytes: 16}, quietLogger()).Expand(context.Background(), blob)
	require.NoError(t, err)
	require.Len(t, res.Documents, 1)
	assert.Equal(t, "small.pdf", res.Documents[0].Name)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "big.pdf", res.Failed[0].Name)
}

func TestExpand_FailedMembersWithSameBaseNameAreAllKept(t *testing.T) {
	blob := buildZip(t,
		entry{"ok.pdf", "x"},
		entry{"a/cv.pdf", strings.Repeat("a", 13)},
		entry{"b/cv.pdf", strings.Repeat("b", 13)},
	)

	res, err := NewExpander(Config{MaxEntryBytes: 5, Workers: 2}, quietLogger()).Expand(context.Background(), blob)
	require.NoError(t, err)
	require.Len(t, res.Documents, 1)
	require.Len(t, res.Failed, 2)
	assert.Equal(t, "cv.pdf", res.Failed[0].Name)
	assert.Contains(t, res.Failed[0].Message, "a/cv.pdf")
	assert.Equal(t, "cv.pdf", res.Failed[1].Name)
	assert.Contains(t, res.Failed[1].Message, "b/cv.pdf")
}

func TestExpand_AllEntriesFailed(t *testing.T) {
	blob := buildZip(t, entry{"big.pdf", strings.Repeat("x", 64)})

	res, err := NewExpander(Config{MaxEntryBytes: 8}, quietLogger()).Expand(context.Background(), blob)
	assert.ErrorIs(t, err, common.ErrEmptyArchive)
	assert.Len(t, res.Failed, 1)
}

func TestExpand_NotAZip(t *testing.T) {
	_, err := NewExpander(Config{}, quietLogger()).Expand(context.Background(), []byte("PK? nope"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrEmptyArchive)
	assert.Equal(t, msgUnreadable, common.UserMessage(err))
}
