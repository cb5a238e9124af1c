package pipeline

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/resume-extractor/constants"
	"github.com/joseph-ayodele/resume-extractor/internal/extract"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeExtractor returns text keyed by document content.
type fakeExtractor struct {
	texts  map[string]string
	panics map[string]bool
	calls  int
}

func (f *fakeExtractor) Extract(ctx context.Context, content []byte, mt constants.MediaType) (extract.TextExtractionResult, error) {
	f.calls++
	if err := ctx.Err(); err != nil {
		return extract.TextExtractionResult{}, err
	}
	key := string(content)
	if f.panics[key] {
		panic("reader exploded on " + key)
	}
	return extract.TextExtractionResult{Text: f.texts[key], MediaType: mt, Method: "fake"}, nil
}

// fakeClient replies with the same text, or the error, to every prompt.
type fakeClient struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (f *fakeClient) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeClient) Model() string { return "fake-model" }

type zipEntry struct {
	name    string
	content string
}

func buildZip(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = io.WriteString(w, e.content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// recorder collects snapshots.
type recorder struct {
	snaps []Snapshot
}

func (r *recorder) observe(s Snapshot) { r.snaps = append(r.snaps, s) }

func (r *recorder) states() []constants.RunState {
	out := make([]constants.RunState, len(r.snaps))
	for i, s := range r.snaps {
		out[i] = s.State
	}
	return out
}
